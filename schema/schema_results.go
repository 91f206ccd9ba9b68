package schema

import "time"

// TrendResult is the Mann-Kendall trend test outcome for a repository.
type TrendResult struct {
	Repo   string  `json:"repo"`
	Tau    float64 `json:"tau"`
	PValue float64 `json:"p_value"`
	Score  float64 `json:"s"`
	N      int     `json:"n"`
}

// SeasonalityResult is the seasonality test outcome for a repository.
type SeasonalityResult struct {
	Repo           string          `json:"repo"`
	Seasonal       bool            `json:"seasonal"`
	Test           SeasonalityTest `json:"test"`
	QSPValue       float64         `json:"qs_p_value"`
	KWPValue       float64         `json:"kw_p_value"`
	Frequency      int             `json:"frequency"`
	LifeSpanMonths int             `json:"life_span_months"`
}

// CausalityResult is one correlation and causality pass for a repository.
// PValue is only meaningful when Tested is true.
type CausalityResult struct {
	Repo         string          `json:"repo"`
	Pass         CorrelationPass `json:"pass"`
	N            int             `json:"n"`
	Differenced  bool            `json:"differenced"`
	LagMax       int             `json:"lag_max"`
	ConfBand     float64         `json:"conf_band"`
	Breach       bool            `json:"breach"`
	VAROrder     int             `json:"var_order"`
	Tested       bool            `json:"tested"`
	Causal       bool            `json:"causal"`
	PValue       float64         `json:"p_value"`
	Coefficients []float64       `json:"ccf,omitempty"`
}

// Lag returns the lag of the i-th CCF coefficient.
func (c CausalityResult) Lag(i int) int {
	return i - c.LagMax
}

// HotspotRecord is a single non-merge commit ranked by its technical debt delta.
// Delta is NaN when the parent exists but has no usable score.
type HotspotRecord struct {
	CommitRecord
	Delta float64 `json:"delta"`
}

// RepoStats groups the statistical results of one repository.
// Nil entries mean the step was skipped.
type RepoStats struct {
	Trend       *TrendResult       `json:"trend,omitempty"`
	Seasonality *SeasonalityResult `json:"seasonality,omitempty"`
	Causality   []CausalityResult  `json:"causality,omitempty"`
}

// RepoReport is everything a single repository contributes to a run.
type RepoReport struct {
	Repo      string        `json:"repo"`
	Status    RepoStatus    `json:"status"`
	Commits   int           `json:"commits"`
	Cleaned   int           `json:"cleaned"`
	Days      int           `json:"days"`
	FirstDate time.Time     `json:"first_date"`
	LastDate  time.Time     `json:"last_date"`
	Hotspots  int           `json:"hotspots"`
	Stats     RepoStats     `json:"stats"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// RunSummary is the result of processing every repository of a run.
type RunSummary struct {
	RunID       int64               `json:"run_id,omitempty"`
	Reports     []RepoReport        `json:"reports"`
	Trend       []TrendResult       `json:"trend"`
	Seasonality []SeasonalityResult `json:"seasonality"`
	Causality   []CausalityResult   `json:"causality"`
	Skipped     []string            `json:"skipped,omitempty"`
	Aborted     bool                `json:"aborted,omitempty"`
	Duration    time.Duration       `json:"duration"`
}

// CausalityFor returns the causality result of a pass, if present.
func (s RepoStats) CausalityFor(pass CorrelationPass) (CausalityResult, bool) {
	for _, c := range s.Causality {
		if c.Pass == pass {
			return c, true
		}
	}
	return CausalityResult{}, false
}

// HotspotListing is the ranked hotspot list of a repository together with the
// header of its dataset, so that rows can be written back in the same schema.
type HotspotListing struct {
	Repo     string
	Header   []string
	Hotspots []HotspotRecord
}
