package algo

import (
	"math"
	"slices"

	"github.com/huangsam/debtlens/schema"
)

// ParentIndex maps commit identifiers to their records. It is built once from the
// uncleaned table so parents without a score still resolve.
type ParentIndex map[string]schema.CommitRecord

// NewParentIndex indexes every record of a table. The first occurrence of an id wins.
func NewParentIndex(table *schema.CommitTable) ParentIndex {
	idx := make(ParentIndex, len(table.Records))
	for _, rec := range table.Records {
		if _, ok := idx[rec.Commit]; !ok {
			idx[rec.Commit] = rec
		}
	}
	return idx
}

// Delta returns the technical debt change a commit introduced over its parent.
// Root commits and commits whose parent is unknown count their whole score.
// A parent without a score yields NaN.
func (idx ParentIndex) Delta(rec schema.CommitRecord) float64 {
	if rec.IsRoot() {
		return rec.Debt
	}
	parent, ok := idx[rec.Parents[0]]
	if !ok {
		return rec.Debt
	}
	if !parent.HasDebt() {
		return math.NaN()
	}
	return rec.Debt - parent.Debt
}

// RankHotspots computes the delta of every non-merge commit in the cleaned series
// and sorts them by descending absolute delta. Missing deltas go last; ties keep
// chronological order.
func RankHotspots(cleaned []schema.CommitRecord, idx ParentIndex) []schema.HotspotRecord {
	hotspots := make([]schema.HotspotRecord, 0, len(cleaned))
	for _, rec := range cleaned {
		if rec.IsMerge() {
			continue
		}
		hotspots = append(hotspots, schema.HotspotRecord{CommitRecord: rec, Delta: idx.Delta(rec)})
	}
	slices.SortStableFunc(hotspots, func(a, b schema.HotspotRecord) int {
		aNaN, bNaN := math.IsNaN(a.Delta), math.IsNaN(b.Delta)
		switch {
		case aNaN && bNaN:
			return 0
		case aNaN:
			return 1
		case bNaN:
			return -1
		}
		return compareDesc(math.Abs(a.Delta), math.Abs(b.Delta))
	})
	return hotspots
}

// TopHotspots returns the first 'limit' hotspots. If limit is greater than the
// number of hotspots, all of them are returned.
func TopHotspots(hotspots []schema.HotspotRecord, limit int) []schema.HotspotRecord {
	if limit > 0 && len(hotspots) > limit {
		return hotspots[:limit]
	}
	return hotspots
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
