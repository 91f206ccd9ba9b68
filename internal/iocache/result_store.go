package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
)

// Table names for result tracking.
const (
	runsTable        = "debtlens_runs"
	trendTable       = "debtlens_trend_results"
	seasonalityTable = "debtlens_seasonality_results"
	causalityTable   = "debtlens_causality_results"
)

// resultTables lists the result tables in creation order.
var resultTables = []string{runsTable, trendTable, seasonalityTable, causalityTable}

// ResultStoreImpl implements the ResultStore interface.
type ResultStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.ResultStore = &ResultStoreImpl{} // Compile-time check

// NewResultStore creates a new ResultStore with the specified backend. The result
// tables are brought to the latest schema version on open.
func NewResultStore(backend schema.DatabaseBackend, connStr string) (contract.ResultStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &ResultStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetResultsDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &ResultStoreImpl{db: db, backend: backend}, nil
}

func (rs *ResultStoreImpl) table(name string) string {
	return quoteTableName(name, rs.backend)
}

func (rs *ResultStoreImpl) exec(query string, args ...any) error {
	_, err := rs.db.Exec(rebind(query, rs.backend), args...)
	return err
}

// BeginRun creates a new run and returns its unique ID.
func (rs *ResultStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING run_id`, rs.table(runsTable))
		err = rs.db.QueryRow(query, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, rs.table(runsTable))
		var result sql.Result
		result, err = rs.db.Exec(query, formatTime(startTime, rs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *ResultStoreImpl) EndRun(runID int64, endTime time.Time, totalRepos int) error {
	if rs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, rs.table(runsTable))
	startTime, err := rs.scanTime(rs.db.QueryRow(rebind(query, rs.backend), runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	update := fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_repos = ? WHERE run_id = ?`, rs.table(runsTable))
	durationMs := endTime.Sub(startTime).Milliseconds()
	if err := rs.exec(update, formatTime(endTime, rs.backend), durationMs, totalRepos, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordTrend stores one trend row.
func (rs *ResultStoreImpl) RecordTrend(runID int64, result schema.TrendResult) error {
	if rs.db == nil {
		return nil
	}
	query := fmt.Sprintf(`INSERT INTO %s (run_id, repo, tau, p_value, s, n) VALUES (?, ?, ?, ?, ?, ?)`, rs.table(trendTable))
	err := rs.exec(query, runID, result.Repo,
		nullableFloat(result.Tau), nullableFloat(result.PValue), nullableFloat(result.Score), result.N)
	if err != nil {
		return fmt.Errorf("failed to record trend of %s: %w", result.Repo, err)
	}
	return nil
}

// RecordSeasonality stores one seasonality row.
func (rs *ResultStoreImpl) RecordSeasonality(runID int64, result schema.SeasonalityResult) error {
	if rs.db == nil {
		return nil
	}
	query := fmt.Sprintf(`INSERT INTO %s (run_id, repo, seasonal, test, qs_p_value, kw_p_value, frequency, life_span_months)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, rs.table(seasonalityTable))
	err := rs.exec(query, runID, result.Repo, result.Seasonal, string(result.Test),
		nullableFloat(result.QSPValue), nullableFloat(result.KWPValue), result.Frequency, result.LifeSpanMonths)
	if err != nil {
		return fmt.Errorf("failed to record seasonality of %s: %w", result.Repo, err)
	}
	return nil
}

// RecordCausality stores one causality row. The p-value is NULL when the Granger
// test did not run.
func (rs *ResultStoreImpl) RecordCausality(runID int64, result schema.CausalityResult) error {
	if rs.db == nil {
		return nil
	}
	pValue := nullableFloat(result.PValue)
	if !result.Tested {
		pValue = sql.NullFloat64{}
	}
	query := fmt.Sprintf(`INSERT INTO %s (run_id, repo, pass, n, differenced, lag_max, conf_band, breach, var_order, tested, causal, p_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, rs.table(causalityTable))
	err := rs.exec(query, runID, result.Repo, string(result.Pass), result.N, result.Differenced, result.LagMax,
		nullableFloat(result.ConfBand), result.Breach, result.VAROrder, result.Tested, result.Causal, pValue)
	if err != nil {
		return fmt.Errorf("failed to record %s causality of %s: %w", result.Pass, result.Repo, err)
	}
	return nil
}

// Close closes the underlying DB connection.
func (rs *ResultStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the result store.
func (rs *ResultStoreImpl) GetStatus() (schema.ResultsStatus, error) {
	status := schema.ResultsStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	runs := rs.table(runsTable)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := rs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		var lastTime any
		if err := row.Scan(&status.LastRunID, &lastTime); err != nil {
			return status, fmt.Errorf("failed to get last run: %w", err)
		}
		t, err := rs.parseTime(lastTime)
		if err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		status.LastRunTime = t

		oldest, err := rs.scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest

		var totalRepos sql.NullInt64
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT SUM(total_repos) FROM %s", runs)).Scan(&totalRepos); err != nil {
			return status, fmt.Errorf("failed to get total repositories: %w", err)
		}
		status.TotalRepos = int(totalRepos.Int64)
	}

	for _, table := range resultTables {
		var count int64
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", rs.table(table))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to count rows of %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllRuns retrieves all runs from the database.
func (rs *ResultStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, total_repos, config_params FROM %s ORDER BY run_id`, rs.table(runsTable))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var start, end any
		var duration sql.NullInt32
		var params sql.NullString
		if err := rows.Scan(&record.RunID, &start, &end, &duration, &record.TotalRepos, &params); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if record.StartTime, err = rs.parseTime(start); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if end != nil {
			endTime, err := rs.parseTime(end)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &endTime
		}
		if duration.Valid {
			record.RunDurationMs = &duration.Int32
		}
		if params.Valid {
			record.ConfigParams = &params.String
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetAllTrend retrieves all stored trend rows.
func (rs *ResultStoreImpl) GetAllTrend() ([]schema.TrendRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, repo, tau, p_value, s, n FROM %s ORDER BY run_id, repo`, rs.table(trendTable))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trend results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.TrendRecord
	for rows.Next() {
		var record schema.TrendRecord
		var tau, pValue, score sql.NullFloat64
		if err := rows.Scan(&record.RunID, &record.Repo, &tau, &pValue, &score, &record.N); err != nil {
			return nil, fmt.Errorf("failed to scan trend result: %w", err)
		}
		record.Tau = floatOrNaN(tau)
		record.PValue = floatOrNaN(pValue)
		record.Score = floatOrNaN(score)
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetAllSeasonality retrieves all stored seasonality rows.
func (rs *ResultStoreImpl) GetAllSeasonality() ([]schema.SeasonalityRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, repo, seasonal, test, qs_p_value, kw_p_value, frequency, life_span_months FROM %s ORDER BY run_id, repo`,
		rs.table(seasonalityTable))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasonality results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.SeasonalityRecord
	for rows.Next() {
		var record schema.SeasonalityRecord
		var test string
		var qs, kw sql.NullFloat64
		if err := rows.Scan(&record.RunID, &record.Repo, &record.Seasonal, &test, &qs, &kw, &record.Frequency, &record.LifeSpanMonths); err != nil {
			return nil, fmt.Errorf("failed to scan seasonality result: %w", err)
		}
		record.Test = schema.SeasonalityTest(test)
		record.QSPValue = floatOrNaN(qs)
		record.KWPValue = floatOrNaN(kw)
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetAllCausality retrieves all stored causality rows.
func (rs *ResultStoreImpl) GetAllCausality() ([]schema.CausalityRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, repo, pass, n, differenced, lag_max, conf_band, breach, var_order, tested, causal, p_value
		FROM %s ORDER BY run_id, repo, pass`, rs.table(causalityTable))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query causality results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.CausalityRecord
	for rows.Next() {
		var record schema.CausalityRecord
		var pass string
		var band, pValue sql.NullFloat64
		if err := rows.Scan(&record.RunID, &record.Repo, &pass, &record.N, &record.Differenced, &record.LagMax,
			&band, &record.Breach, &record.VAROrder, &record.Tested, &record.Causal, &pValue); err != nil {
			return nil, fmt.Errorf("failed to scan causality result: %w", err)
		}
		record.Pass = schema.CorrelationPass(pass)
		record.ConfBand = floatOrNaN(band)
		if pValue.Valid {
			record.PValue = &pValue.Float64
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// scanTime reads a single timestamp column.
func (rs *ResultStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	var v any
	if err := row.Scan(&v); err != nil {
		return time.Time{}, err
	}
	return rs.parseTime(v)
}

// parseTime handles the per-backend timestamp representations. SQLite columns
// hold RFC3339 text while MySQL and PostgreSQL return native times.
func (rs *ResultStoreImpl) parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return time.Parse(time.RFC3339Nano, t)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}
