package iocache

import (
	"math"
	"testing"
	"time"

	"github.com/huangsam/debtlens/schema"
	"github.com/stretchr/testify/assert"
)

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"simple", "debtlens_stats_cache", false},
		{"leading underscore", "_cache", false},
		{"digits", "cache2", false},
		{"empty", "", true},
		{"leading digit", "2cache", true},
		{"hyphen", "stats-cache", true},
		{"injection", "cache; DROP TABLE users", true},
		{"quote", `cache"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`debtlens_runs`", quoteTableName("debtlens_runs", schema.MySQLBackend))
	assert.Equal(t, `"debtlens_runs"`, quoteTableName("debtlens_runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"debtlens_runs"`, quoteTableName("debtlens_runs", schema.SQLiteBackend))
}

func TestRebind(t *testing.T) {
	query := "UPDATE t SET a = ?, b = ? WHERE id = ?"
	assert.Equal(t, query, rebind(query, schema.SQLiteBackend))
	assert.Equal(t, query, rebind(query, schema.MySQLBackend))
	assert.Equal(t, "UPDATE t SET a = $1, b = $2 WHERE id = $3", rebind(query, schema.PostgreSQLBackend))
}

func TestDriverName(t *testing.T) {
	tests := map[schema.DatabaseBackend]string{
		schema.SQLiteBackend:     "sqlite",
		schema.MySQLBackend:      "mysql",
		schema.PostgreSQLBackend: "pgx",
	}
	for backend, expected := range tests {
		name, err := driverName(backend)
		assert.NoError(t, err)
		assert.Equal(t, expected, name)
	}
	_, err := driverName(schema.NoneBackend)
	assert.Error(t, err)
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 500, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "2024-05-01T10:30:00.0000005Z", formatTime(ts, schema.SQLiteBackend))
	assert.Equal(t, ts, formatTime(ts, schema.PostgreSQLBackend))
}

func TestNullableFloat(t *testing.T) {
	assert.False(t, nullableFloat(math.NaN()).Valid)
	assert.False(t, nullableFloat(math.Inf(1)).Valid)

	v := nullableFloat(0.25)
	assert.True(t, v.Valid)
	assert.Equal(t, 0.25, floatOrNaN(v))
	assert.True(t, math.IsNaN(floatOrNaN(nullableFloat(math.NaN()))))
}
