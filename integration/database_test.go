//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDebtlensWithMySQL runs the CLI with MySQL cache and results backends.
func TestDebtlensWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "debtlens",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/debtlens", host, port.Port())
	runBackendScenario(t, "mysql", connStr)
}

// TestDebtlensWithPostgres runs the CLI with PostgreSQL cache and results backends.
func TestDebtlensWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runBackendScenario(t, "postgresql", connStr)
}

// runBackendScenario exercises migrate, analyze, status, and clear against one backend.
func runBackendScenario(t *testing.T, backend, connStr string) {
	t.Helper()
	work := t.TempDir()
	data := filepath.Join(work, "data")
	require.NoError(t, os.MkdirAll(data, 0o755))
	writeDataset(t, data, "acme.shop", 60)

	t.Setenv("DEBTLENS_CACHE_BACKEND", backend)
	t.Setenv("DEBTLENS_CACHE_DB_CONNECT", connStr)
	t.Setenv("DEBTLENS_RESULTS_BACKEND", backend)
	t.Setenv("DEBTLENS_RESULTS_DB_CONNECT", connStr)

	_, err := runCommand(t, work, "cache", "clear")
	require.NoError(t, err)
	_, err = runCommand(t, work, "results", "clear")
	require.NoError(t, err)

	_, err = runCommand(t, work, "results", "migrate", "--target-version", "2")
	require.NoError(t, err)

	// Opening the store applies the remaining migrations
	_, err = runCommand(t, work, "analyze")
	require.NoError(t, err)

	out, err := runCommand(t, work, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: true")
	assert.Contains(t, out, "Total Entries: 1")

	out, err = runCommand(t, work, "results", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 1")

	_, err = runCommand(t, work, "results", "migrate", "--target-version", "0")
	require.NoError(t, err)
}
