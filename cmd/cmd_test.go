package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"analyze", "hotspots", "repos", "cache", "results", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	sub, _, err := rootCmd.Find([]string{"results", "migrate"})
	require.NoError(t, err)
	assert.NotNil(t, sub.Flags().Lookup("target-version"))
}

func TestHotspotsRequiresRepo(t *testing.T) {
	assert.Error(t, hotspotsCmd.Args(hotspotsCmd, nil))
	assert.Error(t, hotspotsCmd.Args(hotspotsCmd, []string{"a", "b"}))
	assert.NoError(t, hotspotsCmd.Args(hotspotsCmd, []string{"acme.shop"}))
}

func TestPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	for _, name := range []string{"data-dir", "exclude", "workers", "alpha", "seasonality-test", "results-backend"} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
	assert.NotNil(t, analyzeCmd.Flags().Lookup("pause"))
	assert.NotNil(t, analyzeCmd.Flags().Lookup("fail-fast"))
}

func TestSQLiteFilePath(t *testing.T) {
	assert.Equal(t, "/tmp/custom.db", sqliteFilePath("/tmp/custom.db", "/home/default.db"))
	assert.Equal(t, "/home/default.db", sqliteFilePath("", "/home/default.db"))
}
