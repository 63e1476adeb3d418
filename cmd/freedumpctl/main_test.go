package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"help"}, &out, &errOut)
	require.Equal(t, 0, code)
	require.Contains(t, out.String(), "freedumpctl")
}

func TestRunUnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"bogus"}, &out, &errOut)
	require.Equal(t, 2, code)
	require.Contains(t, errOut.String(), "unknown command")
}

func TestRunBench(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"bench", "--buckets=8", "1000"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	require.Contains(t, out.String(), "alloc/free pairs")
}

func TestRunStats(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.json")

	var out, errOut bytes.Buffer
	code := run([]string{"stats", "--buckets=4", "--stats-out", path}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snapshot statsSnapshot
	require.NoError(t, json.Unmarshal(data, &snapshot))
	require.Len(t, snapshot.Buckets, 4)
	for _, b := range snapshot.Buckets {
		require.Equal(t, 1, b.Occupancy, "bucket %d", b.Bucket)
	}
}

func TestRunStatsRequiresOutPath(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"stats"}, &out, &errOut)
	require.Equal(t, 2, code)
}

func TestLoadConfigFileStripsComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{
  // bucket count
  "buckets": 12,
}`), 0o644))

	cfg, err := loadConfigFile(DefaultConfig(), path)
	require.NoError(t, err)
	require.Equal(t, 12, cfg.Buckets)
}

func TestLoadConfigFileMissingIsNotError(t *testing.T) {
	cfg, err := loadConfigFile(DefaultConfig(), filepath.Join(t.TempDir(), "nope.jsonc"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFileRejectsOutOfRangeBuckets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"buckets": 0}`), 0o644))

	_, err := loadConfigFile(DefaultConfig(), path)
	require.Error(t, err)
}
