package pipeline

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataglide/dataglide/pkg/config"
	"github.com/dataglide/dataglide/pkg/errors"
	"github.com/dataglide/dataglide/pkg/testutil"
	"github.com/dataglide/dataglide/pkg/transform"
)

func newTestPipeline(t *testing.T, url string) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.NewPipelineConfig(url, dir)
	cfg.Placeholder = "N/A"

	p, err := New(cfg, testutil.TestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p, dir
}

func TestRunEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"name":"a"},{"id":1,"name":"a"},{"id":2}]`))
	}))
	defer server.Close()

	p, dir := newTestPipeline(t, server.URL)

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	path, err := p.RunFile(ctx, "items.csv")
	require.NoError(t, err)
	assert.Equal(t, StateDone, p.State())
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, filepath.Join(dir, "items.csv"), path)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	// Header plus two data rows: duplicates collapsed, missing name filled.
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "name", transform.ColumnExtractedAt, transform.ColumnSourceURL}, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "a", rows[1][1])
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, "N/A", rows[2][1])
	assert.Equal(t, server.URL, rows[1][3])
	// The extraction timestamp is taken once per run.
	assert.Equal(t, rows[1][2], rows[2][2])
}

func TestRunDerivesTimestampedFilename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	defer server.Close()

	p, _ := newTestPipeline(t, server.URL)

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	path, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `data_extract_\d{8}_\d{6}\.csv$`, path)
}

func TestRunEmptyArrayWritesHeaderOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	p, _ := newTestPipeline(t, server.URL)

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	path, err := p.RunFile(ctx, "empty.csv")
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{transform.ColumnExtractedAt, transform.ColumnSourceURL}, rows[0])
}

func TestRunNetworkFailureWritesNoFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	p, dir := newTestPipeline(t, server.URL)

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	_, err := p.RunFile(ctx, "never.csv")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
	assert.Equal(t, StateFailed, p.State())

	_, statErr := os.Stat(filepath.Join(dir, "never.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunParseFailureWritesNoFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"truncated":`))
	}))
	defer server.Close()

	p, dir := newTestPipeline(t, server.URL)

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	_, err := p.RunFile(ctx, "never.csv")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
	assert.Equal(t, StateFailed, p.State())

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunRepeatedRunsStartFresh(t *testing.T) {
	failing := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	defer server.Close()

	p, _ := newTestPipeline(t, server.URL)

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	_, err := p.RunFile(ctx, "first.csv")
	require.Error(t, err)
	assert.Equal(t, StateFailed, p.State())

	failing = false
	path, err := p.RunFile(ctx, "second.csv")
	require.NoError(t, err)
	assert.Equal(t, StateDone, p.State())
	assert.FileExists(t, path)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(config.NewPipelineConfig("", "data"), testutil.TestLogger(t))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestNewFromSource(t *testing.T) {
	p, err := NewFromSource("https://api.example.com/items", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, StateIdle, p.State())
	_ = p.Close()
}
