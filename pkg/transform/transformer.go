// Package transform implements the transformation stage: records are
// flattened into a table with a shared column set, exact-duplicate
// rows are dropped, and run metadata columns are appended.
package transform

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dataglide/dataglide/pkg/config"
	"github.com/dataglide/dataglide/pkg/models"
)

// Metadata columns appended to every table, always last and in this order.
const (
	ColumnExtractedAt = "extracted_at"
	ColumnSourceURL   = "source_url"
)

// Transformer builds a Table from a record sequence.
type Transformer struct {
	config *config.PipelineConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewTransformer creates a transformer using the configured placeholder.
func NewTransformer(cfg *config.PipelineConfig, logger *zap.Logger) *Transformer {
	return &Transformer{
		config: cfg,
		logger: logger.With(zap.String("component", "transformer")),
		now:    time.Now,
	}
}

// Transform converts records into a table. Missing cells are filled
// with the placeholder before duplicate comparison; duplicates are
// removed stably with the first occurrence kept. The extraction
// timestamp is taken once and is identical for every row, as is the
// source URL tag. An empty input yields a zero-row table with the
// metadata columns only.
func (t *Transformer) Transform(records []models.Record) *models.Table {
	extractedAt := t.now().UTC().Format(time.RFC3339)

	columns := discoverColumns(records)
	table := models.NewTable(append(append([]string{}, columns...), ColumnExtractedAt, ColumnSourceURL))

	seen := make(map[string]struct{}, len(records))
	duplicates := 0

	for _, record := range records {
		cells := make([]string, 0, len(columns)+2)
		for _, col := range columns {
			value, ok := record[col]
			if !ok || value == nil {
				cells = append(cells, t.config.Placeholder)
				continue
			}
			cells = append(cells, models.ValueToString(value))
		}

		key := rowKey(cells)
		if _, dup := seen[key]; dup {
			duplicates++
			continue
		}
		seen[key] = struct{}{}

		cells = append(cells, extractedAt, t.config.SourceURL)
		table.AppendRow(cells)
	}

	if duplicates > 0 {
		t.logger.Info("removed duplicate records", zap.Int("duplicates", duplicates))
	}
	t.logger.Info("transform completed",
		zap.Int("rows", table.RowCount()),
		zap.Int("columns", table.ColumnCount()))

	return table
}

// rowKey builds an injective duplicate-detection key from rendered
// cells. Cells are quoted so separator bytes inside a value stay
// distinguishable from cell boundaries.
func rowKey(cells []string) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(cell))
	}
	return b.String()
}

// discoverColumns returns the union of record keys in discovery order:
// records are visited in sequence and each record's unseen keys are
// appended. JSON decoding does not preserve object key order, so keys
// within a single record are added alphabetically.
func discoverColumns(records []models.Record) []string {
	var columns []string
	known := make(map[string]struct{})

	for _, record := range records {
		keys := record.Keys()
		sort.Strings(keys)
		for _, k := range keys {
			if _, ok := known[k]; ok {
				continue
			}
			known[k] = struct{}{}
			columns = append(columns, k)
		}
	}

	return columns
}
