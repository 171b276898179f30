// Package extract implements the extraction stage: a single blocking
// GET against the configured endpoint, decoded into a sequence of
// records.
package extract

import (
	"context"
	"net/http"
	"sync/atomic"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/dataglide/dataglide/pkg/clients"
	"github.com/dataglide/dataglide/pkg/config"
	"github.com/dataglide/dataglide/pkg/errors"
	"github.com/dataglide/dataglide/pkg/models"
)

// Extractor fetches JSON from a REST endpoint and decodes it into
// records. One call, one response; no retries, no pagination.
type Extractor struct {
	config      *config.PipelineConfig
	client      *clients.HTTPClient
	logger      *zap.Logger
	recordsRead int64
}

// NewExtractor creates an extractor for the configured source URL.
func NewExtractor(cfg *config.PipelineConfig, logger *zap.Logger) *Extractor {
	httpCfg := clients.DefaultHTTPConfig()
	if cfg.Timeout > 0 {
		httpCfg.RequestTimeout = cfg.Timeout
	}

	return &Extractor{
		config: cfg,
		client: clients.NewHTTPClient(httpCfg, logger),
		logger: logger.With(zap.String("component", "extractor")),
	}
}

// Extract issues the GET request and returns the decoded records.
// A JSON array of objects yields one record per element; a bare object
// is wrapped into a one-element sequence; any other JSON shape fails.
func (e *Extractor) Extract(ctx context.Context) ([]models.Record, error) {
	e.logger.Info("fetching data", zap.String("url", e.config.SourceURL))

	resp, err := e.client.Get(ctx, e.config.SourceURL, e.config.Headers)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeNetwork, "request failed").
			WithDetail("url", e.config.SourceURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.Newf(errors.ErrorTypeNetwork, "unexpected status %d", resp.StatusCode).
			WithDetail("status_code", resp.StatusCode).
			WithDetail("url", e.config.SourceURL)
	}

	decoder := gojson.NewDecoder(resp.Body)
	decoder.UseNumber()

	var payload interface{}
	if err := decoder.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "malformed JSON response").
			WithDetail("url", e.config.SourceURL)
	}

	records, err := shapeRecords(payload)
	if err != nil {
		return nil, err
	}

	atomic.AddInt64(&e.recordsRead, int64(len(records)))
	e.logger.Info("fetch completed",
		zap.Int("record_count", len(records)),
		zap.Int("status", resp.StatusCode))

	return records, nil
}

// shapeRecords normalizes the decoded payload into a record sequence.
func shapeRecords(payload interface{}) ([]models.Record, error) {
	switch v := payload.(type) {
	case []interface{}:
		records := make([]models.Record, 0, len(v))
		for i, elem := range v {
			obj, ok := elem.(map[string]interface{})
			if !ok {
				return nil, errors.Newf(errors.ErrorTypeShape,
					"array element %d is not a JSON object", i)
			}
			records = append(records, models.Record(obj))
		}
		return records, nil
	case map[string]interface{}:
		return []models.Record{models.Record(v)}, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeShape,
			"expected JSON array or object, got %T", payload)
	}
}

// RecordsRead returns the total number of records extracted by this
// extractor across runs.
func (e *Extractor) RecordsRead() int64 {
	return atomic.LoadInt64(&e.recordsRead)
}

// Close releases the underlying HTTP client resources.
func (e *Extractor) Close() error {
	return e.client.Close()
}
