// Package pipeline provides the run orchestration for dataglide:
// extract, transform, and load executed sequentially for one run.
//
// A run walks the states Idle -> Extracting -> Transforming -> Loading
// -> Done, with Failed terminal from any working state. There is no
// resumption from Failed; a new run starts fresh from Idle. Runs are
// independent; concurrent runs race only on a shared output path, so
// concurrent callers must supply distinct paths.
package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dataglide/dataglide/pkg/config"
	"github.com/dataglide/dataglide/pkg/errors"
	"github.com/dataglide/dataglide/pkg/extract"
	"github.com/dataglide/dataglide/pkg/load"
	"github.com/dataglide/dataglide/pkg/logger"
	"github.com/dataglide/dataglide/pkg/metrics"
	"github.com/dataglide/dataglide/pkg/transform"
)

// State represents the pipeline run state.
type State string

const (
	// StateIdle is the state before a run starts
	StateIdle State = "idle"
	// StateExtracting is the state while fetching from the source
	StateExtracting State = "extracting"
	// StateTransforming is the state while building the table
	StateTransforming State = "transforming"
	// StateLoading is the state while writing the output file
	StateLoading State = "loading"
	// StateDone is the terminal state of a successful run
	StateDone State = "done"
	// StateFailed is the terminal state of a failed run
	StateFailed State = "failed"
)

// Pipeline orchestrates one extract-transform-load sequence per Run call.
type Pipeline struct {
	config      *config.PipelineConfig
	extractor   *extract.Extractor
	transformer *transform.Transformer
	destination *load.CSVDestination
	logger      *zap.Logger

	mu    sync.Mutex
	state State
}

// New creates a pipeline from a validated configuration.
func New(cfg *config.PipelineConfig, log *zap.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid pipeline configuration")
	}
	if log == nil {
		log = logger.Get()
	}

	log = log.With(zap.String("source", cfg.SourceURL))

	return &Pipeline{
		config:      cfg,
		extractor:   extract.NewExtractor(cfg, log),
		transformer: transform.NewTransformer(cfg, log),
		destination: load.NewCSVDestination(cfg, log),
		logger:      log,
		state:       StateIdle,
	}, nil
}

// NewFromSource creates a pipeline with default configuration for a
// source URL and an output directory. This is the embeddable entry
// point for host code that does not use the CLI.
func NewFromSource(sourceURL, outputDir string) (*Pipeline, error) {
	return New(config.NewPipelineConfig(sourceURL, outputDir), nil)
}

// Run executes the pipeline and returns the absolute output path. The
// output filename comes from the configuration, or is derived from the
// run timestamp when unset. Any stage failure is logged and propagated
// unchanged; no output file is written on failure.
func (p *Pipeline) Run(ctx context.Context) (string, error) {
	return p.RunFile(ctx, p.config.OutputFile)
}

// RunFile executes the pipeline writing to the given filename inside
// the configured output directory. An empty filename derives a
// timestamped one.
func (p *Pipeline) RunFile(ctx context.Context, filename string) (string, error) {
	runTimer := metrics.NewTimer()
	start := time.Now()
	p.setState(StateIdle)
	p.logger.Info("starting pipeline run",
		zap.String("output_dir", p.config.OutputDir))

	if filename == "" {
		filename = p.config.DefaultOutputFile(start)
	}

	path, err := filepath.Abs(filepath.Join(p.config.OutputDir, filename))
	if err != nil {
		p.fail(StateIdle, err)
		return "", errors.Wrap(err, errors.ErrorTypeIO, "failed to resolve output path")
	}

	p.setState(StateExtracting)
	stageTimer := metrics.NewTimer()
	records, err := p.extractor.Extract(ctx)
	if err != nil {
		p.fail(StateExtracting, err)
		return "", err
	}
	metrics.RecordsExtracted.Add(float64(len(records)))
	p.logger.Info("extraction completed",
		zap.Int("record_count", len(records)),
		zap.Duration("duration", stageTimer.Stop()))

	p.setState(StateTransforming)
	stageTimer = metrics.NewTimer()
	table := p.transformer.Transform(records)
	metrics.RowsWritten.Add(float64(table.RowCount()))
	p.logger.Info("transformation completed",
		zap.Int("row_count", table.RowCount()),
		zap.Int("column_count", table.ColumnCount()),
		zap.Duration("duration", stageTimer.Stop()))

	p.setState(StateLoading)
	stageTimer = metrics.NewTimer()
	if err := p.destination.Load(table, path); err != nil {
		p.fail(StateLoading, err)
		return "", err
	}
	p.logger.Info("load completed", zap.Duration("duration", stageTimer.Stop()))

	p.setState(StateDone)
	duration := runTimer.Stop()
	metrics.ObserveRun(duration)
	p.logger.Info("pipeline run completed",
		zap.String("output_path", path),
		zap.Int("rows", table.RowCount()),
		zap.Duration("duration", duration))

	return path, nil
}

// State returns the current run state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Close releases resources held by the pipeline stages.
func (p *Pipeline) Close() error {
	p.logger.Debug("closing pipeline",
		zap.Int64("records_extracted", p.extractor.RecordsRead()))
	return p.extractor.Close()
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Pipeline) fail(stage State, err error) {
	p.setState(StateFailed)
	metrics.StageErrors.WithLabelValues(string(stage)).Inc()
	p.logger.Error("pipeline run failed",
		zap.String("stage", string(stage)),
		zap.String("error_type", string(errors.TypeOf(err))),
		zap.Error(err))
}
