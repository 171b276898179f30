// Package config provides the configuration system for dataglide.
// It defines a single PipelineConfig structure captured once at
// construction and treated as immutable for the lifetime of a run.
//
// Example usage:
//
//	cfg := config.NewPipelineConfig("https://api.example.com/items", "data")
//	cfg.Placeholder = "N/A"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Compression algorithms supported for the output file.
const (
	CompressionNone = "none"
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
)

// PipelineConfig holds everything a pipeline run needs. It is captured
// at construction and must not be mutated once a run has started.
type PipelineConfig struct {
	// SourceURL is the REST endpoint to fetch JSON from
	SourceURL string `yaml:"source_url" json:"source_url"`

	// OutputDir is the directory the CSV file is written to,
	// created recursively if absent
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// OutputFile is the output filename; empty derives a
	// timestamped name at run time
	OutputFile string `yaml:"output_file" json:"output_file"`

	// Placeholder fills cells for keys missing from a record
	Placeholder string `yaml:"placeholder" json:"placeholder"`

	// Headers are sent verbatim with the GET request
	Headers map[string]string `yaml:"headers" json:"headers"`

	// Timeout bounds the HTTP request
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Compression selects output compression (none, gzip, zstd)
	Compression string `yaml:"compression" json:"compression"`

	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// NewPipelineConfig creates a PipelineConfig with defaults for the
// given source URL and output directory.
func NewPipelineConfig(sourceURL, outputDir string) *PipelineConfig {
	if outputDir == "" {
		outputDir = "data"
	}
	return &PipelineConfig{
		SourceURL:   sourceURL,
		OutputDir:   outputDir,
		Placeholder: "",
		Headers:     make(map[string]string),
		Timeout:     30 * time.Second,
		Compression: CompressionNone,
		LogLevel:    "info",
	}
}

// DefaultOutputFile derives a timestamped filename for runs that did
// not configure one.
func (c *PipelineConfig) DefaultOutputFile(now time.Time) string {
	name := fmt.Sprintf("data_extract_%s.csv", now.Format("20060102_150405"))
	switch c.Compression {
	case CompressionGzip:
		return name + ".gz"
	case CompressionZstd:
		return name + ".zst"
	}
	return name
}

// Validate validates the configuration for correctness.
// Connectors should call this before starting a run to catch errors early.
func (c *PipelineConfig) Validate() error {
	if c.SourceURL == "" {
		return fmt.Errorf("source_url is required")
	}
	u, err := url.Parse(c.SourceURL)
	if err != nil {
		return fmt.Errorf("invalid source_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("source_url must be http or https, got %q", u.Scheme)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	switch c.Compression {
	case "", CompressionNone, CompressionGzip, CompressionZstd:
	default:
		return fmt.Errorf("unsupported compression %q", c.Compression)
	}
	return nil
}
