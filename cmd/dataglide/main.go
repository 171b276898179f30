package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dataglide/dataglide/internal/pipeline"
	"github.com/dataglide/dataglide/pkg/config"
	"github.com/dataglide/dataglide/pkg/logger"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	root := &cobra.Command{
		Use:   "dataglide",
		Short: "dataglide - REST API to CSV extraction pipeline",
		Long: `dataglide fetches JSON from a REST endpoint, flattens it into tabular
form, removes duplicate rows, fills missing values, and writes the result
to a CSV file.`,
	}

	// Version command
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dataglide v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	// Main run command
	var (
		configFile  string
		sourceURL   string
		outputDir   string
		outputFile  string
		placeholder string
		compression string
		logLevel    string
		timeout     time.Duration
		headers     []string
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch from the source URL and write a CSV file",
		Long: `Run the extraction pipeline against the configured source URL.

Example:
  dataglide run --url https://jsonplaceholder.typicode.com/posts --output-dir data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, configFile, sourceURL, outputDir, outputFile,
				placeholder, compression, logLevel, timeout, headers)
			if err != nil {
				return err
			}
			return runPipeline(cmd.Context(), cfg)
		},
	}

	runCmd.Flags().StringVar(&configFile, "config", "", "Path to a YAML configuration file (optional; flags override it)")
	runCmd.Flags().StringVarP(&sourceURL, "url", "u", "", "Source URL to fetch JSON from (required unless set in --config)")
	runCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "data", "Directory the CSV file is written to")
	runCmd.Flags().StringVarP(&outputFile, "output-file", "f", "", "Output filename (default derived from the run timestamp)")
	runCmd.Flags().StringVar(&placeholder, "placeholder", "", "Fill value for missing cells")
	runCmd.Flags().StringVar(&compression, "compression", config.CompressionNone, "Output compression (none, gzip, zstd)")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP request timeout")
	runCmd.Flags().StringArrayVar(&headers, "header", nil, "Request header as key=value (repeatable)")

	root.AddCommand(runCmd)

	// Init command
	var initURL string
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter configuration file",
		Long: `Write a YAML configuration file pre-filled with defaults, ready to
edit and pass to "dataglide run --config".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "dataglide.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", path)
			}
			cfg := config.NewPipelineConfig(initURL, "data")
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&initURL, "url", "u", "", "Source URL to pre-fill in the generated file")
	root.AddCommand(initCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildConfig assembles the pipeline configuration from an optional
// YAML file and command line flags. Flags that were explicitly set
// override file values.
func buildConfig(cmd *cobra.Command, configFile, sourceURL, outputDir, outputFile,
	placeholder, compression, logLevel string, timeout time.Duration, headers []string) (*config.PipelineConfig, error) {

	var cfg *config.PipelineConfig
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("configuration error: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.NewPipelineConfig(sourceURL, outputDir)
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.SourceURL = sourceURL
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("output-file") {
		cfg.OutputFile = outputFile
	}
	if flags.Changed("placeholder") {
		cfg.Placeholder = placeholder
	}
	if flags.Changed("compression") {
		cfg.Compression = compression
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}

	for _, h := range headers {
		key, value, ok := strings.Cut(h, "=")
		if !ok {
			return nil, fmt.Errorf("invalid header %q, expected key=value", h)
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		cfg.Headers[key] = value
	}

	return cfg, nil
}

// runPipeline executes one pipeline run with the given configuration
func runPipeline(ctx context.Context, cfg *config.PipelineConfig) error {
	if err := logger.Init(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: "console",
	}); err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if ctx == nil {
		ctx = context.Background()
	}

	runID := fmt.Sprintf("run-%d", time.Now().UnixNano())
	ctx = context.WithValue(ctx, logger.RunIDKey, runID)

	p, err := pipeline.New(cfg, logger.WithContext(ctx))
	if err != nil {
		return err
	}
	defer p.Close() //nolint:errcheck

	path, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Data successfully saved to: %s\n", path)
	return nil
}
