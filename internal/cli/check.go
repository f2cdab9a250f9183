package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dmarchante/relvet/internal/cache"
	"github.com/dmarchante/relvet/internal/checkpoint"
	"github.com/dmarchante/relvet/internal/ingest"
	"github.com/dmarchante/relvet/internal/logging"
	"github.com/dmarchante/relvet/internal/model"
	"github.com/dmarchante/relvet/internal/pipeline"
	"github.com/dmarchante/relvet/internal/verify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	provider       string
	modelName      string
	baseURL        string
	requestTimeout time.Duration
	batchSize      int
	maxPerRun      int
	workers        int
	checkpointPath string
	resetFirst     bool
	outputDir      string
	noMarkdown     bool
	showPreview    bool
	noCache        bool
	rps            float64
	logLevel       string
	noLogFile      bool
	noHeader       bool
	keepGarbage    bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Verify relationship records from one or more input files",
	Long: `Check loads relationship records from CSV, JSON or TXT files and
verifies each one against the configured language model. Records
already verified in a previous run (per the checkpoint file) are
skipped, and progress is saved after every batch.

Example:
  relvet check relations.csv
  relvet check relations.csv --model llama3.1:8b --batch 16
  relvet check part1.csv part2.json --max 500 --show
  relvet check relations.txt --provider openai --model gpt-4o-mini`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Verifier flags
	checkCmd.Flags().StringVar(&provider, "provider", "", "verification provider (ollama, openai)")
	checkCmd.Flags().StringVar(&modelName, "model", "", "model name (e.g. deepseek-r1:8b, gpt-4o-mini)")
	checkCmd.Flags().StringVar(&baseURL, "base-url", "", "custom provider endpoint URL")
	checkCmd.Flags().DurationVar(&requestTimeout, "timeout", 0, "per-request timeout")

	// Batch flags
	checkCmd.Flags().IntVar(&batchSize, "batch", 0, "records per checkpoint save")
	checkCmd.Flags().IntVar(&maxPerRun, "max", 0, "max records to verify this run (negative = unlimited)")
	checkCmd.Flags().IntVar(&workers, "workers", 0, "concurrent verification calls per batch")
	checkCmd.Flags().Float64Var(&rps, "rps", 0, "requests per second to the provider (0 = unlimited)")

	// Checkpoint flags
	checkCmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "checkpoint file path")
	checkCmd.Flags().BoolVar(&resetFirst, "reset", false, "discard the checkpoint before running")

	// Input flags
	checkCmd.Flags().BoolVar(&noHeader, "no-header", false, "input files have no header row")
	checkCmd.Flags().BoolVar(&keepGarbage, "keep-garbage", false, "keep rows with missing entity or related element")

	// Output flags
	checkCmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for report artifacts")
	checkCmd.Flags().BoolVar(&noMarkdown, "no-md", false, "skip the Markdown report")
	checkCmd.Flags().BoolVar(&showPreview, "show", false, "print the first invalid relationships to stdout")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the duplicate-content outcome cache")
	checkCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, none)")
	checkCmd.Flags().BoolVar(&noLogFile, "no-log-file", false, "log to console only")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	prov, err := verify.NewProvider(cfg.Verifier)
	if err != nil {
		return err
	}

	var outcomes cache.Cache
	if cfg.Cache.Enabled {
		outcomes = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
	}

	client := verify.NewClient(cfg, prov, outcomes, log)
	if err := client.HealthCheck(ctx); err != nil {
		return err
	}

	opts := ingest.DefaultOptions()
	opts.HasHeader = !noHeader
	opts.RemoveGarbage = !keepGarbage
	records, err := ingest.LoadFiles(ctx, opts, log, args...)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no records found in input files")
	}

	store := checkpoint.NewFileStore(cfg.Checkpoint.Path, log)
	if resetFirst {
		if _, err := store.Reset(); err != nil {
			return fmt.Errorf("reset checkpoint: %w", err)
		}
		log.Info().Str("path", cfg.Checkpoint.Path).Msg("checkpoint reset")
	}

	proc := pipeline.NewProcessor(cfg, store, client, log)
	report, runErr := proc.Run(ctx, records)

	// Render whatever we have even when the run aborted mid-way: partial
	// findings are still findings.
	renderer := pipeline.NewRenderer(cfg.Output.Dir)
	name := pipeline.BaseName(report)

	jsonPath, err := renderer.RenderJSON(report, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Report written: %s\n", jsonPath)

	if cfg.Output.Markdown {
		mdPath, err := renderer.RenderMarkdown(report, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Report written: %s\n", mdPath)
	}

	renderer.RenderSummary(report, os.Stderr)
	if cfg.Output.ShowPreview {
		renderer.RenderPreview(report, os.Stdout, 5)
	}

	return runErr
}

// buildConfig layers defaults, config file, environment and flags in
// ascending priority.
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Verifier.Provider = provider
	}
	if flags.Changed("model") {
		cfg.Verifier.Model = modelName
	}
	if flags.Changed("base-url") {
		cfg.Verifier.BaseURL = baseURL
	}
	if flags.Changed("timeout") {
		cfg.Verifier.Timeout = requestTimeout
	}
	if flags.Changed("batch") {
		cfg.Batch.Size = batchSize
	}
	if flags.Changed("max") {
		cfg.Batch.MaxPerRun = maxPerRun
	}
	if flags.Changed("workers") {
		cfg.Batch.Workers = workers
	}
	if flags.Changed("rps") {
		cfg.RateLimit.RequestsPerSecond = rps
	}
	if flags.Changed("checkpoint") {
		cfg.Checkpoint.Path = checkpointPath
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = outputDir
	}
	if flags.Changed("no-md") {
		cfg.Output.Markdown = !noMarkdown
	}
	if flags.Changed("show") {
		cfg.Output.ShowPreview = showPreview
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("no-log-file") {
		cfg.Logging.ToFile = !noLogFile
	}
	if verbose {
		cfg.Output.Verbose = true
		if cfg.Logging.Level == "info" {
			cfg.Logging.Level = "debug"
		}
	}

	// Credentials come from the environment, never from config files.
	switch cfg.Verifier.Provider {
	case "openai":
		cfg.Verifier.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Verifier.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "", "ollama":
		if cfg.Verifier.BaseURL == "" {
			cfg.Verifier.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}

	return cfg, nil
}
