package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/eugeniobenito/Triathlon-Updates/internal/config"
	"github.com/eugeniobenito/Triathlon-Updates/internal/logger"
	"github.com/eugeniobenito/Triathlon-Updates/internal/notifier"
	"github.com/eugeniobenito/Triathlon-Updates/internal/runner"
	"github.com/eugeniobenito/Triathlon-Updates/internal/scraper"
	"github.com/eugeniobenito/Triathlon-Updates/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitNewRaces = 2
)

// exitError carries a non-error exit code out of a command
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// app holds the state shared by the commands of one invocation
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer

	configFile string
	format     string
	verbose    bool
	toStdout   bool
}

// NewRootCmd creates the root command. Output goes to stdout, logs to stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      config.New(),
		stdout: stdout,
		stderr: stderr,
	}

	cmd := &cobra.Command{
		Use:   "triathlon-updates",
		Short: "Scrape new professional triathlon results",
		Long: `A CLI tool that watches the PTO results index for newly published races.
Each race not yet tracked is scraped into a JSON document with its race info
and per-gender results tables.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runCheck,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (yaml, json or toml)")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable debug logging and detailed output")

	flags.String("base-url", scraper.DefaultBaseURL, "Results site root")
	flags.Int("year", 0, "Season to check (default current year)")
	flags.String("distance", "", "Distance filter passed to the results index")
	flags.String("division", "BOTH", "Division filter passed to the results index")
	flags.String("tracked-file", "tracked_races.json", "JSON list of already tracked races")
	flags.String("output-dir", ".", "Directory race documents are written to")
	flags.String("new-races-file", "new_races.json", "File the newly found races are written to")
	flags.String("user-agent", scraper.UserAgent, "User-Agent sent with every request")
	flags.Duration("timeout", scraper.Timeout, "Per-request timeout")
	flags.Int("workers", 1, "Race pages fetched concurrently")
	flags.Bool("strict-points", false, "Fail a race page whose ptoPts cell is not numeric")
	flags.Bool("update-tracked", false, "Append written races to the tracked file")
	flags.String("notify", "", "Announce new races: dry-run, twitter or telegram")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "json", "Log format: json or console")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file after a run")

	bindings := map[string]string{
		config.KeyBaseURL:       "base-url",
		config.KeyYear:          "year",
		config.KeyDistance:      "distance",
		config.KeyDivision:      "division",
		config.KeyTrackedFile:   "tracked-file",
		config.KeyOutputDir:     "output-dir",
		config.KeyNewRacesFile:  "new-races-file",
		config.KeyUserAgent:     "user-agent",
		config.KeyTimeout:       "timeout",
		config.KeyWorkers:       "workers",
		config.KeyStrictPoints:  "strict-points",
		config.KeyUpdateTracked: "update-tracked",
		config.KeyNotify:        "notify",
		config.KeyLogLevel:      "log-level",
		config.KeyLogFormat:     "log-format",
		config.KeyMetricsFile:   "metrics-file",
	}
	for key, name := range bindings {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}

	cmd.Flags().StringVar(&a.format, "format", "text", "Output format: text or json")

	cmd.AddCommand(a.newCheckCmd(), a.newListCmd(), a.newExtractCmd())

	return cmd
}

func (a *app) newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Scrape races not yet tracked (exit 2 when new races were found)",
		Args:  cobra.NoArgs,
		RunE:  a.runCheck,
	}
	cmd.Flags().StringVar(&a.format, "format", "text", "Output format: text or json")
	return cmd
}

func (a *app) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the races on the results index",
		Args:  cobra.NoArgs,
		RunE:  a.runList,
	}
	cmd.Flags().StringVar(&a.format, "format", "text", "Output format: text or json")
	return cmd
}

func (a *app) newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <url>...",
		Short: "Parse race result pages into documents",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.runExtract,
	}
	cmd.Flags().BoolVar(&a.toStdout, "stdout", false, "Print documents instead of writing files")
	return cmd
}

// setup loads the configuration and installs the default logger
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}

	if a.verbose {
		cfg.LogLevel = string(logger.LevelDebug)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, format, a.stderr))

	a.format = strings.ToLower(a.format)
	if a.format != string(FormatText) && a.format != string(FormatJSON) {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", a.format)
	}

	a.cfg = cfg
	return nil
}

// newRunner wires the scraper, storage and notifier for the loaded configuration
func (a *app) newRunner() (*runner.Runner, error) {
	store, err := storage.New(a.cfg.OutputDir, a.cfg.TrackedFile)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	n, err := notifier.New(a.cfg.Notify, a.stderr)
	if err != nil {
		return nil, fmt.Errorf("initializing notifier: %w", err)
	}

	logger.Debug("Configuration loaded", logger.Fields{
		"index_url":    a.cfg.ResultsIndexURL(),
		"tracked_file": store.TrackedFile(),
		"output_dir":   store.OutputDir(),
		"workers":      a.cfg.Workers,
		"notify":       a.cfg.Notify,
	})

	return runner.New(scraper.New(a.cfg.ScraperConfig()), store, runner.Options{
		IndexURL:      a.cfg.ResultsIndexURL(),
		NewRacesFile:  a.cfg.NewRacesFile,
		Workers:       a.cfg.Workers,
		UpdateTracked: a.cfg.UpdateTracked,
		Notifier:      n,
		Metrics:       logger.DefaultMetrics(),
	}), nil
}

// runCheck is the main command logic
func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	r, err := a.newRunner()
	if err != nil {
		return err
	}

	report, err := r.Check(cmd.Context())
	a.writeMetrics()
	if err != nil {
		return err
	}

	result := &OutputResult{
		CheckedAt: report.CheckedAt,
		IndexURL:  report.IndexURL,
		Listed:    report.Listed,
		NewRaces:  report.NewRaces,
		RaceCount: len(report.NewRaces),
		Written:   report.Written,
		Failed:    report.Failed,
	}
	if err := WriteOutput(a.stdout, result, OutputFormat(a.format), a.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if len(report.NewRaces) > 0 {
		return &exitError{code: ExitNewRaces}
	}
	return nil
}

func (a *app) runList(cmd *cobra.Command, args []string) error {
	r, err := a.newRunner()
	if err != nil {
		return err
	}

	races, err := r.ListRaces(cmd.Context())
	if err != nil {
		return err
	}

	return WriteRaces(a.stdout, races, OutputFormat(a.format))
}

func (a *app) runExtract(cmd *cobra.Command, args []string) error {
	r, err := a.newRunner()
	if err != nil {
		return err
	}

	docs, written := r.Extract(cmd.Context(), args, !a.toStdout)
	a.writeMetrics()

	if len(docs) == 0 {
		return errors.New("no race page could be extracted")
	}

	if a.toStdout {
		return WriteDocuments(a.stdout, docs)
	}

	for _, w := range written {
		fmt.Fprintf(a.stdout, "%s: %s\n", w.Race.Name, w.Path)
	}
	if len(docs) < len(args) {
		return fmt.Errorf("%d of %d race pages failed", len(args)-len(docs), len(args))
	}
	return nil
}

// writeMetrics dumps the run metrics when a metrics file is configured
func (a *app) writeMetrics() {
	logger.Debug("Run metrics", logger.Fields{"metrics": logger.GetMetricsSnapshot()})

	if a.cfg.MetricsFile == "" {
		return
	}
	if err := logger.DefaultMetrics().WriteTextfile(a.cfg.MetricsFile); err != nil {
		logger.Error("Writing metrics file failed", logger.Fields{"path": a.cfg.MetricsFile}, err)
	}
}

// Run executes the CLI with args and returns the process exit code
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	_ = logger.Default().Sync()

	if err == nil {
		return ExitSuccess
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitError
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
