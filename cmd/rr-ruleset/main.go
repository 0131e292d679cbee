package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haukened/rr-ruleset/internal/ruleset/common/clock"
	"github.com/haukened/rr-ruleset/internal/ruleset/common/log"
	"github.com/haukened/rr-ruleset/internal/ruleset/config"
	"github.com/haukened/rr-ruleset/internal/ruleset/gateways/fetcher"
	"github.com/haukened/rr-ruleset/internal/ruleset/repos/apexcache"
	"github.com/haukened/rr-ruleset/internal/ruleset/repos/rulefile"
	"github.com/haukened/rr-ruleset/internal/ruleset/services/converter"
	"github.com/haukened/rr-ruleset/internal/ruleset/services/summary"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "rr-ruleset"
)

// Application holds all the components of a conversion run
type Application struct {
	config    *config.AppConfig
	converter *converter.Converter
}

// rootFlags holds the command-line flags of the root command.
type rootFlags struct {
	configFile string
	envFile    string
	url        string
	output     string
	logLevel   string
	logFormat  string
}

// reportedError marks a failure that run has already written to stderr.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := execute(ctx, newRootCommand())
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// execute runs cmd and prints usage failures (unknown flags, bad values,
// extra arguments) that cobra itself was told to keep quiet about.
func execute(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	var reported reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Run '%s --help' for usage.\n", cmd.CommandPath())
	}
	return err
}

// newRootCommand builds the cobra command tree.
func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Convert a remote URL list into a domain rule set",
		Long: `rr-ruleset fetches a plain-text list of URLs (one per line), extracts the
hostname of every line and writes them as a version 3 rule-set JSON document:

  {"version": 3, "rules": [{"domain": ["host1", "host2"]}]}

Settings come from defaults, an optional config file, a .env file,
RULESET_* environment variables and flags, in that order.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configFile, "config", os.Getenv(config.EnvPrefix+"CONFIG"), "config file (yaml, json or toml)")
	f.StringVar(&flags.envFile, "env-file", os.Getenv(config.EnvPrefix+"ENV_FILE"), "dotenv file to load (default .env when present)")
	f.StringVarP(&flags.url, "url", "u", "", "source URL of the plain-text list")
	f.StringVarP(&flags.output, "output", "o", "", "output JSON file path")
	f.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	f.StringVar(&flags.logFormat, "log-format", "", "log format: console or json")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, version)
		},
	})

	return cmd
}

// overrides returns the config keys of the flags that were explicitly set.
func (f *rootFlags) overrides(cmd *cobra.Command) map[string]any {
	out := make(map[string]any)
	set := func(flag, key, value string) {
		if cmd.Flags().Changed(flag) {
			out[key] = value
		}
	}
	set("url", "source_url", f.url)
	set("output", "output", f.output)
	set("log-level", "log_level", f.logLevel)
	set("log-format", "log_format", f.logFormat)
	return out
}

// run loads configuration, configures logging and executes one conversion.
// Any returned error maps to a non-zero exit status.
func run(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: flags.configFile,
		EnvFile:    flags.envFile,
		Overrides:  flags.overrides(cmd),
	})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Configuration error: %v\n", err)
		return reportedError{err}
	}

	if err := log.Configure(cfg.Env, cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Logging configuration error: %v\n", err)
		return reportedError{err}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Debug(map[string]any{
		"version":    version,
		"env":        cfg.Env,
		"log_level":  cfg.LogLevel,
		"source_url": cfg.SourceURL,
		"output":     cfg.Output,
	}, "Starting rr-ruleset")

	app, err := buildApplication(cfg)
	if err != nil {
		log.Error(map[string]any{"error": err}, "Failed to build application")
		return reportedError{err}
	}

	if err := app.Run(cmd.Context()); err != nil {
		return reportedError{err}
	}
	return nil
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	logger := log.GetLogger()

	var summarizer converter.Summarizer
	if cfg.Summary {
		cache, err := apexcache.New(cfg.ApexCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create apex cache: %w", err)
		}
		summarizer = summary.New(cache)
	}

	conv, err := converter.New(converter.Options{
		SourceURL:  cfg.SourceURL,
		Output:     cfg.Output,
		Fetcher:    fetcher.New(fetcher.Options{Logger: logger}),
		Writer:     rulefile.FileWriter{},
		Summarizer: summarizer,
		Clock:      clock.RealClock{},
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build converter: %w", err)
	}

	return &Application{config: cfg, converter: conv}, nil
}

// Run performs a single conversion. Failures have already been logged by the converter.
func (app *Application) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_, err := app.converter.Run(ctx)
	return err
}
