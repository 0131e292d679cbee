package converter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haukened/rr-ruleset/internal/ruleset/common/clock"
	"github.com/haukened/rr-ruleset/internal/ruleset/common/log"
	"github.com/haukened/rr-ruleset/internal/ruleset/domain"
	"github.com/haukened/rr-ruleset/internal/ruleset/parsers"
	"github.com/haukened/rr-ruleset/internal/ruleset/services/summary"
)

// Converter runs the fetch -> extract -> build -> write pipeline once per Run.
type Converter struct {
	sourceURL  string
	output     string
	clock      clock.Clock
	fetcher    Fetcher
	logger     log.Logger
	summarizer Summarizer
	writer     Writer
}

// Options wires a Converter. SourceURL, Output, Fetcher and Writer are required.
type Options struct {
	SourceURL string
	Output    string
	Fetcher   Fetcher
	Writer    Writer
	// Summarizer is optional; nil skips the statistics report.
	Summarizer Summarizer
	// Clock defaults to the real clock.
	Clock clock.Clock
	// Logger defaults to a no-op logger.
	Logger log.Logger
}

// Report describes a completed run.
type Report struct {
	SourceURL string
	Output    string
	Bytes     int
	Document  domain.RuleDocument
	Warnings  []domain.ParseWarning
	Stats     *summary.Stats
	Elapsed   time.Duration
}

// New validates opts and returns a Converter.
func New(opts Options) (*Converter, error) {
	if opts.SourceURL == "" {
		return nil, errors.New("source URL is required")
	}
	if opts.Output == "" {
		return nil, errors.New("output path is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if opts.Writer == nil {
		return nil, errors.New("writer is required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &Converter{
		sourceURL:  opts.SourceURL,
		output:     opts.Output,
		clock:      opts.Clock,
		fetcher:    opts.Fetcher,
		logger:     opts.Logger,
		summarizer: opts.Summarizer,
		writer:     opts.Writer,
	}, nil
}

// Run executes one conversion. A fetch failure returns before anything is
// written, so an existing output file is left untouched. Unparseable lines are
// logged and skipped; they never fail the run.
func (c *Converter) Run(ctx context.Context) (Report, error) {
	start := c.clock.Now()
	report := Report{SourceURL: c.sourceURL, Output: c.output}

	// 1) fetch
	c.logger.Info(map[string]any{"url": c.sourceURL}, "Fetching source list")
	text, err := c.fetcher.Fetch(ctx, c.sourceURL)
	if err != nil {
		c.logger.Error(map[string]any{"url": c.sourceURL, "error": err}, "Failed to fetch source list")
		return report, fmt.Errorf("fetch failed: %w", err)
	}
	report.Bytes = len(text)
	c.logger.Info(map[string]any{"bytes": len(text)}, "Source list fetched, converting")

	// 2) extract, then report skipped lines
	results := parsers.ExtractHosts(text, c.logger)
	hosts, warnings := parsers.Partition(results)
	for _, w := range warnings {
		c.logWarning(w)
	}
	report.Warnings = warnings

	// 3) build
	report.Document = domain.NewRuleDocument(hosts)
	c.logger.Info(map[string]any{
		"domains":  len(hosts),
		"warnings": len(warnings),
	}, "Conversion complete, saving")

	// 4) write
	if err := c.writer.Write(report.Document, c.output); err != nil {
		c.logger.Error(map[string]any{"path": c.output, "error": err}, "Failed to save rule set")
		return report, fmt.Errorf("write failed: %w", err)
	}
	c.logger.Info(map[string]any{"path": c.output, "domains": len(hosts)}, "Rule set saved")

	if c.summarizer != nil {
		st := c.summarizer.Summarize(results)
		report.Stats = &st
	}
	report.Elapsed = c.clock.Now().Sub(start)

	if report.Stats != nil {
		fields := report.Stats.Fields()
		fields["elapsed"] = report.Elapsed.String()
		c.logger.Info(fields, "Run summary")
	}
	return report, nil
}

// logWarning reports a skipped line: lines without an authority are warnings,
// parser failures are errors.
func (c *Converter) logWarning(w domain.ParseWarning) {
	fields := map[string]any{"line": w.Line, "url": w.Raw}
	switch w.Kind {
	case domain.WarningMalformed:
		fields["error"] = w.Err
		c.logger.Error(fields, "Error parsing URL, line skipped")
	default:
		c.logger.Warn(fields, "Could not extract domain from URL, line skipped")
	}
}
