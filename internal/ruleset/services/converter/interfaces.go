package converter

import (
	"context"

	"github.com/haukened/rr-ruleset/internal/ruleset/domain"
	"github.com/haukened/rr-ruleset/internal/ruleset/services/summary"
)

// Fetcher retrieves the raw source list.
// Failures are expected to be *domain.FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Writer persists a rule document at path.
// Failures are expected to be *domain.WriteError.
type Writer interface {
	Write(doc domain.RuleDocument, path string) error
}

// Summarizer computes optional run statistics.
type Summarizer interface {
	Summarize(results []domain.ExtractResult) summary.Stats
}
