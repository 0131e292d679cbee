// Package summary computes per-run statistics over extracted hosts.
// The statistics are informational; they never alter the rule document.
package summary

import (
	"github.com/haukened/rr-ruleset/internal/ruleset/domain"
	"github.com/haukened/rr-ruleset/internal/ruleset/repos/apexcache"
)

// ApexResolver maps a hostname to its registrable domain and counts memo hits.
type ApexResolver interface {
	Apex(host string) string
	Stats() (hits, misses uint64)
}

// Stats describes one extraction pass.
type Stats struct {
	Results       int // non-empty lines seen
	Hosts         int // hosts emitted, duplicates included
	DistinctHosts int
	DistinctApex  int
	NoHost        int
	Malformed     int
	CacheHits     uint64
	CacheMisses   uint64
}

// Warnings returns the total number of skipped lines.
func (s Stats) Warnings() int { return s.NoHost + s.Malformed }

// Fields renders the stats as structured log fields.
func (s Stats) Fields() map[string]any {
	return map[string]any{
		"results":        s.Results,
		"hosts":          s.Hosts,
		"distinct_hosts": s.DistinctHosts,
		"distinct_apex":  s.DistinctApex,
		"warnings":       s.Warnings(),
		"no_host":        s.NoHost,
		"malformed":      s.Malformed,
		"apex_hits":      s.CacheHits,
		"apex_misses":    s.CacheMisses,
	}
}

// Summarizer folds extract results into Stats.
type Summarizer struct {
	apex ApexResolver
}

// New returns a Summarizer resolving apex domains through r.
// A nil r resolves every host without memoization.
func New(r ApexResolver) *Summarizer {
	if r == nil {
		r, _ = apexcache.New(0)
	}
	return &Summarizer{apex: r}
}

// Summarize computes Stats for results. Cache counters are reported as the
// delta observed during this call.
func (s *Summarizer) Summarize(results []domain.ExtractResult) Stats {
	hits0, misses0 := s.apex.Stats()

	st := Stats{Results: len(results)}
	hosts := make(map[string]struct{}, len(results))
	apexes := make(map[string]struct{})

	for _, r := range results {
		if r.Warning != nil {
			switch r.Warning.Kind {
			case domain.WarningMalformed:
				st.Malformed++
			default:
				st.NoHost++
			}
			continue
		}
		if !r.OK() {
			continue
		}
		st.Hosts++
		hosts[r.Host] = struct{}{}
		apexes[s.apex.Apex(r.Host)] = struct{}{}
	}

	st.DistinctHosts = len(hosts)
	st.DistinctApex = len(apexes)
	hits1, misses1 := s.apex.Stats()
	st.CacheHits = hits1 - hits0
	st.CacheMisses = misses1 - misses0
	return st
}
