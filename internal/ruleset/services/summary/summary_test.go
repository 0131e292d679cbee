package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-ruleset/internal/ruleset/domain"
	"github.com/haukened/rr-ruleset/internal/ruleset/repos/apexcache"
)

func results() []domain.ExtractResult {
	return []domain.ExtractResult{
		{Line: 1, Host: "tracker1.example.com"},
		{Line: 2, Host: "tracker2.example.com"},
		{Line: 3, Host: "tracker1.example.com"},
		{Line: 4, Host: "open.example.org"},
		{Line: 5, Warning: &domain.ParseWarning{Line: 5, Kind: domain.WarningNoHost, Err: domain.ErrNoHost}},
		{Line: 6, Warning: &domain.ParseWarning{Line: 6, Kind: domain.WarningMalformed}},
		{Line: 7, Host: "93.158.213.92"},
	}
}

func TestSummarize_Counts(t *testing.T) {
	cache, err := apexcache.New(16)
	require.NoError(t, err)

	st := New(cache).Summarize(results())

	assert.Equal(t, 7, st.Results)
	assert.Equal(t, 5, st.Hosts)
	assert.Equal(t, 4, st.DistinctHosts)
	// example.com, example.org, 93.158.213.92
	assert.Equal(t, 3, st.DistinctApex)
	assert.Equal(t, 1, st.NoHost)
	assert.Equal(t, 1, st.Malformed)
	assert.Equal(t, 2, st.Warnings())
	// tracker1.example.com is looked up twice
	assert.Equal(t, uint64(1), st.CacheHits)
	assert.Equal(t, uint64(4), st.CacheMisses)
}

func TestSummarize_CacheCountersAreDeltas(t *testing.T) {
	cache, err := apexcache.New(16)
	require.NoError(t, err)
	s := New(cache)

	_ = s.Summarize(results())
	second := s.Summarize(results())

	// every host is now cached
	assert.Equal(t, uint64(5), second.CacheHits)
	assert.Equal(t, uint64(0), second.CacheMisses)
}

func TestSummarize_NilCacheAndEmptyInput(t *testing.T) {
	s := New(nil)
	st := s.Summarize(nil)
	assert.Equal(t, Stats{}, st)

	st = s.Summarize(results())
	assert.Equal(t, 3, st.DistinctApex)
	assert.Equal(t, uint64(0), st.CacheHits)
}

// fixedResolver maps every host to the same apex and counts each call as a miss.
type fixedResolver struct {
	calls uint64
}

func (f *fixedResolver) Apex(string) string {
	f.calls++
	return "same"
}

func (f *fixedResolver) Stats() (uint64, uint64) { return 0, f.calls }

func TestSummarize_UsesResolver(t *testing.T) {
	r := &fixedResolver{}
	st := New(r).Summarize(results())
	assert.Equal(t, 1, st.DistinctApex)
	assert.Equal(t, uint64(5), r.calls)
	assert.Equal(t, uint64(5), st.CacheMisses)
}

func TestStats_Fields(t *testing.T) {
	f := Stats{Hosts: 3, NoHost: 1, Malformed: 2}.Fields()
	assert.Equal(t, 3, f["hosts"])
	assert.Equal(t, 1, f["no_host"])
	assert.Equal(t, 3, f["warnings"])
	assert.Len(t, f, 9)
}
