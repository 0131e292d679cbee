// Package apexcache memoizes hostname -> registrable domain lookups.
package apexcache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/rr-ruleset/internal/ruleset/common/utils"
)

// Resolver returns the apex domain of a hostname, remembering the most
// recently resolved hosts. A Resolver with no capacity resolves every call.
type Resolver struct {
	memo   *lru.Cache[string, string] // nil when memoization is disabled
	lookup func(string) string
	hits   atomic.Uint64
	misses atomic.Uint64
}

// New returns a Resolver remembering up to size hosts. size <= 0 disables memoization.
func New(size int) (*Resolver, error) {
	r := &Resolver{lookup: utils.ApexDomain}
	if size <= 0 {
		return r, nil
	}
	memo, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	r.memo = memo
	return r, nil
}

// Apex returns the registrable domain of host.
func (r *Resolver) Apex(host string) string {
	if r.memo != nil {
		if apex, ok := r.memo.Get(host); ok {
			r.hits.Add(1)
			return apex
		}
	}
	r.misses.Add(1)
	apex := r.lookup(host)
	if r.memo != nil {
		r.memo.Add(host, apex)
	}
	return apex
}

// Stats returns the number of memo hits and misses since creation.
func (r *Resolver) Stats() (hits, misses uint64) {
	return r.hits.Load(), r.misses.Load()
}
