// Package collectors wraps the OpenF1 resources with memoizing collectors
// and the consolidation that joins them into one record set.
//
// Collectors are not safe for concurrent use. All calls block until the data
// source answers or gives up; guard a shared collector with an external mutex
// if concurrent access is ever needed.
package collectors

import (
	"context"
	"log"
	"sort"
	"strings"

	"f1datacollector/pkg/model"
	"f1datacollector/pkg/openf1"
)

// Fetcher is the slice of the OpenF1 client the collectors need.
type Fetcher interface {
	Fetch(ctx context.Context, resource string, params openf1.Params) ([]model.Record, error)
	Close()
}

// CacheStats describes the memoized responses a collector holds.
type CacheStats struct {
	Entries int
	Keys    []string
}

// base carries the cache and client plumbing shared by every collector. A
// collector either borrows a client from its caller or lazily constructs one
// of its own; only an owned client is closed with the collector.
type base struct {
	client     Fetcher
	ownsClient bool
	cache      map[string][]model.Record
}

func newBase(client Fetcher) base {
	owns := false
	if client == nil {
		client = openf1.NewClient()
		owns = true
	}
	return base{
		client: client,
		cache:  make(map[string][]model.Record),

		ownsClient: owns,
	}
}

// cacheKey builds a canonical key from the resource name and the sorted
// parameter pairs, so semantically identical requests share one entry no
// matter the argument order at the call site.
func cacheKey(resource string, params openf1.Params) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return resource + "?" + strings.Join(pairs, "&")
}

// cachedFetch returns the memoized response for identical parameters, or
// fetches and memoizes. An absent or failed response becomes nil; entries
// live until ClearCache or Close.
func (b *base) cachedFetch(ctx context.Context, resource string, params openf1.Params) []model.Record {
	key := cacheKey(resource, params)
	if records, ok := b.cache[key]; ok {
		return records
	}

	records, err := b.client.Fetch(ctx, resource, params)
	if err != nil {
		log.Printf("fetch %s: %v", resource, err)
		return nil
	}
	if records != nil {
		b.cache[key] = records
	}
	return records
}

// ClearCache drops every memoized response.
func (b *base) ClearCache() {
	b.cache = make(map[string][]model.Record)
}

// GetCacheStats reports how many responses are memoized and under which keys.
func (b *base) GetCacheStats() CacheStats {
	stats := CacheStats{Entries: len(b.cache)}
	for key := range b.cache {
		stats.Keys = append(stats.Keys, key)
	}
	sort.Strings(stats.Keys)
	return stats
}

// Close drops the cache and closes the client if this collector created it.
func (b *base) Close() {
	if b.ownsClient {
		b.client.Close()
	}
	b.cache = make(map[string][]model.Record)
}
