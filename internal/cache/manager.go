// Package cache holds the in-memory search, game-details and item-metadata
// caches in front of the BGG API.
package cache

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
)

// Defaults for Options fields left at their zero value.
const (
	DefaultMaxEntries      = 1000
	DefaultBaseSearchTTL   = 30 * time.Minute
	DefaultDetailsTTL      = 24 * time.Hour
	DefaultItemMetadataTTL = 7 * 24 * time.Hour
	DefaultSweepInterval   = time.Hour
)

// Store names reported to lookup observers.
const (
	StoreSearch   = "search"
	StoreDetails  = "details"
	StoreMetadata = "metadata"
)

// LookupObserver is told about every cache lookup.
type LookupObserver func(store string, hit bool)

// Options configures a Manager.
type Options struct {
	MaxEntries      int
	BaseSearchTTL   time.Duration
	DetailsTTL      time.Duration
	ItemMetadataTTL time.Duration
	SweepInterval   time.Duration
	Now             func() time.Time
	Logger          *slog.Logger
	OnLookup        LookupObserver
}

// SearchEntry is a cached search response.
type SearchEntry struct {
	Query     string
	Filters   bgg.Filters
	Results   []bgg.SearchResult
	Timestamp time.Time
	TTL       time.Duration
}

// Stats summarizes cache usage.
type Stats struct {
	Size            int     `json:"size"`
	HitRate         float64 `json:"hitRate"`
	TotalQueries    int64   `json:"totalQueries"`
	CacheHits       int64   `json:"cacheHits"`
	SearchEntries   int     `json:"searchEntries"`
	DetailsEntries  int     `json:"detailsEntries"`
	MetadataEntries int     `json:"metadataEntries"`
}

// Manager owns the three cache stores. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	search   *store[SearchEntry]
	details  *store[bgg.GameDetails]
	metadata *store[bgg.ItemMetadata]

	hits  int64
	total int64

	baseSearchTTL   time.Duration
	detailsTTL      time.Duration
	itemMetadataTTL time.Duration
	sweepInterval   time.Duration
	now             func() time.Time
	logger          *slog.Logger
	onLookup        LookupObserver

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewManager creates a cache manager. Call Start to run the periodic sweep.
func NewManager(opts Options) *Manager {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.BaseSearchTTL <= 0 {
		opts.BaseSearchTTL = DefaultBaseSearchTTL
	}
	if opts.DetailsTTL <= 0 {
		opts.DetailsTTL = DefaultDetailsTTL
	}
	if opts.ItemMetadataTTL <= 0 {
		opts.ItemMetadataTTL = DefaultItemMetadataTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Manager{
		search:          newStore[SearchEntry](opts.MaxEntries),
		details:         newStore[bgg.GameDetails](opts.MaxEntries),
		metadata:        newStore[bgg.ItemMetadata](opts.MaxEntries),
		baseSearchTTL:   opts.BaseSearchTTL,
		detailsTTL:      opts.DetailsTTL,
		itemMetadataTTL: opts.ItemMetadataTTL,
		sweepInterval:   opts.SweepInterval,
		now:             opts.Now,
		logger:          opts.Logger.With("component", "cache"),
		onLookup:        opts.OnLookup,
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
}

// SearchKey derives the search cache key from the normalized query and the
// JSON encoding of the filters.
func SearchKey(query string, filters bgg.Filters) string {
	data, err := json.Marshal(filters)
	if err != nil {
		data = []byte("{}")
	}
	return strings.ToLower(strings.TrimSpace(query)) + string(data)
}

// AdaptiveTTL scales the base search TTL by how long the search took and
// how many results it produced, capped at twice the base.
func (m *Manager) AdaptiveTTL(searchDuration time.Duration, resultCount int) time.Duration {
	ttl := float64(m.baseSearchTTL)

	switch {
	case searchDuration < time.Second:
		ttl *= 1.5
	case searchDuration > 5*time.Second:
		ttl *= 0.5
	}

	switch {
	case resultCount > 20:
		ttl *= 1.2
	case resultCount < 5:
		ttl *= 0.8
	}

	return min(time.Duration(ttl), 2*m.baseSearchTTL)
}

// GetSearch returns the entry stored under key. fresh reports whether it is
// still within its TTL; ok is true for stale entries too so callers can fall
// back to them. Only fresh entries count as hits.
func (m *Manager) GetSearch(key string) (entry SearchEntry, fresh bool, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.search.get(key)
	if ok {
		fresh = !e.expired(m.now())
	}
	m.recordLocked(StoreSearch, fresh)
	if !ok {
		return SearchEntry{}, false, false
	}
	return cloneSearchEntry(e.value), fresh, true
}

// SetSearch stores search results with a TTL derived from the search cost.
func (m *Manager) SetSearch(key, query string, filters bgg.Filters, results []bgg.SearchResult, searchDuration time.Duration) SearchEntry {
	ttl := m.AdaptiveTTL(searchDuration, len(results))

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e := SearchEntry{
		Query:     query,
		Filters:   filters,
		Results:   append([]bgg.SearchResult(nil), results...),
		Timestamp: now,
		TTL:       ttl,
	}
	m.search.set(key, e, now, ttl)
	m.logger.Debug("search cached", "key", key, "results", len(results), "ttl", ttl)
	return cloneSearchEntry(e)
}

// GetDetails returns fresh game details for id.
func (m *Manager) GetDetails(id string) (*bgg.GameDetails, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.details.get(id)
	hit := ok && !e.expired(m.now())
	m.recordLocked(StoreDetails, hit)
	if !hit {
		return nil, false
	}
	d := cloneDetails(e.value)
	return &d, true
}

// SetDetails stores game details under their id.
func (m *Manager) SetDetails(d bgg.GameDetails) {
	if d.ID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.details.set(d.ID, cloneDetails(d), m.now(), m.detailsTTL)
}

// GetItemMetadata returns fresh item metadata for id.
func (m *Manager) GetItemMetadata(id string) (bgg.ItemMetadata, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.itemMetadataLocked(id)
}

func (m *Manager) itemMetadataLocked(id string) (bgg.ItemMetadata, bool) {
	e, ok := m.metadata.get(id)
	hit := ok && !e.expired(m.now())
	m.recordLocked(StoreMetadata, hit)
	if !hit {
		return bgg.ItemMetadata{}, false
	}
	return cloneMetadata(e.value), true
}

// SetItemMetadata stores item metadata under its id.
func (m *Manager) SetItemMetadata(meta bgg.ItemMetadata) {
	if meta.ID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.metadata.set(meta.ID, cloneMetadata(meta), m.now(), m.itemMetadataTTL)
}

// GetCachedMetadata partitions ids into cached metadata and misses in one
// pass. Misses keep their input order.
func (m *Manager) GetCachedMetadata(ids []string) (map[string]bgg.ItemMetadata, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hits := make(map[string]bgg.ItemMetadata, len(ids))
	var misses []string
	for _, id := range ids {
		if meta, ok := m.itemMetadataLocked(id); ok {
			hits[id] = meta
			continue
		}
		misses = append(misses, id)
	}
	return hits, misses
}

// Sweep deletes expired entries from every store and returns the number of
// entries removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := m.search.removeExpired(now) +
		m.details.removeExpired(now) +
		m.metadata.removeExpired(now)
	if removed > 0 {
		m.logger.Debug("cache sweep", "removed", removed)
	}
	return removed
}

// Start launches the background sweep. It is a no-op after the first call.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		go m.sweepLoop()
	})
}

// Close stops the background sweep and waits for it to exit.
func (m *Manager) Close() error {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	started := true
	m.startOnce.Do(func() { started = false })
	if started {
		<-m.done
	}
	return nil
}

func (m *Manager) sweepLoop() {
	defer close(m.done)

	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stop:
			return
		}
	}
}

// Stats returns current sizes and hit-rate counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		TotalQueries:    m.total,
		CacheHits:       m.hits,
		SearchEntries:   m.search.len(),
		DetailsEntries:  m.details.len(),
		MetadataEntries: m.metadata.len(),
	}
	s.Size = s.SearchEntries + s.DetailsEntries + s.MetadataEntries
	if m.total > 0 {
		s.HitRate = float64(m.hits) / float64(m.total)
	}
	return s
}

// Clear empties every store and resets the counters.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.search.clear()
	m.details.clear()
	m.metadata.clear()
	m.hits = 0
	m.total = 0
	m.logger.Info("cache cleared")
}

func (m *Manager) recordLocked(storeName string, hit bool) {
	m.total++
	if hit {
		m.hits++
	}
	if m.onLookup != nil {
		m.onLookup(storeName, hit)
	}
}

func cloneSearchEntry(e SearchEntry) SearchEntry {
	e.Results = append([]bgg.SearchResult(nil), e.Results...)
	return e
}

func cloneMetadata(m bgg.ItemMetadata) bgg.ItemMetadata {
	m.Mechanics = cloneStrings(m.Mechanics)
	m.Categories = cloneStrings(m.Categories)
	return m
}

func cloneDetails(d bgg.GameDetails) bgg.GameDetails {
	d.Mechanics = cloneStrings(d.Mechanics)
	d.Categories = cloneStrings(d.Categories)
	d.Designers = cloneStrings(d.Designers)
	d.Artists = cloneStrings(d.Artists)
	d.Publishers = cloneStrings(d.Publishers)
	d.AlternateNames = cloneStrings(d.AlternateNames)
	if d.InboundExpansionLinks != nil {
		d.InboundExpansionLinks = append([]bgg.InboundLink(nil), d.InboundExpansionLinks...)
	}
	if d.Versions != nil {
		versions := make([]bgg.GameVersion, len(d.Versions))
		for i, v := range d.Versions {
			v.Languages = cloneStrings(v.Languages)
			v.Publishers = cloneStrings(v.Publishers)
			if v.Dimensions != nil {
				dims := *v.Dimensions
				v.Dimensions = &dims
			}
			if v.WeightInfo != nil {
				w := *v.WeightInfo
				v.WeightInfo = &w
			}
			versions[i] = v
		}
		d.Versions = versions
	}
	return d
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
