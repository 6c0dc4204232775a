// Package service composes the BGG client, parser, cache and language
// matcher into the operations the marketplace calls.
package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
	"github.com/secondturn-games/second-turn-games-sub000/internal/cache"
	"github.com/secondturn-games/second-turn-games-sub000/internal/langmatch"
	"github.com/secondturn-games/second-turn-games-sub000/internal/metrics"
	"github.com/secondturn-games/second-turn-games-sub000/internal/tracing"
)

// DefaultTopK is how many leading search hits are enriched with item metadata.
const DefaultTopK = 15

const (
	minQueryLength   = 2
	exactQueryLength = 4
	l2Timeout        = 2 * time.Second

	// searchFlightTimeout bounds a shared upstream search, which outlives
	// any single caller's context.
	searchFlightTimeout = 2 * time.Minute
)

// Fetcher is the subset of *bgg.Client the service depends on.
type Fetcher interface {
	SearchGames(ctx context.Context, query, gameType string, exact bool) (string, error)
	GetGameDetails(ctx context.Context, id string) (string, error)
	GetBatchMetadata(ctx context.Context, ids []string) (string, error)
}

// Service is the BGG facade. It is safe for concurrent use.
type Service struct {
	client  Fetcher
	cache   *cache.Manager
	details cache.DetailsStore
	logger  *slog.Logger
	topK    int
	now     func() time.Time

	searches singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTopK sets how many search hits are enriched with item metadata.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithDetailsStore adds a shared second-level store for game details.
func WithDetailsStore(store cache.DetailsStore) Option {
	return func(s *Service) {
		s.details = store
	}
}

// WithClock overrides the clock used to time searches.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service over client and cache.
func New(client Fetcher, c *cache.Manager, opts ...Option) *Service {
	s := &Service{
		client: client,
		cache:  c,
		logger: slog.Default(),
		topK:   DefaultTopK,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "service")
	return s
}

// Search finds games matching query. Queries shorter than two characters
// return no results. When the upstream fails, any cached result for the
// same query is served instead, even an expired one.
func (s *Service) Search(ctx context.Context, query string, filters bgg.Filters) ([]bgg.SearchResult, error) {
	q := strings.TrimSpace(query)
	if len([]rune(q)) < minQueryLength {
		return []bgg.SearchResult{}, nil
	}

	ctx, span := tracing.StartSpan(ctx, "service.Search", trace.WithAttributes(
		attribute.String("bgg.query", q),
		attribute.String("bgg.filter", string(filters.GameType)),
	))
	defer span.End()

	key := cache.SearchKey(q, filters)
	cached, fresh, ok := s.cache.GetSearch(key)
	if ok && fresh {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached.Results, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	results, err := s.sharedSearch(ctx, key, q, filters)
	if err != nil {
		span.RecordError(err)
		if ok {
			metrics.RecordSearchFallback(true)
			s.logger.Warn("search failed, serving cached results",
				"query", q, "code", bgg.CodeOf(err), "error", err)
			return cached.Results, nil
		}
		metrics.RecordSearchFallback(false)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("search failed", "query", q, "code", bgg.CodeOf(err), "error", err)
		return nil, newSearchError(err)
	}

	span.SetAttributes(attribute.Int("bgg.results", len(results)))
	return results, nil
}

// sharedSearch runs one upstream search per cache key at a time; concurrent
// callers for the same key wait for that search and get a copy of its
// results. A caller whose context ends stops waiting without cancelling
// the search for the others.
func (s *Service) sharedSearch(ctx context.Context, key, q string, filters bgg.Filters) ([]bgg.SearchResult, error) {
	ch := s.searches.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), searchFlightTimeout)
		defer cancel()

		start := s.now()
		results, err := s.searchUpstream(fctx, q, filters)
		if err != nil {
			return nil, err
		}
		elapsed := s.now().Sub(start)
		metrics.RecordSearch(elapsed)
		entry := s.cache.SetSearch(key, q, filters, results, elapsed)
		s.logger.Debug("search complete",
			"query", q, "results", len(results), "elapsed", elapsed, "ttl", entry.TTL)
		return results, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]bgg.SearchResult)), nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &bgg.Error{Code: bgg.CodeSearchTimeout, Message: "search timed out", Cause: ctx.Err()}
		}
		return nil, ctx.Err()
	}
}

// searchUpstream runs the exact-then-fuzzy search, enriches the leading
// hits, filters and ranks.
func (s *Service) searchUpstream(ctx context.Context, query string, filters bgg.Filters) ([]bgg.SearchResult, error) {
	gameType := string(bgg.TypeBoardGame)
	if filters.GameType == bgg.FilterExpansion {
		gameType = string(bgg.TypeBoardGameExpansion)
	}

	var hits []bgg.SearchResult
	if len([]rune(query)) >= exactQueryLength {
		raw, err := s.client.SearchGames(ctx, query, gameType, true)
		if err != nil {
			return nil, err
		}
		hits = bgg.ParseSearchResults(raw)
	}
	if len(hits) == 0 {
		raw, err := s.client.SearchGames(ctx, query, gameType, false)
		if err != nil {
			return nil, err
		}
		hits = bgg.ParseSearchResults(raw)
	}

	s.enrich(ctx, hits)
	results := applyFilter(hits, filters.GameType)
	rankResults(results, query)
	return results, nil
}

// enrich corrects the type and fills statistics of the first topK hits from
// item metadata. Metadata that cannot be fetched leaves the hits as parsed.
func (s *Service) enrich(ctx context.Context, hits []bgg.SearchResult) {
	n := min(len(hits), s.topK)
	if n == 0 {
		return
	}
	ids := make([]string, 0, n)
	for _, h := range hits[:n] {
		ids = append(ids, h.ID)
	}

	found, misses := s.cache.GetCachedMetadata(ids)
	if len(misses) > 0 {
		raw, err := s.client.GetBatchMetadata(ctx, misses)
		if err != nil {
			s.logger.Warn("metadata enrichment failed", "ids", len(misses), "error", err)
		} else {
			for _, meta := range bgg.ParseItemMetadata(raw) {
				s.cache.SetItemMetadata(meta)
				found[meta.ID] = meta
			}
		}
	}

	for i := range hits[:n] {
		if meta, ok := found[hits[i].ID]; ok {
			mergeMetadata(&hits[i], meta)
		}
	}
}

func mergeMetadata(r *bgg.SearchResult, meta bgg.ItemMetadata) {
	if meta.Type != "" {
		r.Type = meta.Type
	}
	r.IsExpansion = r.IsExpansion || meta.IsExpansion
	r.HasInboundExpansionLink = meta.HasInboundExpansionLink
	r.Rank = meta.Rank
	r.BayesAverage = meta.BayesAverage
	r.Average = meta.Average
	if meta.Thumbnail != "" {
		r.Thumbnail = meta.Thumbnail
	}
	if meta.Image != "" {
		r.Image = meta.Image
	}
	if r.YearPublished == 0 {
		r.YearPublished = meta.YearPublished
	}
	if r.Name == "" {
		r.Name = meta.Name
	}
}

func applyFilter(results []bgg.SearchResult, gameType bgg.FilterGameType) []bgg.SearchResult {
	out := make([]bgg.SearchResult, 0, len(results))
	for _, r := range results {
		switch gameType {
		case bgg.FilterBaseGame:
			if r.IsExpansion {
				continue
			}
		case bgg.FilterExpansion:
			if !r.IsExpansion {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// GetGameDetails returns the details for id, or nil when the game is not
// found or cannot be fetched. Upstream failures are logged, not returned;
// the only error is the caller's own context ending.
func (s *Service) GetGameDetails(ctx context.Context, id string) (*bgg.GameDetails, error) {
	d, err := s.FetchGameDetails(ctx, id)
	if err == nil {
		return d, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if !errors.Is(err, bgg.ErrGameNotFound) {
		s.logger.Warn("game details unavailable", "id", id, "code", bgg.CodeOf(err), "error", err)
	}
	return nil, nil
}

// FetchGameDetails is GetGameDetails with errors. A document without
// items is reported as bgg.ErrGameNotFound.
func (s *Service) FetchGameDetails(ctx context.Context, id string) (*bgg.GameDetails, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &bgg.Error{Code: bgg.CodeInvalidGameID, Message: "game id is required"}
	}

	ctx, span := tracing.StartSpan(ctx, "service.FetchGameDetails",
		trace.WithAttributes(attribute.String("bgg.id", id)))
	defer span.End()

	if d, ok := s.cache.GetDetails(id); ok {
		span.SetAttributes(attribute.String("cache.tier", "memory"))
		return d, nil
	}

	if d := s.loadShared(ctx, id); d != nil {
		span.SetAttributes(attribute.String("cache.tier", "shared"))
		s.remember(*d)
		return d, nil
	}

	raw, err := s.client.GetGameDetails(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	items := bgg.ParseGameDetails(raw)
	if len(items) == 0 {
		return nil, &bgg.Error{Code: bgg.CodeGameNotFound, Message: "game " + id + " not found"}
	}
	d := items[0]
	for _, item := range items {
		if item.ID == id {
			d = item
			break
		}
	}

	s.remember(d)
	s.storeShared(ctx, d)
	return &d, nil
}

// remember caches the details and the slim metadata derived from them.
func (s *Service) remember(d bgg.GameDetails) {
	s.cache.SetDetails(d)
	s.cache.SetItemMetadata(d.Metadata())
}

func (s *Service) loadShared(ctx context.Context, id string) *bgg.GameDetails {
	if s.details == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, l2Timeout)
	defer cancel()

	d, err := s.details.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("shared details lookup failed", "id", id, "error", err)
		}
		return nil
	}
	return d
}

func (s *Service) storeShared(ctx context.Context, d bgg.GameDetails) {
	if s.details == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, l2Timeout)
	defer cancel()

	if err := s.details.Set(ctx, d); err != nil {
		s.logger.Warn("shared details write failed", "id", d.ID, "error", err)
	}
}

// GetLanguageMatchedVersions suggests a localized name for every version of
// an already-fetched game, highest confidence first. It never fetches; a game
// that is not cached yields an empty list.
func (s *Service) GetLanguageMatchedVersions(id string) []langmatch.LanguageMatchedVersion {
	d, ok := s.cache.GetDetails(strings.TrimSpace(id))
	if !ok {
		return []langmatch.LanguageMatchedVersion{}
	}
	return langmatch.Match(d.Versions, d.AlternateNames, d.Name, len(d.Versions))
}

// GetCacheStats reports cache usage.
func (s *Service) GetCacheStats() cache.Stats {
	stats := s.cache.Stats()
	metrics.UpdateCacheMetrics(stats)
	return stats
}

// ClearCache empties the in-memory caches and, when configured, the shared
// details store.
func (s *Service) ClearCache(ctx context.Context) {
	s.cache.Clear()
	metrics.UpdateCacheMetrics(s.cache.Stats())
	s.logger.Info("cache cleared")
	if s.details == nil {
		return
	}
	if err := s.details.Clear(ctx); err != nil {
		s.logger.Warn("shared details clear failed", "error", err)
	}
}
