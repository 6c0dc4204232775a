package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
	"github.com/secondturn-games/second-turn-games-sub000/internal/cache"
	"github.com/secondturn-games/second-turn-games-sub000/internal/langmatch"
	"github.com/secondturn-games/second-turn-games-sub000/internal/logging"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) SearchGames(ctx context.Context, query, gameType string, exact bool) (string, error) {
	args := m.Called(ctx, query, gameType, exact)
	return args.String(0), args.Error(1)
}

func (m *MockFetcher) GetGameDetails(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockFetcher) GetBatchMetadata(ctx context.Context, ids []string) (string, error) {
	args := m.Called(ctx, ids)
	return args.String(0), args.Error(1)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryDetailsStore is an in-process cache.DetailsStore.
type memoryDetailsStore struct {
	mu    sync.Mutex
	items map[string]bgg.GameDetails
	sets  int
}

func newMemoryDetailsStore() *memoryDetailsStore {
	return &memoryDetailsStore{items: map[string]bgg.GameDetails{}}
}

func (s *memoryDetailsStore) Get(_ context.Context, id string) (*bgg.GameDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.items[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &d, nil
}

func (s *memoryDetailsStore) Set(_ context.Context, d bgg.GameDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[d.ID] = d
	s.sets++
	return nil
}

func (s *memoryDetailsStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = map[string]bgg.GameDetails{}
	return nil
}

const catanSearchXML = `<?xml version="1.0" encoding="utf-8"?>
<items total="3">
	<item type="boardgame" id="325"><name type="primary" value="CATAN: Seafarers"/><yearpublished value="1997"/></item>
	<item type="boardgame" id="500"><name type="primary" value="Catan Junior"/><yearpublished value="2007"/></item>
	<item type="boardgame" id="13"><name type="primary" value="CATAN"/><yearpublished value="1995"/></item>
</items>`

const catanMetadataXML = `<items>
	<item type="boardgame" id="325">
		<name type="primary" value="CATAN: Seafarers"/>
		<link type="boardgameexpansion" id="13" value="CATAN" inbound="true"/>
		<statistics><ratings><average value="7.0"/><bayesaverage value="6.6"/></ratings></statistics>
	</item>
	<item type="boardgame" id="500">
		<name type="primary" value="Catan Junior"/>
		<statistics><ratings><average value="6.5"/><bayesaverage value="6.1"/>
			<ranks><rank type="subtype" name="boardgame" value="2500"/></ranks></ratings></statistics>
	</item>
	<item type="boardgame" id="13">
		<name type="primary" value="CATAN"/>
		<statistics><ratings><average value="7.1"/><bayesaverage value="6.9"/>
			<ranks><rank type="subtype" name="boardgame" value="500"/></ranks></ratings></statistics>
	</item>
</items>`

const singleVersionXML = `<items>
	<item type="boardgame" id="13">
		<name type="primary" value="Catan"/>
		<name type="alternate" value="Los Colonizadores"/>
		<name type="alternate" value="Catan"/>
		<yearpublished value="1995"/>
		<versions>
			<item type="boardgameversion" id="1001">
				<name type="primary" value="Spanish edition"/>
				<link type="language" id="2190" value="Spanish"/>
			</item>
		</versions>
	</item>
</items>`

const multiVersionXML = `<items>
	<item type="boardgame" id="13">
		<name type="primary" value="Catan"/>
		<name type="alternate" value="Колонизаторы"/>
		<name type="alternate" value="Die Siedler von Catan"/>
		<versions>
			<item type="boardgameversion" id="1001">
				<name type="primary" value="German edition"/>
				<link type="language" id="2188" value="German"/>
			</item>
			<item type="boardgameversion" id="1002">
				<name type="primary" value="Russian edition"/>
				<link type="language" id="2202" value="Russian"/>
			</item>
		</versions>
	</item>
</items>`

func newTestService(t *testing.T, opts ...Option) (*Service, *MockFetcher, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	manager := cache.NewManager(cache.Options{Now: clock.Now, Logger: logging.Discard()})
	fetcher := new(MockFetcher)
	opts = append([]Option{WithLogger(logging.Discard()), WithClock(clock.Now)}, opts...)
	return New(fetcher, manager, opts...), fetcher, clock
}

func TestSearch_ShortQuery(t *testing.T) {
	svc, fetcher, _ := newTestService(t)

	for _, q := range []string{"", "a", "  b  ", "é"} {
		results, err := svc.Search(context.Background(), q, bgg.Filters{})
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	}
	fetcher.AssertNotCalled(t, "SearchGames", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_BaseGameFilterRanksExactMatchFirst(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	fetcher.On("SearchGames", mock.Anything, "Catan", "boardgame", true).Return(catanSearchXML, nil).Once()
	fetcher.On("GetBatchMetadata", mock.Anything, []string{"325", "500", "13"}).Return(catanMetadataXML, nil).Once()

	results, err := svc.Search(context.Background(), "  Catan ", bgg.Filters{GameType: bgg.FilterBaseGame})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "13", results[0].ID)
	assert.Equal(t, "500", results[1].ID)
	for _, r := range results {
		assert.False(t, r.IsExpansion, r.Name)
	}
	assert.Equal(t, 500, results[0].Rank)
	assert.InDelta(t, 6.9, results[0].BayesAverage, 0.001)
	assert.Greater(t, results[0].SearchScore, results[1].SearchScore)
	fetcher.AssertExpectations(t)
	fetcher.AssertNotCalled(t, "SearchGames", mock.Anything, "Catan", "boardgame", false)
}

func TestSearch_ExpansionFilter(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	fetcher.On("SearchGames", mock.Anything, "Catan", "boardgameexpansion", true).Return(catanSearchXML, nil).Once()
	fetcher.On("GetBatchMetadata", mock.Anything, mock.Anything).Return(catanMetadataXML, nil).Once()

	results, err := svc.Search(context.Background(), "Catan", bgg.Filters{GameType: bgg.FilterExpansion})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "325", results[0].ID)
	assert.True(t, results[0].IsExpansion)
	assert.True(t, results[0].HasInboundExpansionLink)
}

func TestSearch_ExactThenFuzzy(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	fetcher.On("SearchGames", mock.Anything, "Catan", "boardgame", true).Return("<items></items>", nil).Once()
	fetcher.On("SearchGames", mock.Anything, "Catan", "boardgame", false).Return(catanSearchXML, nil).Once()
	fetcher.On("GetBatchMetadata", mock.Anything, mock.Anything).Return(catanMetadataXML, nil).Once()

	results, err := svc.Search(context.Background(), "Catan", bgg.Filters{})
	require.NoError(t, err)
	assert.Len(t, results, 3)
	fetcher.AssertExpectations(t)
}

func TestSearch_ShortQuerySkipsExact(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	fetcher.On("SearchGames", mock.Anything, "Cat", "boardgame", false).Return(catanSearchXML, nil).Once()
	fetcher.On("GetBatchMetadata", mock.Anything, mock.Anything).Return(catanMetadataXML, nil).Once()

	_, err := svc.Search(context.Background(), "Cat", bgg.Filters{})
	require.NoError(t, err)
	fetcher.AssertNotCalled(t, "SearchGames", mock.Anything, "Cat", "boardgame", true)
}

func TestSearch_FreshCacheHit(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	fetcher.On("SearchGames", mock.Anything, "Catan", "boardgame", true).Return(catanSearchXML, nil).Once()
	fetcher.On("GetBatchMetadata", mock.Anything, mock.Anything).Return(catanMetadataXML, nil).Once()

	first, err := svc.Search(context.Background(), "Catan", bgg.Filters{})
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), "catan", bgg.Filters{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	fetcher.AssertNumberOfCalls(t, "SearchGames", 1)
	fetcher.AssertNumberOfCalls(t, "GetBatchMetadata", 1)
}

func TestSearch_StaleCacheServedOnError(t *testing.T) {
	svc, fetcher, clock := newTestService(t)
	fetcher.On("SearchGames", mock.Anything, "Catan", "boardgame", true).Return(catanSearchXML, nil).Once()
	fetcher.On("GetBatchMetadata", mock.Anything, mock.Anything).Return(catanMetadataXML, nil).Once()

	first, err := svc.Search(context.Background(), "Catan", bgg.Filters{})
	require.NoError(t, err)

	clock.Advance(3 * time.Hour)
	fetcher.On("SearchGames", mock.Anything, "Catan", "boardgame", true).
		Return("", &bgg.Error{Code: bgg.CodeAPIUnavailable, Message: "down"}).Once()

	second, err := svc.Search(context.Background(), "Catan", bgg.Filters{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	fetcher.AssertNumberOfCalls(t, "SearchGames", 2)
}

func TestSearch_ConcurrentIdenticalQueriesShareUpstream(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	fetcher.On("SearchGames", mock.Anything, "Catan", "boardgame", true).
		After(50*time.Millisecond).Return(catanSearchXML, nil)
	fetcher.On("GetBatchMetadata", mock.Anything, mock.Anything).Return(catanMetadataXML, nil)

	const callers = 8
	var wg sync.WaitGroup
	got := make([][]bgg.SearchResult, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := svc.Search(context.Background(), "Catan", bgg.Filters{})
			assert.NoError(t, err)
			got[i] = results
		}()
	}
	wg.Wait()

	fetcher.AssertNumberOfCalls(t, "SearchGames", 1)
	fetcher.AssertNumberOfCalls(t, "GetBatchMetadata", 1)
	for i := range got {
		assert.Len(t, got[i], 3)
	}

	// Each caller owns its slice.
	got[0][0].Name = "changed"
	assert.NotEqual(t, "changed", got[1][0].Name)
}

func TestSearch_WaiterDeadlineLeavesSharedSearchRunning(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	fetcher.On("SearchGames", mock.Anything, "Catan", "boardgame", true).
		After(200*time.Millisecond).Return(catanSearchXML, nil).Once()
	fetcher.On("GetBatchMetadata", mock.Anything, mock.Anything).Return(catanMetadataXML, nil).Once()

	done := make(chan []bgg.SearchResult)
	go func() {
		results, err := svc.Search(context.Background(), "Catan", bgg.Filters{})
		assert.NoError(t, err)
		done <- results
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.Search(ctx, "Catan", bgg.Filters{})
	var searchErr *SearchError
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, bgg.CodeSearchTimeout, searchErr.Code)

	assert.Len(t, <-done, 3)
	fetcher.AssertNumberOfCalls(t, "SearchGames", 1)
}

func TestSearch_ErrorWithoutCache(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		code       bgg.ErrorCode
		retryAfter time.Duration
	}{
		{"rate limit", &bgg.Error{Code: bgg.CodeRateLimitExceeded, RetryAfter: 30 * time.Second}, bgg.CodeRateLimitExceeded, 30 * time.Second},
		{"timeout", &bgg.Error{Code: bgg.CodeSearchTimeout}, bgg.CodeSearchTimeout, 0},
		{"unavailable", &bgg.Error{Code: bgg.CodeAPIUnavailable, StatusCode: 503}, bgg.CodeAPIUnavailable, 0},
		{"unclassified", errors.New("boom"), bgg.CodeNetworkError, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, fetcher, _ := newTestService(t)
			fetcher.On("SearchGames", mock.Anything, "Catan", "boardgame", true).Return("", tt.err).Once()

			results, err := svc.Search(context.Background(), "Catan", bgg.Filters{})
			assert.Nil(t, results)

			var searchErr *SearchError
			require.ErrorAs(t, err, &searchErr)
			assert.Equal(t, tt.code, searchErr.Code)
			assert.Equal(t, tt.retryAfter, searchErr.RetryAfter)
			assert.NotEmpty(t, searchErr.Message)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestSearch_EnrichmentFailureKeepsHits(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	fetcher.On("SearchGames", mock.Anything, "Catan", "boardgame", true).Return(catanSearchXML, nil).Once()
	fetcher.On("GetBatchMetadata", mock.Anything, mock.Anything).
		Return("", &bgg.Error{Code: bgg.CodeRateLimitExceeded}).Once()

	results, err := svc.Search(context.Background(), "Catan", bgg.Filters{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "13", results[0].ID)
}

func TestSearch_MetadataCacheAvoidsBatch(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	for _, meta := range bgg.ParseItemMetadata(catanMetadataXML) {
		svc.cache.SetItemMetadata(meta)
	}
	fetcher.On("SearchGames", mock.Anything, "Catan", "boardgame", true).Return(catanSearchXML, nil).Once()

	results, err := svc.Search(context.Background(), "Catan", bgg.Filters{GameType: bgg.FilterBaseGame})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	fetcher.AssertNotCalled(t, "GetBatchMetadata", mock.Anything, mock.Anything)
}

func TestSearch_TopKLimitsEnrichment(t *testing.T) {
	svc, fetcher, _ := newTestService(t, WithTopK(2))
	fetcher.On("SearchGames", mock.Anything, "Catan", "boardgame", true).Return(catanSearchXML, nil).Once()
	fetcher.On("GetBatchMetadata", mock.Anything, []string{"325", "500"}).Return(catanMetadataXML, nil).Once()

	_, err := svc.Search(context.Background(), "Catan", bgg.Filters{})
	require.NoError(t, err)
	fetcher.AssertExpectations(t)
}

func TestGetGameDetails_FetchesOnceAndCaches(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	fetcher.On("GetGameDetails", mock.Anything, "13").Return(singleVersionXML, nil).Once()

	d, err := svc.GetGameDetails(context.Background(), "13")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "Catan", d.Name)

	again, err := svc.GetGameDetails(context.Background(), "13")
	require.NoError(t, err)
	assert.Equal(t, d, again)
	fetcher.AssertNumberOfCalls(t, "GetGameDetails", 1)

	meta, ok := svc.cache.GetItemMetadata("13")
	require.True(t, ok)
	assert.Equal(t, "Catan", meta.Name)
}

func TestGetGameDetails_NotFoundAndErrorsYieldNil(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		err  error
	}{
		{"empty document", "<items></items>", nil},
		{"upstream 404", "", &bgg.Error{Code: bgg.CodeGameNotFound, StatusCode: 404}},
		{"upstream unavailable", "", &bgg.Error{Code: bgg.CodeAPIUnavailable, StatusCode: 503}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, fetcher, _ := newTestService(t)
			fetcher.On("GetGameDetails", mock.Anything, "99").Return(tt.raw, tt.err).Once()

			d, err := svc.GetGameDetails(context.Background(), "99")
			assert.NoError(t, err)
			assert.Nil(t, d)
		})
	}
}

func TestGetGameDetails_CancelledContext(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetcher.On("GetGameDetails", mock.Anything, "13").
		Return("", &bgg.Error{Code: bgg.CodeNetworkError, Cause: context.Canceled}).Once()

	d, err := svc.GetGameDetails(ctx, "13")
	assert.Nil(t, d)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchGameDetails_Errors(t *testing.T) {
	svc, fetcher, _ := newTestService(t)

	_, err := svc.FetchGameDetails(context.Background(), "  ")
	assert.ErrorIs(t, err, bgg.ErrInvalidGameID)

	fetcher.On("GetGameDetails", mock.Anything, "99").Return("<items></items>", nil).Once()
	_, err = svc.FetchGameDetails(context.Background(), "99")
	assert.ErrorIs(t, err, bgg.ErrGameNotFound)

	fetcher.On("GetGameDetails", mock.Anything, "100").
		Return("", &bgg.Error{Code: bgg.CodeSearchTimeout}).Once()
	_, err = svc.FetchGameDetails(context.Background(), "100")
	assert.Equal(t, bgg.CodeSearchTimeout, bgg.CodeOf(err))
}

func TestFetchGameDetails_SharedStore(t *testing.T) {
	store := newMemoryDetailsStore()
	svc, fetcher, _ := newTestService(t, WithDetailsStore(store))
	fetcher.On("GetGameDetails", mock.Anything, "13").Return(singleVersionXML, nil).Once()

	_, err := svc.FetchGameDetails(context.Background(), "13")
	require.NoError(t, err)
	assert.Equal(t, 1, store.sets)

	// A second process sharing the store finds the game without a fetch.
	other, otherFetcher, _ := newTestService(t, WithDetailsStore(store))
	d, err := other.FetchGameDetails(context.Background(), "13")
	require.NoError(t, err)
	assert.Equal(t, "Catan", d.Name)
	otherFetcher.AssertNotCalled(t, "GetGameDetails", mock.Anything, mock.Anything)

	other.ClearCache(context.Background())
	_, err = store.Get(context.Background(), "13")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestGetLanguageMatchedVersions(t *testing.T) {
	t.Run("not cached", func(t *testing.T) {
		svc, fetcher, _ := newTestService(t)
		versions := svc.GetLanguageMatchedVersions("13")
		assert.NotNil(t, versions)
		assert.Empty(t, versions)
		fetcher.AssertNotCalled(t, "GetGameDetails", mock.Anything, mock.Anything)
	})

	t.Run("single version uses primary name", func(t *testing.T) {
		svc, fetcher, _ := newTestService(t)
		fetcher.On("GetGameDetails", mock.Anything, "13").Return(singleVersionXML, nil).Once()
		_, err := svc.GetGameDetails(context.Background(), "13")
		require.NoError(t, err)

		versions := svc.GetLanguageMatchedVersions("13")
		require.Len(t, versions, 1)
		assert.Equal(t, "Catan", versions[0].SuggestedAlternateName)
		assert.Equal(t, langmatch.MatchNone, versions[0].LanguageMatch)
		assert.InDelta(t, 0.1, versions[0].Confidence, 1e-9)
	})

	t.Run("sorted by confidence", func(t *testing.T) {
		svc, fetcher, _ := newTestService(t)
		fetcher.On("GetGameDetails", mock.Anything, "13").Return(multiVersionXML, nil).Once()
		_, err := svc.GetGameDetails(context.Background(), "13")
		require.NoError(t, err)

		versions := svc.GetLanguageMatchedVersions("13")
		require.Len(t, versions, 2)
		assert.Equal(t, "1002", versions[0].ID)
		assert.Equal(t, "Колонизаторы", versions[0].SuggestedAlternateName)
		assert.Equal(t, langmatch.MatchExact, versions[0].LanguageMatch)

		// "Die Siedler von Catan" has no German-only characters.
		assert.Equal(t, "1001", versions[1].ID)
		assert.Equal(t, "Catan", versions[1].SuggestedAlternateName)
		assert.Equal(t, langmatch.MatchNone, versions[1].LanguageMatch)
	})
}

func TestCacheStatsAndClear(t *testing.T) {
	svc, fetcher, _ := newTestService(t)
	fetcher.On("GetGameDetails", mock.Anything, "13").Return(singleVersionXML, nil).Once()

	_, err := svc.GetGameDetails(context.Background(), "13")
	require.NoError(t, err)
	_, err = svc.GetGameDetails(context.Background(), "13")
	require.NoError(t, err)

	stats := svc.GetCacheStats()
	assert.Equal(t, int64(2), stats.TotalQueries)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
	assert.Equal(t, 2, stats.Size) // details + metadata

	svc.ClearCache(context.Background())
	stats = svc.GetCacheStats()
	assert.Zero(t, stats.Size)
	assert.Zero(t, stats.TotalQueries)
}
