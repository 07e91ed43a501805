package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"roomfinder/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type keywordCall struct {
	keyword     string
	page, limit int
}

type filterCall struct {
	query domain.SearchQuery
	page  int
}

// fakeAPI записывает вызовы. Если задан gate, ответ ждет сигнала или отмены контекста.
type fakeAPI struct {
	mu           sync.Mutex
	keywordCalls []keywordCall
	filterCalls  []filterCall
	gate         map[int]chan struct{}
	entered      chan int
	err          error
	total        int
}

func (f *fakeAPI) wait(ctx context.Context, n int) error {
	f.mu.Lock()
	gate := f.gate[n]
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- n
	}
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAPI) SearchByKeyword(ctx context.Context, keyword string, page, limit int) (domain.SearchPage, error) {
	f.mu.Lock()
	f.keywordCalls = append(f.keywordCalls, keywordCall{keyword, page, limit})
	n := len(f.keywordCalls) + len(f.filterCalls)
	f.mu.Unlock()
	if err := f.wait(ctx, n); err != nil {
		return domain.SearchPage{}, err
	}
	if f.err != nil {
		return domain.SearchPage{}, f.err
	}
	return domain.SearchPage{
		Rooms:   []domain.RoomListing{{ID: keyword}},
		Keyword: keyword, Total: f.total, Page: page, Limit: limit, TotalPages: 3,
	}, nil
}

func (f *fakeAPI) SearchByFilters(ctx context.Context, query domain.SearchQuery, page int) (domain.SearchPage, error) {
	f.mu.Lock()
	f.filterCalls = append(f.filterCalls, filterCall{query, page})
	n := len(f.keywordCalls) + len(f.filterCalls)
	f.mu.Unlock()
	if err := f.wait(ctx, n); err != nil {
		return domain.SearchPage{}, err
	}
	if f.err != nil {
		return domain.SearchPage{}, f.err
	}
	return domain.SearchPage{Total: f.total, Page: page, Limit: 20, TotalPages: 3}, nil
}

func (f *fakeAPI) RoomDetail(context.Context, string) (domain.RoomDetail, error) {
	return domain.RoomDetail{}, nil
}

func int64p(v int64) *int64 { return &v }

func TestKeywordSearchClearsInputAndKeepsSelection(t *testing.T) {
	api := &fakeAPI{}
	c := NewComposer(api, 0)

	require.NoError(t, c.UpdateSelection(func(s *domain.FilterSelection) error {
		return s.Price.SelectBucket("1m-3m")
	}))
	c.SetKeyword("  sinh viên ")

	page, err := c.Search(context.Background())
	require.NoError(t, err)

	require.Len(t, api.keywordCalls, 1)
	assert.Equal(t, keywordCall{"sinh viên", 1, DefaultPageLimit}, api.keywordCalls[0])
	assert.Empty(t, api.filterCalls)
	assert.Equal(t, domain.PathKeyword, page.Path)
	assert.False(t, page.ResetScroll)

	assert.Equal(t, "", c.Keyword())
	assert.Equal(t, domain.BucketTag("1m-3m"), c.Selection().Price.Bucket())
	assert.Equal(t, domain.PathKeyword, c.ActivePath())
}

func TestKeywordIsNormalizedToNFC(t *testing.T) {
	api := &fakeAPI{}
	c := NewComposer(api, 10)

	// "viên" в разложенной форме: e + combining circumflex
	c.SetKeyword("vie\u0302n")
	_, err := c.Search(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "viên", api.keywordCalls[0].keyword)
	assert.Equal(t, 10, api.keywordCalls[0].limit)
}

func TestFilterSearchWithBuckets(t *testing.T) {
	api := &fakeAPI{}
	c := NewComposer(api, 20)

	require.NoError(t, c.UpdateSelection(func(s *domain.FilterSelection) error {
		if err := s.Price.SelectBucket("5m-7m"); err != nil {
			return err
		}
		return s.Area.SelectBucket("20-30")
	}))
	c.SetKeyword("   ")

	page, err := c.Search(context.Background())
	require.NoError(t, err)

	assert.Empty(t, api.keywordCalls)
	require.Len(t, api.filterCalls, 1)
	call := api.filterCalls[0]
	assert.Equal(t, 1, call.page)
	assert.Equal(t, "", call.query.Keyword)
	assert.Equal(t, domain.Range{Min: int64p(5_000_000), Max: int64p(7_000_000)}, call.query.Filters.Price)
	assert.Equal(t, domain.Range{Min: int64p(20), Max: int64p(30)}, call.query.Filters.Area)
	assert.Equal(t, domain.PathFilter, page.Path)
	assert.Equal(t, "", c.Keyword())
}

func TestEmptySelectionStillSearchesFilterPath(t *testing.T) {
	api := &fakeAPI{}
	c := NewComposer(api, 20)

	_, err := c.Search(context.Background())
	require.NoError(t, err)
	require.Len(t, api.filterCalls, 1)
	assert.True(t, api.filterCalls[0].query.Filters.Price.IsEmpty())
	assert.True(t, api.filterCalls[0].query.Filters.Area.IsEmpty())
}

func TestInvalidCustomBoundIsRejectedBeforeRequest(t *testing.T) {
	api := &fakeAPI{}
	c := NewComposer(api, 20)
	require.NoError(t, c.UpdateSelection(func(s *domain.FilterSelection) error {
		s.Price.SetCustomMin("abc")
		return nil
	}))
	c.SetKeyword("")

	_, err := c.Search(context.Background())
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "price.min")
	assert.Empty(t, api.filterCalls)
}

func TestKeywordClearedEvenWhenSearchFails(t *testing.T) {
	api := &fakeAPI{err: domain.ErrConnection}
	c := NewComposer(api, 20)
	c.SetKeyword("quận 1")

	_, err := c.Search(context.Background())
	require.ErrorIs(t, err, domain.ErrConnection)
	assert.Equal(t, "", c.Keyword())
	_, ok := c.Results()
	assert.False(t, ok)
}

func TestLoadPageReusesActivePath(t *testing.T) {
	api := &fakeAPI{}
	c := NewComposer(api, 20)

	c.SetKeyword("gác lửng")
	_, err := c.Search(context.Background())
	require.NoError(t, err)

	// новая строка в поле ввода не влияет на догрузку страниц
	c.SetKeyword("other")
	page, err := c.LoadPage(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, api.keywordCalls, 2)
	assert.Equal(t, keywordCall{"gác lửng", 2, 20}, api.keywordCalls[1])
	assert.False(t, page.ResetScroll)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, "other", c.Keyword())
}

func TestFilterPagesResetScroll(t *testing.T) {
	api := &fakeAPI{}
	c := NewComposer(api, 20)
	require.NoError(t, c.UpdateSelection(func(s *domain.FilterSelection) error {
		return s.Area.SelectBucket("over-50")
	}))

	_, err := c.Search(context.Background())
	require.NoError(t, err)

	// изменения выбора после поиска не влияют на догрузку
	require.NoError(t, c.UpdateSelection(func(s *domain.FilterSelection) error {
		s.Area.Clear()
		return nil
	}))

	page, err := c.LoadPage(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, page.ResetScroll)
	require.Len(t, api.filterCalls, 2)
	assert.Equal(t, 3, api.filterCalls[1].page)
	assert.Equal(t, api.filterCalls[0].query, api.filterCalls[1].query)

	page, err = c.LoadPage(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, page.ResetScroll)
}

func TestLoadPageWithoutSearch(t *testing.T) {
	c := NewComposer(&fakeAPI{}, 20)
	_, err := c.LoadPage(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNoActiveSearch)

	_, err = c.LoadPage(context.Background(), 0)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateSelectionErrorKeepsPreviousSelection(t *testing.T) {
	c := NewComposer(&fakeAPI{}, 20)
	require.NoError(t, c.UpdateSelection(func(s *domain.FilterSelection) error {
		return s.Price.SelectBucket("3m-5m")
	}))

	err := c.UpdateSelection(func(s *domain.FilterSelection) error {
		s.Price.Clear()
		return s.Area.SelectBucket("5m-7m")
	})
	require.Error(t, err)
	assert.Equal(t, domain.BucketTag("3m-5m"), c.Selection().Price.Bucket())
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	api := &fakeAPI{
		gate:    map[int]chan struct{}{1: make(chan struct{})},
		entered: make(chan int, 2),
	}
	c := NewComposer(api, 20)

	c.SetKeyword("first")
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Search(context.Background())
		firstErr <- err
	}()
	require.Equal(t, 1, <-api.entered)

	c.SetKeyword("second")
	page, err := c.Search(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, <-api.entered)
	assert.Equal(t, "second", page.Keyword)

	// первый запрос отменен новым поиском и не перезаписывает результат
	assert.ErrorIs(t, <-firstErr, ErrStaleResult)
	results, ok := c.Results()
	require.True(t, ok)
	assert.Equal(t, "second", results.Keyword)
	assert.Equal(t, "second", results.Rooms[0].ID)
}

func TestOptionsExposeBucketTables(t *testing.T) {
	opts := NewComposer(&fakeAPI{}, 20).Options()
	values := make([]string, 0, len(opts.Price))
	for _, o := range opts.Price {
		values = append(values, o.Value)
	}
	assert.Contains(t, values, "5m-7m")
	assert.NotEmpty(t, opts.Area)
	assert.NotEmpty(t, opts.Furniture)
	assert.NotEmpty(t, opts.Utility)
}

func TestFailedSearchKeepsPreviousResults(t *testing.T) {
	api := &fakeAPI{}
	c := NewComposer(api, 20)
	c.SetKeyword("a")
	_, err := c.Search(context.Background())
	require.NoError(t, err)

	api.err = errors.New("boom")
	c.SetKeyword("b")
	_, err = c.Search(context.Background())
	require.Error(t, err)

	results, ok := c.Results()
	require.True(t, ok)
	assert.Equal(t, "a", results.Keyword)
	assert.Equal(t, domain.PathKeyword, c.State().Path)
}

func TestFilterInputApplyAndRoundTrip(t *testing.T) {
	c := NewComposer(&fakeAPI{}, 20)
	in := FilterInput{
		Price:              DimensionInput{Min: "2000000"},
		Area:               DimensionInput{Bucket: "20-30"},
		Province:           domain.Place{Code: 1, Name: "Thành phố Hà Nội"},
		District:           domain.Place{Code: 5, Name: "Quận Cầu Giấy"},
		FurnitureCondition: "new",
	}
	require.NoError(t, c.UpdateSelection(in.Apply))

	got := InputFromSelection(c.Selection())
	assert.Equal(t, in, got)

	query, err := c.Selection().Compose("")
	require.NoError(t, err)
	assert.Equal(t, "Quận Cầu Giấy", query.Location.District)
	assert.Equal(t, "", query.Location.Ward)
	assert.Nil(t, query.Filters.Price.Max)
	assert.Equal(t, domain.FurnitureNew, query.Filters.FurnitureCondition)
}

func TestFilterInputRejectsOrphanWardAndUnknownValues(t *testing.T) {
	c := NewComposer(&fakeAPI{}, 20)
	err := c.UpdateSelection(FilterInput{
		Ward:    domain.Place{Code: 7, Name: "Phường 7"},
		Utility: "luxury",
	}.Apply)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "ward")
	assert.Contains(t, ve.Fields, "utility")
}
