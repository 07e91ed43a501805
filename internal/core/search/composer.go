// Package search хранит состояние поиска комнат: строку ключевого слова,
// выбор фильтров и последнюю страницу результатов.
package search

import (
	"context"
	"errors"
	"strings"
	"sync"

	"roomfinder/internal/contextkeys"
	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/port"

	"golang.org/x/text/unicode/norm"
)

// DefaultPageLimit - размер страницы по умолчанию.
const DefaultPageLimit = 20

// ErrStaleResult - ответ пришел после того, как был запущен более новый поиск.
var ErrStaleResult = errors.New("search result superseded by a newer search")

// ErrNoActiveSearch - страницу нельзя загрузить, пока не выполнен ни один поиск.
var ErrNoActiveSearch = errors.New("no search has been run yet")

// State - снимок того, что видит пользователь.
type State struct {
	Keyword   string
	Selection domain.FilterSelection
	Path      domain.SearchPath
	Results   *domain.SearchPage
}

// Composer выбирает между поиском по ключевому слову и поиском по фильтрам,
// держит пагинацию и отбрасывает устаревшие ответы.
type Composer struct {
	api   port.SearchAPI
	limit int

	mu        sync.Mutex
	keyword   string
	selection domain.FilterSelection

	// активный поиск: по нему догружаются страницы
	path          domain.SearchPath
	activeKeyword string
	activeQuery   domain.SearchQuery
	results       *domain.SearchPage

	seq    uint64
	cancel context.CancelFunc
}

func NewComposer(api port.SearchAPI, limit int) *Composer {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	return &Composer{
		api:       api,
		limit:     limit,
		selection: domain.NewFilterSelection(),
	}
}

func (c *Composer) SetKeyword(keyword string) {
	c.mu.Lock()
	c.keyword = keyword
	c.mu.Unlock()
}

func (c *Composer) Keyword() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyword
}

// Selection возвращает копию текущего выбора фильтров.
func (c *Composer) Selection() domain.FilterSelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// UpdateSelection меняет выбор фильтров. При ошибке выбор не меняется.
func (c *Composer) UpdateSelection(fn func(*domain.FilterSelection) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.selection
	if err := fn(&next); err != nil {
		return err
	}
	c.selection = next
	return nil
}

func (c *Composer) Results() (domain.SearchPage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.results == nil {
		return domain.SearchPage{}, false
	}
	return *c.results, true
}

func (c *Composer) ActivePath() domain.SearchPath {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := State{Keyword: c.keyword, Selection: c.selection, Path: c.path}
	if c.results != nil {
		page := *c.results
		st.Results = &page
	}
	return st
}

// Options - таблицы диапазонов и удобств для построения формы фильтров.
func (c *Composer) Options() domain.FilterOptions {
	return domain.DefaultFilterOptions()
}

type request struct {
	seq     uint64
	path    domain.SearchPath
	keyword string
	query   domain.SearchQuery
	page    int
}

// Search запускает новый поиск с первой страницы. Непустое ключевое слово
// выбирает поиск по ключевому слову, иначе уходит запрос с фильтрами.
// Строка ключевого слова очищается в любом случае, выбор фильтров остается.
func (c *Composer) Search(ctx context.Context) (domain.SearchPage, error) {
	c.mu.Lock()
	keyword := norm.NFC.String(strings.TrimSpace(c.keyword))
	c.keyword = ""

	req := request{page: 1}
	if keyword != "" {
		req.path = domain.PathKeyword
		req.keyword = keyword
	} else {
		query, err := c.selection.Compose("")
		if err != nil {
			c.mu.Unlock()
			return domain.SearchPage{}, err
		}
		req.path = domain.PathFilter
		req.query = query
	}
	ctx = c.begin(ctx, &req)
	c.mu.Unlock()

	return c.dispatch(ctx, req)
}

// LoadPage повторяет активный поиск с тем же ключевым словом или тем же
// собранным запросом для другой страницы.
func (c *Composer) LoadPage(ctx context.Context, page int) (domain.SearchPage, error) {
	if page < 1 {
		return domain.SearchPage{}, domain.NewValidationError(map[string]string{"page": "must be at least 1"})
	}

	c.mu.Lock()
	if c.path == "" {
		c.mu.Unlock()
		return domain.SearchPage{}, ErrNoActiveSearch
	}
	req := request{
		path:    c.path,
		keyword: c.activeKeyword,
		query:   c.activeQuery,
		page:    page,
	}
	ctx = c.begin(ctx, &req)
	c.mu.Unlock()

	return c.dispatch(ctx, req)
}

// begin выдает номер запроса и отменяет предыдущий. Вызывается под c.mu.
func (c *Composer) begin(ctx context.Context, req *request) context.Context {
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	req.seq = c.seq

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	return ctx
}

func (c *Composer) dispatch(ctx context.Context, req request) (domain.SearchPage, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "SearchComposer",
		"path":      string(req.path),
		"page":      req.page,
		"seq":       req.seq,
	})

	var (
		page domain.SearchPage
		err  error
	)
	switch req.path {
	case domain.PathKeyword:
		page, err = c.api.SearchByKeyword(ctx, req.keyword, req.page, c.limit)
	default:
		page, err = c.api.SearchByFilters(ctx, req.query, req.page)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if req.seq != c.seq {
		logger.Debug("Discarding superseded search response", nil)
		return domain.SearchPage{}, ErrStaleResult
	}
	c.cancel()
	c.cancel = nil

	if err != nil {
		logger.Warn("Search failed", port.Fields{"error": err.Error()})
		return domain.SearchPage{}, err
	}

	page.Path = req.path
	if page.Page == 0 {
		page.Page = req.page
	}
	page.ResetScroll = req.path == domain.PathFilter && req.page != 1

	c.path = req.path
	c.activeKeyword = req.keyword
	c.activeQuery = req.query
	c.results = &page

	logger.Info("Search completed", port.Fields{"total": page.Total, "rooms": len(page.Rooms)})
	return page, nil
}
