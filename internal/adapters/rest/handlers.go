package rest

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"roomfinder/internal/contextkeys"
	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/port"
	"roomfinder/internal/core/search"

	"github.com/go-chi/chi/v5"
)

// AuthUseCase - вход, регистрация и выход.
type AuthUseCase interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.User, error)
	Register(ctx context.Context, reg domain.Registration) (domain.User, error)
	Logout(ctx context.Context) error
	WhoAmI() (domain.User, error)
}

// SearchUseCase - состояние и запуск поиска.
type SearchUseCase interface {
	SetKeyword(keyword string)
	UpdateSelection(fn func(*domain.FilterSelection) error) error
	Search(ctx context.Context) (domain.SearchPage, error)
	LoadPage(ctx context.Context, page int) (domain.SearchPage, error)
	State() search.State
	Options() domain.FilterOptions
}

// RoomsUseCase - кабинет арендодателя.
type RoomsUseCase interface {
	MyRooms(ctx context.Context) ([]domain.OwnedRoom, error)
	Get(ctx context.Context, roomID string) (domain.OwnedRoom, error)
	Create(ctx context.Context, form domain.RoomForm) (domain.SavedRoom, error)
	Update(ctx context.Context, roomID string, form domain.RoomForm) (domain.SavedRoom, error)
	Delete(ctx context.Context, roomID string) error
}

// BrowseUseCase - публичная карточка комнаты.
type BrowseUseCase interface {
	Detail(ctx context.Context, roomID string) (domain.RoomDetail, error)
}

// Handlers - обработчики всех маршрутов сервера.
type Handlers struct {
	auth   AuthUseCase
	search SearchUseCase
	rooms  RoomsUseCase
	browse BrowseUseCase
	geo    port.GeographyPort
}

func NewHandlers(auth AuthUseCase, search SearchUseCase, rooms RoomsUseCase, browse BrowseUseCase, geo port.GeographyPort) *Handlers {
	return &Handlers{auth: auth, search: search, rooms: rooms, browse: browse, geo: geo}
}

func handlerLogger(r *http.Request, name string) port.LoggerPort {
	return contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": name})
}

// GetSession обрабатывает GET /api/session
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.WhoAmI()
	if err != nil {
		RespondWithJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	RespondWithJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: &user})
}

// Login обрабатывает POST /api/session/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeUseCaseError(w, r, err)
		return
	}

	user, err := h.auth.Login(r.Context(), domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		handlerLogger(r, "Login").Warn("Login failed", port.Fields{"error": err.Error()})
		writeUseCaseError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: &user})
}

// Register обрабатывает POST /api/session/register
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeUseCaseError(w, r, err)
		return
	}

	user, err := h.auth.Register(r.Context(), domain.Registration{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Phone:           req.Phone,
		Role:            domain.Role(req.Role),
	})
	if err != nil {
		handlerLogger(r, "Register").Warn("Registration failed", port.Fields{"error": err.Error()})
		writeUseCaseError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, sessionResponse{Authenticated: true, User: &user})
}

// Logout обрабатывает POST /api/session/logout
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		handlerLogger(r, "Logout").Error("Logout failed", err, nil)
		writeUseCaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SearchOptions(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.search.Options())
}

func (h *Handlers) SearchState(w http.ResponseWriter, r *http.Request) {
	st := h.search.State()
	resp := searchStateResponse{
		Keyword:   st.Keyword,
		Selection: search.InputFromSelection(st.Selection),
		Path:      st.Path,
	}
	if st.Results != nil {
		page := toSearchPageResponse(*st.Results)
		resp.Results = &page
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// Search обрабатывает POST /api/search: применяет выбор фильтров и строку поиска.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeUseCaseError(w, r, err)
		return
	}

	// Поиск по ключевому слову фильтры не отправляет, поэтому их ошибки для него не важны.
	if err := h.search.UpdateSelection(req.FilterInput.Apply); err != nil {
		if strings.TrimSpace(req.Keyword) == "" {
			writeUseCaseError(w, r, err)
			return
		}
		handlerLogger(r, "Search").Debug("Invalid filters ignored for keyword search", port.Fields{"error": err.Error()})
	}
	h.search.SetKeyword(req.Keyword)

	page, err := h.search.Search(r.Context())
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toSearchPageResponse(page))
}

// SearchPage обрабатывает GET /api/search/page/{page}
func (h *Handlers) SearchPage(w http.ResponseWriter, r *http.Request) {
	pageNum, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid page number")
		return
	}

	page, err := h.search.LoadPage(r.Context(), pageNum)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toSearchPageResponse(page))
}

// RoomDetail обрабатывает GET /api/rooms/{id}
func (h *Handlers) RoomDetail(w http.ResponseWriter, r *http.Request) {
	room, err := h.browse.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toRoomDetailResponse(room))
}

func (h *Handlers) MyRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.MyRooms(r.Context())
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	resp := make([]ownedRoomResponse, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, toOwnedRoomResponse(room))
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetMyRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.rooms.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toOwnedRoomResponse(room))
}

func (h *Handlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var form domain.RoomForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	saved, err := h.rooms.Create(r.Context(), form)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, toSavedRoomResponse(saved))
}

func (h *Handlers) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	var form domain.RoomForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	saved, err := h.rooms.Update(r.Context(), chi.URLParam(r, "id"), form)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toSavedRoomResponse(saved))
}

func (h *Handlers) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.rooms.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Provinces(w http.ResponseWriter, r *http.Request) {
	places, err := h.geo.Provinces(r.Context())
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, places)
}

func (h *Handlers) Districts(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid province code")
		return
	}
	places, err := h.geo.Districts(r.Context(), code)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, places)
}

func (h *Handlers) Wards(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid district code")
		return
	}
	places, err := h.geo.Wards(r.Context(), code)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, places)
}
