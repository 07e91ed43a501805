package rest

import (
	"time"

	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/search"
)

type errorResponse struct {
	Error    string            `json:"error"`
	Redirect string            `json:"redirect,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Phone           string `json:"phone"`
	Role            string `json:"role"`
}

// searchRequest - строка поиска и выбор фильтров из панели.
type searchRequest struct {
	Keyword string `json:"keyword"`
	search.FilterInput
}

type searchStateResponse struct {
	Keyword   string              `json:"keyword"`
	Selection search.FilterInput  `json:"selection"`
	Path      domain.SearchPath   `json:"path,omitempty"`
	Results   *searchPageResponse `json:"results,omitempty"`
}

type roomListingResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Province      string    `json:"province"`
	District      string    `json:"district"`
	Ward          string    `json:"ward"`
	Area          float64   `json:"area"`
	Price         float64   `json:"price"`
	Images        []string  `json:"images"`
	CreatedAt     time.Time `json:"created_at"`
	LandlordEmail string    `json:"landlord_email,omitempty"`
	LandlordPhone string    `json:"landlord_phone,omitempty"`
}

type searchPageResponse struct {
	Rooms       []roomListingResponse `json:"rooms"`
	Keyword     string                `json:"keyword,omitempty"`
	Total       int                   `json:"total"`
	Page        int                   `json:"page"`
	Limit       int                   `json:"limit"`
	TotalPages  int                   `json:"total_pages"`
	Path        domain.SearchPath     `json:"path"`
	ResetScroll bool                  `json:"reset_scroll"`
}

func toSearchPageResponse(p domain.SearchPage) searchPageResponse {
	rooms := make([]roomListingResponse, 0, len(p.Rooms))
	for _, r := range p.Rooms {
		rooms = append(rooms, roomListingResponse{
			ID:            r.ID,
			Title:         r.Title,
			Province:      r.Province,
			District:      r.District,
			Ward:          r.Ward,
			Area:          r.Area,
			Price:         r.Price,
			Images:        nonNil(r.Images),
			CreatedAt:     r.CreatedAt,
			LandlordEmail: r.LandlordEmail,
			LandlordPhone: r.LandlordPhone,
		})
	}
	return searchPageResponse{
		Rooms:       rooms,
		Keyword:     p.Keyword,
		Total:       p.Total,
		Page:        p.Page,
		Limit:       p.Limit,
		TotalPages:  p.TotalPages,
		Path:        p.Path,
		ResetScroll: p.ResetScroll,
	}
}

type addressResponse struct {
	Province      string `json:"province"`
	District      string `json:"district"`
	Ward          string `json:"ward"`
	AddressDetail string `json:"address_detail"`
	FullAddress   string `json:"full_address"`
}

type landlordResponse struct {
	ID    string      `json:"id,omitempty"`
	Email string      `json:"email,omitempty"`
	Phone string      `json:"phone,omitempty"`
	Role  domain.Role `json:"role,omitempty"`
}

type roomDetailResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Address     addressResponse   `json:"address"`
	Area        float64           `json:"area"`
	Price       float64           `json:"price"`
	Status      domain.RoomStatus `json:"room_status"`
	Images      []string          `json:"images"`
	CreatedAt   time.Time         `json:"created_at"`
	Landlord    landlordResponse  `json:"landlord"`
}

func toRoomDetailResponse(r domain.RoomDetail) roomDetailResponse {
	return roomDetailResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Address:     addressResponse(r.Address),
		Area:        r.Area,
		Price:       r.Price,
		Status:      r.Status,
		Images:      nonNil(r.Images),
		CreatedAt:   r.CreatedAt,
		Landlord:    landlordResponse(r.Landlord),
	}
}

type ownedRoomResponse struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Province      string            `json:"province"`
	District      string            `json:"district"`
	Ward          string            `json:"ward"`
	AddressDetail string            `json:"address_detail"`
	Area          float64           `json:"area"`
	Price         float64           `json:"price"`
	Status        domain.RoomStatus `json:"room_status"`
	Images        []string          `json:"images"`
	CreatedAt     time.Time         `json:"created_at"`
}

func toOwnedRoomResponse(r domain.OwnedRoom) ownedRoomResponse {
	return ownedRoomResponse{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Province:      r.Province,
		District:      r.District,
		Ward:          r.Ward,
		AddressDetail: r.AddressDetail,
		Area:          r.Area,
		Price:         r.Price,
		Status:        r.Status,
		Images:        nonNil(r.Images),
		CreatedAt:     r.CreatedAt,
	}
}

type savedRoomResponse struct {
	Message string            `json:"message"`
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	Price   float64           `json:"price"`
	Area    float64           `json:"area"`
	Status  domain.RoomStatus `json:"status"`
}

func toSavedRoomResponse(r domain.SavedRoom) savedRoomResponse {
	return savedRoomResponse{Message: r.Message, ID: r.ID, Title: r.Title, Price: r.Price, Area: r.Area, Status: r.Status}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
