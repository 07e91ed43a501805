package backend_api_client

import (
	"strings"
	"time"

	"roomfinder/internal/core/domain"
)

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type registerRequest struct {
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	Phone       *string     `json:"phone"`
	Role        domain.Role `json:"role"`
	IsActive    bool        `json:"is_active"`
	IsSuperuser bool        `json:"is_superuser"`
	IsVerified  bool        `json:"is_verified"`
}

type userResponse struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Role  string  `json:"role"`
	Phone *string `json:"phone"`
}

func (u userResponse) toDomain() domain.User {
	return domain.User{ID: u.ID, Email: u.Email, Role: domain.Role(u.Role), Phone: deref(u.Phone)}
}

type roomListingDTO struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Province      string   `json:"province"`
	District      string   `json:"district"`
	Ward          string   `json:"ward"`
	Area          float64  `json:"area"`
	Price         float64  `json:"price"`
	Images        []string `json:"images"`
	CreatedAt     string   `json:"created_at"`
	LandlordEmail *string  `json:"landlord_email"`
	LandlordPhone *string  `json:"landlord_phone"`
}

func (d roomListingDTO) toDomain() domain.RoomListing {
	return domain.RoomListing{
		ID:            d.ID,
		Title:         d.Title,
		Province:      d.Province,
		District:      d.District,
		Ward:          d.Ward,
		Area:          d.Area,
		Price:         d.Price,
		Images:        d.Images,
		CreatedAt:     parseTimestamp(d.CreatedAt),
		LandlordEmail: deref(d.LandlordEmail),
		LandlordPhone: deref(d.LandlordPhone),
	}
}

type searchResponse struct {
	Success    bool             `json:"success"`
	Keyword    string           `json:"keyword"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Rooms      []roomListingDTO `json:"rooms"`
}

func (r searchResponse) toDomain(path domain.SearchPath) domain.SearchPage {
	rooms := make([]domain.RoomListing, 0, len(r.Rooms))
	for _, dto := range r.Rooms {
		rooms = append(rooms, dto.toDomain())
	}
	totalPages := r.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}
	return domain.SearchPage{
		Rooms:      rooms,
		Keyword:    r.Keyword,
		Total:      r.Total,
		Page:       r.Page,
		Limit:      r.Limit,
		TotalPages: totalPages,
		Path:       path,
	}
}

type addressDTO struct {
	Province      string `json:"province"`
	District      string `json:"district"`
	Ward          string `json:"ward"`
	AddressDetail string `json:"address_detail"`
	FullAddress   string `json:"full_address"`
}

type landlordDTO struct {
	ID    *string `json:"id"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Role  *string `json:"role"`
}

type roomDetailDTO struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	Address     addressDTO  `json:"address"`
	Area        float64     `json:"area"`
	Price       float64     `json:"price"`
	RoomStatus  string      `json:"room_status"`
	Images      []string    `json:"images"`
	CreatedAt   string      `json:"created_at"`
	Landlord    landlordDTO `json:"landlord"`
}

type roomDetailResponse struct {
	Success bool          `json:"success"`
	Room    roomDetailDTO `json:"room"`
}

func (d roomDetailDTO) toDomain() domain.RoomDetail {
	return domain.RoomDetail{
		ID:          d.ID,
		Title:       d.Title,
		Description: deref(d.Description),
		Address: domain.Address{
			Province:      d.Address.Province,
			District:      d.Address.District,
			Ward:          d.Address.Ward,
			AddressDetail: d.Address.AddressDetail,
			FullAddress:   d.Address.FullAddress,
		},
		Area:      d.Area,
		Price:     d.Price,
		Status:    domain.RoomStatus(d.RoomStatus),
		Images:    d.Images,
		CreatedAt: parseTimestamp(d.CreatedAt),
		Landlord: domain.Landlord{
			ID:    deref(d.Landlord.ID),
			Email: deref(d.Landlord.Email),
			Phone: deref(d.Landlord.Phone),
			Role:  domain.Role(deref(d.Landlord.Role)),
		},
	}
}

type ownedRoomDTO struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   *string  `json:"description"`
	Province      string   `json:"province"`
	District      string   `json:"district"`
	Ward          string   `json:"ward"`
	AddressDetail string   `json:"address_detail"`
	Area          float64  `json:"area"`
	Price         float64  `json:"price"`
	RoomStatus    string   `json:"room_status"`
	Images        []string `json:"images"`
	CreatedAt     string   `json:"created_at"`
}

func (d ownedRoomDTO) toDomain() domain.OwnedRoom {
	return domain.OwnedRoom{
		ID:            d.ID,
		Title:         d.Title,
		Description:   deref(d.Description),
		Province:      d.Province,
		District:      d.District,
		Ward:          d.Ward,
		AddressDetail: d.AddressDetail,
		Area:          d.Area,
		Price:         d.Price,
		Status:        domain.RoomStatus(d.RoomStatus),
		Images:        d.Images,
		CreatedAt:     parseTimestamp(d.CreatedAt),
	}
}

type savedRoomResponse struct {
	Message string `json:"message"`
	Room    struct {
		ID     string  `json:"id"`
		Title  string  `json:"title"`
		Price  float64 `json:"price"`
		Area   float64 `json:"area"`
		Status string  `json:"status"`
	} `json:"room"`
}

func (r savedRoomResponse) toDomain() domain.SavedRoom {
	return domain.SavedRoom{
		ID:      r.Room.ID,
		Title:   r.Room.Title,
		Price:   r.Room.Price,
		Area:    r.Room.Area,
		Status:  domain.RoomStatus(r.Room.Status),
		Message: r.Message,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// backend отдает isoformat() без зоны; такие метки считаются UTC
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
