package domain

import (
	"strconv"
	"time"
)

// RoomStatus - статус объявления.
type RoomStatus string

const (
	RoomAvailable RoomStatus = "available"
	RoomRented    RoomStatus = "rented"
)

// RoomListing - карточка комнаты в результатах поиска.
type RoomListing struct {
	ID            string
	Title         string
	Province      string
	District      string
	Ward          string
	Area          float64
	Price         float64
	Images        []string
	CreatedAt     time.Time
	LandlordEmail string
	LandlordPhone string
}

// Address - адрес комнаты в карточке деталей.
type Address struct {
	Province      string
	District      string
	Ward          string
	AddressDetail string
	FullAddress   string
}

// Landlord - контакты владельца.
type Landlord struct {
	ID    string
	Email string
	Phone string
	Role  Role
}

// RoomDetail - полная карточка комнаты с контактами владельца.
type RoomDetail struct {
	ID          string
	Title       string
	Description string
	Address     Address
	Area        float64
	Price       float64
	Status      RoomStatus
	Images      []string
	CreatedAt   time.Time
	Landlord    Landlord
}

// OwnedRoom - комната в кабинете арендодателя.
type OwnedRoom struct {
	ID            string
	Title         string
	Description   string
	Province      string
	District      string
	Ward          string
	AddressDetail string
	Area          float64
	Price         float64
	Status        RoomStatus
	Images        []string
	CreatedAt     time.Time
}

// RoomForm - сырые значения формы создания/редактирования, как их ввел пользователь.
type RoomForm struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Province      string   `json:"province"`
	District      string   `json:"district"`
	Ward          string   `json:"ward"`
	AddressDetail string   `json:"address_detail"`
	Area          string   `json:"area"`
	Price         string   `json:"price"`
	Status        string   `json:"room_status"`
	Images        []string `json:"images"`
}

// FormFromRoom заполняет форму значениями существующей комнаты (режим редактирования).
func FormFromRoom(r OwnedRoom) RoomForm {
	return RoomForm{
		Title:         r.Title,
		Description:   r.Description,
		Province:      r.Province,
		District:      r.District,
		Ward:          r.Ward,
		AddressDetail: r.AddressDetail,
		Area:          formatNumber(r.Area),
		Price:         formatNumber(r.Price),
		Status:        string(r.Status),
		Images:        append([]string(nil), r.Images...),
	}
}

// RoomPayload - проверенное тело запроса создания/обновления комнаты.
type RoomPayload struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Province      string     `json:"province"`
	District      string     `json:"district"`
	Ward          string     `json:"ward"`
	AddressDetail string     `json:"address_detail"`
	Area          float64    `json:"area"`
	Price         float64    `json:"price"`
	Status        RoomStatus `json:"room_status"`
	Images        []string   `json:"images"`
}

// SavedRoom - краткий ответ backend после создания или обновления.
type SavedRoom struct {
	ID      string
	Title   string
	Price   float64
	Area    float64
	Status  RoomStatus
	Message string
}

// SearchPath - какой способ поиска активен.
type SearchPath string

const (
	PathKeyword SearchPath = "keyword"
	PathFilter  SearchPath = "filter"
)

// SearchPage - страница результатов поиска.
type SearchPage struct {
	Rooms      []RoomListing
	Keyword    string
	Total      int
	Page       int
	Limit      int
	TotalPages int
	Path       SearchPath
	// ResetScroll - список нужно прокрутить в начало (страницы фильтр-поиска после первой).
	ResetScroll bool
}

// Empty - пустой результат, это не ошибка.
func (p SearchPage) Empty() bool {
	return len(p.Rooms) == 0
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
