package contracts

import (
	"strconv"
	"strings"
	"time"

	"roomfinder/internal/core/domain"
)

const (
	RoomFormSchema    = "RoomForm/1.0.0"
	MaxRoomArea       = 1000.0
	placeholderFormat = "https://picsum.photos/400/300?random="
)

var roomFormMessages = map[string]string{
	"title":          "title is required",
	"province":       "province is required",
	"district":       "district is required",
	"ward":           "ward is required",
	"address_detail": "address is required",
	"area":           "area must be a number",
	"price":          "price must be a number",
	"room_status":    "status must be available or rented",
	"images":         "images must be valid URLs",
}

// PlaceholderImage - картинка-заглушка для объявления без фотографий.
func PlaceholderImage(seed string) string {
	return placeholderFormat + seed
}

// NormalizeImages убирает пустые и повторяющиеся ссылки, сохраняя порядок.
func NormalizeImages(images []string) []string {
	seen := make(map[string]struct{}, len(images))
	out := make([]string, 0, len(images))
	for _, img := range images {
		img = strings.TrimSpace(img)
		if img == "" {
			continue
		}
		if _, dup := seen[img]; dup {
			continue
		}
		seen[img] = struct{}{}
		out = append(out, img)
	}
	return out
}

// ValidateRoomForm проверяет форму комнаты и собирает тело запроса.
// Пустой статус считается "available", без фотографий подставляется заглушка.
func ValidateRoomForm(form domain.RoomForm, now time.Time) (domain.RoomPayload, error) {
	form.Images = NormalizeImages(form.Images)
	if len(form.Images) == 0 {
		form.Images = []string{PlaceholderImage(strconv.FormatInt(now.UnixMilli(), 10))}
	}
	if strings.TrimSpace(form.Status) == "" {
		form.Status = string(domain.RoomAvailable)
	}

	fields := validateForm(RoomFormSchema, form, roomFormMessages)
	if fields == nil {
		fields = make(map[string]string)
	}

	var area, price float64
	if _, bad := fields["area"]; !bad {
		area, _ = strconv.ParseFloat(strings.TrimSpace(form.Area), 64)
		if area <= 0 || area > MaxRoomArea {
			fields["area"] = "area must be greater than 0 and at most 1000"
		}
	}
	if _, bad := fields["price"]; !bad {
		price, _ = strconv.ParseFloat(strings.TrimSpace(form.Price), 64)
		if price <= 0 {
			fields["price"] = "price must be greater than 0"
		}
	}

	if err := fieldErrors(fields); err != nil {
		return domain.RoomPayload{}, err
	}

	return domain.RoomPayload{
		Title:         strings.TrimSpace(form.Title),
		Description:   strings.TrimSpace(form.Description),
		Province:      form.Province,
		District:      form.District,
		Ward:          form.Ward,
		AddressDetail: strings.TrimSpace(form.AddressDetail),
		Area:          area,
		Price:         price,
		Status:        domain.RoomStatus(form.Status),
		Images:        form.Images,
	}, nil
}
