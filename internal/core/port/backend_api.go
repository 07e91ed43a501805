package port

import (
	"context"

	"roomfinder/internal/core/domain"
)

// AuthAPI - эндпоинты аутентификации backend.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (token string, err error)
	Register(ctx context.Context, reg domain.Registration) error
	// CurrentUser запрашивает /api/users/me с явно переданным токеном.
	CurrentUser(ctx context.Context, token string) (domain.User, error)
}

// SearchAPI - эндпоинты поиска комнат.
type SearchAPI interface {
	SearchByKeyword(ctx context.Context, keyword string, page, limit int) (domain.SearchPage, error)
	SearchByFilters(ctx context.Context, query domain.SearchQuery, page int) (domain.SearchPage, error)
	RoomDetail(ctx context.Context, roomID string) (domain.RoomDetail, error)
}

// OwnerRoomsAPI - CRUD комнат владельца.
type OwnerRoomsAPI interface {
	MyRooms(ctx context.Context) ([]domain.OwnedRoom, error)
	GetRoom(ctx context.Context, roomID string) (domain.OwnedRoom, error)
	CreateRoom(ctx context.Context, payload domain.RoomPayload) (domain.SavedRoom, error)
	UpdateRoom(ctx context.Context, roomID string, payload domain.RoomPayload) (domain.SavedRoom, error)
	DeleteRoom(ctx context.Context, roomID string) error
}
