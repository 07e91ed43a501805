package cli

import (
	"context"

	"roomfinder/internal/core/domain"
	"roomfinder/internal/core/port"
	"roomfinder/internal/core/search"
)

type AuthUseCase interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.User, error)
	Register(ctx context.Context, reg domain.Registration) (domain.User, error)
	Logout(ctx context.Context) error
	WhoAmI() (domain.User, error)
}

type SearchUseCase interface {
	SetKeyword(keyword string)
	UpdateSelection(fn func(*domain.FilterSelection) error) error
	Search(ctx context.Context) (domain.SearchPage, error)
	LoadPage(ctx context.Context, page int) (domain.SearchPage, error)
	Options() domain.FilterOptions
}

type RoomsUseCase interface {
	MyRooms(ctx context.Context) ([]domain.OwnedRoom, error)
	Get(ctx context.Context, roomID string) (domain.OwnedRoom, error)
	EditForm(ctx context.Context, roomID string) (domain.RoomForm, error)
	Create(ctx context.Context, form domain.RoomForm) (domain.SavedRoom, error)
	Update(ctx context.Context, roomID string, form domain.RoomForm) (domain.SavedRoom, error)
	Delete(ctx context.Context, roomID string) error
}

type BrowseUseCase interface {
	Detail(ctx context.Context, roomID string) (domain.RoomDetail, error)
}

// Services - то, что командам нужно от собранного приложения.
type Services struct {
	Auth   AuthUseCase
	Search SearchUseCase
	Rooms  RoomsUseCase
	Browse BrowseUseCase
	Geo    port.GeographyPort
	Serve  func(ctx context.Context) error
	Logger port.LoggerPort
}

var _ SearchUseCase = (*search.Composer)(nil)

// Factory собирает сервисы после разбора флагов. close вызывается после команды.
type Factory func(ctx context.Context, envPath string) (services *Services, close func() error, err error)
