package port

import (
	"context"

	"roomfinder/internal/core/domain"
)

// SessionPort - то, что шлюзу запросов нужно знать о сессии.
type SessionPort interface {
	// Token возвращает текущий токен или пустую строку.
	Token() string
	// Logout сбрасывает сессию в памяти и в хранилище.
	Logout(ctx context.Context) error
}

// LoginRoute - маршрут страницы входа.
const LoginRoute = "/login"

// Navigator переводит пользователя на другой маршрут интерфейса.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

// NavigatorFunc позволяет использовать функцию как Navigator.
type NavigatorFunc func(ctx context.Context, route string)

func (f NavigatorFunc) Navigate(ctx context.Context, route string) { f(ctx, route) }

// SessionHolderPort - сессия с точки зрения сценариев входа и управления объявлениями.
type SessionHolderPort interface {
	SessionPort
	Login(ctx context.Context, token string, user domain.User) error
	User() (domain.User, bool)
}
