package contextkeys

import (
	"context"
	"sync"
)

type redirectKeyType struct{}

var redirectKey = redirectKeyType{}

// Redirect - ячейка, куда навигатор записывает маршрут, пока обрабатывается запрос.
type Redirect struct {
	mu    sync.Mutex
	route string
}

// Set запоминает маршрут перехода.
func (r *Redirect) Set(route string) {
	r.mu.Lock()
	r.route = route
	r.mu.Unlock()
}

// Route возвращает записанный маршрут или пустую строку.
func (r *Redirect) Route() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.route
}

// ContextWithRedirect добавляет в контекст пустую ячейку перехода.
func ContextWithRedirect(ctx context.Context) (context.Context, *Redirect) {
	r := &Redirect{}
	return context.WithValue(ctx, redirectKey, r), r
}

// RedirectFromContext возвращает ячейку перехода, если она есть.
func RedirectFromContext(ctx context.Context) (*Redirect, bool) {
	r, ok := ctx.Value(redirectKey).(*Redirect)
	return r, ok
}
