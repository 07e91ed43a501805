package rest

import (
	"context"

	"roomfinder/internal/contextkeys"
	"roomfinder/internal/core/port"
)

// Navigator записывает маршрут в ячейку текущего запроса; ответ затем
// превращается в редирект для браузера.
type Navigator struct{}

var _ port.Navigator = Navigator{}

func (Navigator) Navigate(ctx context.Context, route string) {
	if r, ok := contextkeys.RedirectFromContext(ctx); ok {
		r.Set(route)
	}
}
