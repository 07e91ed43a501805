package port

import "context"

// Ключи долговременного локального хранилища сессии.
const (
	TokenStorageKey = "access_token"
	UserStorageKey  = "user"
)

// KeyValueStore - долговременное локальное хранилище строк (аналог localStorage).
type KeyValueStore interface {
	// Get возвращает значение и признак его наличия.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
