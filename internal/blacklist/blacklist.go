// blacklist — хранилище отозванных идентификаторов access-токенов (jti).
// Запись живёт ровно остаток срока действия токена: после естественного
// истечения отклонение гарантирует сам кодек, и хранилище самоочищается.
package blacklist

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable — backend хранилища недоступен. Отличается от "ключ не
// найден" (не отозван): политику поведения при недоступности выбирает
// вызывающая сторона, хранилище её не навязывает.
var ErrUnavailable = errors.New("blacklist store unavailable")

// Store — контракт хранилища отозванных токенов.
// Повторный отзыв того же jti — безвредная перезапись, координация
// конкурентных вызовов не требуется.
type Store interface {
	// Revoke записывает jti с заданным TTL. При ttl <= 0 ничего не пишет:
	// токен уже истёк и отклоняется по сроку.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked проверяет наличие jti. При недоступности backend-а
	// возвращает ErrUnavailable, а не false.
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Close закрывает соединение с backend-ом.
	Close() error
}
