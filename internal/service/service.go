// service содержит бизнес-логику auth-сервиса: login, logout, refresh и
// validate поверх кодека токенов, хранилища отзыва и клиента каталога.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для
//     конкурентного использования (состояние breaker-а живёт внутри
//     directory-клиента, состояние отзыва — во внешнем хранилище).
//   - Сервис не ретраит вызовы зависимостей: ретраи, если нужны,
//     принадлежат транспортному слою.
//   - Ошибки возвращаются sentinel-ами и далее маппятся транспортом
//     на HTTP-статусы (см. комментарии к переменным ошибок ниже).
package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/apulsec/blog-auth-service/internal/blacklist"
	"github.com/apulsec/blog-auth-service/internal/config"
	"github.com/apulsec/blog-auth-service/internal/directory"
	"github.com/apulsec/blog-auth-service/internal/models"
	"github.com/apulsec/blog-auth-service/internal/token"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна, пользователь не найден
	// или учётная запись неактивна. Намеренно не различаем причины, чтобы не
	// давать перебирать идентификаторы. Транспорт: HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен некорректен по формату или подписи.
	// Транспорт: HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. Штатное состояние.
	// Транспорт: HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked — jti токена числится в хранилище отзыва.
	// Транспорт: HTTP 401.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrDirectoryUnavailable — каталог пользователей недоступен во время
	// login. Отличимо от неверного пароля: клиент должен видеть "повторите
	// позже", а не "неверные учётные данные". Транспорт: HTTP 503.
	ErrDirectoryUnavailable = errors.New("directory unavailable")

	// ErrStoreUnavailable — хранилище отзыва недоступно и сконфигурирована
	// политика fail_closed. Транспорт: HTTP 503.
	ErrStoreUnavailable = errors.New("revocation store unavailable")
)

// Directory — контракт resilient-клиента каталога, который нужен сервису.
// Реализуется directory.Resilient.
type Directory interface {
	Lookup(ctx context.Context, identityType, identifier string) (*models.DirectoryRecord, error)
	LookupWithFallback(ctx context.Context, identityType, identifier string, fb directory.Fallback) (*models.DirectoryRecord, error)
}

// Service описывает бизнес-логику auth-сервиса.
type Service struct {
	codec      *token.Codec
	store      blacklist.Store
	directory  Directory
	failClosed bool
}

// New создаёт новый экземпляр Service.
// cfg.OutagePolicy определяет поведение validate при недоступности
// хранилища отзыва: fail_open или fail_closed.
func New(codec *token.Codec, store blacklist.Store, dir Directory, cfg config.BlacklistConfig) *Service {
	return &Service{
		codec:      codec,
		store:      store,
		directory:  dir,
		failClosed: cfg.OutagePolicy == config.OutageFailClosed,
	}
}

// checkPassword сравнивает пароль с bcrypt-хэшем из каталога.
// Схема хэширования зафиксирована снаружи: сервис только проверяет.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
