// models содержит доменные типы auth-сервиса: запись каталога пользователей,
// принципала и пару токенов. Типы не содержат поведения — только данные,
// которыми обмениваются слои directory/service/transport.
package models

import "time"

// AccountStatus — статус учётной записи в каталоге пользователей.
// Числовые значения совпадают с контрактом user-сервиса.
type AccountStatus int

const (
	StatusActive      AccountStatus = 0
	StatusDisabled    AccountStatus = 1
	StatusPending     AccountStatus = 2
	StatusDeactivated AccountStatus = 3
)

// Active сообщает, допускается ли вход под этой учётной записью.
func (s AccountStatus) Active() bool { return s == StatusActive }

// DirectoryRecord — данные аутентификации пользователя из каталога.
// Read-only с точки зрения auth-сервиса: запись живёт не дольше одного запроса.
type DirectoryRecord struct {
	UserID         int64
	Identifier     string
	CredentialHash string
	Username       string
	Status         AccountStatus
}

// Principal — аутентифицированный субъект для конвейера авторизации.
// CredentialHash используется только при проверке пароля и не должен
// попадать в логи или ответы.
type Principal struct {
	Username       string
	CredentialHash string
	UserID         int64
	Authorities    []string
}

// TokenPair — результат успешного login/refresh.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	TokenType       string
	AccessExpiresAt time.Time
}
