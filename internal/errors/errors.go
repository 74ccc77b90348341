// errors стандартизирует ответы об ошибках HTTP-слоя auth-сервиса.
// На вход он принимает доменную ошибку (sentinel из пакета service),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Принципы маппинга:
//   - все credential-ошибки (неверный логин/пароль, невалидный, просроченный,
//     отозванный токен) схлопываются в единый 401 с generic-сообщением;
//   - недоступность каталога или хранилища отзыва — 503: клиент должен
//     отличать "вы не авторизованы" от "система недоступна";
//   - прочее — 500 без деталей.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/apulsec/blog-auth-service/internal/service"
)

// APIError — единый формат ошибки для клиента.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ErrInvalidArgument — локальная ошибка парсинга входных данных транспорта.
var ErrInvalidArgument = errors.New("invalid argument")

// ToHTTP конвертирует доменную ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не замаскировать баг;
//   - credential-класс — 401 с одним и тем же сообщением независимо от того,
//     какой именно фактор не прошёл;
//   - outage-класс — 503.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, envelope("internal", "internal error")
	}

	switch {
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest, envelope("invalid_argument", "invalid argument")

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized, envelope("unauthenticated", "unauthenticated")

	case errors.Is(err, service.ErrDirectoryUnavailable),
		errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, envelope("unavailable", "service unavailable")

	default:
		return http.StatusInternalServerError, envelope("internal", "internal error")
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func envelope(code, msg string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: msg}}
}
