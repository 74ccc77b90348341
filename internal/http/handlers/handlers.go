// handlers содержит HTTP-эндпоинты auth-сервиса.
// Здесь выполняется только парсинг входа и маппинг данных/ошибок доменного
// слоя (service) в HTTP. Вся бизнес-логика находится в пакете service.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/apulsec/blog-auth-service/internal/service"
)

// Handlers агрегирует зависимости эндпоинтов.
type Handlers struct {
	Service *service.Service
}

func New(s *service.Service) *Handlers {
	return &Handlers{Service: s}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}
