// directory — клиент каталога учётных записей (user-сервис).
// Каталог владеет записями identifier/credential/status; auth-сервис только
// читает их и никогда не кэширует дольше одного запроса.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/apulsec/blog-auth-service/internal/config"
	"github.com/apulsec/blog-auth-service/internal/models"
)

// Типы идентификатора, которые понимает каталог.
const (
	IdentityEmail    = "email"
	IdentityUsername = "username"
)

var (
	// ErrNotFound — каталог отвечает, но записи с таким идентификатором нет.
	// Для учёта отказов breaker-а это успех: каталог жив.
	ErrNotFound = errors.New("directory record not found")

	// ErrUnavailable — вызов каталога не удался или был отсечён breaker-ом.
	ErrUnavailable = errors.New("directory unavailable")
)

// IdentityTypeOf выбирает тип идентификатора по его виду:
// наличие '@' считается признаком email.
func IdentityTypeOf(identifier string) string {
	if strings.Contains(identifier, "@") {
		return IdentityEmail
	}

	return IdentityUsername
}

// Client — контракт lookup-а в каталоге.
type Client interface {
	Lookup(ctx context.Context, identityType, identifier string) (*models.DirectoryRecord, error)
}

// HTTPClient — реализация Client поверх внутреннего REST-эндпоинта
// user-сервиса: GET /api/users/internal/auth-details.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

// NewHTTPClient создаёт клиент каталога.
// Превышение cfg.Timeout трактуется как отказ вызова (и учитывается breaker-ом).
func NewHTTPClient(cfg config.DirectoryConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		hc:      &http.Client{Timeout: cfg.Timeout},
	}
}

// Проводной формат ответа user-сервиса.
type authDetailsResponse struct {
	UserID     int64  `json:"userId"`
	Identifier string `json:"identifier"`
	Credential string `json:"credential"`
	Username   string `json:"username"`
	Status     int    `json:"status"`
}

// Lookup запрашивает данные аутентификации по (identityType, identifier).
func (c *HTTPClient) Lookup(ctx context.Context, identityType, identifier string) (*models.DirectoryRecord, error) {
	const op = "directory.HTTPClient.Lookup"

	q := url.Values{}
	q.Set("identityType", identityType)
	q.Set("identifier", identifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/users/internal/auth-details?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	default:
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var body authDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}

	return &models.DirectoryRecord{
		UserID:         body.UserID,
		Identifier:     body.Identifier,
		CredentialHash: body.Credential,
		Username:       body.Username,
		Status:         models.AccountStatus(body.Status),
	}, nil
}
