package handlers

import (
	"net/http"
	"strings"

	apierrors "github.com/apulsec/blog-auth-service/internal/errors"
	"github.com/apulsec/blog-auth-service/internal/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	AccessToken     string `json:"access_token"`
	RefreshToken    string `json:"refresh_token"`
	TokenType       string `json:"token_type"`
	AccessExpiresAt int64  `json:"access_expires_at"`
}

type validateResponse struct {
	Subject string `json:"subject"`
}

type logoutResponse struct {
	Message string `json:"message"`
}

func pairResponse(tp *models.TokenPair) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:     tp.AccessToken,
		RefreshToken:    tp.RefreshToken,
		TokenType:       tp.TokenType,
		AccessExpiresAt: tp.AccessExpiresAt.Unix(),
	}
}

// Login — POST /auth/login.
// Маппинг ошибок: ErrInvalidCredentials -> 401, ErrDirectoryUnavailable -> 503.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	pair, err := h.Service.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pairResponse(pair))
}

// Logout — POST /auth/logout.
// Токен берётся из Authorization: Bearer <token>. Контракт: 200 независимо
// от того, был ли токен валиден; 503 только при недоступности хранилища
// отзыва.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Logout(r.Context(), bearerToken(r)); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, logoutResponse{Message: "logged out"})
}

// Refresh — POST /auth/refresh.
// Маппинг ошибок: ErrInvalidToken/ErrTokenExpired -> 401.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	pair, err := h.Service.Refresh(r.Context(), in.RefreshToken)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pairResponse(pair))
}

// Validate — GET /auth/validate?token=<jwt>.
// Внутренний эндпоинт для gateway: 200 + subject при валидном токене,
// 401 при invalid/expired/revoked, 503 при fail_closed-отказе хранилища.
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	subject, err := h.Service.Validate(r.Context(), raw)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, validateResponse{Subject: subject})
}

// bearerToken достаёт "сырой" токен из Authorization: Bearer <token>.
// Пустая строка, если заголовка нет или он другой схемы.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")

	const prefix = "Bearer "
	if auth == "" || !strings.HasPrefix(auth, prefix) {
		return ""
	}

	return strings.TrimSpace(auth[len(prefix):])
}
