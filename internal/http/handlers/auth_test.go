package handlers_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/apulsec/blog-auth-service/internal/blacklist"
	"github.com/apulsec/blog-auth-service/internal/config"
	"github.com/apulsec/blog-auth-service/internal/directory"
	authhttp "github.com/apulsec/blog-auth-service/internal/http"
	"github.com/apulsec/blog-auth-service/internal/models"
	"github.com/apulsec/blog-auth-service/internal/service"
	"github.com/apulsec/blog-auth-service/internal/token"
	"github.com/apulsec/blog-auth-service/mocks"
)

// testServer — полный стек HTTP-слоя: роутер + middleware + реальный service
// поверх gomock-зависимостей. Хендлеры тестируем через httptest, как их
// увидит реальный клиент.
type testServer struct {
	handler http.Handler
	codec   *token.Codec
	dir     *mocks.MockDirectory
	store   *mocks.MockStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	dir := mocks.NewMockDirectory(ctrl)
	store := mocks.NewMockStore(ctrl)

	codec, err := token.New(config.AuthConfig{
		JWTSecret:       base64.StdEncoding.EncodeToString([]byte("handlers-test-secret")),
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "blog-auth-service",
	})
	require.NoError(t, err)

	svc := service.New(codec, store, dir, config.BlacklistConfig{OutagePolicy: config.OutageFailOpen})

	handler := authhttp.NewRouter(svc, authhttp.Options{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Timeout: 5 * time.Second,
	})

	return &testServer{handler: handler, codec: codec, dir: dir, store: store}
}

func (ts *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func hashPW(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

type pairBody struct {
	AccessToken     string `json:"access_token"`
	RefreshToken    string `json:"refresh_token"`
	TokenType       string `json:"token_type"`
	AccessExpiresAt int64  `json:"access_expires_at"`
}

type errorBody struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

func TestLogin_OK(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	ts.dir.EXPECT().
		Lookup(gomock.Any(), directory.IdentityUsername, "alice").
		Return(&models.DirectoryRecord{
			UserID:         7,
			Identifier:     "alice",
			CredentialHash: hashPW(t, "S3cret!pw"),
			Username:       "alice",
			Status:         models.StatusActive,
		}, nil)

	rec := ts.do(t, http.MethodPost, "/auth/login",
		map[string]string{"username": "alice", "password": "S3cret!pw"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var pair pairBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)
	require.InDelta(t, time.Now().Add(time.Minute).Unix(), pair.AccessExpiresAt, 2)
}

func TestLogin_BadJSON(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "invalid_argument", body.Error.Code)
}

func TestLogin_UnknownFields(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/login",
		map[string]string{"username": "alice", "password": "pw", "extra": "nope"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	ts.dir.EXPECT().
		Lookup(gomock.Any(), directory.IdentityUsername, "alice").
		Return(&models.DirectoryRecord{
			UserID:         7,
			Identifier:     "alice",
			CredentialHash: hashPW(t, "right-password"),
			Status:         models.StatusActive,
		}, nil)

	rec := ts.do(t, http.MethodPost, "/auth/login",
		map[string]string{"username": "alice", "password": "wrong-password"})

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "unauthenticated", body.Error.Code)
	// request_id формируется middleware и попадает в конверт ошибки.
	require.NotEmpty(t, body.Error.RequestID)
	require.Equal(t, body.Error.RequestID, rec.Header().Get("X-Request-Id"))
}

func TestLogin_DirectoryDown(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	ts.dir.EXPECT().
		Lookup(gomock.Any(), directory.IdentityUsername, "alice").
		Return(nil, fmt.Errorf("lookup: %w", directory.ErrUnavailable))

	rec := ts.do(t, http.MethodPost, "/auth/login",
		map[string]string{"username": "alice", "password": "pw"})

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "unavailable", body.Error.Code)
}

func TestLogout_ValidToken(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	access, err := ts.codec.MintAccess("alice", nil)
	require.NoError(t, err)

	ts.store.EXPECT().
		Revoke(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "logged out")
}

// Logout без заголовка авторизации всё равно 200: контракт выхода
// идемпотентен и не раскрывает состояние токена.
func TestLogout_NoToken(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout_StoreDown(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	access, err := ts.codec.MintAccess("alice", nil)
	require.NoError(t, err)

	ts.store.EXPECT().
		Revoke(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("revoke: %w", blacklist.ErrUnavailable))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRefresh_OK(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	refresh, err := ts.codec.MintRefresh("alice")
	require.NoError(t, err)

	ts.dir.EXPECT().
		LookupWithFallback(gomock.Any(), directory.IdentityUsername, "alice", gomock.Any()).
		Return(&models.DirectoryRecord{
			UserID:     7,
			Identifier: "alice",
			Status:     models.StatusActive,
		}, nil)

	rec := ts.do(t, http.MethodPost, "/auth/refresh",
		map[string]string{"refresh_token": refresh})

	require.Equal(t, http.StatusOK, rec.Code)

	var pair pairBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, refresh, pair.RefreshToken)
}

func TestRefresh_Malformed(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/refresh",
		map[string]string{"refresh_token": "not.a.jwt"})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	access, err := ts.codec.MintAccess("alice", nil)
	require.NoError(t, err)

	ts.store.EXPECT().
		IsRevoked(gomock.Any(), gomock.Any()).
		Return(false, nil)

	rec := ts.do(t, http.MethodGet, "/auth/validate?token="+access, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"subject":"alice"`)
}

func TestValidate_MissingToken(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/auth/validate", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidate_Revoked(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	access, err := ts.codec.MintAccess("alice", nil)
	require.NoError(t, err)

	ts.store.EXPECT().
		IsRevoked(gomock.Any(), gomock.Any()).
		Return(true, nil)

	rec := ts.do(t, http.MethodGet, "/auth/validate?token="+access, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Маршруты могут монтироваться под базовым префиксом (например, /api).
func TestRouter_BasePath(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	dir := mocks.NewMockDirectory(ctrl)
	store := mocks.NewMockStore(ctrl)

	codec, err := token.New(config.AuthConfig{
		JWTSecret:       base64.StdEncoding.EncodeToString([]byte("handlers-test-secret")),
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "blog-auth-service",
	})
	require.NoError(t, err)

	svc := service.New(codec, store, dir, config.BlacklistConfig{OutagePolicy: config.OutageFailOpen})
	handler := authhttp.NewRouter(svc, authhttp.Options{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		BasePath: "/api",
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
