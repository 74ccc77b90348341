// token реализует кодек bearer-токенов: выпуск и проверку подписанных JWT.
// Кодек чистый (без I/O) и безопасен для конкурентного использования.
//
// Контракт:
//   - access-токен всегда несёт jti (ключ отзыва) и опционально userId;
//   - refresh-токен несёт только subject — индивидуально он не отзываем;
//   - ошибки проверки различимы: ErrExpired — ожидаемое, штатное состояние,
//     ErrSignatureInvalid/ErrMalformed — признак подделки или рассинхрона
//     секрета, вызывающая сторона логирует их строже.
package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/apulsec/blog-auth-service/internal/config"
)

var (
	// ErrMalformed — токен структурно некорректен (не JWT, битые claims).
	ErrMalformed = errors.New("token malformed")

	// ErrSignatureInvalid — подпись не сходится с общим секретом.
	ErrSignatureInvalid = errors.New("token signature invalid")

	// ErrExpired — срок действия токена истёк.
	ErrExpired = errors.New("token expired")
)

// Claims — проверенное содержимое токена.
// TokenID пуст для refresh-токенов; UserID == nil, если claim не встроен.
type Claims struct {
	Subject   string
	TokenID   string
	UserID    *int64
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type accessClaims struct {
	UserID *int64 `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// Codec подписывает и проверяет токены общим HMAC-секретом.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
}

// New создаёт кодек из конфигурации.
// Секрет ожидается в base64; пустой или недекодируемый секрет — ошибка
// конструктора (фатальное условие старта сервиса).
// TTL не валидируются: нулевой или отрицательный TTL даёт сразу просроченные
// токены, это осознанно не охраняемый случай.
func New(cfg config.AuthConfig) (*Codec, error) {
	const op = "token.New"

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%s: jwt secret is not configured", op)
	}

	secret, err := base64.StdEncoding.DecodeString(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("%s: jwt secret is not valid base64: %w", op, err)
	}

	if len(secret) == 0 {
		return nil, fmt.Errorf("%s: jwt secret decodes to empty key", op)
	}

	return &Codec{
		secret:     secret,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		issuer:     cfg.Issuer,
	}, nil
}

// AccessTTL возвращает настроенный срок жизни access-токена.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// MintAccess выпускает access-токен для subject со свежим jti.
// userID встраивается claim-ом, если известен (nil допустим: токен без
// userId всё ещё пригоден для грубой аутентификации).
func (c *Codec) MintAccess(subject string, userID *int64) (string, error) {
	const op = "token.MintAccess"

	now := time.Now().UTC()
	claims := accessClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// MintRefresh выпускает refresh-токен: только subject, длинный TTL, без jti.
func (c *Codec) MintRefresh(subject string) (string, error) {
	const op = "token.MintRefresh"

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// ParseAndVerify проверяет подпись и структуру токена и возвращает claims.
// Ошибки: ErrExpired / ErrSignatureInvalid / ErrMalformed.
func (c *Codec) ParseAndVerify(raw string) (*Claims, error) {
	const op = "token.ParseAndVerify"

	parsed, err := jwt.ParseWithClaims(raw, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: unexpected signing method %q", op, t.Method.Alg())
			}

			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
	)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%s: %w", op, ErrExpired)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%s: %w", op, ErrSignatureInvalid)
		default:
			return nil, fmt.Errorf("%s: %w", op, ErrMalformed)
		}
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformed)
	}

	out := &Claims{
		Subject: claims.Subject,
		TokenID: claims.ID,
		UserID:  claims.UserID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}
