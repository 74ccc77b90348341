package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/apulsec/blog-auth-service/internal/directory"
	"github.com/apulsec/blog-auth-service/internal/models"
	"github.com/apulsec/blog-auth-service/internal/pkg/log"
	"github.com/apulsec/blog-auth-service/internal/principal"
	"github.com/apulsec/blog-auth-service/internal/token"
)

// Login аутентифицирует пользователя и выпускает пару access+refresh.
//
// Каталог вызывается в строгом режиме: его недоступность возвращается как
// ErrDirectoryUnavailable и не превращается в ErrInvalidCredentials.
// NotFound, неактивный статус и несовпавший пароль схлопываются в единый
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	const op = "service.auth.Login"

	lg := log.From(ctx)

	if username == "" || password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	record, err := s.directory.Lookup(ctx, directory.IdentityTypeOf(username), username)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		lg.Error("directory_lookup_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrDirectoryUnavailable)
	}

	p, err := principal.FromRecord(record)
	if err != nil {
		lg.Warn("login_rejected",
			slog.String("op", op),
			slog.String("reason", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if !checkPassword(p.CredentialHash, password) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	userID := p.UserID

	return s.issueTokenPair(op, p.Username, &userID)
}

// Logout отзывает предъявленный access-токен на остаток его срока действия.
//
// Выход с невалидным или просроченным токеном безвреден и не является
// ошибкой: цель (токен не принимается) уже достигнута. Повторный logout
// того же токена — идемпотентная перезапись.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	const op = "service.auth.Logout"

	lg := log.From(ctx)

	claims, err := s.codec.ParseAndVerify(rawToken)
	if err != nil {
		lg.Debug("logout_token_ignored",
			slog.String("op", op),
			slog.String("reason", err.Error()),
		)
		return nil
	}

	// Токен без jti (refresh-формы) отзывать нечем.
	if claims.TokenID == "" {
		return nil
	}

	// Remaining TTL <= 0 хранилище отбрасывает само: истёкший токен
	// уже отклоняется по сроку.
	if err := s.store.Revoke(ctx, claims.TokenID, time.Until(claims.ExpiresAt)); err != nil {
		lg.Error("revoke_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
	}

	return nil
}

// Refresh проверяет refresh-токен и выпускает новую пару токенов.
//
// userId подтягивается из каталога в деградирующем режиме: при отказе или
// отсутствии записи новая пара выпускается без userId-claim-а — такой
// access-токен всё ещё пригоден для грубой аутентификации.
//
// Потреблённый refresh-токен не отзывается и действует до естественного
// истечения.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	const op = "service.auth.Refresh"

	claims, err := s.codec.ParseAndVerify(refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	subject := claims.Subject

	record, err := s.directory.LookupWithFallback(ctx,
		directory.IdentityTypeOf(subject), subject, directory.UnknownUser)
	if err != nil {
		record = nil
	}

	var userID *int64
	if record != nil && record.UserID != 0 {
		uid := record.UserID
		userID = &uid
	}

	return s.issueTokenPair(op, subject, userID)
}

// Validate проверяет access-токен: подпись, срок, затем отзыв.
//
// Просроченный токен отклоняется до обращения к хранилищу отзыва — лишний
// I/O на истёкших токенах не нужен. Подпись/формат логируются на уровне
// error (подделка или рассинхрон секрета), истечение — не выше debug.
func (s *Service) Validate(ctx context.Context, accessToken string) (string, error) {
	const op = "service.auth.Validate"

	lg := log.From(ctx)

	claims, err := s.codec.ParseAndVerify(accessToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			lg.Debug("access_token_expired", slog.String("op", op))
			return "", fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		lg.Error("access_token_rejected",
			slog.String("op", op),
			slog.String("reason", err.Error()),
		)
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.TokenID != "" {
		revoked, err := s.store.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			if s.failClosed {
				lg.Error("blacklist_unavailable_fail_closed",
					slog.String("op", op),
					slog.String("err", err.Error()),
				)
				return "", fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
			}

			lg.Warn("blacklist_unavailable_fail_open",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			revoked = false
		}

		if revoked {
			return "", fmt.Errorf("%s: %w", op, ErrTokenRevoked)
		}
	}

	return claims.Subject, nil
}

// issueTokenPair выпускает пару access+refresh для subject.
func (s *Service) issueTokenPair(op, subject string, userID *int64) (*models.TokenPair, error) {
	accessToken, err := s.codec.MintAccess(subject, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := s.codec.MintRefresh(subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		TokenType:       "Bearer",
		AccessExpiresAt: time.Now().UTC().Add(s.codec.AccessTTL()),
	}, nil
}
