package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker/v2"

	"github.com/apulsec/blog-auth-service/internal/config"
	"github.com/apulsec/blog-auth-service/internal/models"
)

// Fallback — политика деградации конкретного call-site-а при отказе каталога.
// Получает причину отказа (в т.ч. ErrNotFound и ErrUnavailable) и решает,
// чем его заместить. Передаётся явно при вызове: у login и у обогащения
// противоположная семантика отказа, общего дефолта быть не может.
type Fallback func(identityType, identifier string, cause error) (*models.DirectoryRecord, error)

// UnknownUser — fallback для read-only обогащения: синтетическая запись
// без userId и с неактивным статусом. Вызывающая сторона может продолжить
// работу деградированно; для login такой fallback непригоден — там отказ
// каталога обязан остаться отказом.
func UnknownUser(_, identifier string, _ error) (*models.DirectoryRecord, error) {
	return &models.DirectoryRecord{
		Identifier: identifier,
		Username:   "unknown",
		Status:     models.StatusDeactivated,
	}, nil
}

// Resilient оборачивает Client трёхпозиционным circuit breaker-ом.
// Состояние breaker-а — собственность экземпляра (внедряется зависимостью,
// не глобальный синглтон) и доступно через State для метрик и тестов.
type Resilient struct {
	client Client
	cb     *gobreaker.CircuitBreaker[*models.DirectoryRecord]
}

// NewResilient создаёт обёртку с порогами из конфигурации.
// ErrNotFound не считается отказом каталога: сервис ответил.
func NewResilient(client Client, cfg config.BreakerConfig, lg *slog.Logger) *Resilient {
	if lg == nil {
		lg = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "user-directory",
		MaxRequests: cfg.HalfOpenMaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRateThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			lg.Warn("breaker_state_change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &Resilient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker[*models.DirectoryRecord](settings),
	}
}

// State возвращает текущее состояние breaker-а (Closed/HalfOpen/Open).
func (r *Resilient) State() gobreaker.State { return r.cb.State() }

// Lookup — строгий вариант: ErrNotFound проходит как есть, любой иной отказ
// (сетевая ошибка, таймаут, открытый breaker) становится ErrUnavailable.
// Используется на пути login: отказ каталога не должен маскироваться
// под неверные учётные данные.
func (r *Resilient) Lookup(ctx context.Context, identityType, identifier string) (*models.DirectoryRecord, error) {
	const op = "directory.Resilient.Lookup"

	record, err := r.cb.Execute(func() (*models.DirectoryRecord, error) {
		return r.client.Lookup(ctx, identityType, identifier)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}

	return record, nil
}

// LookupWithFallback — деградирующий вариант: любой отказ (включая NotFound
// и короткое замыкание breaker-а) передаётся в fallback call-site-а.
func (r *Resilient) LookupWithFallback(ctx context.Context, identityType, identifier string, fb Fallback) (*models.DirectoryRecord, error) {
	record, err := r.cb.Execute(func() (*models.DirectoryRecord, error) {
		return r.client.Lookup(ctx, identityType, identifier)
	})
	if err != nil {
		return fb(identityType, identifier, err)
	}

	return record, nil
}
