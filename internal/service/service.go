package service

import (
	"context"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/logger"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/metrics"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/models"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/repository"
)

type Authorization interface {
	SignUp(username, password string, admin bool) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (*Claims, error)
	EnsureSuperUser(username, password string) (bool, error)
}

// History persists readings and answers the historical queries.
type History interface {
	Save(ctx context.Context, equipment string, temperature float64, ts time.Time) (models.Reading, error)
	FindByEquipment(ctx context.Context, equipment string, limit int) ([]models.Reading, error)
	FindByFilters(ctx context.Context, f models.ReadingFilter) ([]models.Reading, error)
	List(ctx context.Context, equipment string, limit int, ascending bool) ([]models.Reading, error)
	EquipmentList(ctx context.Context) ([]string, error)
	EquipmentStats(ctx context.Context, equipment string) (models.EquipmentStats, error)
	DeleteOldRecords(ctx context.Context, days int) (int64, error)
}

// Retention runs the background purge of expired readings.
// Stop via context cancellation in main() for graceful shutdown.
type Retention interface {
	Run(ctx context.Context, tick time.Duration)
}

// Options carries the configuration the services need.
type Options struct {
	SigningKey    string
	TokenTTL      time.Duration
	RetentionDays int
}

type Service struct {
	History
	Authorization
	Retention
}

func NewService(repos *repository.Repository, opts Options, m *metrics.Metrics, log *logger.Logger) *Service {
	history := NewHistoryService(repos.Readings)
	return &Service{
		History:       history,
		Authorization: NewAuthService(repos.Auth, opts.SigningKey, opts.TokenTTL),
		Retention:     NewRetentionService(history, opts.RetentionDays, m, log),
	}
}
