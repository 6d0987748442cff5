package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/models"
)

type Authorization interface {
	Create(u models.User) (int, error)
	GetByUsername(username string) (*models.User, error)
	Count() (int, error)
}

// ReadingRepo is the append-only telemetry store.
type ReadingRepo interface {
	Insert(ctx context.Context, r models.Reading) error
	Search(ctx context.Context, f models.ReadingFilter, ascending bool) ([]models.Reading, error)
	DistinctEquipment(ctx context.Context) ([]string, error)
	Stats(ctx context.Context, equipment string) (models.EquipmentStats, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type Repository struct {
	Readings ReadingRepo
	Auth     Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Readings: NewReadingSQLite(db),
		Auth:     NewUserRepository(db),
	}
}
