package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/models"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/repository"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000

	// recentWindow bounds FindByEquipment to the last day of readings.
	recentWindow = 24 * time.Hour

	MinTemperatureBound = -273.15
	MaxTemperatureBound = 10000.0
)

type HistoryService struct {
	readings repository.ReadingRepo
	now      func() time.Time
}

func NewHistoryService(readings repository.ReadingRepo) *HistoryService {
	return &HistoryService{readings: readings, now: time.Now}
}

// Save appends one reading. The temperature must be finite.
func (s *HistoryService) Save(ctx context.Context, equipment string, temperature float64, ts time.Time) (models.Reading, error) {
	if strings.TrimSpace(equipment) == "" {
		return models.Reading{}, fmt.Errorf("%w: equipment is empty", ErrInvalidReading)
	}
	if math.IsNaN(temperature) || math.IsInf(temperature, 0) {
		return models.Reading{}, fmt.Errorf("%w: temperature %v is not finite", ErrInvalidReading, temperature)
	}
	rd := models.Reading{
		ID:          uuid.NewString(),
		Equipment:   equipment,
		Temperature: temperature,
		Timestamp:   ts.UTC(),
	}
	if err := s.readings.Insert(ctx, rd); err != nil {
		return models.Reading{}, err
	}
	return rd, nil
}

// FindByEquipment returns the readings of the last 24 hours, newest first.
// limit 0 means no cap.
func (s *HistoryService) FindByEquipment(ctx context.Context, equipment string, limit int) ([]models.Reading, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	f := models.ReadingFilter{
		Equipment: equipment,
		StartDate: s.now().Add(-recentWindow),
		Limit:     clampLimit(limit),
	}
	return s.readings.Search(ctx, f, false)
}

// FindByFilters applies the AND-combined filter, newest first.
func (s *HistoryService) FindByFilters(ctx context.Context, f models.ReadingFilter) ([]models.Reading, error) {
	if err := validateFilter(f); err != nil {
		return nil, err
	}
	limit, err := effectiveLimit(f.Limit)
	if err != nil {
		return nil, err
	}
	f.Limit = limit
	return s.readings.Search(ctx, f, false)
}

// List returns the most recent readings, optionally scoped to one equipment.
func (s *HistoryService) List(ctx context.Context, equipment string, limit int, ascending bool) ([]models.Reading, error) {
	limit, err := effectiveLimit(limit)
	if err != nil {
		return nil, err
	}
	return s.readings.Search(ctx, models.ReadingFilter{Equipment: equipment, Limit: limit}, ascending)
}

func (s *HistoryService) EquipmentList(ctx context.Context) ([]string, error) {
	return s.readings.DistinctEquipment(ctx)
}

// EquipmentStats aggregates every stored reading of one equipment. An
// unknown equipment yields the zero value with a nil LastReading.
func (s *HistoryService) EquipmentStats(ctx context.Context, equipment string) (models.EquipmentStats, error) {
	st, err := s.readings.Stats(ctx, equipment)
	if err != nil {
		return models.EquipmentStats{}, err
	}
	st.AvgTemperature = round2(st.AvgTemperature)
	return st, nil
}

// DeleteOldRecords purges readings older than the given number of days.
func (s *HistoryService) DeleteOldRecords(ctx context.Context, days int) (int64, error) {
	if days < 1 {
		return 0, fmt.Errorf("%w: days must be at least 1, got %d", ErrInvalidFilter, days)
	}
	cutoff := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	return s.readings.DeleteOlderThan(ctx, cutoff)
}

func validateFilter(f models.ReadingFilter) error {
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() && f.StartDate.After(f.EndDate) {
		return fmt.Errorf("%w: startDate must be before endDate", ErrInvalidFilter)
	}
	if f.MinTemperature != nil && *f.MinTemperature < MinTemperatureBound {
		return fmt.Errorf("%w: minTemperature must be >= %v", ErrInvalidFilter, MinTemperatureBound)
	}
	if f.MaxTemperature != nil && *f.MaxTemperature > MaxTemperatureBound {
		return fmt.Errorf("%w: maxTemperature must be <= %v", ErrInvalidFilter, MaxTemperatureBound)
	}
	if f.MinTemperature != nil && f.MaxTemperature != nil && *f.MinTemperature > *f.MaxTemperature {
		return fmt.Errorf("%w: minTemperature must not exceed maxTemperature", ErrInvalidFilter)
	}
	return nil
}

// effectiveLimit defaults 0 to DefaultLimit, rejects negatives and clamps
// to MaxLimit.
func effectiveLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	case limit == 0:
		return DefaultLimit, nil
	default:
		return clampLimit(limit), nil
	}
}

func clampLimit(limit int) int {
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
