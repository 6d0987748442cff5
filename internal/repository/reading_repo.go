package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/models"

	"github.com/google/uuid"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite { return &ReadingSQLite{db: db} }

var _ ReadingRepo = (*ReadingSQLite)(nil)

const (
	insertReadingSQL = `INSERT INTO readings (id, equipment, temperature, recorded_at) VALUES (?, ?, ?, ?)`

	selectReadingsSQL = `SELECT id, equipment, temperature, recorded_at FROM readings`

	selectDistinctEquipmentSQL = `SELECT DISTINCT equipment FROM readings ORDER BY equipment`

	selectStatsSQL = `
		SELECT COUNT(*), AVG(temperature), MIN(temperature), MAX(temperature), MAX(recorded_at)
		FROM readings WHERE equipment = ?
	`

	deleteOlderThanSQL = `DELETE FROM readings WHERE recorded_at < ?`
)

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// Insert appends a reading. A missing ID is generated.
func (r *ReadingSQLite) Insert(ctx context.Context, rd models.Reading) error {
	if rd.ID == "" {
		rd.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, insertReadingSQL,
		rd.ID,
		rd.Equipment,
		rd.Temperature,
		toMillis(rd.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert reading for %q: %w", rd.Equipment, err)
	}
	return nil
}

// Search returns readings matching every non-zero field of f, newest first
// unless ascending is set. f.Limit <= 0 means no LIMIT clause.
func (r *ReadingSQLite) Search(ctx context.Context, f models.ReadingFilter, ascending bool) ([]models.Reading, error) {
	var (
		conds []string
		args  []any
	)
	if f.Equipment != "" {
		conds = append(conds, "equipment = ?")
		args = append(args, f.Equipment)
	}
	if !f.StartDate.IsZero() {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, toMillis(f.StartDate))
	}
	if !f.EndDate.IsZero() {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, toMillis(f.EndDate))
	}
	if f.MinTemperature != nil {
		conds = append(conds, "temperature >= ?")
		args = append(args, *f.MinTemperature)
	}
	if f.MaxTemperature != nil {
		conds = append(conds, "temperature <= ?")
		args = append(args, *f.MaxTemperature)
	}

	q := selectReadingsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	if ascending {
		q += " ORDER BY recorded_at ASC"
	} else {
		q += " ORDER BY recorded_at DESC"
	}
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Reading, 0, 64)
	for rows.Next() {
		var (
			rd models.Reading
			ms int64
		)
		if err := rows.Scan(&rd.ID, &rd.Equipment, &rd.Temperature, &ms); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		rd.Timestamp = fromMillis(ms)
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return out, nil
}

func (r *ReadingSQLite) DistinctEquipment(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, selectDistinctEquipmentSQL)
	if err != nil {
		return nil, fmt.Errorf("query distinct equipment: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0, 16)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equipment: %w", err)
	}
	return out, nil
}

// Stats aggregates all readings of equipment. An unknown equipment yields
// the zero value with a nil LastReading. The average is not rounded here.
func (r *ReadingSQLite) Stats(ctx context.Context, equipment string) (models.EquipmentStats, error) {
	var (
		st       models.EquipmentStats
		avg      sql.NullFloat64
		minT     sql.NullFloat64
		maxT     sql.NullFloat64
		lastMsec sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, selectStatsSQL, equipment).
		Scan(&st.Count, &avg, &minT, &maxT, &lastMsec)
	if err != nil {
		return models.EquipmentStats{}, fmt.Errorf("stats for %q: %w", equipment, err)
	}
	if st.Count == 0 {
		return models.EquipmentStats{}, nil
	}
	st.AvgTemperature = avg.Float64
	st.MinTemperature = minT.Float64
	st.MaxTemperature = maxT.Float64
	if lastMsec.Valid {
		last := fromMillis(lastMsec.Int64)
		st.LastReading = &last
	}
	return st, nil
}

// DeleteOlderThan removes readings strictly older than cutoff and reports how many.
func (r *ReadingSQLite) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteOlderThanSQL, toMillis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete readings before %s: %w", cutoff.UTC().Format(time.RFC3339), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
