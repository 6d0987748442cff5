package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/models"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/repository"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/repository/db"
)

// newSQLiteRepo runs against a real modernc sqlite file.
func newSQLiteRepo(t *testing.T) *repository.ReadingSQLite {
	t.Helper()
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "readings.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return repository.NewReadingSQLite(conn)
}

func mustInsert(t *testing.T, repo *repository.ReadingSQLite, equipment string, temp float64, ts time.Time) {
	t.Helper()
	if err := repo.Insert(context.Background(), models.Reading{Equipment: equipment, Temperature: temp, Timestamp: ts}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
}

func TestReadingSQLite_RoundTrip(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	ts := time.Unix(1700000000, 0)
	mustInsert(t, repo, "Linea 1", 725.5, ts)

	got, err := repo.Search(ctx, models.ReadingFilter{Equipment: "Linea 1"}, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 reading, got %d", len(got))
	}
	want := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	if got[0].Equipment != "Linea 1" || got[0].Temperature != 725.5 || !got[0].Timestamp.Equal(want) || got[0].ID == "" {
		t.Fatalf("unexpected reading: %+v", got[0])
	}
}

func TestReadingSQLite_TemperatureBoundsAreInclusive(t *testing.T) {
	repo := newSQLiteRepo(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, temp := range []float64{699.99, 700, 750, 800, 800.01} {
		mustInsert(t, repo, "Torre Fusora", temp, base.Add(time.Duration(i)*time.Minute))
	}

	minT, maxT := 700.0, 800.0
	got, err := repo.Search(context.Background(), models.ReadingFilter{MinTemperature: &minT, MaxTemperature: &maxT}, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 readings in [700, 800], got %d: %+v", len(got), got)
	}
	for _, r := range got {
		if r.Temperature < 700 || r.Temperature > 800 {
			t.Fatalf("reading out of bounds: %+v", r)
		}
	}
	// newest first
	if !got[0].Timestamp.After(got[1].Timestamp) {
		t.Fatalf("expected descending order: %v, %v", got[0].Timestamp, got[1].Timestamp)
	}
}

func TestReadingSQLite_StatsDistinctAndPurge(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	mustInsert(t, repo, "Linea 1", 700, now.Add(-40*24*time.Hour))
	mustInsert(t, repo, "Linea 1", 710, now.Add(-time.Hour))
	mustInsert(t, repo, "Linea 1", 721, now)
	mustInsert(t, repo, "Torre Fusora", 650, now)

	st, err := repo.Stats(ctx, "Linea 1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Count != 3 || st.MinTemperature != 700 || st.MaxTemperature != 721 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if st.LastReading == nil || !st.LastReading.Equal(now) {
		t.Fatalf("unexpected last reading: %v want %v", st.LastReading, now)
	}

	empty, err := repo.Stats(ctx, "NoSuchEquipment")
	if err != nil {
		t.Fatalf("Stats empty: %v", err)
	}
	if empty.Count != 0 || empty.LastReading != nil {
		t.Fatalf("expected zero stats, got %+v", empty)
	}

	names, err := repo.DistinctEquipment(ctx)
	if err != nil {
		t.Fatalf("DistinctEquipment: %v", err)
	}
	if len(names) != 2 || names[0] != "Linea 1" || names[1] != "Torre Fusora" {
		t.Fatalf("unexpected equipment list: %v", names)
	}

	n, err := repo.DeleteOlderThan(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 purged, got %d", n)
	}
}
