package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mr1hm/go-quake-map/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func TestSQLiteDB_AddAndGetQuake(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	quake := &models.Earthquake{
		ID:        "us_123",
		Title:     "M 5.5 - near Tokyo",
		Magnitude: 5.5,
		Depth:     42,
		Age:       models.AgePastHour,
		Location:  models.Location{Latitude: 35.0, Longitude: 139.0},
		Country:   "Japan",
		Timestamp: time.Now().Add(-10 * time.Minute),
	}

	if err := db.Add(ctx, quake); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := db.GetByID(ctx, "us_123")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected quake, got nil")
	}
	if got.Title != quake.Title || got.Depth != 42 || got.Country != "Japan" {
		t.Errorf("unexpected quake: %+v", got)
	}
	if got.Age != models.AgePastHour {
		t.Errorf("expected Past Hour, got %s", got.Age)
	}
}

func TestSQLiteDB_GetByID_Missing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	got, err := db.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestSQLiteDB_AgeRederivedOnRead(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	stored := time.Now()
	db.Add(ctx, &models.Earthquake{
		ID: "aging", Title: "t", Magnitude: 4, Age: models.AgePastHour,
		Timestamp: stored.Add(-30 * time.Minute),
	})

	db.now = func() time.Time { return stored.Add(2 * time.Hour) }
	got, err := db.GetByID(ctx, "aging")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Age != models.AgePastDay {
		t.Errorf("expected Past Day after two hours, got %s", got.Age)
	}
}

func TestSQLiteDB_AgeKeptWithoutTimestamp(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	db.Add(ctx, &models.Earthquake{ID: "nots", Title: "t", Magnitude: 4, Age: models.AgePastWeek})

	got, err := db.GetByID(ctx, "nots")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Age != models.AgePastWeek {
		t.Errorf("expected Past Week, got %s", got.Age)
	}
}

func TestSQLiteDB_Exists(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	exists, err := db.Exists(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected false for nonexistent ID")
	}

	db.Add(ctx, &models.Earthquake{ID: "exists_test", Title: "t", Timestamp: time.Now()})

	exists, err = db.Exists(ctx, "exists_test")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected true for existing ID")
	}
}

func TestSQLiteDB_AddDuplicate(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	q := &models.Earthquake{ID: "dup", Title: "t", Timestamp: time.Now()}
	if err := db.Add(ctx, q); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := db.Add(ctx, q); err == nil {
		t.Error("expected error on duplicate ID")
	}
}

func TestSQLiteDB_ListQuakes_WithFilters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	quakes := []*models.Earthquake{
		{ID: "q1", Title: "t", Magnitude: 6.0, Timestamp: now},
		{ID: "q2", Title: "t", Magnitude: 4.0, Timestamp: now.Add(-48 * time.Hour)},
		{ID: "q3", Title: "t", Magnitude: 7.2, Timestamp: now.Add(-10 * 24 * time.Hour)},
		{ID: "q4", Title: "t", Magnitude: 2.1, Timestamp: now.Add(-time.Minute)},
	}
	for _, q := range quakes {
		if err := db.Add(ctx, q); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	// Ordered by magnitude
	results, err := db.ListQuakes(ctx, Filter{})
	if err != nil {
		t.Fatalf("ListQuakes failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 quakes, got %d", len(results))
	}
	for i, id := range []string{"q3", "q1", "q2", "q4"} {
		if results[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, results[i].ID)
		}
	}

	minMag := 5.0
	results, err = db.ListQuakes(ctx, Filter{MinMagnitude: &minMag})
	if err != nil {
		t.Fatalf("ListQuakes failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 quakes with mag >= 5.0, got %d", len(results))
	}

	since := now.Add(-72 * time.Hour)
	results, err = db.ListQuakes(ctx, Filter{Since: &since})
	if err != nil {
		t.Fatalf("ListQuakes failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 quakes in the last 3 days, got %d", len(results))
	}

	results, err = db.ListQuakes(ctx, Filter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("ListQuakes failed: %v", err)
	}
	if len(results) != 2 || results[0].ID != "q1" {
		t.Errorf("expected [q1 q2] page, got %d results", len(results))
	}
}
