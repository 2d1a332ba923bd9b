package repository

import (
	"context"
	"time"

	"github.com/mr1hm/go-quake-map/internal/models"
)

type Filter struct {
	Limit        int
	Offset       int
	Since        *time.Time
	MinMagnitude *float64
}

type QuakeRepository interface {
	Add(ctx context.Context, q *models.Earthquake) error
	GetByID(ctx context.Context, id string) (*models.Earthquake, error)
	Exists(ctx context.Context, id string) (bool, error)
	// ListQuakes returns quakes ordered by descending magnitude.
	ListQuakes(ctx context.Context, opts Filter) ([]*models.Earthquake, error)
}
