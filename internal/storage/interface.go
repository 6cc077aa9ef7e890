package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/pixelflowlabs/trendreel/internal/models"
)

var (
	// ErrNoTrends means the store is reachable but holds no snapshot yet
	ErrNoTrends = errors.New("no trend data available")
	// ErrUnavailable means the trend database could not be reached
	ErrUnavailable = errors.New("database connection not available")
	// ErrNotFound is returned by artifact stores for unknown names
	ErrNotFound = errors.New("artifact not found")
)

// TrendStore persists analyzer snapshots
type TrendStore interface {
	Save(ctx context.Context, snapshot *models.TrendSnapshot) (string, error)
	// Latest returns the newest snapshot without its platform data
	Latest(ctx context.Context) (*models.TrendSnapshot, error)
}

// Artifact describes a stored file
type Artifact struct {
	Name     string
	Modified time.Time
}

// StorageInterface defines the contract for artifact storage (generated videos)
type StorageInterface interface {
	Store(ctx context.Context, name string, data io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Artifact, error)
	Delete(ctx context.Context, name string) error
}
