package sources

import (
	"context"

	"github.com/pixelflowlabs/trendreel/internal/models"
)

// Source interface defines the contract for all trend collectors.
// Collect fills only the block of PlatformData that belongs to the source.
// A nil or empty keywords slice means "no domain filtering".
type Source interface {
	GetName() string
	Collect(ctx context.Context, keywords []string) (*models.PlatformData, error)
	IsEnabled() bool
}
