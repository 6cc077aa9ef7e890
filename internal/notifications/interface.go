package notifications

import (
	"context"

	"github.com/pixelflowlabs/trendreel/internal/models"
)

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	// IsEnabled reports whether any channel is configured
	IsEnabled() bool
	SendDigest(ctx context.Context, snapshot *models.TrendSnapshot) error
}
