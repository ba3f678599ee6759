// Package notify delivers booking notifications to the agency staff.
package notify

import (
	"context"

	"github.com/omriShneor/project_casa/internal/database"
)

// Notifier sends a notification about a new booking to a recipient
type Notifier interface {
	Send(ctx context.Context, booking *database.Booking, listing *database.Listing, recipient string) error
	// Name returns the notifier type name (for logging)
	Name() string
	// IsConfigured returns true if the notifier has server-side config
	IsConfigured() bool
}
