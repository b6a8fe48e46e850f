package authstate

import (
	"time"

	"github.com/pkg/errors"
)

// Platform identifies which redirect target is used after the provider
// round trip.
type Platform string

const (
	PlatformMobile Platform = "mobile"
	PlatformWeb    Platform = "web"
)

// Valid reports whether p is a known platform tag.
func (p Platform) Valid() bool {
	return p == PlatformMobile || p == PlatformWeb
}

// ErrStorage marks an unexpected read/write failure of the underlying
// storage. Missing or unreadable records are not storage errors; Load
// fails open to "not found" for those.
var ErrStorage = errors.New("auth state storage failure")

// PendingState is the single pending-authentication record: the anti-forgery
// state token bound to the attempt, when it was issued, and the platform that
// initiated it. At most one record is live at a time; a new sign-in
// overwrites any unconsumed one.
type PendingState struct {
	State    string    `json:"state"`
	IssuedAt time.Time `json:"issuedAt"`
	Platform Platform  `json:"platform"`
}

// Store is single-slot storage for the PendingState record. Expiry is
// enforced by the reader (the coordinator), not by the store.
type Store interface {
	// Save overwrites any existing record.
	Save(state PendingState) error
	// Load returns the stored record, or (nil, nil) when absent.
	Load() (*PendingState, error)
	// Clear removes the record. Clearing an empty store is not an error.
	Clear() error
}
