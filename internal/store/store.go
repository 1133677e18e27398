// Package store provides user-profile persistence.
package store

import (
	"context"

	"github.com/mateoias/lingochat/internal/domain"
)

// UserStore persists the mapping from email to user record. The store
// is read and written wholesale; concurrent saves from different
// principals are last-writer-wins on the whole store, but no partial or
// corrupted record is ever visible to a subsequent Load.
type UserStore interface {
	// Load returns every stored record. It fails soft: an absent,
	// unreadable, or structurally invalid backing store yields an empty
	// map and no error. This corrupt-store-as-empty policy is deliberate
	// (a fresh deployment starts from nothing) but means real data loss
	// surfaces as an empty store rather than an error.
	Load(ctx context.Context) (map[string]*domain.UserRecord, error)

	// Save overwrites the entire store. The write is atomic from the
	// caller's perspective; I/O faults wrap domain.ErrStoreIO.
	Save(ctx context.Context, users map[string]*domain.UserRecord) error

	// Create registers a new user. Returns domain.ErrAlreadyExists if the
	// email is taken.
	Create(ctx context.Context, email, password, nativeLang, targetLang string) error

	// Verify reports whether the email exists and the password matches
	// exactly. Plaintext equality, as shipped; see DESIGN.md.
	Verify(ctx context.Context, email, password string) (bool, error)

	// Get returns the record for email, or nil if absent.
	Get(ctx context.Context, email string) (*domain.UserRecord, error)

	// UpdatePersonalization replaces the personalization blob for email
	// and unconditionally marks onboarding completed. Returns
	// domain.ErrNotFound for an unknown email.
	UpdatePersonalization(ctx context.Context, email string, blob domain.PersonalizationBlob) error

	// Close releases any underlying resources.
	Close() error
}
