package storage

import "github.com/julianstephens/soulsync/internal/models"

// Provider persists the whole user store. Every mutation is a full
// Load, change in memory, Save round trip.
type Provider interface {
	// Lifecycle
	Init() error
	Close() error

	// Load returns every user record. A missing document is an empty store.
	Load() (models.UserStore, error)
	// Save replaces the persisted store with the given one, completely or not at all.
	Save(models.UserStore) error

	// Utils
	GetConfigPath() string
}
