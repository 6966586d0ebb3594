package storage

import (
	"fmt"
	"sync"
)

// LoadGuard remembers whether the last Load had to fail open. A store that
// handed out an empty view of data it could not read refuses to save, so a
// mutation built on that view cannot replace what is stored.
type LoadGuard struct {
	mu  sync.Mutex
	err error
}

// Failed records a load that returned an empty store instead of err.
func (g *LoadGuard) Failed(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

// Succeeded clears a previous failure.
func (g *LoadGuard) Succeeded() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = nil
}

// Err returns the failure behind the last load, if any.
func (g *LoadGuard) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// CheckSave returns a save error while the last load is unresolved.
func (g *LoadGuard) CheckSave(path string) error {
	if err := g.Err(); err != nil {
		return &PersistenceError{Op: "save", Path: path, Err: fmt.Errorf("store was not readable at last load: %w", err)}
	}
	return nil
}

// LastLoadError reports why the provider's last Load fell back to an empty
// store, for providers that track it.
func LastLoadError(p Provider) error {
	if r, ok := p.(interface{ LastLoadError() error }); ok {
		return r.LastLoadError()
	}
	return nil
}
