package records

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/soulsync/internal/models"
	"github.com/julianstephens/soulsync/internal/storage"
)

// Result is the outcome of an accessor. OK is false for expected negative
// outcomes such as a missing goal or blank input; those never carry an error.
type Result struct {
	OK      bool
	Message string
}

const unreadableRecord = "Your stored data could not be read, so nothing was changed. Run 'soulsync doctor' for details."

func ok(msg string) Result   { return Result{OK: true, Message: msg} }
func fail(msg string) Result { return Result{OK: false, Message: msg} }

// Service implements every read and mutation against the user store. Each
// mutation loads the whole store, changes one user's record and saves the
// whole store back. Mutations are serialized so a background chat turn and
// a form submit from the same session cannot overwrite each other.
type Service struct {
	mu       sync.Mutex
	store    storage.Provider
	now      func() time.Time
	newID    func() string
	hashCost int
}

type Option func(*Service)

// WithClock overrides the time source used to stamp new entries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides goal id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithHashCost sets the bcrypt cost for new password hashes.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:    store,
		now:      time.Now,
		newID:    uuid.NewString,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying provider.
func (s *Service) Store() storage.Provider {
	return s.store
}

// Record returns a user's normalized record and whether the user exists.
// Goals and chat messages that could not be decoded are left out.
func (s *Service) Record(username string) (models.UserRecord, bool, error) {
	store, err := s.store.Load()
	if err != nil {
		return models.UserRecord{}.Normalize(), false, err
	}
	rec, found := store.Record(username)
	return rec.Readable(), found, nil
}

// mutate runs fn against the user's record inside one load/save cycle. The
// store is only written when fn reports a change.
func (s *Service) mutate(username string, fn func(rec *models.UserRecord) (Result, bool)) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.store.Load()
	if err != nil {
		return Result{}, err
	}

	rec, _ := store.Record(username)
	if rec.Unreadable() {
		return fail(unreadableRecord), nil
	}
	res, changed := fn(&rec)
	if !changed {
		return res, nil
	}

	store[username] = rec
	if err := s.store.Save(store); err != nil {
		return Result{}, err
	}
	return res, nil
}
