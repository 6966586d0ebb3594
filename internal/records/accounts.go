package records

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/soulsync/internal/logger"
	"github.com/julianstephens/soulsync/internal/models"
)

const invalidCredentials = "Invalid username or password."

// Register creates an empty record holding a bcrypt hash of the password.
func (s *Service) Register(username, password string) (Result, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fail("Username and password cannot be empty."), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.store.Load()
	if err != nil {
		return Result{}, err
	}
	if _, exists := store[username]; exists {
		return fail("Username already exists."), nil
	}

	store[username] = models.UserRecord{Password: string(hash)}.Normalize()
	if err := s.store.Save(store); err != nil {
		return Result{}, err
	}
	return ok("Registration successful! You can now log in."), nil
}

// Authenticate checks a password. Plaintext credentials from older stores
// are accepted once and replaced with a hash.
func (s *Service) Authenticate(username, password string) (Result, error) {
	rec, found, err := s.Record(username)
	if err != nil {
		return Result{}, err
	}
	if !found || rec.Password == "" {
		return fail(invalidCredentials), nil
	}

	if rec.HasHashedPassword() {
		if bcrypt.CompareHashAndPassword([]byte(rec.Password), []byte(password)) != nil {
			return fail(invalidCredentials), nil
		}
		return ok("Welcome back, " + username + "!"), nil
	}

	if subtle.ConstantTimeCompare([]byte(rec.Password), []byte(password)) != 1 {
		return fail(invalidCredentials), nil
	}
	if err := s.setPassword(username, password); err != nil {
		// The login itself succeeded; the upgrade is retried next time.
		logger.Warn("Failed to upgrade plaintext credential", "username", username, "error", err)
	}
	return ok("Welcome back, " + username + "!"), nil
}

// ChangePassword replaces the credential after verifying the current one.
func (s *Service) ChangePassword(username, current, next string) (Result, error) {
	if next == "" {
		return fail("New password cannot be empty."), nil
	}
	res, err := s.Authenticate(username, current)
	if err != nil || !res.OK {
		return res, err
	}
	if err := s.setPassword(username, next); err != nil {
		return Result{}, err
	}
	return ok("Password updated."), nil
}

func (s *Service) setPassword(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return err
	}
	_, err = s.mutate(username, func(rec *models.UserRecord) (Result, bool) {
		rec.Password = string(hash)
		return ok(""), true
	})
	return err
}

// Exists reports whether a record is stored for username.
func (s *Service) Exists(username string) (bool, error) {
	_, found, err := s.Record(username)
	return found, err
}

// Usernames lists the stored users in no particular order.
func (s *Service) Usernames() ([]string, error) {
	store, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(store))
	for name := range store {
		names = append(names, name)
	}
	return names, nil
}
