package jsonfile

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/arefin/newshub/internal/apperror"
	"github.com/arefin/newshub/internal/model"
	"github.com/arefin/newshub/internal/repository"
)

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// UserStore persists registered users as a single JSON snapshot file.
type UserStore struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	users []model.User
}

// NewUserStore opens the snapshot at path. A missing snapshot means no
// users are registered yet; a corrupt one is logged and treated the same.
func NewUserStore(path string, logger *slog.Logger) *UserStore {
	s := &UserStore{path: path, logger: logger}

	err := readSnapshot(path, &s.users)
	switch {
	case err == nil, errors.Is(err, os.ErrNotExist):
		// loaded, or nothing to load yet
	default:
		logger.Error("loading user snapshot failed, starting empty",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		s.users = nil
	}

	return s
}

// Create persists a new user. Username and email must both be unused;
// the check and the insert happen under one lock so two racing
// registrations cannot both succeed.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperror.Conflict("username or email already exists")
		}
	}

	if user.ID == "" {
		user.ID = xid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	s.users = append(s.users, *user)
	s.persistLocked()
	return nil
}

// GetByID returns the user with the given id.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

// GetByEmail returns the user with the given email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].Email == email {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

// GetByLogin returns the user whose username or email matches the login
// field. Comparison is case-sensitive, as stored.
func (s *UserStore) GetByLogin(ctx context.Context, usernameOrEmail string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].Username == usernameOrEmail || s.users[i].Email == usernameOrEmail {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", usernameOrEmail)
}

// persistLocked rewrites the snapshot. Callers must hold s.mu.
func (s *UserStore) persistLocked() {
	if err := writeSnapshot(s.path, s.users); err != nil {
		logPersistFailure(s.logger, s.path, err)
	}
}
