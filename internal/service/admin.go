package service

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sync"

	"github.com/arefin/newshub/internal/apperror"
	"github.com/arefin/newshub/internal/auth"
)

// AdminService manages the single shared admin credential and issues
// admin session tokens.
//
// The credential is not a row in the identity store: it is process-wide
// state seeded from configuration at startup and rotated through
// ChangePassword. Rotation requires the current value and is additionally
// guarded by the admin-session middleware on the HTTP route, so only an
// already-authenticated admin can reach it. The credential does not
// survive a restart; the configured value wins again then.
type AdminService struct {
	tokens *auth.TokenService
	logger *slog.Logger

	mu       sync.RWMutex
	password string
}

// NewAdminService creates an AdminService with the configured credential.
func NewAdminService(password string, tokens *auth.TokenService, logger *slog.Logger) *AdminService {
	return &AdminService{tokens: tokens, logger: logger, password: password}
}

// Login compares the supplied password with the current credential and
// issues an admin session token on success. The comparison is
// constant-time.
func (s *AdminService) Login(password string) (string, error) {
	if password == "" {
		return "", apperror.ValidationFailed("password", "Password is required")
	}

	s.mu.RLock()
	current := s.password
	s.mu.RUnlock()

	if subtle.ConstantTimeCompare([]byte(password), []byte(current)) != 1 {
		s.logger.Warn("failed admin login attempt")
		return "", apperror.Unauthorized("Invalid password")
	}

	token, err := s.tokens.GenerateAdmin()
	if err != nil {
		return "", fmt.Errorf("issuing admin token: %w", err)
	}

	s.logger.Info("admin session established")
	return token, nil
}

// ChangePassword rotates the admin credential. The current value must be
// supplied and verified; the new value must meet the minimum length.
// Existing admin session tokens stay valid until they expire; rotation
// changes the credential, not the sessions it has already granted.
func (s *AdminService) ChangePassword(current, updated string) error {
	if current == "" || updated == "" {
		return apperror.ValidationFailed("", "Current and new password are required")
	}
	if len(updated) < MinPasswordLength {
		return apperror.ValidationFailed("newPassword",
			fmt.Sprintf("New password must be at least %d characters", MinPasswordLength))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if subtle.ConstantTimeCompare([]byte(current), []byte(s.password)) != 1 {
		return apperror.Unauthorized("Current password is incorrect")
	}

	s.password = updated
	s.logger.Info("admin password rotated")
	return nil
}
