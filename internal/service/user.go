package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/rs/xid"

	"github.com/arefin/newshub/internal/apperror"
	"github.com/arefin/newshub/internal/auth"
	"github.com/arefin/newshub/internal/model"
	"github.com/arefin/newshub/internal/notify"
	"github.com/arefin/newshub/internal/repository"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
	MinPasswordLength = 6
)

// usernamePattern is the allowed username charset.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// UserService is the identity store's business logic: registration,
// login, and Google sign-in bridging. Successful registration and login
// trigger fire-and-forget notifications through the dispatcher.
type UserService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	notifier  *notify.Dispatcher
	logger    *slog.Logger
	googleAud string
}

// NewUserService creates a UserService. googleAudience is the OAuth
// client ID used to check the aud claim of posted Google ID tokens;
// empty disables the check.
func NewUserService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	notifier *notify.Dispatcher,
	googleAudience string,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		notifier:  notifier,
		googleAud: googleAudience,
		logger:    logger,
	}
}

// AuthResult bundles the user and the issued session token.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register validates and persists a new user, sends the welcome
// notification, and returns a session token.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "Username, email, and password are required")
	}
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("Username must be %d-%d characters", MinUsernameLength, MaxUsernameLength))
	}
	if !usernamePattern.MatchString(username) {
		return nil, apperror.ValidationFailed("username",
			"Username may only contain letters, numbers, underscores, and hyphens")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "Invalid email address")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	// The repository enforces uniqueness of (username, email) atomically;
	// a conflict surfaces as apperror.ErrConflict.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)

	s.notifier.Dispatch(user.Email, notify.EventWelcome, map[string]string{
		"username": user.Username,
	})

	return s.issueToken(user)
}

// Login authenticates against a stored credential. The same error comes
// back whether the account is unknown or the password is wrong, so a
// caller cannot probe which usernames exist.
func (s *UserService) Login(ctx context.Context, usernameOrEmail, password string) (*AuthResult, error) {
	if usernameOrEmail == "" || password == "" {
		return nil, apperror.ValidationFailed("", "Username and password are required")
	}

	invalid := apperror.Unauthorized("Invalid username or password")

	user, err := s.users.GetByLogin(ctx, usernameOrEmail)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("logging in: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Warn("failed login attempt", slog.String("username", user.Username))
		return nil, invalid
	}

	s.notifier.Dispatch(user.Email, notify.EventLoginAlert, map[string]string{
		"username": user.Username,
	})

	return s.issueToken(user)
}

// LoginWithGoogleIDToken bridges a client-side Google sign-in: it decodes
// the posted ID token's claims and logs the matching user in,
// provisioning an account on first sight of the email.
func (s *UserService) LoginWithGoogleIDToken(ctx context.Context, idToken string) (*AuthResult, error) {
	if idToken == "" {
		return nil, apperror.ValidationFailed("token", "Google token is required")
	}

	gUser, err := auth.DecodeGoogleIDToken(idToken, s.googleAud)
	if err != nil {
		return nil, err
	}
	return s.loginWithGoogleIdentity(ctx, gUser)
}

// LoginWithGoogleIdentity logs in a Google-asserted identity, used by
// both the ID-token bridge and the server-side code flow callback.
func (s *UserService) LoginWithGoogleIdentity(ctx context.Context, gUser *auth.GoogleUser) (*AuthResult, error) {
	if gUser == nil || gUser.Email == "" {
		return nil, apperror.ValidationFailed("token", "Invalid token")
	}
	return s.loginWithGoogleIdentity(ctx, gUser)
}

func (s *UserService) loginWithGoogleIdentity(ctx context.Context, gUser *auth.GoogleUser) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, gUser.Email)
	switch {
	case err == nil:
		// existing account
	case errors.Is(err, apperror.ErrNotFound):
		user, err = s.provisionGoogleUser(ctx, gUser)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("google login: %w", err)
	}

	return s.issueToken(user)
}

// maxProvisionAttempts bounds username-collision retries during Google
// provisioning.
const maxProvisionAttempts = 5

// provisionGoogleUser creates an account for a first-time Google sign-in:
// username slugified from the display name, no local password.
//
// Provisioning is keyed on the email alone. A slug that is already taken
// must not block the sign-in, so on a username conflict the slug gets a
// random suffix and the insert is retried.
func (s *UserService) provisionGoogleUser(ctx context.Context, gUser *auth.GoogleUser) (*model.User, error) {
	base := slugifyUsername(gUser.Name)

	username := base
	for attempt := 1; ; attempt++ {
		user := &model.User{
			Username:   username,
			Email:      gUser.Email,
			GoogleAuth: true,
		}
		err := s.users.Create(ctx, user)
		if err == nil {
			s.logger.Info("user provisioned via google",
				slog.String("id", user.ID),
				slog.String("username", user.Username),
			)
			s.notifier.Dispatch(user.Email, notify.EventWelcome, map[string]string{
				"username": user.Username,
			})
			return user, nil
		}
		if !errors.Is(err, apperror.ErrConflict) || attempt >= maxProvisionAttempts {
			return nil, fmt.Errorf("provisioning google user: %w", err)
		}
		username = suffixUsername(base)
	}
}

func (s *UserService) issueToken(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateUser(user)
	if err != nil {
		return nil, fmt.Errorf("issuing token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// slugifyUsername turns a display name into a valid username: lowercase,
// whitespace runs collapsed to underscores, characters outside the
// username charset dropped, and the result clamped to the length bounds.
// Names that slug down to nothing usable get a generated fallback.
func slugifyUsername(name string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(name), "_"))

	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	slug = b.String()

	if len(slug) > MaxUsernameLength {
		slug = slug[:MaxUsernameLength]
	}
	if len(slug) < MinUsernameLength {
		return suffixUsername("user")
	}
	return slug
}

// suffixUsername appends a short random suffix to base, trimming base so
// the result stays within the maximum username length.
func suffixUsername(base string) string {
	suffix := "_" + xid.New().String()[16:]
	if len(base)+len(suffix) > MaxUsernameLength {
		base = base[:MaxUsernameLength-len(suffix)]
	}
	return base + suffix
}
