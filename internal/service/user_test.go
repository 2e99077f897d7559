package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/arefin/newshub/internal/apperror"
	"github.com/arefin/newshub/internal/auth"
	"github.com/arefin/newshub/internal/model"
	"github.com/arefin/newshub/internal/notify"
	"github.com/arefin/newshub/internal/repository"
)

// mockUserRepo is an in-memory repository.UserRepository.
type mockUserRepo struct {
	users  []model.User
	nextID int
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperror.Conflict("username or email already exists")
		}
	}
	m.nextID++
	if user.ID == "" {
		user.ID = fmt.Sprintf("mock-%d", m.nextID)
	}
	user.CreatedAt = time.Now()
	m.users = append(m.users, *user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for i := range m.users {
		if m.users[i].Email == email {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) GetByLogin(_ context.Context, usernameOrEmail string) (*model.User, error) {
	for i := range m.users {
		if m.users[i].Username == usernameOrEmail || m.users[i].Email == usernameOrEmail {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", usernameOrEmail)
}

// captureSender records dispatched events on a channel so tests can wait
// for the async delivery goroutine.
type captureSender struct {
	events chan notify.Event
}

func (c *captureSender) Send(_ context.Context, _ string, event notify.Event, _ map[string]string) error {
	c.events <- event
	return nil
}

func (c *captureSender) waitFor(t *testing.T, want notify.Event) {
	t.Helper()
	select {
	case got := <-c.events:
		if got != want {
			t.Errorf("notification event = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no %q notification dispatched", want)
	}
}

func newTestUserService(t *testing.T) (*UserService, *mockUserRepo, *captureSender) {
	t.Helper()
	repo := &mockUserRepo{}
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	sender := &captureSender{events: make(chan notify.Event, 8)}
	svc := NewUserService(
		repo,
		tokens,
		auth.NewPasswordServiceForTest(bcrypt.MinCost),
		notify.NewDispatcher(sender, quietLogger()),
		"",
		quietLogger(),
	)
	return svc, repo, sender
}

func TestRegister_Success(t *testing.T) {
	svc, repo, sender := newTestUserService(t)

	result, err := svc.Register(context.Background(), "alice", "alice@x.com", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if result.Token == "" {
		t.Error("Register() issued no token")
	}
	if result.User.PasswordHash == "secret1" {
		t.Error("password stored in plaintext")
	}
	if len(repo.users) != 1 {
		t.Errorf("repository holds %d users, want 1", len(repo.users))
	}

	sender.waitFor(t, notify.EventWelcome)
}

func TestRegister_Validation(t *testing.T) {
	svc, repo, _ := newTestUserService(t)

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{name: "missing username", username: "", email: "a@x.com", password: "secret1"},
		{name: "missing email", username: "alice", email: "", password: "secret1"},
		{name: "missing password", username: "alice", email: "a@x.com", password: ""},
		{name: "username too short", username: "ab", email: "a@x.com", password: "secret1"},
		{name: "username too long", username: "abcdefghijklmnopqrstu", email: "a@x.com", password: "secret1"},
		{name: "username bad charset", username: "al ice!", email: "a@x.com", password: "secret1"},
		{name: "password too short", username: "alice", email: "a@x.com", password: "12345"},
		{name: "email without at-sign", username: "alice", email: "not-an-email", password: "secret1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}

	if len(repo.users) != 0 {
		t.Errorf("failed registrations persisted %d users", len(repo.users))
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, repo, _ := newTestUserService(t)

	if _, err := svc.Register(context.Background(), "alice", "alice@x.com", "secret1"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	// Same username, different email.
	_, err := svc.Register(context.Background(), "alice", "other@x.com", "secret1")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Register() error = %v, want ErrConflict", err)
	}
	if len(repo.users) != 1 {
		t.Errorf("repository holds %d users, want exactly 1", len(repo.users))
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _, sender := newTestUserService(t)

	reg, err := svc.Register(context.Background(), "alice", "alice@x.com", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	sender.waitFor(t, notify.EventWelcome)

	tests := []struct {
		name  string
		login string
	}{
		{name: "by username", login: "alice"},
		{name: "by email", login: "alice@x.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Login(context.Background(), tt.login, "secret1")
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if result.Token == "" {
				t.Error("Login() issued no token")
			}
			// A fresh token per login, not a replay of registration's.
			if result.User.ID != reg.User.ID {
				t.Errorf("Login() user = %q, want %q", result.User.ID, reg.User.ID)
			}
			sender.waitFor(t, notify.EventLoginAlert)
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, sender := newTestUserService(t)

	if _, err := svc.Register(context.Background(), "alice", "alice@x.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	sender.waitFor(t, notify.EventWelcome)

	tests := []struct {
		name     string
		login    string
		password string
	}{
		{name: "wrong password", login: "alice", password: "wrong"},
		{name: "unknown user", login: "mallory", password: "secret1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Login(context.Background(), tt.login, tt.password)
			if !errors.Is(err, apperror.ErrUnauthorized) {
				t.Fatalf("Login() error = %v, want ErrUnauthorized", err)
			}
			// Identical message either way, so no account probing.
			if err.Error() != "Invalid username or password" {
				t.Errorf("Login() message = %q, reveals which field failed", err.Error())
			}
			if result != nil {
				t.Error("Login() returned a result on failure")
			}
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	if _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Login() error = %v, want ErrValidation", err)
	}
}

func googleIDToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshaling claims: %v", err)
	}
	return "h." + base64.RawURLEncoding.EncodeToString(payload) + ".s"
}

func TestLoginWithGoogleIDToken_ProvisionsNewUser(t *testing.T) {
	svc, repo, sender := newTestUserService(t)

	token := googleIDToken(t, map[string]any{
		"email": "carol@x.com",
		"name":  "Carol Danvers",
	})

	result, err := svc.LoginWithGoogleIDToken(context.Background(), token)
	if err != nil {
		t.Fatalf("LoginWithGoogleIDToken() error = %v", err)
	}

	if result.User.Username != "carol_danvers" {
		t.Errorf("Username = %q, want slugified %q", result.User.Username, "carol_danvers")
	}
	if !result.User.GoogleAuth {
		t.Error("provisioned user not marked googleAuth")
	}
	if result.User.PasswordHash != "" {
		t.Error("provisioned user has a local password")
	}
	if len(repo.users) != 1 {
		t.Errorf("repository holds %d users, want 1", len(repo.users))
	}

	sender.waitFor(t, notify.EventWelcome)
}

func TestLoginWithGoogleIDToken_ExistingUser(t *testing.T) {
	svc, repo, sender := newTestUserService(t)

	if _, err := svc.Register(context.Background(), "carol", "carol@x.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	sender.waitFor(t, notify.EventWelcome)

	token := googleIDToken(t, map[string]any{"email": "carol@x.com", "name": "Carol"})
	result, err := svc.LoginWithGoogleIDToken(context.Background(), token)
	if err != nil {
		t.Fatalf("LoginWithGoogleIDToken() error = %v", err)
	}

	if result.User.Username != "carol" {
		t.Errorf("existing account not reused: username = %q", result.User.Username)
	}
	if len(repo.users) != 1 {
		t.Errorf("google login provisioned a duplicate: %d users", len(repo.users))
	}
}

func TestLoginWithGoogleIDToken_TakenUsername(t *testing.T) {
	svc, repo, sender := newTestUserService(t)

	if _, err := svc.Register(context.Background(), "carol_danvers", "local@x.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	sender.waitFor(t, notify.EventWelcome)

	token := googleIDToken(t, map[string]any{
		"email": "carol@gmail.com",
		"name":  "Carol Danvers",
	})
	result, err := svc.LoginWithGoogleIDToken(context.Background(), token)
	if err != nil {
		t.Fatalf("LoginWithGoogleIDToken() error = %v", err)
	}

	if result.User.Username == "carol_danvers" {
		t.Error("provisioned user reused the taken username")
	}
	if !strings.HasPrefix(result.User.Username, "carol_danvers") {
		t.Errorf("Username = %q, want the slug with a suffix", result.User.Username)
	}
	if n := len(result.User.Username); n > MaxUsernameLength {
		t.Errorf("Username length = %d, want <= %d", n, MaxUsernameLength)
	}
	if !usernamePattern.MatchString(result.User.Username) {
		t.Errorf("Username = %q contains invalid characters", result.User.Username)
	}
	if !result.User.GoogleAuth {
		t.Error("provisioned user not marked googleAuth")
	}
	if len(repo.users) != 2 {
		t.Errorf("repository holds %d users, want 2", len(repo.users))
	}
}

func TestSlugifyUsername(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Carol Danvers", "carol_danvers"},
		{"Ann O'Hara", "ann_ohara"},
		{"  Bob   the	Builder ", "bob_the_builder"},
		{"Maximiliano Featherstonehaugh", "maximiliano_feathers"},
	}
	for _, tt := range tests {
		if got := slugifyUsername(tt.name); got != tt.want {
			t.Errorf("slugifyUsername(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}

	// Names that slug below the minimum length get a generated username.
	for _, name := range []string{"", "Li", "!!"} {
		got := slugifyUsername(name)
		if n := len(got); n < MinUsernameLength || n > MaxUsernameLength {
			t.Errorf("slugifyUsername(%q) = %q, length out of bounds", name, got)
		}
		if !usernamePattern.MatchString(got) {
			t.Errorf("slugifyUsername(%q) = %q contains invalid characters", name, got)
		}
	}
}

func TestLoginWithGoogleIDToken_Malformed(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	for _, bad := range []string{"", "no-dots", "a.b"} {
		if _, err := svc.LoginWithGoogleIDToken(context.Background(), bad); !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("LoginWithGoogleIDToken(%q) error = %v, want ErrValidation", bad, err)
		}
	}
}
