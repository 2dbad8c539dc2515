package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUserExists         = errors.New("user already registered")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrInvalidEmail       = errors.New("a valid email is required")
	ErrNoSession          = errors.New("no active session")
)

// SignInResult is returned to the client after a successful sign-in.
type SignInResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

// Service is the authentication collaborator: accounts, password checks and
// token-backed sessions.
type Service struct {
	users    UserRepository
	sessions SessionStore
	tokens   *TokenIssuer
	cost     int
}

func NewService(users UserRepository, sessions SessionStore, tokens *TokenIssuer) *Service {
	return &Service{users: users, sessions: sessions, tokens: tokens, cost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp validates the credential pair before touching the store.
func (s *Service) SignUp(ctx context.Context, email, password, confirm string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:        claims.ID,
		UserID:    u.ID,
		Email:     u.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return &SignInResult{AccessToken: token, ExpiresAt: sess.ExpiresAt, User: u}, nil
}

// Session resolves a bearer token to its live session.
func (s *Service) Session(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrNoSession
	}
	sess, err := s.sessions.Get(ctx, claims.ID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// SignOut ends the session behind token. Signing out twice is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return ErrNoSession
	}
	return s.sessions.Delete(ctx, claims.ID)
}
