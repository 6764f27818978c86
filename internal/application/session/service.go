package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tradedash-api/internal/domain"
	"github.com/tradedash-api/internal/pkg/id"
	pkgtoken "github.com/tradedash-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a valid bcrypt hash compared against when the email is
// unknown, so the unknown-email and wrong-password paths take the same time.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type accountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
}

type tokenSigner interface {
	Sign(accountID, email, role, sessionID string) (string, error)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Bearer       string
	RefreshToken string
	Account      *domain.Account
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (bearer, newRefreshToken string, err error)
	Logout(ctx context.Context, sessionID string) error
	// Me resolves the authenticated identity, honouring server-side
	// revocation: a logged-out session fails with domain.ErrRevoked.
	Me(ctx context.Context, accountID, sessionID string) (*domain.Account, error)
}

type service struct {
	accounts   accountStore
	sessions   sessionStore
	signer     tokenSigner
	refreshTTL time.Duration
}

func NewService(accounts accountStore, sessions sessionStore, signer tokenSigner, refreshTTL time.Duration) Service {
	return &service{accounts: accounts, sessions: sessions, signer: signer, refreshTTL: refreshTTL}
}

// Login verifies the credentials and mints a session. Unknown email and
// wrong password both come back as domain.ErrInvalidCredentials with the
// same message — the response never reveals whether the email exists.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	a, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return nil, fmt.Errorf("invalid email or password: %w", domain.ErrInvalidCredentials)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", domain.ErrInvalidCredentials)
	}
	if !a.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}

	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		AccountID:        a.AccountID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTTL).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.signer.Sign(a.AccountID, a.Email, a.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Bearer: bearer, RefreshToken: refreshToken, Account: a}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sess, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrRevoked) {
			return "", "", fmt.Errorf("invalid refresh token: %w", domain.ErrInvalidToken)
		}
		return "", "", err
	}
	if sess.RefreshExpiresAt < time.Now().Unix() {
		return "", "", fmt.Errorf("refresh token expired: %w", domain.ErrExpired)
	}
	a, err := s.accounts.Get(ctx, sess.AccountID)
	if err != nil {
		return "", "", err
	}
	// Disabling an account cuts off refresh too, not just fresh logins.
	if !a.Enable {
		return "", "", fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	newExpiry := time.Now().Add(s.refreshTTL).Unix()
	if err := s.sessions.RotateRefreshToken(ctx, sess.SessionID, newToken, newExpiry); err != nil {
		return "", "", err
	}
	bearer, err := s.signer.Sign(a.AccountID, a.Email, a.Role, sess.SessionID)
	if err != nil {
		return "", "", err
	}
	return bearer, newToken, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Update(ctx, sessionID, map[string]interface{}{"enable": false})
}

func (s *service) Me(ctx context.Context, accountID, sessionID string) (*domain.Account, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		// A validly signed token whose session row is gone is treated as
		// revoked, not missing — /auth/me answers 401 either way.
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("session revoked: %w", domain.ErrRevoked)
		}
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session revoked: %w", domain.ErrRevoked)
	}
	return s.accounts.Get(ctx, accountID)
}
