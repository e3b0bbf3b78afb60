// Package services holds the business rules of DefComm. Services receive
// their dependencies at construction and never read the environment.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/dmitrijs2005/defcomm/internal/server/auth"
	"github.com/dmitrijs2005/defcomm/internal/server/models"
	"github.com/dmitrijs2005/defcomm/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// Session is the outcome of a successful register or login.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
	cost        int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(m repomanager.RepositoryManager, issuer *auth.Issuer) *AuthService {
	return &AuthService{repomanager: m, issuer: issuer, cost: bcrypt.DefaultCost}
}

// Register creates a pending account and opens a session for it. The
// session lets the client show the waiting-for-approval state.
func (s *AuthService) Register(ctx context.Context, username, password string, role models.Role) (*Session, error) {
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, common.NewError(common.ErrorValidation, "Role must be either user or hq")
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users().Create(ctx, &models.User{
		UserName:     username,
		PasswordHash: hash,
		Role:         role,
		Status:       models.StatusPending,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrUserExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.openSession(user)
}

// Login checks credentials. Rejected accounts are refused even with the
// right password; pending accounts get a session with IsApproved false.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.repomanager.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// equalize timing with the found-user path
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	if user.Status == models.StatusRejected {
		return nil, common.ErrAccountRejected
	}

	return s.openSession(user)
}

// Authenticate resolves a session token to its user. Token failures come
// back as common.ErrInvalidToken or common.ErrTokenExpired, a deleted
// account as common.ErrorNotFound.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.issuer.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Me reloads the caller's account for the session check endpoint.
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}

// SeedHQ makes sure an approved HQ account with the given name exists.
// It reports whether an account was created; an existing account is left
// untouched.
func (s *AuthService) SeedHQ(ctx context.Context, username, password string) (bool, error) {
	_, err := s.repomanager.Users().GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return false, fmt.Errorf("error loading user: %w", err)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return false, err
	}

	_, err = s.repomanager.Users().Create(ctx, &models.User{
		UserName:     username,
		PasswordHash: hash,
		Role:         models.RoleHQ,
		Status:       models.StatusApproved,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("error creating user: %w", err)
	}
	return true, nil
}

// SessionTTL is the lifetime of issued tokens, used for the cookie Max-Age.
func (s *AuthService) SessionTTL() time.Duration {
	return s.issuer.TTL()
}

func (s *AuthService) openSession(user *models.User) (*Session, error) {
	token, expiresAt, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}
	user.PasswordHash = nil
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) hashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, common.NewError(common.ErrorValidation, "Password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	return hash, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("defcomm-dummy-password"), s.cost)
	})
	return s.dummyHash
}
