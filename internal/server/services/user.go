// Package services contains server-side business logic. This file implements
// UserService: registration, credential validation, and issuing/validating
// the access tokens that back client sessions.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/scanonce/internal/common"
	"github.com/avolkov/scanonce/internal/cryptox"
	"github.com/avolkov/scanonce/internal/server/auth"
	"github.com/avolkov/scanonce/internal/server/config"
	"github.com/avolkov/scanonce/internal/server/models"
	"github.com/avolkov/scanonce/internal/server/repositories/repomanager"
)

// UserService is the credential store and validation collaborator:
//   - Register: create users with argon2id-hashed passwords
//   - Login: verify credentials and mint an access token
//   - ValidateToken: confirm a token and resolve it back to its user
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new user. A username or email that is already taken
// yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, email string, password []byte) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByUsername(ctx, username); err == nil {
		return nil, common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}
	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	// The lookups above race with concurrent registrations; the unique
	// indexes are authoritative and surface here as a db error.
	user, err = repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login verifies the username/password pair and, on success, returns a new
// access token together with the user it identifies. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username string, password []byte) (string, *models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, common.ErrorInternal
	}

	ok, err := cryptox.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return "", nil, common.ErrorInternal
	}
	if !ok {
		return "", nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	return token, user, nil
}

// ValidateToken confirms the token signature and expiry and resolves it back
// to the user it was issued for. Any failure, including a user that no
// longer exists, yields common.ErrInvalidToken.
func (s *UserService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}
