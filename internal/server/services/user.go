// Package services implements the relay use cases on top of the repositories:
// registration and login, the public-key directory, the session guard,
// message delivery and encrypted attachments.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrijs2005/securechat/internal/common"
	"github.com/dmitrijs2005/securechat/internal/logging"
	"github.com/dmitrijs2005/securechat/internal/server/auth"
	"github.com/dmitrijs2005/securechat/internal/server/models"
	"github.com/dmitrijs2005/securechat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securechat/internal/server/repositories/users"
)

// AccessToken is the result of a successful login.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresIn time.Duration
}

type UserService struct {
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	tokens      *auth.JWTManager
	directory   *DirectoryService
	tokenTTL    time.Duration
	logger      logging.Logger

	// dummyDigest is verified against when the username is unknown so that
	// both login failure paths cost one hash verification.
	dummyDigest string
}

func NewUserService(m repomanager.RepositoryManager, hasher *auth.PasswordHasher, tokens *auth.JWTManager,
	directory *DirectoryService, tokenTTL time.Duration) (*UserService, error) {

	if tokenTTL <= 0 {
		return nil, fmt.Errorf("access token validity must be positive, got %v", tokenTTL)
	}

	secret, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, err
	}
	dummy, err := hasher.Hash(secret)
	if err != nil {
		return nil, err
	}

	return &UserService{
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		directory:   directory,
		tokenTTL:    tokenTTL,
		logger:      logging.NewSlogLogger(slog.New(slog.DiscardHandler)),
		dummyDigest: dummy,
	}, nil
}

// Register hashes password and stores a new identity. A taken username
// yields common.ErrorAlreadyExists and leaves the existing record untouched.
func (s *UserService) Register(ctx context.Context, username, email, password, publicKey string) (*models.PublicProfile, error) {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: digest,
		PublicKey:    publicKey,
	}

	repo := s.repomanager.Users(s.repomanager.DB())
	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("%w: error creating user: %v", common.ErrorInternal, err)
	}

	profile := created.Profile()
	return &profile, nil
}

// Login verifies the password and issues an access token. An unknown
// username and a wrong password both yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, username, password string) (*AccessToken, error) {
	repo := s.repomanager.Users(s.repomanager.DB())

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyDigest)
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	ok, needsRehash := s.hasher.Verify(password, user.PasswordHash)
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	if needsRehash {
		// a failed upgrade leaves the old digest in place, which still verifies
		if err := s.rehash(ctx, repo, user.Username, password); err != nil {
			s.logger.Warn(ctx, "password rehash failed", "username", user.Username, "error", err.Error())
		}
	}

	token, err := s.tokens.GenerateToken(user.Username, s.tokenTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &AccessToken{Token: token, TokenType: common.TokenType, ExpiresIn: s.tokenTTL}, nil
}

// SetLogger replaces the logger used for non-fatal failures. The default
// discards everything.
func (s *UserService) SetLogger(l logging.Logger) {
	s.logger = l
}

func (s *UserService) rehash(ctx context.Context, repo users.Repository, username, password string) error {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	return repo.UpdatePasswordHash(ctx, username, digest)
}

// UpdatePublicKey replaces the caller's own key.
func (s *UserService) UpdatePublicKey(ctx context.Context, user *models.User, publicKey string) (*models.PublicProfile, error) {
	repo := s.repomanager.Users(s.repomanager.DB())

	updated, err := repo.UpdatePublicKey(ctx, user.Username, publicKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	s.directory.Invalidate(user.Username)

	profile := updated.Profile()
	return &profile, nil
}
