// Package services contains the server-side business logic. UserService
// covers registration, login, the profile and the privileged admin
// operations used by adminctl.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/dbx"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/server/auth"
	"github.com/dmitrijs2005/gophstore/internal/server/config"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	errUserExists         = common.NewError(common.ErrAlreadyExists, "User already exists")
	errInvalidCredentials = common.NewError(common.ErrInvalidCredentials, "Invalid credentials")
	errUserNotFound       = common.NewError(common.ErrNotFound, "User not found")
	errEmailInUse         = common.NewError(common.ErrValidation, "Email already in use")
	errWrongPassword      = common.NewError(common.ErrValidation, "Current password is incorrect")
)

// TokenIssuer mints bearer tokens; *auth.TokenService implements it.
type TokenIssuer interface {
	Issue(userID string, isAdmin bool) (string, error)
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      TokenIssuer
	dbTimeout   time.Duration
	logger      logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher,
	tokens TokenIssuer, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		dbTimeout:   cfg.DBTimeout,
		logger:      logger.With("component", "users"),
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	// IsAdmin is what the client asked for. It is never honoured.
	IsAdmin bool
}

// Register creates a non-admin account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name, email := strings.TrimSpace(in.Name), strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, common.NewError(common.ErrValidation, "Name, email and password are required")
	}
	if in.IsAdmin {
		s.logger.Warn(ctx, "registration asked for admin rights; ignored", "email", email)
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, errUserExists
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := repo.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, errUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

type LoginResult struct {
	Token   string
	IsAdmin bool
	Name    string
	Email   string
}

// Login checks the credentials and issues a token. An unknown email and a
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, common.NewError(common.ErrValidation, "Email and password are required")
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// burn a comparison so response time does not reveal the miss
			_, _ = s.hasher.Compare(password, s.getDummyHash())
			s.logger.Info(ctx, "login failed", "reason", "unknown email")
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Compare(password, u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		s.logger.Info(ctx, "login failed", "reason", "password mismatch", "user_id", u.ID)
		return nil, errInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info(ctx, "login succeeded", "user_id", u.ID)
	return &LoginResult{Token: token, IsAdmin: u.IsAdmin, Name: u.Name, Email: u.Email}, nil
}

// Profile returns the stored user for id.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	if !isUUID(userID) {
		return nil, errUserNotFound
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	u, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ProfileUpdate holds the optional fields of a profile change.
type ProfileUpdate struct {
	Name            *string
	Email           *string
	CurrentPassword *string
	NewPassword     *string
}

// UpdateProfile applies upd to the user. Setting a new password requires the
// current one; the read, the check and the write share one transaction.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	if !isUUID(userID) {
		return nil, errUserNotFound
	}

	var change models.UserUpdate
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, common.NewError(common.ErrValidation, "Name cannot be empty")
		}
		change.Name = &name
	}
	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		if email == "" {
			return nil, common.NewError(common.ErrValidation, "Email cannot be empty")
		}
		change.Email = &email
	}
	if upd.NewPassword != nil {
		if *upd.NewPassword == "" {
			return nil, common.NewError(common.ErrValidation, "New password cannot be empty")
		}
		if upd.CurrentPassword == nil || *upd.CurrentPassword == "" {
			return nil, common.NewError(common.ErrValidation, "Current password is required to set a new password")
		}
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	var updated *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return errUserNotFound
			}
			return fmt.Errorf("get user: %w", err)
		}

		if upd.NewPassword != nil {
			ok, err := s.hasher.Compare(*upd.CurrentPassword, u.PasswordHash)
			if err != nil {
				return fmt.Errorf("compare password: %w", err)
			}
			if !ok {
				return errWrongPassword
			}
			hash, err := s.hasher.Hash(*upd.NewPassword)
			if err != nil {
				if errors.Is(err, common.ErrValidation) {
					return err
				}
				return fmt.Errorf("hash password: %w", err)
			}
			change.PasswordHash = &hash
		}

		if change.Email != nil && *change.Email != u.Email {
			other, err := repo.GetByEmail(ctx, *change.Email)
			switch {
			case err == nil && other.ID != u.ID:
				return errEmailInUse
			case err != nil && !errors.Is(err, common.ErrNotFound):
				return fmt.Errorf("lookup email: %w", err)
			}
		}

		updated, err = repo.Update(ctx, userID, change)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrAlreadyExists):
				return errEmailInUse
			case errors.Is(err, common.ErrNotFound):
				return errUserNotFound
			}
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "profile updated", "user_id", userID, "password_changed", change.PasswordHash != nil)
	return updated, nil
}

// SetProfileImage records url as the user's profile image.
func (s *UserService) SetProfileImage(ctx context.Context, userID, url string) error {
	if !isUUID(userID) {
		return errUserNotFound
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	if err := s.repomanager.Users(s.db).SetProfileImage(ctx, userID, url); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return errUserNotFound
		}
		return fmt.Errorf("set profile image: %w", err)
	}
	return nil
}

// CreateAdmin creates an admin account, or resets the password of an
// existing account and makes it an admin.
func (s *UserService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, common.NewError(common.ErrValidation, "Email and password are required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Admin"
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	u, err := s.repomanager.Users(s.db).UpsertAdmin(ctx, name, email, hash)
	if err != nil {
		return nil, fmt.Errorf("upsert admin: %w", err)
	}
	s.logger.Info(ctx, "admin account written", "user_id", u.ID)
	return u, nil
}

// SetAdmin grants or revokes admin rights by email.
func (s *UserService) SetAdmin(ctx context.Context, email string, isAdmin bool) error {
	ctx, cancel := dbx.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	if err := s.repomanager.Users(s.db).SetAdmin(ctx, strings.TrimSpace(email), isAdmin); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return errUserNotFound
		}
		return fmt.Errorf("set admin: %w", err)
	}
	s.logger.Info(ctx, "admin flag changed", "email", email, "is_admin", isAdmin)
	return nil
}

// VerifyLogin reports whether password matches the stored hash for email.
func (s *UserService) VerifyLogin(ctx context.Context, email, password string) (bool, error) {
	ctx, cancel := dbx.WithTimeout(ctx, s.dbTimeout)
	defer cancel()

	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, errUserNotFound
		}
		return false, fmt.Errorf("lookup user: %w", err)
	}
	return s.hasher.Compare(password, u.PasswordHash)
}

func (s *UserService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// isUUID accepts the canonical 8-4-4-4-12 form only.
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
