package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sebuszqo/FinanceTracker/internal/log"
)

type Service struct {
	repo   Repository
	logger *log.Logger
	cost   int
}

func NewUserService(repo Repository, logger *log.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentAuth),
		cost:   bcryptCost,
	}
}

func (s *Service) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	return string(hashed), err
}

// PasswordMatches reports whether password hashes to hashedPassword.
func PasswordMatches(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

func generateHashToken() (string, error) {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("could not generate hash token: %w", err)
	}
	return hex.EncodeToString(token), nil
}

func validateEmailAddress(email string) error {
	if len(email) > maxEmailLength || len(email) <= minEmailLength {
		return ErrEmailLength
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// Register creates a user. An empty login defaults to the local part of email.
func (s *Service) Register(ctx context.Context, email, login, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmailAddress(email); err != nil {
		return nil, err
	}

	if login == "" {
		login = strings.SplitN(email, "@", 2)[0]
	}
	if len(login) > maxLoginLength || len(login) < minLoginLength {
		return nil, ErrLoginLength
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	existing, err := s.repo.FindByLoginOrEmail(ctx, login, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		s.logger.ErrorContext(ctx, "Failed to check existing user", "error", err)
		return nil, ErrInternalError
	}
	if existing != nil {
		if existing.Login == login {
			return nil, ErrLoginAlreadyExists
		}
		return nil, ErrEmailAlreadyExists
	}

	passwordHash, err := s.hashPassword(password)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to hash password", "error", err)
		return nil, ErrInternalError
	}

	hashToken, err := generateHashToken()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate hash token", "error", err)
		return nil, ErrInternalError
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Login:        login,
		PasswordHash: passwordHash,
		HashToken:    hashToken,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) || errors.Is(err, ErrLoginAlreadyExists) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Failed to create user", "error", err)
		return nil, ErrInternalError
	}

	s.logger.InfoContext(ctx, "User registered", "user_id", user.ID)
	return user, nil
}

func (s *Service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *Service) GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error) {
	return s.repo.GetUserByLoginOrEmail(ctx, strings.TrimSpace(loginOrEmail))
}

// ChangePassword also rotates the hash token, which invalidates every issued refresh token.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if !PasswordMatches(user.PasswordHash, oldPassword) {
		return ErrInvalidOldPassword
	}
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return ErrInternalError
	}
	hashToken, err := generateHashToken()
	if err != nil {
		return ErrInternalError
	}

	if err := s.repo.UpdatePasswordAndHashToken(ctx, userID, passwordHash, hashToken); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update password", "user_id", userID, "error", err)
		return ErrInternalError
	}
	return nil
}
