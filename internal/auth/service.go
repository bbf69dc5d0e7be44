package auth

import (
	"context"
	"errors"

	"github.com/sebuszqo/FinanceTracker/internal/log"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInternalError         = errors.New("internal Server Error")
	ErrUser2FANotEnabled     = errors.New("two factor auth is not enabled")
	ErrUser2FAAlreadyEnabled = errors.New("2fa auth already enabled")
	ErrInvalid2FACode        = errors.New("2fa code is invalid")
	ErrNoTwoFactorSecret     = errors.New("two factor registration has not been started")
)

// UserStore is the part of the user service authentication depends on.
type UserStore interface {
	GetUserByID(ctx context.Context, userID string) (*user.User, error)
	GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*user.User, error)
}

type Service struct {
	repo           TwoFactorRepository
	users          UserStore
	sessionManager *SessionManager
	jwtManager     *JWTManager
	authenticator  *Authenticator
	logger         *log.Logger
}

func NewAuthService(repo TwoFactorRepository, users UserStore, sessionManager *SessionManager, jwtManager *JWTManager, authenticator *Authenticator, logger *log.Logger) *Service {
	return &Service{
		repo:           repo,
		users:          users,
		sessionManager: sessionManager,
		jwtManager:     jwtManager,
		authenticator:  authenticator,
		logger:         logger.WithComponent(log.ComponentAuth),
	}
}

// LoginResult carries either a token pair or, when 2FA is on, a session token.
type LoginResult struct {
	User         *user.User
	AccessToken  string
	RefreshToken string
	SessionToken string
}

func (r LoginResult) TwoFactorRequired() bool {
	return r.SessionToken != ""
}

func (s *Service) lookupUser(ctx context.Context, userID string) (*user.User, error) {
	existingUser, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to load user", "user_id", userID, "error", err)
		return nil, ErrInternalError
	}
	return existingUser, nil
}

func (s *Service) issueTokens(ctx context.Context, u *user.User) (LoginResult, error) {
	accessToken, err := s.jwtManager.GenerateAccessJWT(u.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate access token", "error", err)
		return LoginResult{}, ErrInternalError
	}
	refreshToken, err := s.jwtManager.GenerateRefreshJWT(u.ID, u.HashToken)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate refresh token", "error", err)
		return LoginResult{}, ErrInternalError
	}
	return LoginResult{User: u, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) Login(ctx context.Context, emailOrLogin, password string) (LoginResult, error) {
	existingUser, err := s.users.GetUserByLoginOrEmail(ctx, emailOrLogin)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "Failed to load user for login", "error", err)
		return LoginResult{}, ErrInternalError
	}

	if !user.PasswordMatches(existingUser.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	if existingUser.TwoFactorEnabled {
		sessionToken, err := s.sessionManager.GenerateSessionToken(existingUser.ID, defaultSessionTokenDuration)
		if err != nil {
			return LoginResult{}, ErrInternalError
		}
		return LoginResult{User: existingUser, SessionToken: sessionToken}, nil
	}

	return s.issueTokens(ctx, existingUser)
}

func (s *Service) VerifyTwoFactor(ctx context.Context, sessionToken, code string) (LoginResult, error) {
	userID, err := s.sessionManager.VerifySessionToken(sessionToken)
	if err != nil {
		return LoginResult{}, err
	}

	existingUser, err := s.lookupUser(ctx, userID)
	if err != nil {
		return LoginResult{}, err
	}
	if !existingUser.TwoFactorEnabled {
		return LoginResult{}, ErrUser2FANotEnabled
	}

	secret, err := s.repo.GetTwoFactorSecret(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read totp secret", "user_id", userID, "error", err)
		return LoginResult{}, ErrInternalError
	}
	if !s.authenticator.VerifyCode(secret, code) {
		return LoginResult{}, ErrInvalid2FACode
	}

	s.sessionManager.DeleteSessionToken(sessionToken)
	return s.issueTokens(ctx, existingUser)
}

// RegisterTwoFactor stores a fresh TOTP secret and returns its otpauth URI.
// 2FA stays disabled until VerifyTwoFactorCode confirms a code.
func (s *Service) RegisterTwoFactor(ctx context.Context, userID string) (string, error) {
	existingUser, err := s.lookupUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if existingUser.TwoFactorEnabled {
		return "", ErrUser2FAAlreadyEnabled
	}

	otpURI, secret, err := s.authenticator.GenerateSecret(existingUser.Email)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate totp secret", "error", err)
		return "", ErrInternalError
	}
	if err := s.repo.SaveTwoFactorSecret(ctx, userID, secret); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save totp secret", "error", err)
		return "", ErrInternalError
	}
	return otpURI, nil
}

func (s *Service) VerifyTwoFactorCode(ctx context.Context, userID, code string) error {
	existingUser, err := s.lookupUser(ctx, userID)
	if err != nil {
		return err
	}
	if existingUser.TwoFactorEnabled {
		return ErrUser2FAAlreadyEnabled
	}

	secret, err := s.repo.GetTwoFactorSecret(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoTwoFactorSecret) {
			return ErrNoTwoFactorSecret
		}
		return ErrInternalError
	}
	if !s.authenticator.VerifyCode(secret, code) {
		return ErrInvalid2FACode
	}

	if err := s.repo.EnableTwoFactor(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to enable 2FA", "error", err)
		return ErrInternalError
	}
	s.logger.InfoContext(ctx, "Two-factor authentication enabled", "user_id", userID)
	return nil
}

func (s *Service) DisableTwoFactor(ctx context.Context, userID, code string) error {
	existingUser, err := s.lookupUser(ctx, userID)
	if err != nil {
		return err
	}
	if !existingUser.TwoFactorEnabled {
		return ErrUser2FANotEnabled
	}

	secret, err := s.repo.GetTwoFactorSecret(ctx, userID)
	if err != nil {
		return ErrInternalError
	}
	if !s.authenticator.VerifyCode(secret, code) {
		return ErrInvalid2FACode
	}

	if err := s.repo.DisableTwoFactor(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to disable 2FA", "error", err)
		return ErrInternalError
	}
	return nil
}

// RefreshAccessToken runs behind RefreshTokenMiddleware, which already checked the token.
func (s *Service) RefreshAccessToken(ctx context.Context, userID string) (string, string, error) {
	existingUser, err := s.lookupUser(ctx, userID)
	if err != nil {
		return "", "", err
	}
	result, err := s.issueTokens(ctx, existingUser)
	if err != nil {
		return "", "", err
	}
	return result.AccessToken, result.RefreshToken, nil
}

// CleanExpiredSessions is run by the scheduler.
func (s *Service) CleanExpiredSessions() int {
	return s.sessionManager.CleanExpired()
}
