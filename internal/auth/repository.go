package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type TwoFactorRepository interface {
	SaveTwoFactorSecret(ctx context.Context, userID, secret string) error
	GetTwoFactorSecret(ctx context.Context, userID string) (string, error)
	EnableTwoFactor(ctx context.Context, userID string) error
	DisableTwoFactor(ctx context.Context, userID string) error
}

type PostgresTwoFactorRepository struct {
	db *sql.DB
}

func NewTwoFactorRepository(db *sql.DB) *PostgresTwoFactorRepository {
	return &PostgresTwoFactorRepository{db: db}
}

func (r *PostgresTwoFactorRepository) SaveTwoFactorSecret(ctx context.Context, userID, secret string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET totp_secret = $1, updated_at = NOW() WHERE id = $2`, secret, userID)
	if err != nil {
		return fmt.Errorf("could not save totp secret: %w", err)
	}
	return nil
}

func (r *PostgresTwoFactorRepository) GetTwoFactorSecret(ctx context.Context, userID string) (string, error) {
	var secret sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT totp_secret FROM users WHERE id = $1`, userID).Scan(&secret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("could not read totp secret: %w", err)
	}
	if !secret.Valid || secret.String == "" {
		return "", ErrNoTwoFactorSecret
	}
	return secret.String, nil
}

func (r *PostgresTwoFactorRepository) EnableTwoFactor(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET two_factor_enabled = TRUE, updated_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("could not enable two-factor authentication: %w", err)
	}
	return nil
}

func (r *PostgresTwoFactorRepository) DisableTwoFactor(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET two_factor_enabled = FALSE,
		    totp_secret = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("could not disable two-factor authentication: %w", err)
	}
	return nil
}
