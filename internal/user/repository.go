package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error)
	FindByLoginOrEmail(ctx context.Context, login, email string) (*User, error)
	UpdatePasswordAndHashToken(ctx context.Context, userID, passwordHash, hashToken string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectUserColumns = `id, email, login, password_hash, hash_token, two_factor_enabled, created_at, updated_at`

func (r *PostgresRepository) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, login, password_hash, hash_token, two_factor_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, user.ID, user.Email, user.Login, user.PasswordHash, user.HashToken).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "login") {
				return ErrLoginAlreadyExists
			}
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("could not create user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	return r.scanOne(ctx, `SELECT `+selectUserColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error) {
	return r.scanOne(ctx, `SELECT `+selectUserColumns+` FROM users WHERE login = $1 OR email = $1 LIMIT 1`, loginOrEmail)
}

func (r *PostgresRepository) FindByLoginOrEmail(ctx context.Context, login, email string) (*User, error) {
	return r.scanOne(ctx, `SELECT `+selectUserColumns+` FROM users WHERE login = $1 OR email = $2 LIMIT 1`, login, email)
}

func (r *PostgresRepository) UpdatePasswordAndHashToken(ctx context.Context, userID, passwordHash, hashToken string) error {
	query := `
		UPDATE users
		SET password_hash = $1,
		    hash_token = $2,
		    updated_at = NOW()
		WHERE id = $3
	`
	res, err := r.db.ExecContext(ctx, query, passwordHash, hashToken, userID)
	if err != nil {
		return fmt.Errorf("could not update user password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...interface{}) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Email, &u.Login, &u.PasswordHash, &u.HashToken, &u.TwoFactorEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %w", err)
	}
	return &u, nil
}
