package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type namedRow struct {
	ID         string
	UserID     string
	Name       string
	ExternalID *string
}

// namedTable implements the user-scoped CRUD shared by accounts and categories.
type namedTable struct {
	db    *sql.DB
	table string
}

func (t namedTable) list(ctx context.Context, userID string) ([]namedRow, error) {
	query := fmt.Sprintf(`SELECT id, user_id, name, external_id FROM %s WHERE user_id = $1 ORDER BY name, id`, t.table)
	rows, err := t.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.table, err)
	}
	defer rows.Close()

	result := []namedRow{}
	for rows.Next() {
		var row namedRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.Name, &row.ExternalID); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.table, err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (t namedTable) get(ctx context.Context, userID, id string) (namedRow, error) {
	query := fmt.Sprintf(`SELECT id, user_id, name, external_id FROM %s WHERE id = $1 AND user_id = $2`, t.table)
	return t.scanOne(t.db.QueryRowContext(ctx, query, id, userID))
}

func (t namedTable) create(ctx context.Context, userID, id string, input domain.NamedInput) (namedRow, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, name, external_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, name, external_id`, t.table)
	return t.scanOne(t.db.QueryRowContext(ctx, query, id, userID, input.Name, input.ExternalID))
}

func (t namedTable) update(ctx context.Context, userID, id string, input domain.NamedInput) (namedRow, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET name = $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, name, external_id`, t.table)
	return t.scanOne(t.db.QueryRowContext(ctx, query, input.Name, id, userID))
}

func (t namedTable) delete(ctx context.Context, userID string, ids []string) ([]string, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND id = ANY($2) RETURNING id`, t.table)
	return queryIDs(ctx, t.db, query, userID, ids)
}

func (t namedTable) scanOne(row *sql.Row) (namedRow, error) {
	var r namedRow
	if err := row.Scan(&r.ID, &r.UserID, &r.Name, &r.ExternalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return namedRow{}, financeErrors.ErrNotFound
		}
		return namedRow{}, fmt.Errorf("%s: %w", t.table, err)
	}
	return r, nil
}

func queryIDs(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type AccountRepository struct {
	t namedTable
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{t: namedTable{db: db, table: "accounts"}}
}

func toAccount(r namedRow) domain.Account {
	return domain.Account{ID: r.ID, UserID: r.UserID, Name: r.Name, ExternalID: r.ExternalID}
}

func (r *AccountRepository) List(ctx context.Context, userID string) ([]domain.Account, error) {
	rows, err := r.t.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	accounts := make([]domain.Account, len(rows))
	for i, row := range rows {
		accounts[i] = toAccount(row)
	}
	return accounts, nil
}

func (r *AccountRepository) Get(ctx context.Context, userID, id string) (*domain.Account, error) {
	row, err := r.t.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	account := toAccount(row)
	return &account, nil
}

func (r *AccountRepository) Create(ctx context.Context, userID, id string, input domain.NamedInput) (*domain.Account, error) {
	row, err := r.t.create(ctx, userID, id, input)
	if err != nil {
		return nil, err
	}
	account := toAccount(row)
	return &account, nil
}

func (r *AccountRepository) Update(ctx context.Context, userID, id string, input domain.NamedInput) (*domain.Account, error) {
	row, err := r.t.update(ctx, userID, id, input)
	if err != nil {
		return nil, err
	}
	account := toAccount(row)
	return &account, nil
}

func (r *AccountRepository) Delete(ctx context.Context, userID string, ids []string) ([]string, error) {
	return r.t.delete(ctx, userID, ids)
}

type CategoryRepository struct {
	t namedTable
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{t: namedTable{db: db, table: "categories"}}
}

func toCategory(r namedRow) domain.Category {
	return domain.Category{ID: r.ID, UserID: r.UserID, Name: r.Name, ExternalID: r.ExternalID}
}

func (r *CategoryRepository) List(ctx context.Context, userID string) ([]domain.Category, error) {
	rows, err := r.t.list(ctx, userID)
	if err != nil {
		return nil, err
	}
	categories := make([]domain.Category, len(rows))
	for i, row := range rows {
		categories[i] = toCategory(row)
	}
	return categories, nil
}

func (r *CategoryRepository) Get(ctx context.Context, userID, id string) (*domain.Category, error) {
	row, err := r.t.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	category := toCategory(row)
	return &category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, userID, id string, input domain.NamedInput) (*domain.Category, error) {
	row, err := r.t.create(ctx, userID, id, input)
	if err != nil {
		return nil, err
	}
	category := toCategory(row)
	return &category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, userID, id string, input domain.NamedInput) (*domain.Category, error) {
	row, err := r.t.update(ctx, userID, id, input)
	if err != nil {
		return nil, err
	}
	category := toCategory(row)
	return &category, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, userID string, ids []string) ([]string, error) {
	return r.t.delete(ctx, userID, ids)
}
