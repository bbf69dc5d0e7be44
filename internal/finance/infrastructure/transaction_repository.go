package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `t.id, t.amount, t.payee, t.notes, t.date, t.account_id, t.category_id`

// The insert selects from accounts so a row is written only when the account,
// and the category if given, belong to the user.
const insertOwnedTransaction = `
	INSERT INTO transactions (id, amount, payee, notes, date, account_id, category_id)
	SELECT $1::text, $2::bigint, $3::text, $4::text, $5::date, a.id, $7::text
	FROM accounts a
	WHERE a.id = $6 AND a.user_id = $8
	  AND ($7::text IS NULL OR EXISTS (
	      SELECT 1 FROM categories c WHERE c.id = $7::text AND c.user_id = $8))
	RETURNING id, amount, payee, notes, date, account_id, category_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := row.Scan(&t.ID, &t.Amount, &t.Payee, &t.Notes, &t.Date, &t.AccountID, &t.CategoryID); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) List(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.TransactionView, error) {
	query := `
		SELECT ` + transactionColumns + `, a.name, c.name
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE a.user_id = $1
		  AND ($2::text = '' OR t.account_id = $2::text)
		  AND t.date >= $3::date AND t.date <= $4::date
		ORDER BY t.date DESC, t.id`

	rows, err := r.db.QueryContext(ctx, query, userID, filter.AccountID, filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	views := []domain.TransactionView{}
	for rows.Next() {
		var v domain.TransactionView
		if err := rows.Scan(&v.ID, &v.Amount, &v.Payee, &v.Notes, &v.Date, &v.AccountID, &v.CategoryID, &v.Account, &v.Category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *TransactionRepository) Get(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.id = $1 AND a.user_id = $2`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func insertArgs(userID string, t domain.Transaction) []interface{} {
	return []interface{}{t.ID, t.Amount, t.Payee, t.Notes, t.Date, t.AccountID, t.CategoryID, userID}
}

func (r *TransactionRepository) Create(ctx context.Context, userID string, t domain.Transaction) (*domain.Transaction, error) {
	created, err := scanTransaction(r.db.QueryRowContext(ctx, insertOwnedTransaction, insertArgs(userID, t)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isForeignKeyViolation(err) {
			return nil, r.invalidReference(ctx, userID, t)
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return created, nil
}

// CreateBulk inserts every transaction in one database transaction; any
// foreign reference rolls back the whole batch.
func (r *TransactionRepository) CreateBulk(ctx context.Context, userID string, txs []domain.Transaction) (created []domain.Transaction, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else {
			err = tx.Commit()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertOwnedTransaction)
	if err != nil {
		return nil, fmt.Errorf("prepare bulk insert: %w", err)
	}
	defer stmt.Close()

	created = make([]domain.Transaction, 0, len(txs))
	for i, t := range txs {
		row, scanErr := scanTransaction(stmt.QueryRowContext(ctx, insertArgs(userID, t)...))
		if scanErr != nil {
			if errors.Is(scanErr, sql.ErrNoRows) || isForeignKeyViolation(scanErr) {
				return nil, financeErrors.NewIndexedValidationError(i+1, "Account or category does not exist")
			}
			return nil, fmt.Errorf("database error at transaction %d: %w", i+1, scanErr)
		}
		created = append(created, *row)
	}
	return created, nil
}

func (r *TransactionRepository) Update(ctx context.Context, userID string, t domain.Transaction) (*domain.Transaction, error) {
	query := `
		WITH owned AS (
			SELECT tr.id
			FROM transactions tr
			JOIN accounts a ON a.id = tr.account_id
			WHERE tr.id = $1 AND a.user_id = $8
		)
		UPDATE transactions
		SET amount = $2, payee = $3, notes = $4, date = $5::date, account_id = $6, category_id = $7::text
		WHERE id IN (SELECT id FROM owned)
		  AND EXISTS (SELECT 1 FROM accounts WHERE id = $6 AND user_id = $8)
		  AND ($7::text IS NULL OR EXISTS (
		      SELECT 1 FROM categories WHERE id = $7::text AND user_id = $8))
		RETURNING id, amount, payee, notes, date, account_id, category_id`

	updated, err := scanTransaction(r.db.QueryRowContext(ctx, query, insertArgs(userID, t)...))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, sql.ErrNoRows) && !isForeignKeyViolation(err) {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	if _, getErr := r.Get(ctx, userID, t.ID); getErr != nil {
		return nil, getErr
	}
	return nil, r.invalidReference(ctx, userID, t)
}

func (r *TransactionRepository) Delete(ctx context.Context, userID string, ids []string) ([]string, error) {
	query := `
		WITH owned AS (
			SELECT t.id
			FROM transactions t
			JOIN accounts a ON a.id = t.account_id
			WHERE t.id = ANY($1) AND a.user_id = $2
		)
		DELETE FROM transactions
		WHERE id IN (SELECT id FROM owned)
		RETURNING id`
	return queryIDs(ctx, r.db, query, ids, userID)
}

// invalidReference reports which reference of t the user does not own.
func (r *TransactionRepository) invalidReference(ctx context.Context, userID string, t domain.Transaction) error {
	var accountOK bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1 AND user_id = $2)`,
		t.AccountID, userID).Scan(&accountOK)
	if err != nil {
		return fmt.Errorf("check account reference: %w", err)
	}
	if !accountOK {
		return financeErrors.ErrInvalidAccount
	}
	return financeErrors.ErrInvalidCategory
}
