package infrastructure

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// scopedTransactions restricts to the user's accounts, an optional account and a date range.
// $1 user id, $2 account id or '', $3 from, $4 to.
const scopedTransactions = `
	FROM transactions t
	JOIN accounts a ON a.id = t.account_id
	WHERE a.user_id = $1
	  AND ($2::text = '' OR t.account_id = $2::text)
	  AND t.date >= $3::date AND t.date <= $4::date`

func (r *SummaryRepository) PeriodTotals(ctx context.Context, userID, accountID string, period domain.Period) (domain.PeriodTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN t.amount > 0 THEN t.amount ELSE 0 END), 0)::bigint,
			COALESCE(SUM(CASE WHEN t.amount < 0 THEN t.amount ELSE 0 END), 0)::bigint,
			COALESCE(SUM(t.amount), 0)::bigint` + scopedTransactions

	var totals domain.PeriodTotals
	err := r.db.QueryRowContext(ctx, query, userID, accountID, period.From, period.To).
		Scan(&totals.Income, &totals.Expenses, &totals.Balance)
	if err != nil {
		return domain.PeriodTotals{}, fmt.Errorf("period totals: %w", err)
	}
	return totals, nil
}

func (r *SummaryRepository) CategorySpending(ctx context.Context, userID, accountID string, period domain.Period) ([]domain.CategorySpending, error) {
	query := `
		SELECT c.name, SUM(ABS(t.amount))::bigint AS value
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		JOIN categories c ON c.id = t.category_id
		WHERE a.user_id = $1
		  AND ($2::text = '' OR t.account_id = $2::text)
		  AND t.date >= $3::date AND t.date <= $4::date
		  AND t.amount < 0
		GROUP BY c.name
		ORDER BY value DESC, c.name`

	rows, err := r.db.QueryContext(ctx, query, userID, accountID, period.From, period.To)
	if err != nil {
		return nil, fmt.Errorf("category spending: %w", err)
	}
	defer rows.Close()

	result := []domain.CategorySpending{}
	for rows.Next() {
		var c domain.CategorySpending
		if err := rows.Scan(&c.Name, &c.Value); err != nil {
			return nil, fmt.Errorf("scan category spending: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *SummaryRepository) DailyTotals(ctx context.Context, userID, accountID string, period domain.Period) ([]domain.DayTotals, error) {
	query := `
		SELECT
			t.date,
			COALESCE(SUM(CASE WHEN t.amount > 0 THEN t.amount ELSE 0 END), 0)::bigint,
			COALESCE(SUM(CASE WHEN t.amount < 0 THEN t.amount ELSE 0 END), 0)::bigint` + scopedTransactions + `
		GROUP BY t.date
		ORDER BY t.date`

	rows, err := r.db.QueryContext(ctx, query, userID, accountID, period.From, period.To)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	result := []domain.DayTotals{}
	for rows.Next() {
		var d domain.DayTotals
		if err := rows.Scan(&d.Date, &d.Income, &d.Expenses); err != nil {
			return nil, fmt.Errorf("scan daily totals: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
