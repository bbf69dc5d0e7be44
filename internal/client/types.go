package client

import (
	"github.com/shopspring/decimal"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	"github.com/sebuszqo/FinanceTracker/internal/money"
)

type Account = domain.Account

type Category = domain.Category

// Transaction carries Amount in display units.
type Transaction struct {
	ID         string
	Amount     decimal.Decimal
	Payee      string
	Notes      *string
	Date       domain.Date
	AccountID  string
	CategoryID *string
	// Account and Category are only filled by ListTransactions.
	Account  string
	Category *string
}

type TransactionInput struct {
	Amount     decimal.Decimal
	Payee      string
	Notes      *string
	Date       domain.Date
	AccountID  string
	CategoryID *string
}

type TransactionFilter struct {
	From      domain.Date
	To        domain.Date
	AccountID string
}

type Totals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

type CategoryTotal struct {
	Name  string
	Value decimal.Decimal
}

type DayTotals struct {
	Date     domain.Date
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

type Summary struct {
	Period           domain.Period
	PreviousPeriod   domain.Period
	Current          Totals
	Previous         Totals
	ChangePercentage domain.ChangePercentage
	TopCategories    []CategoryTotal
	Days             []DayTotals
}

func (in TransactionInput) toWire() domain.TransactionInput {
	return domain.TransactionInput{
		Amount:     money.ToMilliunits(in.Amount),
		Payee:      in.Payee,
		Notes:      in.Notes,
		Date:       in.Date,
		AccountID:  in.AccountID,
		CategoryID: in.CategoryID,
	}
}

func fromWireTransaction(t domain.Transaction) Transaction {
	return Transaction{
		ID:         t.ID,
		Amount:     money.FromMilliunits(t.Amount),
		Payee:      t.Payee,
		Notes:      t.Notes,
		Date:       t.Date,
		AccountID:  t.AccountID,
		CategoryID: t.CategoryID,
	}
}

func fromWireView(v domain.TransactionView) Transaction {
	t := fromWireTransaction(v.Transaction)
	t.Account = v.Account
	t.Category = v.Category
	return t
}

func fromWireTotals(t domain.PeriodTotals) Totals {
	return Totals{
		Income:   money.FromMilliunits(t.Income),
		Expenses: money.FromMilliunits(t.Expenses),
		Balance:  money.FromMilliunits(t.Balance),
	}
}

func fromWireSummary(s domain.Summary) Summary {
	summary := Summary{
		Period:           s.Period,
		PreviousPeriod:   s.PreviousPeriod,
		Current:          fromWireTotals(s.Current),
		Previous:         fromWireTotals(s.Previous),
		ChangePercentage: s.ChangePercentage,
		TopCategories:    make([]CategoryTotal, len(s.TopCategories)),
		Days:             make([]DayTotals, len(s.Days)),
	}
	for i, c := range s.TopCategories {
		summary.TopCategories[i] = CategoryTotal{Name: c.Name, Value: money.FromMilliunits(c.Value)}
	}
	for i, d := range s.Days {
		summary.Days[i] = DayTotals{
			Date:     d.Date,
			Income:   money.FromMilliunits(d.Income),
			Expenses: money.FromMilliunits(d.Expenses),
		}
	}
	return summary
}
