package domain

import "context"

type PeriodTotals struct {
	Income   int64 `json:"income"`
	Expenses int64 `json:"expenses"`
	Balance  int64 `json:"balance"`
}

type ChangePercentage struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

type CategorySpending struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type DayTotals struct {
	Date     Date  `json:"date"`
	Income   int64 `json:"income"`
	Expenses int64 `json:"expenses"`
}

type Period struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

type Summary struct {
	Period           Period             `json:"period"`
	PreviousPeriod   Period             `json:"previous_period"`
	Current          PeriodTotals       `json:"current"`
	Previous         PeriodTotals       `json:"previous"`
	ChangePercentage ChangePercentage   `json:"change_percentage"`
	TopCategories    []CategorySpending `json:"top_categories"`
	Days             []DayTotals        `json:"days"`
}

type SummaryQuery struct {
	From      Date
	To        Date
	AccountID string
}

// SummaryRepository runs the per-period aggregations, each one SQL round trip.
type SummaryRepository interface {
	PeriodTotals(ctx context.Context, userID, accountID string, period Period) (PeriodTotals, error)
	CategorySpending(ctx context.Context, userID, accountID string, period Period) ([]CategorySpending, error)
	DailyTotals(ctx context.Context, userID, accountID string, period Period) ([]DayTotals, error)
}
