package application

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/sebuszqo/FinanceTracker/internal/cache"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/sebuszqo/FinanceTracker/internal/log"
)

// SeriesWindow selects which period the daily series covers.
type SeriesWindow string

const (
	SeriesWindowPrevious SeriesWindow = "previous"
	SeriesWindowCurrent  SeriesWindow = "current"
)

const (
	topCategoryCount  = 3
	otherCategoryName = "other"
	computeTimeout    = 30 * time.Second
)

type SummaryService struct {
	repo         domain.SummaryRepository
	cache        *cache.LRUCache[domain.Summary]
	group        singleflight.Group
	seriesWindow SeriesWindow

	// generations counts invalidations per user. A computation only fills the
	// cache when no invalidation happened while it ran.
	mu          sync.Mutex
	generations map[string]uint64

	logger       *log.Logger
	now          func() time.Time
}

func NewSummaryService(repo domain.SummaryRepository, summaryCache *cache.LRUCache[domain.Summary], seriesWindow SeriesWindow, logger *log.Logger) *SummaryService {
	if seriesWindow != SeriesWindowCurrent {
		seriesWindow = SeriesWindowPrevious
	}
	return &SummaryService{
		repo:         repo,
		cache:        summaryCache,
		seriesWindow: seriesWindow,
		generations:  make(map[string]uint64),
		logger:       logger,
		now:          time.Now,
	}
}

func summaryKeyPrefix(userID string) string {
	return userID + ":summary:"
}

func summaryKey(userID string, q domain.SummaryQuery) string {
	return fmt.Sprintf("%s%s:%s:%s", summaryKeyPrefix(userID), q.From, q.To, q.AccountID)
}

// InvalidateUser drops every cached summary of userID. Computations already
// running for userID will not store their results.
func (s *SummaryService) InvalidateUser(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[userID]++
	return s.cache.DeletePrefix(summaryKeyPrefix(userID))
}

func (s *SummaryService) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

// store caches summary unless userID was invalidated after generation was read.
func (s *SummaryService) store(userID, key string, generation uint64, summary domain.Summary) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[userID] != generation {
		return false
	}
	s.cache.Set(key, summary)
	return true
}

// CleanExpired is run by the scheduler.
func (s *SummaryService) CleanExpired() int {
	return s.cache.CleanExpired()
}

func (s *SummaryService) GetSummary(ctx context.Context, userID string, q domain.SummaryQuery) (*domain.Summary, error) {
	from, to, err := ResolveRange(q.From, q.To, s.now())
	if err != nil {
		return nil, err
	}
	q.From, q.To = from, to

	key := summaryKey(userID, q)
	if cached, ok := s.cache.Get(key); ok {
		s.logger.DebugContext(ctx, "Summary cache hit", "key", key)
		return &cached, nil
	}

	generation := s.generation(userID)
	flightKey := fmt.Sprintf("%s#%d", key, generation)
	v, err, _ := s.group.Do(flightKey, func() (interface{}, error) {
		// Every waiter on flightKey shares this run; it outlives any single caller.
		computeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()

		summary, err := s.compute(computeCtx, userID, q)
		if err != nil {
			return nil, err
		}
		if !s.store(userID, key, generation, *summary) {
			s.logger.DebugContext(ctx, "Summary invalidated while computing, not cached", "key", key)
		}
		return summary, nil
	})
	if err != nil {
		return nil, err
	}
	summary := *v.(*domain.Summary)
	return &summary, nil
}

func (s *SummaryService) compute(ctx context.Context, userID string, q domain.SummaryQuery) (*domain.Summary, error) {
	current, previous, err := PeriodBounds(q.From, q.To)
	if err != nil {
		return nil, err
	}
	seriesPeriod := previous
	if s.seriesWindow == SeriesWindowCurrent {
		seriesPeriod = current
	}

	var (
		currentTotals  domain.PeriodTotals
		previousTotals domain.PeriodTotals
		spending       []domain.CategorySpending
		activeDays     []domain.DayTotals
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		currentTotals, err = s.repo.PeriodTotals(gctx, userID, q.AccountID, current)
		return err
	})
	g.Go(func() error {
		var err error
		previousTotals, err = s.repo.PeriodTotals(gctx, userID, q.AccountID, previous)
		return err
	})
	g.Go(func() error {
		var err error
		spending, err = s.repo.CategorySpending(gctx, userID, q.AccountID, current)
		return err
	})
	g.Go(func() error {
		var err error
		activeDays, err = s.repo.DailyTotals(gctx, userID, q.AccountID, seriesPeriod)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("summary for user %s: %w", userID, err)
	}

	return &domain.Summary{
		Period:         current,
		PreviousPeriod: previous,
		Current:        currentTotals,
		Previous:       previousTotals,
		ChangePercentage: domain.ChangePercentage{
			Income:   CalculatePercentageChange(currentTotals.Income, previousTotals.Income),
			Expenses: CalculatePercentageChange(currentTotals.Expenses, previousTotals.Expenses),
			Balance:  CalculatePercentageChange(currentTotals.Balance, previousTotals.Balance),
		},
		TopCategories: TopCategories(spending),
		Days:          FillMissingDays(activeDays, seriesPeriod.From, seriesPeriod.To),
	}, nil
}

// PeriodBounds returns [from, to] and the equally long period right before it.
func PeriodBounds(from, to domain.Date) (domain.Period, domain.Period, error) {
	if from.After(to.Time) {
		return domain.Period{}, domain.Period{}, financeErrors.ErrInvalidRange
	}
	length := from.DaysUntil(to) + 1
	current := domain.Period{From: from, To: to}
	previous := domain.Period{From: from.AddDays(-length), To: to.AddDays(-length)}
	return current, previous, nil
}

// CalculatePercentageChange is relative to |previous|. From zero it is 0 or 100.
func CalculatePercentageChange(current, previous int64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return float64(current-previous) / math.Abs(float64(previous)) * 100
}

// TopCategories keeps the three largest and folds the rest into "other" when positive.
func TopCategories(spending []domain.CategorySpending) []domain.CategorySpending {
	sorted := make([]domain.CategorySpending, len(spending))
	copy(sorted, spending)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	if len(sorted) <= topCategoryCount {
		return sorted
	}

	top := sorted[:topCategoryCount:topCategoryCount]
	var rest int64
	for _, c := range sorted[topCategoryCount:] {
		rest += c.Value
	}
	if rest > 0 {
		top = append(top, domain.CategorySpending{Name: otherCategoryName, Value: rest})
	}
	return top
}

// FillMissingDays returns one entry per day in [from, to], zero where nothing
// happened. No activity at all gives an empty series.
func FillMissingDays(activeDays []domain.DayTotals, from, to domain.Date) []domain.DayTotals {
	if len(activeDays) == 0 {
		return []domain.DayTotals{}
	}

	byDay := make(map[string]domain.DayTotals, len(activeDays))
	for _, d := range activeDays {
		byDay[d.Date.String()] = d
	}

	days := make([]domain.DayTotals, 0, from.DaysUntil(to)+1)
	for day := from; !day.After(to.Time); day = day.AddDays(1) {
		if active, ok := byDay[day.String()]; ok {
			days = append(days, active)
			continue
		}
		days = append(days, domain.DayTotals{Date: day})
	}
	return days
}
