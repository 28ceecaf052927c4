package expense

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// Reporting periods accepted by PeriodStats.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// CategoryBreakdown is the per-category slice of a period summary.
type CategoryBreakdown struct {
	CategoryID string  `json:"categoryId"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Icon       *string `json:"icon,omitempty"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
}

// PeriodStats summarizes spending over a reporting period. ChangePct compares
// against the immediately preceding window of equal length; it is exactly 0
// when the previous window had no spending, which is an approximation rather
// than a true "no change" signal.
type PeriodStats struct {
	Period        string              `json:"period"`
	Start         time.Time           `json:"start"`
	End           time.Time           `json:"end"`
	Total         float64             `json:"total"`
	Count         int                 `json:"count"`
	AveragePerDay float64             `json:"averagePerDay"`
	ChangePct     float64             `json:"changePct"`
	Categories    []CategoryBreakdown `json:"categories"`
}

// DayBucket groups one calendar day's expenses with their subtotal.
type DayBucket struct {
	Date     string          `json:"date"`
	Total    float64         `json:"total"`
	Expenses []*WithCategory `json:"expenses"`
}

// StatsService reduces scoped expense fetches into summary shapes. All
// aggregation happens in memory after a single fetch per window.
type StatsService struct {
	repo Repository
}

func NewStatsService(repo Repository) *StatsService {
	return &StatsService{repo: repo}
}

// periodStart returns the inclusive window start for a reporting period.
func periodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), nil
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	case PeriodYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("unknown period %q", period)
	}
}

// PeriodStats computes totals, per-category breakdown, daily average, and the
// change against the preceding window of equal length for [start, now].
func (s *StatsService) PeriodStats(ctx context.Context, userID int64, period string, now time.Time) (*PeriodStats, error) {
	start, err := periodStart(period, now)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListWithCategory(ctx, userID, start, now)
	if err != nil {
		return nil, err
	}

	stats := &PeriodStats{Period: period, Start: start, End: now}
	byCategory := make(map[string]*CategoryBreakdown)
	for _, row := range rows {
		stats.Total += row.Amount
		stats.Count++

		b, ok := byCategory[row.CategoryID]
		if !ok {
			b = &CategoryBreakdown{
				CategoryID: row.CategoryID,
				Name:       row.CategoryName,
				Color:      row.CategoryColor,
				Icon:       row.CategoryIcon,
			}
			byCategory[row.CategoryID] = b
		}
		b.Total += row.Amount
		b.Count++
	}

	stats.Categories = make([]CategoryBreakdown, 0, len(byCategory))
	for _, b := range byCategory {
		stats.Categories = append(stats.Categories, *b)
	}
	sort.Slice(stats.Categories, func(i, j int) bool {
		if stats.Categories[i].Total != stats.Categories[j].Total {
			return stats.Categories[i].Total > stats.Categories[j].Total
		}
		return stats.Categories[i].Name < stats.Categories[j].Name
	})

	elapsed := now.Sub(start)
	days := int(math.Ceil(elapsed.Hours() / 24))
	if days < 1 {
		days = 1
	}
	stats.AveragePerDay = stats.Total / float64(days)

	prevRows, err := s.repo.ListWithCategory(ctx, userID, start.Add(-elapsed), start)
	if err != nil {
		return nil, err
	}
	var prevTotal float64
	for _, row := range prevRows {
		// The previous window is half-open: rows dated exactly at the
		// boundary belong to the current period.
		if row.Date.Equal(start) {
			continue
		}
		prevTotal += row.Amount
	}
	if prevTotal > 0 {
		stats.ChangePct = (stats.Total - prevTotal) / prevTotal * 100
	}

	return stats, nil
}

// GroupByDay buckets a user's expenses between from and to by calendar day,
// ascending. Bucket keys use the ISO date portion only.
func (s *StatsService) GroupByDay(ctx context.Context, userID int64, from, to time.Time) ([]DayBucket, error) {
	rows, err := s.repo.ListWithCategory(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*DayBucket)
	for _, row := range rows {
		day := row.Date.Format("2006-01-02")
		b, ok := byDay[day]
		if !ok {
			b = &DayBucket{Date: day}
			byDay[day] = b
		}
		b.Total += row.Amount
		b.Expenses = append(b.Expenses, row)
	}

	buckets := make([]DayBucket, 0, len(byDay))
	for _, b := range byDay {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})

	return buckets, nil
}
