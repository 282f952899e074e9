package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a planned spending envelope for one category over a date range.
// SpentAmount is a derived aggregate: it is only ever mutated by the expense
// ledger's compensating updates, never written directly from a request.
type Budget struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	UserID        int64           `json:"user_id" gorm:"column:user_id;not null"`
	Name          string          `json:"name" gorm:"not null"`
	Description   string          `json:"description"`
	PeriodType    string          `json:"period_type" gorm:"column:period_type"`
	StartDate     time.Time       `json:"start_date" gorm:"column:start_date;type:date"`
	EndDate       time.Time       `json:"end_date" gorm:"column:end_date;type:date"`
	Category      string          `json:"category" gorm:"not null"`
	PlannedAmount decimal.Decimal `json:"planned_amount" gorm:"column:planned_amount;type:decimal(20,2)"`
	SpentAmount   decimal.Decimal `json:"spent_amount" gorm:"column:spent_amount;type:decimal(20,2)"`
	RollOver      bool            `json:"roll_over" gorm:"column:roll_over"`
	IsActive      bool            `json:"is_active" gorm:"column:is_active"`
	CreatedAt     time.Time       `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"column:updated_at"`
}

func (Budget) TableName() string {
	return "budgets"
}

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

func IsValidPeriod(period string) bool {
	return period == PeriodDaily || period == PeriodWeekly || period == PeriodMonthly
}

// Covers reports whether an expense in the given category on the given date
// falls inside this budget's envelope. Time of day is not significant.
func (b *Budget) Covers(category string, date time.Time) bool {
	if !b.IsActive || b.Category != category {
		return false
	}
	d := dateOnly(date)
	return !d.Before(dateOnly(b.StartDate)) && !d.After(dateOnly(b.EndDate))
}

// Match selects the single budget an expense charges against: active, same
// category, period covering the date. When several qualify the most recently
// created one wins. Returns nil when no budget matches.
func Match(candidates []*Budget, category string, date time.Time) *Budget {
	var matched *Budget
	for _, candidate := range candidates {
		if !candidate.Covers(category, date) {
			continue
		}
		if matched == nil || candidate.CreatedAt.After(matched.CreatedAt) {
			matched = candidate
		}
	}
	return matched
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
