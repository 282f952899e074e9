package savings_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fintrack/fintrack/internal/savings"
)

func TestDeriveStatus(t *testing.T) {
	createdAt := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	targetDate := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	target := decimal.NewFromInt(1000)

	tests := []struct {
		name   string
		amount decimal.Decimal
		now    time.Time
		want   string
	}{
		{
			// ~1.0/day actual vs ~2.74/day expected, well under 70%
			name:   "far behind pace",
			amount: decimal.NewFromInt(100),
			now:    time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
			want:   savings.StatusAtRisk,
		},
		{
			// ~3.0/day actual vs ~2.74/day expected
			name:   "ahead of pace",
			amount: decimal.NewFromInt(500),
			now:    time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
			want:   savings.StatusActive,
		},
		{
			name:   "target reached",
			amount: decimal.NewFromInt(1000),
			now:    time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			want:   savings.StatusCompleted,
		},
		{
			name:   "target exceeded",
			amount: decimal.NewFromInt(1500),
			now:    time.Date(2024, time.November, 20, 0, 0, 0, 0, time.UTC),
			want:   savings.StatusCompleted,
		},
		{
			name:   "deadline passed without completion",
			amount: decimal.NewFromInt(999),
			now:    time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
			want:   savings.StatusAtRisk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := savings.DeriveStatus(tt.amount, target, createdAt, targetDate, tt.now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveStatusSameDayGoal(t *testing.T) {
	// created and evaluated on the same day: elapsed days clamp to 1 instead
	// of dividing by zero
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	createdAt := now
	targetDate := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)

	got := savings.DeriveStatus(decimal.NewFromInt(50), decimal.NewFromInt(100), createdAt, targetDate, now)
	assert.Equal(t, savings.StatusActive, got)
}

func TestDeriveStatusZeroDurationGoal(t *testing.T) {
	// target date equal to creation date: total days clamp to 1
	createdAt := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	got := savings.DeriveStatus(decimal.NewFromInt(10), decimal.NewFromInt(100), createdAt, createdAt, createdAt)
	assert.Equal(t, savings.StatusAtRisk, got)
}

func TestDeriveStatusRevertsAfterWithdrawal(t *testing.T) {
	// completed is not sticky: dropping back below target re-derives
	createdAt := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	targetDate := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	target := decimal.NewFromInt(1000)

	assert.Equal(t, savings.StatusCompleted, savings.DeriveStatus(decimal.NewFromInt(1000), target, createdAt, targetDate, now))
	assert.Equal(t, savings.StatusActive, savings.DeriveStatus(decimal.NewFromInt(900), target, createdAt, targetDate, now))
}
