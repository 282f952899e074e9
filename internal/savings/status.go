package savings

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive    = "active"
	StatusAtRisk    = "atRisk"
	StatusCompleted = "completed"
)

func IsValidStatus(status string) bool {
	return status == StatusActive || status == StatusAtRisk || status == StatusCompleted
}

// riskFactor is the fraction of the expected saving rate below which a goal
// is flagged at risk.
var riskFactor = decimal.NewFromFloat(0.7)

// DeriveStatus computes a goal's lifecycle state from its drivers. It is a
// pure function: callers re-invoke it after every deposit, withdrawal, and on
// the passage of time, so a completed goal reverts if a later withdrawal
// drops the amount below target.
//
// A goal is completed once the saved amount reaches the target, at risk once
// the target date has passed without completion, and otherwise at risk when
// the actual daily saving rate falls below 70% of the rate needed to reach
// the target by the target date.
func DeriveStatus(amount, target decimal.Decimal, createdAt, targetDate, now time.Time) string {
	if amount.GreaterThanOrEqual(target) {
		return StatusCompleted
	}
	if targetDate.Before(now) {
		return StatusAtRisk
	}

	totalDays := ceilDays(targetDate.Sub(createdAt))
	daysElapsed := ceilDays(now.Sub(createdAt))

	expectedDailyRate := target.Div(decimal.NewFromInt(totalDays))
	actualDailyRate := amount.Div(decimal.NewFromInt(daysElapsed))

	if actualDailyRate.LessThan(expectedDailyRate.Mul(riskFactor)) {
		return StatusAtRisk
	}
	return StatusActive
}

// ceilDays rounds a duration up to whole days, clamped to a minimum of one
// so same-day goals never divide by zero.
func ceilDays(d time.Duration) int64 {
	days := int64(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}
