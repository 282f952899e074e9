package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal"
)

// CreateBudgetDTO is the request payload for creating a budget. It carries no
// spent amount: the aggregate always starts at zero and is maintained by the
// expense ledger.
type CreateBudgetDTO struct {
	UserID        int64           `json:"user_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	PeriodType    string          `json:"period_type"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Category      string          `json:"category"`
	PlannedAmount decimal.Decimal `json:"planned_amount"`
	RollOver      bool            `json:"roll_over"`
}

func (dto CreateBudgetDTO) Validate() error {
	if dto.UserID <= 0 {
		return internal.NewValidationFieldError("user_id", "user_id is required", internal.ErrCodeMissingUserID)
	}
	if dto.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if dto.Category == "" {
		return internal.NewValidationFieldError("category", "category is required", internal.ErrCodeInvalidCategory)
	}
	if !IsValidPeriod(dto.PeriodType) {
		return internal.NewValidationFieldError("period_type", "period_type must be daily, weekly or monthly", internal.ErrCodeInvalidPeriod)
	}
	if dto.StartDate.IsZero() || dto.EndDate.IsZero() {
		return internal.NewValidationFieldError("start_date", "start_date and end_date are required", internal.ErrCodeInvalidDate)
	}
	if dto.EndDate.Before(dto.StartDate) {
		return internal.NewValidationFieldError("end_date", "end_date must not precede start_date", internal.ErrCodeInvalidDate)
	}
	if dto.PlannedAmount.IsNegative() {
		return internal.NewValidationFieldError("planned_amount", "planned_amount must not be negative", internal.ErrCodeInvalidAmount)
	}
	return nil
}

// UpdateBudgetDTO carries the editable budget fields. SpentAmount is
// deliberately absent so a budget edit can never desynchronize the aggregate
// from its source expense rows.
type UpdateBudgetDTO struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	PeriodType    string          `json:"period_type"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Category      string          `json:"category"`
	PlannedAmount decimal.Decimal `json:"planned_amount"`
	RollOver      bool            `json:"roll_over"`
	IsActive      bool            `json:"is_active"`
}

func (dto UpdateBudgetDTO) Validate() error {
	if dto.ID <= 0 {
		return internal.NewValidationFieldError("id", "id is required", internal.ErrCodeValidationFailed)
	}
	if dto.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if dto.Category == "" {
		return internal.NewValidationFieldError("category", "category is required", internal.ErrCodeInvalidCategory)
	}
	if !IsValidPeriod(dto.PeriodType) {
		return internal.NewValidationFieldError("period_type", "period_type must be daily, weekly or monthly", internal.ErrCodeInvalidPeriod)
	}
	if dto.EndDate.Before(dto.StartDate) {
		return internal.NewValidationFieldError("end_date", "end_date must not precede start_date", internal.ErrCodeInvalidDate)
	}
	if dto.PlannedAmount.IsNegative() {
		return internal.NewValidationFieldError("planned_amount", "planned_amount must not be negative", internal.ErrCodeInvalidAmount)
	}
	return nil
}
