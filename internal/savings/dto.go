package savings

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal"
)

// CreateGoalDTO is the request payload for creating a savings goal.
type CreateGoalDTO struct {
	UserID      int64           `json:"user_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Target      decimal.Decimal `json:"goal"`
	TargetDate  time.Time       `json:"target_date"`
}

func (dto CreateGoalDTO) Validate() error {
	if dto.UserID <= 0 {
		return internal.NewValidationFieldError("user_id", "user_id is required", internal.ErrCodeMissingUserID)
	}
	if dto.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if !dto.Target.IsPositive() {
		return internal.NewValidationFieldError("goal", "goal must be greater than 0", internal.ErrCodeInvalidAmount)
	}
	if dto.TargetDate.IsZero() {
		return internal.NewValidationFieldError("target_date", "target_date is required", internal.ErrCodeInvalidDate)
	}
	return nil
}

// TransferDTO is the request payload for deposits and withdrawals.
type TransferDTO struct {
	ID     int64           `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}

func (dto TransferDTO) Validate() error {
	if dto.ID <= 0 {
		return internal.NewValidationFieldError("id", "id is required", internal.ErrCodeValidationFailed)
	}
	if !dto.Amount.IsPositive() {
		return internal.NewValidationFieldError("amount", "amount must be greater than 0", internal.ErrCodeInvalidAmount)
	}
	return nil
}

// SetStatusDTO is the request payload for the explicit status override.
type SetStatusDTO struct {
	Status string `json:"status"`
}

func (dto SetStatusDTO) Validate() error {
	if !IsValidStatus(dto.Status) {
		return internal.NewValidationFieldError("status", "status must be active, atRisk or completed", internal.ErrCodeValidationFailed)
	}
	return nil
}
