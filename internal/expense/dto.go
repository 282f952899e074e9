package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal"
)

// CreateExpenseDTO represents the request payload for creating an expense
type CreateExpenseDTO struct {
	UserID        int64           `json:"user_id"`
	Name          string          `json:"name"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	PaymentMethod string          `json:"payment_method"`
	Category      string          `json:"category"`
}

func (dto CreateExpenseDTO) Validate() error {
	if dto.UserID <= 0 {
		return internal.NewValidationFieldError("user_id", "user_id is required", internal.ErrCodeMissingUserID)
	}
	if dto.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if dto.Date.IsZero() {
		return internal.NewValidationFieldError("date", "date is required", internal.ErrCodeInvalidDate)
	}
	if dto.Amount.IsNegative() {
		return internal.NewValidationFieldError("amount", "amount must not be negative", internal.ErrCodeInvalidAmount)
	}
	if !IsValidType(dto.Type) {
		return internal.NewValidationFieldError("type", "type must be income, expense or saving", internal.ErrCodeInvalidType)
	}
	if dto.Type == TypeExpense && dto.Category == "" {
		return internal.NewValidationFieldError("category", "category is required for expenses", internal.ErrCodeInvalidCategory)
	}
	return nil
}

// UpdateExpenseDTO carries the full replacement fields for an expense.
type UpdateExpenseDTO struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	PaymentMethod string          `json:"payment_method"`
	Category      string          `json:"category"`
}

func (dto UpdateExpenseDTO) Validate() error {
	if dto.ID <= 0 {
		return internal.NewValidationFieldError("id", "id is required", internal.ErrCodeValidationFailed)
	}
	if dto.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if dto.Date.IsZero() {
		return internal.NewValidationFieldError("date", "date is required", internal.ErrCodeInvalidDate)
	}
	if dto.Amount.IsNegative() {
		return internal.NewValidationFieldError("amount", "amount must not be negative", internal.ErrCodeInvalidAmount)
	}
	if !IsValidType(dto.Type) {
		return internal.NewValidationFieldError("type", "type must be income, expense or saving", internal.ErrCodeInvalidType)
	}
	if dto.Type == TypeExpense && dto.Category == "" {
		return internal.NewValidationFieldError("category", "category is required for expenses", internal.ErrCodeInvalidCategory)
	}
	return nil
}
