package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeExpenseCreated = "expense.created"
	EventTypeExpenseUpdated = "expense.updated"
	EventTypeExpenseDeleted = "expense.deleted"

	EventTypeSavingsDeposited   = "savings.deposited"
	EventTypeSavingsWithdrawn   = "savings.withdrawn"
	EventTypeSavingsGoalDeleted = "savings.goal_deleted"
)

// ExpenseEvent is emitted after an expense mutation (and its compensating
// budget update) has committed.
type ExpenseEvent struct {
	BaseEvent
	ExpenseID int64           `json:"expense_id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
}

func NewExpenseEvent(eventType string, expenseID, userID int64, amount decimal.Decimal, category string) *ExpenseEvent {
	return &ExpenseEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"expense_id": expenseID,
				"user_id":    userID,
				"amount":     amount.String(),
				"category":   category,
			},
		},
		ExpenseID: expenseID,
		UserID:    userID,
		Amount:    amount,
		Category:  category,
	}
}

// SavingsEvent is emitted after a goal transfer or deletion has committed.
type SavingsEvent struct {
	BaseEvent
	GoalID int64           `json:"goal_id"`
	UserID int64           `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
	Status string          `json:"status"`
}

func NewSavingsEvent(eventType string, goalID, userID int64, amount decimal.Decimal, status string) *SavingsEvent {
	return &SavingsEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"goal_id": goalID,
				"user_id": userID,
				"amount":  amount.String(),
				"status":  status,
			},
		},
		GoalID: goalID,
		UserID: userID,
		Amount: amount,
		Status: status,
	}
}
