package savings

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a named target a user is saving toward. Amount only ever changes
// through the transfer service, which keeps it equal to the signed sum of the
// goal's history entries.
type Goal struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	UserID      int64           `json:"user_id" gorm:"column:user_id;not null"`
	Name        string          `json:"name" gorm:"not null"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(20,2)"`
	Target      decimal.Decimal `json:"goal" gorm:"column:goal;type:decimal(20,2)"`
	Status      string          `json:"status"`
	TargetDate  time.Time       `json:"target_date" gorm:"column:target_date;type:date"`
	CreatedAt   time.Time       `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"column:updated_at"`
}

func (Goal) TableName() string {
	return "savings"
}

// HistoryEntry is an immutable record of one deposit or withdrawal. Entries
// are append-only; nothing in normal operation mutates or deletes them.
type HistoryEntry struct {
	ID           int64           `json:"id" gorm:"primaryKey"`
	SavingGoalID int64           `json:"saving_goal_id" gorm:"column:saving_goal_id;not null"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Date         time.Time       `json:"date" gorm:"type:date"`
	Type         string          `json:"type" gorm:"not null"`
	CreatedAt    time.Time       `json:"created_at" gorm:"column:created_at"`
}

func (HistoryEntry) TableName() string {
	return "savings_history"
}

const (
	HistoryTypeDeposit    = "deposit"
	HistoryTypeWithdrawal = "withdrawal"
)
