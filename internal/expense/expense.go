package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single dated income or outflow record. Rows of type "expense"
// feed the matched budget's spent aggregate; rows of type "income" only feed
// the discretionary balance.
type Expense struct {
	ID            int64           `json:"id" gorm:"primaryKey"`
	UserID        int64           `json:"user_id" gorm:"column:user_id;not null"`
	Name          string          `json:"name" gorm:"not null"`
	Date          time.Time       `json:"date" gorm:"type:date;not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Type          string          `json:"type" gorm:"not null"`
	PaymentMethod string          `json:"payment_method" gorm:"column:payment_method"`
	Category      string          `json:"category"`
	CreatedAt     time.Time       `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"column:updated_at"`
}

func (Expense) TableName() string {
	return "expenses"
}

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
	TypeSaving  = "saving"
)

func IsValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense || t == TypeSaving
}

// AffectsBudget reports whether this record participates in budget spend
// accounting.
func (e *Expense) AffectsBudget() bool {
	return e.Type == TypeExpense
}
