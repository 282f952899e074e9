package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fintrack/fintrack/internal"
	"github.com/fintrack/fintrack/internal/budget"
	"github.com/fintrack/fintrack/internal/expense"
)

// ExpenseRepository implements the expense.RepositoryAPI interface using GORM
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.RepositoryAPI {
	return &ExpenseRepository{db: db}
}

// Transaction runs fn against a repository bound to one database transaction.
// Any error from fn rolls the whole transaction back, including a context
// cancellation mid-flight.
func (r *ExpenseRepository) Transaction(ctx context.Context, fn func(tx expense.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ExpenseRepository{db: tx})
	})
}

func (r *ExpenseRepository) Create(e *expense.Expense) error {
	return r.db.Create(e).Error
}

func (r *ExpenseRepository) GetByID(id int64) (*expense.Expense, error) {
	var e expense.Expense
	err := r.db.Where("id = ?", id).First(&e).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrExpenseNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *ExpenseRepository) GetByUserID(userID int64) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) Update(e *expense.Expense) error {
	e.UpdatedAt = time.Now()
	return r.db.Save(e).Error
}

func (r *ExpenseRepository) Delete(id int64) error {
	return r.db.Delete(&expense.Expense{}, id).Error
}

// MatchBudget loads the user's active budgets for the category and delegates
// the selection to budget.Match. The window comparison happens in Go rather
// than SQL so the day-precision date rule lives in exactly one place; a
// timestamp carrying a time of day still matches a budget ending that day.
func (r *ExpenseRepository) MatchBudget(userID int64, category string, date time.Time) (*budget.Budget, error) {
	var candidates []*budget.Budget
	err := r.db.Where("user_id = ? AND category = ? AND is_active = ?", userID, category, true).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	return budget.Match(candidates, category, date), nil
}

// AddSpentAmount applies the delta with a single UPDATE so concurrent
// compensating updates serialize on the row instead of losing increments.
func (r *ExpenseRepository) AddSpentAmount(budgetID int64, delta decimal.Decimal) error {
	result := r.db.Model(&budget.Budget{}).
		Where("id = ?", budgetID).
		Updates(map[string]interface{}{
			"spent_amount": gorm.Expr("spent_amount + ?", delta),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrBudgetNotFound
	}
	return nil
}
