package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fintrack/fintrack/internal"
	"github.com/fintrack/fintrack/internal/budget"
)

// BudgetRepository implements the budget.RepositoryAPI interface using GORM
type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) budget.RepositoryAPI {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) Create(b *budget.Budget) error {
	return r.db.Create(b).Error
}

func (r *BudgetRepository) GetByID(id int64) (*budget.Budget, error) {
	var b budget.Budget
	err := r.db.Where("id = ?", id).First(&b).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrBudgetNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BudgetRepository) GetByUserID(userID int64) ([]*budget.Budget, error) {
	var budgets []*budget.Budget
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&budgets).Error
	return budgets, err
}

func (r *BudgetRepository) Update(b *budget.Budget) error {
	b.UpdatedAt = time.Now()
	return r.db.Save(b).Error
}

func (r *BudgetRepository) Delete(id int64) error {
	return r.db.Delete(&budget.Budget{}, id).Error
}

// RecomputeSpent rebuilds the aggregate from the expense rows in this budget's
// window. Rows claimed by a newer overlapping budget are still counted here;
// overlapping active budgets for the same category are an operator error.
func (r *BudgetRepository) RecomputeSpent(budgetID int64) (decimal.Decimal, error) {
	err := r.db.Exec(`
		UPDATE budgets SET spent_amount = (
			SELECT COALESCE(SUM(e.amount), 0)
			FROM expenses e
			WHERE e.user_id = budgets.user_id
			  AND e.category = budgets.category
			  AND e.type = 'expense'
			  AND e.date >= budgets.start_date
			  AND e.date <= budgets.end_date
		)
		WHERE id = ?`, budgetID).Error
	if err != nil {
		return decimal.Zero, err
	}

	var total decimal.Decimal
	row := r.db.Raw(`SELECT spent_amount FROM budgets WHERE id = ?`, budgetID).Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
