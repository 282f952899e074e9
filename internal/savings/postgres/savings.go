package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fintrack/fintrack/internal"
	"github.com/fintrack/fintrack/internal/savings"
)

// SavingsRepository implements the savings.RepositoryAPI interface using GORM
type SavingsRepository struct {
	db *gorm.DB
}

func NewSavingsRepository(db *gorm.DB) savings.RepositoryAPI {
	return &SavingsRepository{db: db}
}

// Transaction runs fn against a repository bound to one database transaction.
func (r *SavingsRepository) Transaction(ctx context.Context, fn func(tx savings.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&SavingsRepository{db: tx})
	})
}

func (r *SavingsRepository) CreateGoal(g *savings.Goal) error {
	return r.db.Create(g).Error
}

func (r *SavingsRepository) GetGoalByID(id int64) (*savings.Goal, error) {
	var g savings.Goal
	err := r.db.Where("id = ?", id).First(&g).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrGoalNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *SavingsRepository) GetGoalsByUserID(userID int64) ([]*savings.Goal, error) {
	var goals []*savings.Goal
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error
	return goals, err
}

func (r *SavingsRepository) GetGoalsBatch(offset, limit int) ([]*savings.Goal, error) {
	var goals []*savings.Goal
	err := r.db.Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&goals).Error
	return goals, err
}

// AddGoalAmount applies the delta with a single UPDATE so concurrent
// transfers serialize on the row instead of losing increments.
func (r *SavingsRepository) AddGoalAmount(goalID int64, delta decimal.Decimal) error {
	result := r.db.Model(&savings.Goal{}).
		Where("id = ?", goalID).
		Updates(map[string]interface{}{
			"amount":     gorm.Expr("amount + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrGoalNotFound
	}
	return nil
}

func (r *SavingsRepository) UpdateGoalStatus(goalID int64, status string) error {
	return r.db.Model(&savings.Goal{}).
		Where("id = ?", goalID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *SavingsRepository) DeleteGoal(id int64) error {
	return r.db.Delete(&savings.Goal{}, id).Error
}

func (r *SavingsRepository) AppendHistory(entry *savings.HistoryEntry) error {
	return r.db.Create(entry).Error
}

func (r *SavingsRepository) HistoryForGoal(goalID int64) ([]*savings.HistoryEntry, error) {
	var entries []*savings.HistoryEntry
	err := r.db.Where("saving_goal_id = ?", goalID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// DiscretionaryBalance folds the user's spendable total: income minus
// expense-type spend, plus savings withdrawals, minus deposits. History rows
// are reached through the goal row; entries of a deleted goal fall out of the
// fold in cancelling pairs, so the total survives goal deletion.
func (r *SavingsRepository) DiscretionaryBalance(userID int64) (decimal.Decimal, error) {
	var fromExpenses decimal.Decimal
	row := r.db.Raw(`
		SELECT COALESCE(SUM(CASE
			WHEN type = 'income' THEN amount
			WHEN type = 'expense' THEN -amount
			ELSE 0 END), 0)
		FROM expenses
		WHERE user_id = ?`, userID).Row()
	if err := row.Scan(&fromExpenses); err != nil {
		return decimal.Zero, err
	}

	var fromTransfers decimal.Decimal
	row = r.db.Raw(`
		SELECT COALESCE(SUM(CASE
			WHEN h.type = 'withdrawal' THEN h.amount
			ELSE -h.amount END), 0)
		FROM savings_history h
		JOIN savings s ON s.id = h.saving_goal_id
		WHERE s.user_id = ?`, userID).Row()
	if err := row.Scan(&fromTransfers); err != nil {
		return decimal.Zero, err
	}

	return fromExpenses.Add(fromTransfers), nil
}
