package expense

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal"
	"github.com/fintrack/fintrack/internal/budget"
	"github.com/fintrack/fintrack/internal/core/events"
)

// RepositoryAPI defines the data access methods for expenses, including the
// budget legs of the compensating update. Transaction yields a repository
// bound to one storage transaction; every mutation and its compensating
// budget write must go through the same bound repository.
type RepositoryAPI interface {
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error
	Create(e *Expense) error
	GetByID(id int64) (*Expense, error)
	GetByUserID(userID int64) ([]*Expense, error)
	Update(e *Expense) error
	Delete(id int64) error
	// MatchBudget selects the active budget covering (user, category, date),
	// most recently created first. Returns (nil, nil) when no budget matches.
	MatchBudget(userID int64, category string, date time.Time) (*budget.Budget, error)
	// AddSpentAmount adjusts a budget's aggregate with an atomic in-database
	// increment, never a read-modify-write in application code.
	AddSpentAmount(budgetID int64, delta decimal.Decimal) error
}

// EventPublisher decouples the service from the event bus wiring.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service keeps budgets' spent aggregates synchronized with their source
// expense rows. Every mutation and its compensating budget adjustment run in
// one transaction; a half-applied ledger state is never committed.
type Service struct {
	repo      RepositoryAPI
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateExpense inserts the record and, for expense-type records, charges the
// matched budget in the same transaction.
func (s *Service) CreateExpense(ctx context.Context, dto CreateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("expense validation failed", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	exp := &Expense{
		UserID:        dto.UserID,
		Name:          dto.Name,
		Date:          dto.Date,
		Amount:        dto.Amount,
		Type:          dto.Type,
		PaymentMethod: dto.PaymentMethod,
		Category:      dto.Category,
	}

	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		if err := tx.Create(exp); err != nil {
			return err
		}
		if !exp.AffectsBudget() {
			return nil
		}
		matched, err := tx.MatchBudget(exp.UserID, exp.Category, exp.Date)
		if err != nil {
			return err
		}
		if matched == nil {
			return nil
		}
		return tx.AddSpentAmount(matched.ID, exp.Amount)
	})
	if err != nil {
		s.logger.Error("failed to create expense", "error", err, "user_id", dto.UserID)
		return nil, storageError("failed to create expense", err)
	}

	s.logger.Info("expense created",
		"expense_id", exp.ID,
		"user_id", exp.UserID,
		"amount", exp.Amount,
		"type", exp.Type)

	s.publish(ctx, events.NewExpenseEvent(events.EventTypeExpenseCreated, exp.ID, exp.UserID, exp.Amount, exp.Category))
	return exp, nil
}

// UpdateExpense rewrites an expense and migrates its budget effect: the old
// contribution is removed first, the fields are applied, then the new
// contribution is added. Old and new legs may hit the same budget, different
// budgets, or none; the same code path covers all three.
func (s *Service) UpdateExpense(ctx context.Context, dto UpdateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("expense update validation failed", "error", err, "expense_id", dto.ID)
		return nil, err
	}

	var updated *Expense
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		old, err := tx.GetByID(dto.ID)
		if err != nil {
			return err
		}

		// remove the old contribution before the fields change, keyed by the
		// old category and date
		if old.AffectsBudget() {
			matched, err := tx.MatchBudget(old.UserID, old.Category, old.Date)
			if err != nil {
				return err
			}
			if matched != nil {
				if err := tx.AddSpentAmount(matched.ID, old.Amount.Neg()); err != nil {
					return err
				}
			}
		}

		next := *old
		next.Name = dto.Name
		next.Date = dto.Date
		next.Amount = dto.Amount
		next.Type = dto.Type
		next.PaymentMethod = dto.PaymentMethod
		next.Category = dto.Category
		if err := tx.Update(&next); err != nil {
			return err
		}

		if next.AffectsBudget() {
			matched, err := tx.MatchBudget(next.UserID, next.Category, next.Date)
			if err != nil {
				return err
			}
			if matched != nil {
				if err := tx.AddSpentAmount(matched.ID, next.Amount); err != nil {
					return err
				}
			}
		}

		updated = &next
		return nil
	})
	if err != nil {
		s.logger.Error("failed to update expense", "error", err, "expense_id", dto.ID)
		return nil, storageError("failed to update expense", err)
	}

	s.logger.Info("expense updated",
		"expense_id", updated.ID,
		"user_id", updated.UserID,
		"amount", updated.Amount,
		"type", updated.Type)

	s.publish(ctx, events.NewExpenseEvent(events.EventTypeExpenseUpdated, updated.ID, updated.UserID, updated.Amount, updated.Category))
	return updated, nil
}

// DeleteExpense removes the record and refunds the matched budget in the same
// transaction. A record owned by another user reports not-found rather than
// forbidden so ids cannot be probed.
func (s *Service) DeleteExpense(ctx context.Context, id, userID int64) (*Expense, error) {
	var deleted *Expense
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		exp, err := tx.GetByID(id)
		if err != nil {
			return err
		}
		if exp.UserID != userID {
			return internal.ErrExpenseNotFound
		}

		if exp.AffectsBudget() {
			matched, err := tx.MatchBudget(exp.UserID, exp.Category, exp.Date)
			if err != nil {
				return err
			}
			if matched != nil {
				if err := tx.AddSpentAmount(matched.ID, exp.Amount.Neg()); err != nil {
					return err
				}
			}
		}

		if err := tx.Delete(exp.ID); err != nil {
			return err
		}
		deleted = exp
		return nil
	})
	if err != nil {
		s.logger.Error("failed to delete expense", "error", err, "expense_id", id, "user_id", userID)
		return nil, storageError("failed to delete expense", err)
	}

	s.logger.Info("expense deleted", "expense_id", id, "user_id", userID, "amount", deleted.Amount)

	s.publish(ctx, events.NewExpenseEvent(events.EventTypeExpenseDeleted, deleted.ID, deleted.UserID, deleted.Amount, deleted.Category))
	return deleted, nil
}

func (s *Service) ListExpenses(userID int64) ([]*Expense, error) {
	expenses, err := s.repo.GetByUserID(userID)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to list expenses", err)
	}
	return expenses, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish ledger event", "error", err, "event_type", event.EventType())
	}
}

// storageError passes domain errors through untouched and wraps everything
// else as a generic storage failure.
func storageError(message string, err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	return internal.NewInternalError(message, err)
}
