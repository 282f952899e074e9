package savings

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal"
	"github.com/fintrack/fintrack/internal/core/events"
)

// RepositoryAPI defines the data access methods for savings goals and their
// history ledger. Transaction yields a repository bound to one storage
// transaction; the balance check, history append, and amount adjustment of a
// transfer must all go through the same bound repository.
type RepositoryAPI interface {
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error
	CreateGoal(g *Goal) error
	GetGoalByID(id int64) (*Goal, error)
	GetGoalsByUserID(userID int64) ([]*Goal, error)
	GetGoalsBatch(offset, limit int) ([]*Goal, error)
	// AddGoalAmount adjusts the saved amount with an atomic in-database
	// increment, never a read-modify-write in application code.
	AddGoalAmount(goalID int64, delta decimal.Decimal) error
	UpdateGoalStatus(goalID int64, status string) error
	DeleteGoal(id int64) error
	AppendHistory(entry *HistoryEntry) error
	HistoryForGoal(goalID int64) ([]*HistoryEntry, error)
	// DiscretionaryBalance folds income, expenses, and savings transfers into
	// the user's spendable total. Called inside the same transaction as the
	// transfer it validates, so the check cannot race a concurrent insert.
	DiscretionaryBalance(userID int64) (decimal.Decimal, error)
}

// EventPublisher decouples the service from the event bus wiring.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service moves value between a user's discretionary balance and named
// savings goals, recording one history entry per movement and re-deriving
// the goal's status after every mutation.
type Service struct {
	repo      RepositoryAPI
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) CreateGoal(dto CreateGoalDTO) (*Goal, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("goal validation failed", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	// a fresh goal starts active; derivation takes over from the first
	// transfer or sweep
	g := &Goal{
		UserID:      dto.UserID,
		Name:        dto.Name,
		Description: dto.Description,
		Amount:      decimal.Zero,
		Target:      dto.Target,
		Status:      StatusActive,
		TargetDate:  dto.TargetDate,
	}

	if err := s.repo.CreateGoal(g); err != nil {
		s.logger.Error("failed to create goal", "error", err, "user_id", dto.UserID)
		return nil, internal.NewInternalError("failed to create goal", err)
	}

	s.logger.Info("savings goal created",
		"goal_id", g.ID,
		"user_id", g.UserID,
		"target", g.Target,
		"target_date", g.TargetDate)

	return g, nil
}

func (s *Service) ListGoals(userID int64) ([]*Goal, error) {
	goals, err := s.repo.GetGoalsByUserID(userID)
	if err != nil {
		s.logger.Error("failed to list goals", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to list goals", err)
	}
	return goals, nil
}

// History lists a goal's transfers. A goal owned by another user reports
// not-found rather than forbidden so ids cannot be probed.
func (s *Service) History(goalID, userID int64) ([]*HistoryEntry, error) {
	goal, err := s.repo.GetGoalByID(goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, internal.ErrGoalNotFound
	}

	entries, err := s.repo.HistoryForGoal(goalID)
	if err != nil {
		s.logger.Error("failed to load goal history", "error", err, "goal_id", goalID)
		return nil, internal.NewInternalError("failed to load goal history", err)
	}
	return entries, nil
}

func (s *Service) Balance(userID int64) (decimal.Decimal, error) {
	balance, err := s.repo.DiscretionaryBalance(userID)
	if err != nil {
		s.logger.Error("failed to compute balance", "error", err, "user_id", userID)
		return decimal.Zero, internal.NewInternalError("failed to compute balance", err)
	}
	return balance, nil
}

// Deposit moves amount from the user's discretionary balance into the goal.
// The balance is computed inside the transaction, so a concurrent expense
// insert cannot slip between the check and the transfer.
func (s *Service) Deposit(ctx context.Context, dto TransferDTO) (*Goal, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("deposit validation failed", "error", err, "goal_id", dto.ID)
		return nil, err
	}

	var updated *Goal
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		goal, err := tx.GetGoalByID(dto.ID)
		if err != nil {
			return err
		}

		balance, err := tx.DiscretionaryBalance(goal.UserID)
		if err != nil {
			return err
		}
		if dto.Amount.GreaterThan(balance) {
			return internal.ErrInsufficientBalance
		}

		if err := s.applyTransfer(tx, goal, dto.Amount, HistoryTypeDeposit); err != nil {
			return err
		}

		updated, err = s.rederiveStatus(tx, goal.ID, goal.CreatedAt)
		return err
	})
	if err != nil {
		s.logger.Error("deposit failed", "error", err, "goal_id", dto.ID, "amount", dto.Amount)
		return nil, storageError("deposit failed", err)
	}

	s.logger.Info("deposit applied",
		"goal_id", updated.ID,
		"user_id", updated.UserID,
		"amount", dto.Amount,
		"saved", updated.Amount,
		"status", updated.Status)

	s.publish(ctx, events.NewSavingsEvent(events.EventTypeSavingsDeposited, updated.ID, updated.UserID, dto.Amount, updated.Status))
	return updated, nil
}

// Withdraw moves amount out of the goal back to the discretionary balance.
func (s *Service) Withdraw(ctx context.Context, dto TransferDTO) (*Goal, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("withdraw validation failed", "error", err, "goal_id", dto.ID)
		return nil, err
	}

	var updated *Goal
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		goal, err := tx.GetGoalByID(dto.ID)
		if err != nil {
			return err
		}
		if dto.Amount.GreaterThan(goal.Amount) {
			return internal.ErrInsufficientFunds
		}

		if err := s.applyTransfer(tx, goal, dto.Amount.Neg(), HistoryTypeWithdrawal); err != nil {
			return err
		}

		updated, err = s.rederiveStatus(tx, goal.ID, goal.CreatedAt)
		return err
	})
	if err != nil {
		s.logger.Error("withdrawal failed", "error", err, "goal_id", dto.ID, "amount", dto.Amount)
		return nil, storageError("withdrawal failed", err)
	}

	s.logger.Info("withdrawal applied",
		"goal_id", updated.ID,
		"user_id", updated.UserID,
		"amount", dto.Amount,
		"saved", updated.Amount,
		"status", updated.Status)

	s.publish(ctx, events.NewSavingsEvent(events.EventTypeSavingsWithdrawn, updated.ID, updated.UserID, dto.Amount, updated.Status))
	return updated, nil
}

// DeleteGoal removes a goal, first returning any remaining amount to the
// discretionary balance via a final withdrawal entry. A goal owned by another
// user reports not-found rather than forbidden.
func (s *Service) DeleteGoal(ctx context.Context, id, userID int64) (*Goal, error) {
	var deleted *Goal
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		goal, err := tx.GetGoalByID(id)
		if err != nil {
			return err
		}
		if goal.UserID != userID {
			return internal.ErrGoalNotFound
		}

		if goal.Amount.IsPositive() {
			entry := &HistoryEntry{
				SavingGoalID: goal.ID,
				Amount:       goal.Amount,
				Date:         s.now(),
				Type:         HistoryTypeWithdrawal,
			}
			if err := tx.AppendHistory(entry); err != nil {
				return err
			}
		}

		if err := tx.DeleteGoal(goal.ID); err != nil {
			return err
		}
		deleted = goal
		return nil
	})
	if err != nil {
		s.logger.Error("failed to delete goal", "error", err, "goal_id", id, "user_id", userID)
		return nil, storageError("failed to delete goal", err)
	}

	s.logger.Info("savings goal deleted",
		"goal_id", id,
		"user_id", userID,
		"recovered", deleted.Amount)

	s.publish(ctx, events.NewSavingsEvent(events.EventTypeSavingsGoalDeleted, deleted.ID, deleted.UserID, deleted.Amount, deleted.Status))
	return deleted, nil
}

// SetStatus applies an explicit status override from the API surface.
func (s *Service) SetStatus(goalID int64, dto SetStatusDTO) (*Goal, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("status validation failed", "error", err, "goal_id", goalID)
		return nil, err
	}

	goal, err := s.repo.GetGoalByID(goalID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateGoalStatus(goalID, dto.Status); err != nil {
		s.logger.Error("failed to set goal status", "error", err, "goal_id", goalID)
		return nil, internal.NewInternalError("failed to set goal status", err)
	}

	goal.Status = dto.Status
	s.logger.Info("goal status set", "goal_id", goalID, "status", dto.Status)
	return goal, nil
}

// SweepStatuses re-derives every goal's status against the current time.
// Run periodically by the worker so atRisk transitions happen with the
// passage of time, not only on mutation.
func (s *Service) SweepStatuses(ctx context.Context, batchSize int) (int, error) {
	changed := 0
	for offset := 0; ; offset += batchSize {
		goals, err := s.repo.GetGoalsBatch(offset, batchSize)
		if err != nil {
			return changed, internal.NewInternalError("failed to load goals for sweep", err)
		}
		if len(goals) == 0 {
			return changed, nil
		}

		now := s.now()
		for _, goal := range goals {
			if ctx.Err() != nil {
				return changed, ctx.Err()
			}
			next := DeriveStatus(goal.Amount, goal.Target, goal.CreatedAt, goal.TargetDate, now)
			if next == goal.Status {
				continue
			}
			if err := s.repo.UpdateGoalStatus(goal.ID, next); err != nil {
				s.logger.Error("sweep: failed to update status", "error", err, "goal_id", goal.ID)
				continue
			}
			s.logger.Info("sweep: goal status changed",
				"goal_id", goal.ID,
				"from", goal.Status,
				"to", next)
			changed++
		}

		if len(goals) < batchSize {
			return changed, nil
		}
	}
}

func (s *Service) applyTransfer(tx RepositoryAPI, goal *Goal, delta decimal.Decimal, historyType string) error {
	entry := &HistoryEntry{
		SavingGoalID: goal.ID,
		Amount:       delta.Abs(),
		Date:         s.now(),
		Type:         historyType,
	}
	if err := tx.AppendHistory(entry); err != nil {
		return err
	}
	return tx.AddGoalAmount(goal.ID, delta)
}

func (s *Service) rederiveStatus(tx RepositoryAPI, goalID int64, createdAt time.Time) (*Goal, error) {
	goal, err := tx.GetGoalByID(goalID)
	if err != nil {
		return nil, err
	}
	next := DeriveStatus(goal.Amount, goal.Target, createdAt, goal.TargetDate, s.now())
	if next != goal.Status {
		if err := tx.UpdateGoalStatus(goal.ID, next); err != nil {
			return nil, err
		}
		goal.Status = next
	}
	return goal, nil
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
