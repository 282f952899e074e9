package budget

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal"
)

// RepositoryAPI defines the data access methods for budgets.
type RepositoryAPI interface {
	Create(b *Budget) error
	GetByID(id int64) (*Budget, error)
	GetByUserID(userID int64) ([]*Budget, error)
	Update(b *Budget) error
	Delete(id int64) error
	// RecomputeSpent rebuilds spent_amount from the matched expense rows.
	// Operational escape hatch; the compensating updates keep the aggregate
	// correct in normal operation.
	RecomputeSpent(budgetID int64) (decimal.Decimal, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) CreateBudget(dto CreateBudgetDTO) (*Budget, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("budget validation failed", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	b := &Budget{
		UserID:        dto.UserID,
		Name:          dto.Name,
		Description:   dto.Description,
		PeriodType:    dto.PeriodType,
		StartDate:     dto.StartDate,
		EndDate:       dto.EndDate,
		Category:      dto.Category,
		PlannedAmount: dto.PlannedAmount,
		SpentAmount:   decimal.Zero,
		RollOver:      dto.RollOver,
		IsActive:      true,
	}

	if err := s.repo.Create(b); err != nil {
		s.logger.Error("failed to create budget", "error", err, "user_id", dto.UserID)
		return nil, internal.NewInternalError("failed to create budget", err)
	}

	s.logger.Info("budget created",
		"budget_id", b.ID,
		"user_id", b.UserID,
		"category", b.Category,
		"planned_amount", b.PlannedAmount)

	return b, nil
}

func (s *Service) ListBudgets(userID int64) ([]*Budget, error) {
	budgets, err := s.repo.GetByUserID(userID)
	if err != nil {
		s.logger.Error("failed to list budgets", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to list budgets", err)
	}
	return budgets, nil
}

// UpdateBudget applies the editable fields. The spent aggregate is never
// touched here; only the expense ledger's compensating step writes it.
func (s *Service) UpdateBudget(userID int64, dto UpdateBudgetDTO) (*Budget, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("budget update validation failed", "error", err, "budget_id", dto.ID)
		return nil, err
	}

	b, err := s.repo.GetByID(dto.ID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		// report not-found rather than forbidden so ids cannot be probed
		return nil, internal.ErrBudgetNotFound
	}

	b.Name = dto.Name
	b.Description = dto.Description
	b.PeriodType = dto.PeriodType
	b.StartDate = dto.StartDate
	b.EndDate = dto.EndDate
	b.Category = dto.Category
	b.PlannedAmount = dto.PlannedAmount
	b.RollOver = dto.RollOver
	b.IsActive = dto.IsActive

	if err := s.repo.Update(b); err != nil {
		s.logger.Error("failed to update budget", "error", err, "budget_id", b.ID)
		return nil, internal.NewInternalError("failed to update budget", err)
	}

	s.logger.Info("budget updated", "budget_id", b.ID, "user_id", userID)
	return b, nil
}

func (s *Service) DeleteBudget(id, userID int64) (*Budget, error) {
	b, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, internal.ErrBudgetNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete budget", "error", err, "budget_id", id)
		return nil, internal.NewInternalError("failed to delete budget", err)
	}

	s.logger.Info("budget deleted", "budget_id", id, "user_id", userID)
	return b, nil
}

// RecalculateSpent resynchronizes a budget's aggregate from its source rows.
func (s *Service) RecalculateSpent(budgetID int64) (decimal.Decimal, error) {
	total, err := s.repo.RecomputeSpent(budgetID)
	if err != nil {
		s.logger.Error("failed to recompute spent amount", "error", err, "budget_id", budgetID)
		return decimal.Zero, internal.NewInternalError("failed to recompute spent amount", err)
	}

	s.logger.Info("spent amount recomputed", "budget_id", budgetID, "spent_amount", total)
	return total, nil
}
