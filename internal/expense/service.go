package expense

import (
	"log/slog"
	"time"

	"github.com/rmacedo/prestacao-viagens/internal/auth"
)

type Repository interface {
	GetByID(id int64) (*Expense, error)
	GetByUser(userID int64) ([]*Expense, error)
	GetByTrip(tripID int64) ([]*Expense, error)
	GetByTripAndUser(tripID, userID int64) ([]*Expense, error)
	GetByTripAndManagerOwners(tripID int64) ([]*Expense, error)
	GetByTripAndSubordinates(tripID, managerID int64) ([]*Expense, error)
	PendingByManagerOwners() ([]*Expense, error)
	PendingBySubordinates(managerID int64) ([]*Expense, error)
	Create(e *Expense) error
	Update(e *Expense) error
	Delete(id int64) error
	// MarkProcessed flips a PENDENTE expense to the given status and
	// reports whether a row was actually updated. Losing the race with a
	// concurrent reviewer returns false.
	MarkProcessed(id int64, status string, approverID int64, approvedAt time.Time, note *string) (bool, error)
	SumByUser(userID int64) (int64, error)
}

type Service struct {
	repo      Repository
	directory Directory
	logger    *slog.Logger
}

func NewService(repo Repository, directory Directory, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		logger:    logger,
	}
}

// GetExpenses lists expenses. Without the viagem filter everyone, admins
// included, only sees their own. With it the view widens by role: admins
// see the whole trip, directors see managers' expenses, managers see their
// subordinates' and everyone else stays on their own.
func (s *Service) GetExpenses(actor *auth.User, tripID *int64) ([]*Expense, error) {
	if tripID == nil {
		return s.repo.GetByUser(actor.ID)
	}

	switch {
	case actor.IsSuperuser:
		return s.repo.GetByTrip(*tripID)
	case actor.HasProfile && actor.IsDirector():
		return s.repo.GetByTripAndManagerOwners(*tripID)
	case actor.HasProfile && actor.IsManager():
		return s.repo.GetByTripAndSubordinates(*tripID, actor.ID)
	default:
		return s.repo.GetByTripAndUser(*tripID, actor.ID)
	}
}

// GetExpense returns one expense, owner-only like the unfiltered listing.
func (s *Service) GetExpense(actor *auth.User, id int64) (*Expense, error) {
	e, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if e == nil || e.UserID != actor.ID {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

// CreateExpense books an expense for the caller, always PENDENTE.
func (s *Service) CreateExpense(actor *auth.User, dto CreateExpenseDTO) (*Expense, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	category := dto.Category
	if category == "" {
		category = CategoryOther
	}
	e := &Expense{
		TripID:      dto.TripID,
		UserID:      actor.ID,
		AmountCents: dto.AmountCents,
		ExpenseDate: dto.ExpenseDate,
		Description: dto.Description,
		Category:    category,
		ReceiptURL:  dto.ReceiptURL,
		Status:      StatusPending,
	}
	if err := s.repo.Create(e); err != nil {
		s.logger.Error("failed to create expense", "trip_id", dto.TripID, "user_id", actor.ID, "error", err)
		return nil, err
	}
	return e, nil
}

// UpdateExpense lets the owner amend an expense. Any edit resets the status
// to PENDENTE so the change goes through review again.
func (s *Service) UpdateExpense(actor *auth.User, id int64, dto UpdateExpenseDTO) (*Expense, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	e, err := s.GetExpense(actor, id)
	if err != nil {
		return nil, err
	}

	if dto.TripID != nil {
		e.TripID = *dto.TripID
	}
	if dto.AmountCents != nil {
		e.AmountCents = *dto.AmountCents
	}
	if dto.ExpenseDate != nil {
		e.ExpenseDate = *dto.ExpenseDate
	}
	if dto.Description != nil {
		e.Description = *dto.Description
	}
	if dto.Category != nil {
		e.Category = *dto.Category
	}
	if dto.ReceiptURL != nil {
		e.ReceiptURL = *dto.ReceiptURL
	}
	e.Status = StatusPending

	if err := s.repo.Update(e); err != nil {
		s.logger.Error("failed to update expense", "expense_id", id, "error", err)
		return nil, err
	}
	return e, nil
}

// DeleteExpense removes one of the caller's own expenses.
func (s *Service) DeleteExpense(actor *auth.User, id int64) error {
	if _, err := s.GetExpense(actor, id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// PendingApprovals lists the actor's review queue. Only directors and
// managers have one; everyone else, admins included, gets an empty list.
func (s *Service) PendingApprovals(actor *auth.User) ([]*Expense, error) {
	if !actor.HasProfile {
		return []*Expense{}, nil
	}
	switch actor.Role {
	case auth.RoleDirector:
		return s.repo.PendingByManagerOwners()
	case auth.RoleManager:
		return s.repo.PendingBySubordinates(actor.ID)
	default:
		return []*Expense{}, nil
	}
}

// ApproveExpense decides a pending expense in the actor's favor scope.
func (s *Service) ApproveExpense(actor *auth.User, id int64) (*Expense, error) {
	return s.review(actor, id, StatusApproved, nil)
}

// RejectExpense declines a pending expense; the note is mandatory.
func (s *Service) RejectExpense(actor *auth.User, id int64, dto RejectExpenseDTO) (*Expense, error) {
	return s.review(actor, id, StatusRejected, &dto.RejectionNote)
}

func (s *Service) review(actor *auth.User, id int64, status string, note *string) (*Expense, error) {
	e, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if e == nil || !e.IsPending() {
		return nil, ErrNotFoundOrProcessed
	}

	if appErr := s.authorizeReview(actor, e); appErr != nil {
		return nil, appErr
	}

	if status == StatusRejected && (note == nil || *note == "") {
		return nil, ErrRejectionNoteRequired
	}

	now := time.Now()
	updated, err := s.repo.MarkProcessed(id, status, actor.ID, now, note)
	if err != nil {
		s.logger.Error("failed to process expense", "expense_id", id, "status", status, "error", err)
		return nil, err
	}
	if !updated {
		// Someone else decided it first.
		return nil, ErrNotFoundOrProcessed
	}

	return s.repo.GetByID(id)
}
