package advance

import (
	"log/slog"

	"github.com/rmacedo/prestacao-viagens/internal"
	"github.com/rmacedo/prestacao-viagens/internal/auth"
)

type Repository interface {
	GetByID(id int64) (*Advance, error)
	GetAll(tripID *int64) ([]*Advance, error)
	GetByUser(userID int64, tripID *int64) ([]*Advance, error)
	Create(a *Advance) error
	Update(a *Advance) error
	Delete(id int64) error
	SumByUser(userID int64) (int64, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// restrictedToOwn reports whether the actor only sees their own advances.
// Only a COLABORADOR profile narrows the listing; managers, directors and
// profile-less users keep the full view.
func restrictedToOwn(actor *auth.User) bool {
	return !actor.IsSuperuser && actor.HasProfile && actor.IsCollaborator()
}

// GetAdvances lists advances, optionally narrowed to one trip.
func (s *Service) GetAdvances(actor *auth.User, tripID *int64) ([]*Advance, error) {
	if restrictedToOwn(actor) {
		return s.repo.GetByUser(actor.ID, tripID)
	}
	return s.repo.GetAll(tripID)
}

func (s *Service) GetAdvance(actor *auth.User, id int64) (*Advance, error) {
	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAdvanceNotFound
	}
	if restrictedToOwn(actor) && a.UserID != actor.ID {
		return nil, ErrAdvanceNotFound
	}
	return a, nil
}

// CreateAdvance fronts money to a traveler. Admin only. The grant date is
// stamped with today's date.
func (s *Service) CreateAdvance(actor *auth.User, dto CreateAdvanceDTO) (*Advance, error) {
	if !actor.IsSuperuser {
		return nil, internal.ErrAdminRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	a := &Advance{
		TripID:      dto.TripID,
		UserID:      dto.UserID,
		AmountCents: dto.AmountCents,
		GrantedAt:   internal.Today(),
		Notes:       dto.Notes,
		ReceiptURL:  dto.ReceiptURL,
	}
	if err := s.repo.Create(a); err != nil {
		s.logger.Error("failed to create advance", "trip_id", dto.TripID, "user_id", dto.UserID, "error", err)
		return nil, err
	}
	return s.GetAdvance(actor, a.ID)
}

func (s *Service) UpdateAdvance(actor *auth.User, id int64, dto UpdateAdvanceDTO) (*Advance, error) {
	if !actor.IsSuperuser {
		return nil, internal.ErrAdminRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	a, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAdvanceNotFound
	}

	if dto.TripID != nil {
		a.TripID = *dto.TripID
	}
	if dto.UserID != nil {
		a.UserID = *dto.UserID
	}
	if dto.AmountCents != nil {
		a.AmountCents = *dto.AmountCents
	}
	if dto.Notes != nil {
		a.Notes = dto.Notes
	}
	if dto.ReceiptURL != nil {
		a.ReceiptURL = dto.ReceiptURL
	}

	if err := s.repo.Update(a); err != nil {
		s.logger.Error("failed to update advance", "advance_id", id, "error", err)
		return nil, err
	}
	return s.GetAdvance(actor, id)
}

func (s *Service) DeleteAdvance(actor *auth.User, id int64) error {
	if !actor.IsSuperuser {
		return internal.ErrAdminRequired
	}
	a, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if a == nil {
		return ErrAdvanceNotFound
	}
	return s.repo.Delete(id)
}
