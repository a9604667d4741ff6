package trip

import (
	"log/slog"

	"github.com/rmacedo/prestacao-viagens/internal"
	"github.com/rmacedo/prestacao-viagens/internal/auth"
)

type Repository interface {
	GetByID(id int64) (*Trip, error)
	GetAll() ([]*Trip, error)
	GetByParticipant(userID int64) ([]*Trip, error)
	GetWithManagerExpenses(pendingOnly bool) ([]*Trip, error)
	GetWithSubordinateExpenses(managerID int64, pendingOnly bool) ([]*Trip, error)
	Create(t *Trip, participantIDs []int64) error
	Update(t *Trip, participantIDs *[]int64) error
	Delete(id int64) error
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

// GetTrips lists trips visible to the actor. Admins see everything.
// Profile-less users and collaborators see trips they take part in.
// Directors and managers see trips carrying their subordinates' expenses,
// by default only those with pending ones (filtro=pendentes).
func (s *Service) GetTrips(actor *auth.User, filter string) ([]*Trip, error) {
	if filter == "" {
		filter = FilterPending
	}
	pendingOnly := filter == FilterPending

	var (
		trips []*Trip
		err   error
	)
	switch {
	case actor.IsSuperuser:
		trips, err = s.repo.GetAll()
	case !actor.HasProfile:
		trips, err = s.repo.GetByParticipant(actor.ID)
	case actor.IsDirector():
		trips, err = s.repo.GetWithManagerExpenses(pendingOnly)
	case actor.IsManager():
		trips, err = s.repo.GetWithSubordinateExpenses(actor.ID, pendingOnly)
	default:
		trips, err = s.repo.GetByParticipant(actor.ID)
	}
	if err != nil {
		s.logger.Error("failed to list trips", "user_id", actor.ID, "error", err)
		return nil, err
	}

	today := internal.Today()
	for _, t := range trips {
		t.DynamicStatus = t.ComputeDynamicStatus(today)
	}
	return trips, nil
}

// GetTrip returns one trip. Managers and directors can open any trip;
// everyone else only trips they participate in.
func (s *Service) GetTrip(actor *auth.User, id int64) (*Trip, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTripNotFound
	}

	if !actor.IsSuperuser && !(actor.HasProfile && (actor.IsManager() || actor.IsDirector())) {
		if !isParticipant(t, actor.ID) {
			return nil, ErrTripNotFound
		}
	}

	t.DynamicStatus = t.ComputeDynamicStatus(internal.Today())
	return t, nil
}

func isParticipant(t *Trip, userID int64) bool {
	for _, p := range t.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

func (s *Service) CreateTrip(actor *auth.User, dto CreateTripDTO) (*Trip, error) {
	if !actor.IsSuperuser {
		return nil, internal.ErrAdminRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	status := dto.Status
	if status == "" {
		status = StatusActive
	}
	t := &Trip{
		Title:     dto.Title,
		StartDate: dto.StartDate,
		EndDate:   dto.EndDate,
		Status:    status,
	}
	if err := s.repo.Create(t, dto.Participants); err != nil {
		s.logger.Error("failed to create trip", "titulo", dto.Title, "error", err)
		return nil, err
	}
	return s.GetTrip(actor, t.ID)
}

func (s *Service) UpdateTrip(actor *auth.User, id int64, dto UpdateTripDTO) (*Trip, error) {
	if !actor.IsSuperuser {
		return nil, internal.ErrAdminRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTripNotFound
	}

	if dto.Title != nil {
		t.Title = *dto.Title
	}
	if dto.StartDate != nil {
		t.StartDate = *dto.StartDate
	}
	if dto.EndDate != nil {
		t.EndDate = *dto.EndDate
	}
	if dto.Status != nil {
		t.Status = *dto.Status
	}
	if t.EndDate.Before(t.StartDate.Time) {
		return nil, internal.NewValidationError("data_fim cannot be before data_inicio", internal.ErrCodeInvalidDate)
	}

	if err := s.repo.Update(t, dto.Participants); err != nil {
		s.logger.Error("failed to update trip", "trip_id", id, "error", err)
		return nil, err
	}
	return s.GetTrip(actor, id)
}

func (s *Service) DeleteTrip(actor *auth.User, id int64) error {
	if !actor.IsSuperuser {
		return internal.ErrAdminRequired
	}
	t, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrTripNotFound
	}
	return s.repo.Delete(id)
}
