package user

import (
	"log/slog"
	"time"

	"github.com/rmacedo/prestacao-viagens/internal"
	"github.com/rmacedo/prestacao-viagens/internal/auth"
)

type Repository interface {
	GetByID(id int64) (*User, error)
	GetAll() ([]*User, error)
	Create(u *User, role string, photoURL *string, departmentIDs []int64) error
	UpdateFields(u *User) error
	UpdateProfile(userID int64, role *string, departmentIDs []int64, departmentsProvided bool) error
	Delete(id int64) error
}

// BalanceSource supplies the advance and expense totals behind the saldo
// field. Expenses count against the balance regardless of status.
type BalanceSource interface {
	SumAdvancesByUser(userID int64) (int64, error)
	SumExpensesByUser(userID int64) (int64, error)
}

// TripSource resolves the user's current trip: the active one if any,
// otherwise the nearest upcoming, otherwise the most recent past trip.
type TripSource interface {
	ActiveTrip(userID int64, today time.Time) (*TripInfo, error)
	NextTrip(userID int64, today time.Time) (*TripInfo, error)
	LastTrip(userID int64, today time.Time) (*TripInfo, error)
}

// PasswordHasher abstracts credential hashing so the auth service owns the
// bcrypt cost in one place.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo     Repository
	balances BalanceSource
	trips    TripSource
	hasher   PasswordHasher
	logger   *slog.Logger
}

func NewService(repo Repository, balances BalanceSource, trips TripSource, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		balances: balances,
		trips:    trips,
		hasher:   hasher,
		logger:   logger,
	}
}

// Me returns the caller's own record enriched with the advance balance and
// the resolved current trip.
func (s *Service) Me(actor *auth.User) (*MeResponse, error) {
	u, err := s.repo.GetByID(actor.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	balance, err := s.Balance(actor.ID)
	if err != nil {
		s.logger.Error("failed to compute balance", "user_id", actor.ID, "error", err)
		return nil, err
	}

	trip, err := s.CurrentTrip(actor.ID, time.Now())
	if err != nil {
		s.logger.Error("failed to resolve current trip", "user_id", actor.ID, "error", err)
		return nil, err
	}

	return &MeResponse{
		User:        u,
		Balance:     balance,
		CurrentTrip: trip,
	}, nil
}

// Balance is sum of advances minus sum of all expenses, in centavos.
func (s *Service) Balance(userID int64) (int64, error) {
	advances, err := s.balances.SumAdvancesByUser(userID)
	if err != nil {
		return 0, err
	}
	expenses, err := s.balances.SumExpensesByUser(userID)
	if err != nil {
		return 0, err
	}
	return advances - expenses, nil
}

// CurrentTrip picks the trip shown as viagem_atual: a trip covering today
// wins, then the nearest future trip, then the most recent finished one.
func (s *Service) CurrentTrip(userID int64, today time.Time) (*TripInfo, error) {
	trip, err := s.trips.ActiveTrip(userID, today)
	if err != nil {
		return nil, err
	}
	if trip != nil {
		trip.Status = TripStatusActive
		return trip, nil
	}

	trip, err = s.trips.NextTrip(userID, today)
	if err != nil {
		return nil, err
	}
	if trip != nil {
		trip.Status = TripStatusWaiting
		return trip, nil
	}

	trip, err = s.trips.LastTrip(userID, today)
	if err != nil {
		return nil, err
	}
	if trip != nil {
		trip.Status = TripStatusFinished
	}
	return trip, nil
}

func (s *Service) GetAllUsers(actor *auth.User) ([]*User, error) {
	return s.repo.GetAll()
}

func (s *Service) GetUser(actor *auth.User, id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// CreateUser registers a user with a profile. Admin only. Username doubles
// as the email, and GESTOR users become managers of the listed departments.
func (s *Service) CreateUser(actor *auth.User, dto CreateUserDTO) (*User, error) {
	if !actor.IsSuperuser {
		return nil, internal.ErrAdminRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	u := &User{
		Username:     dto.Username,
		Email:        dto.Username,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.Create(u, dto.Role, dto.ProfilePhoto, dto.Departments); err != nil {
		s.logger.Error("failed to create user", "username", dto.Username, "error", err)
		return nil, err
	}

	return s.GetUser(actor, u.ID)
}

// UpdateUser applies a partial update. Admin only. A username change also
// rewrites the email, and profile changes rewire department management.
func (s *Service) UpdateUser(actor *auth.User, id int64, dto UpdateUserDTO) (*User, error) {
	if !actor.IsSuperuser {
		return nil, internal.ErrAdminRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	if dto.Username != nil {
		u.Username = *dto.Username
		u.Email = *dto.Username
	}
	if dto.FirstName != nil {
		u.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		u.LastName = *dto.LastName
	}
	if err := s.repo.UpdateFields(u); err != nil {
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return nil, err
	}

	if dto.Profile != nil {
		var deptIDs []int64
		provided := dto.Profile.Departments != nil
		if provided {
			deptIDs = *dto.Profile.Departments
		}
		if err := s.repo.UpdateProfile(id, dto.Profile.Role, deptIDs, provided); err != nil {
			s.logger.Error("failed to update profile", "user_id", id, "error", err)
			return nil, err
		}
	}

	return s.GetUser(actor, id)
}

func (s *Service) DeleteUser(actor *auth.User, id int64) error {
	if !actor.IsSuperuser {
		return internal.ErrAdminRequired
	}
	u, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}
	return s.repo.Delete(id)
}
