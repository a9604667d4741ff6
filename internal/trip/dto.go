package trip

import (
	"errors"

	"github.com/rmacedo/prestacao-viagens/internal"
)

// CreateTripDTO is the admin-only payload for opening a trip. Participants
// are referenced by id on writes and expanded on reads.
type CreateTripDTO struct {
	Title        string        `json:"titulo"`
	StartDate    internal.Date `json:"data_inicio"`
	EndDate      internal.Date `json:"data_fim"`
	Status       string        `json:"status,omitempty"`
	Participants []int64       `json:"participantes"`
}

func (dto CreateTripDTO) Validate() error {
	if dto.Title == "" {
		return errors.New("titulo is required")
	}
	if dto.StartDate.IsZero() || dto.EndDate.IsZero() {
		return errors.New("data_inicio and data_fim are required")
	}
	if dto.EndDate.Before(dto.StartDate.Time) {
		return errors.New("data_fim cannot be before data_inicio")
	}
	if dto.Status != "" {
		switch dto.Status {
		case StatusActive, StatusCompleted, StatusCancelled:
		default:
			return errors.New("status must be ATIVA, CONCLUIDA or CANCELADA")
		}
	}
	return nil
}

// UpdateTripDTO supports partial updates; nil fields are left untouched.
type UpdateTripDTO struct {
	Title        *string        `json:"titulo,omitempty"`
	StartDate    *internal.Date `json:"data_inicio,omitempty"`
	EndDate      *internal.Date `json:"data_fim,omitempty"`
	Status       *string        `json:"status,omitempty"`
	Participants *[]int64       `json:"participantes,omitempty"`
}

func (dto UpdateTripDTO) Validate() error {
	if dto.Title != nil && *dto.Title == "" {
		return errors.New("titulo cannot be empty")
	}
	if dto.Status != nil {
		switch *dto.Status {
		case StatusActive, StatusCompleted, StatusCancelled:
		default:
			return errors.New("status must be ATIVA, CONCLUIDA or CANCELADA")
		}
	}
	return nil
}

// ListFilter narrows the manager/director listing to trips that still have
// pending expenses from their subordinates. It is the default.
const (
	FilterPending = "pendentes"
	FilterAll     = "todas"
)
