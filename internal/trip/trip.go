package trip

import (
	"time"

	"github.com/rmacedo/prestacao-viagens/internal"
	"github.com/rmacedo/prestacao-viagens/internal/user"
)

// Stored trip statuses. The wire also exposes a derived status computed
// against today's date, see DynamicStatus.
const (
	StatusActive    = "ATIVA"
	StatusCompleted = "CONCLUIDA"
	StatusCancelled = "CANCELADA"
)

// Derived statuses reported as status_dinamico.
const (
	DynamicCancelled = "Cancelada"
	DynamicPreparing = "Preparando"
	DynamicActive    = "Ativa"
	DynamicFinished  = "Finalizada"
)

type Trip struct {
	ID            int64         `json:"id" gorm:"primaryKey"`
	Title         string        `json:"titulo" gorm:"column:titulo;not null"`
	StartDate     internal.Date `json:"data_inicio" gorm:"column:data_inicio;not null"`
	EndDate       internal.Date `json:"data_fim" gorm:"column:data_fim;not null"`
	Status        string        `json:"status" gorm:"default:ATIVA"`
	DynamicStatus string        `json:"status_dinamico" gorm:"-"`
	Participants  []user.User   `json:"participantes_detalhes" gorm:"many2many:viagem_participantes;joinForeignKey:ViagemID;joinReferences:UsuarioID"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Trip) TableName() string {
	return "viagens"
}

// ComputeDynamicStatus derives the date-aware status: cancellation wins,
// then the trip is Preparando before data_inicio, Ativa inside the range
// and Finalizada after data_fim.
func (t *Trip) ComputeDynamicStatus(today internal.Date) string {
	if t.Status == StatusCancelled {
		return DynamicCancelled
	}
	if today.Before(t.StartDate.Time) {
		return DynamicPreparing
	}
	if today.After(t.EndDate.Time) {
		return DynamicFinished
	}
	return DynamicActive
}

var ErrTripNotFound = internal.NewNotFoundError("trip not found", internal.ErrCodeTripNotFound)
