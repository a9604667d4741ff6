package advance

import (
	"time"

	"github.com/rmacedo/prestacao-viagens/internal"
)

// Advance is money fronted to a traveler against a trip. Amounts are in
// centavos. GrantedAt is server-assigned on creation.
type Advance struct {
	ID          int64         `json:"id" gorm:"primaryKey"`
	TripID      int64         `json:"viagem" gorm:"column:viagem_id;not null"`
	TripTitle   string        `json:"viagem_titulo" gorm:"column:viagem_titulo;<-:false"`
	UserID      int64         `json:"usuario" gorm:"column:usuario_id;not null"`
	AmountCents int64         `json:"valor" gorm:"column:valor;not null"`
	GrantedAt   internal.Date `json:"data_adiantamento" gorm:"column:data_adiantamento"`
	Notes       *string       `json:"observacoes,omitempty" gorm:"column:observacoes"`
	ReceiptURL  *string       `json:"comprovante_deposito,omitempty" gorm:"column:comprovante_deposito"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Advance) TableName() string {
	return "adiantamentos"
}

var ErrAdvanceNotFound = internal.NewNotFoundError("advance not found", internal.ErrCodeAdvanceNotFound)
