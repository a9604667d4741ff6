package advance

import (
	"errors"
)

// CreateAdvanceDTO is the admin-only payload for fronting money. The grant
// date is server-assigned and not accepted from the client.
type CreateAdvanceDTO struct {
	TripID      int64   `json:"viagem"`
	UserID      int64   `json:"usuario"`
	AmountCents int64   `json:"valor"`
	Notes       *string `json:"observacoes,omitempty"`
	ReceiptURL  *string `json:"comprovante_deposito,omitempty"`
}

func (dto CreateAdvanceDTO) Validate() error {
	if dto.TripID == 0 {
		return errors.New("viagem is required")
	}
	if dto.UserID == 0 {
		return errors.New("usuario is required")
	}
	if dto.AmountCents <= 0 {
		return errors.New("valor must be positive")
	}
	return nil
}

// UpdateAdvanceDTO supports partial updates; nil fields are left untouched.
type UpdateAdvanceDTO struct {
	TripID      *int64  `json:"viagem,omitempty"`
	UserID      *int64  `json:"usuario,omitempty"`
	AmountCents *int64  `json:"valor,omitempty"`
	Notes       *string `json:"observacoes,omitempty"`
	ReceiptURL  *string `json:"comprovante_deposito,omitempty"`
}

func (dto UpdateAdvanceDTO) Validate() error {
	if dto.AmountCents != nil && *dto.AmountCents <= 0 {
		return errors.New("valor must be positive")
	}
	return nil
}
