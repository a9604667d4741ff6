package expense

import (
	"github.com/rmacedo/prestacao-viagens/internal"
	"github.com/rmacedo/prestacao-viagens/internal/core/common/validation"
)

// CreateExpenseDTO books an expense for the caller. The owner, status and
// approver fields are server-controlled.
type CreateExpenseDTO struct {
	TripID      int64         `json:"viagem"`
	AmountCents int64         `json:"valor"`
	ExpenseDate internal.Date `json:"data_despesa"`
	Description string        `json:"descricao"`
	Category    string        `json:"categoria"`
	ReceiptURL  string        `json:"comprovante"`
}

func (dto CreateExpenseDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("viagem", dto.TripID).Required()
	v.Field("valor", dto.AmountCents).Required().Positive(internal.ErrCodeInvalidAmount)
	v.Field("data_despesa", dto.ExpenseDate).Required()
	v.Field("descricao", dto.Description).Required().MaxLength(255)
	v.Field("categoria", dto.Category).OneOf(Categories, internal.ErrCodeInvalidCategory)
	v.Field("comprovante", dto.ReceiptURL).Required()
	return v.Validate()
}

// UpdateExpenseDTO supports partial edits by the owner. Any accepted edit
// sends the expense back to PENDENTE.
type UpdateExpenseDTO struct {
	TripID      *int64         `json:"viagem,omitempty"`
	AmountCents *int64         `json:"valor,omitempty"`
	ExpenseDate *internal.Date `json:"data_despesa,omitempty"`
	Description *string        `json:"descricao,omitempty"`
	Category    *string        `json:"categoria,omitempty"`
	ReceiptURL  *string        `json:"comprovante,omitempty"`
}

func (dto UpdateExpenseDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if dto.AmountCents != nil {
		v.Field("valor", *dto.AmountCents).Required().Positive(internal.ErrCodeInvalidAmount)
	}
	if dto.ExpenseDate != nil {
		v.Field("data_despesa", *dto.ExpenseDate).Required()
	}
	if dto.Description != nil {
		v.Field("descricao", *dto.Description).Required().MaxLength(255)
	}
	if dto.Category != nil {
		v.Field("categoria", *dto.Category).Required().OneOf(Categories, internal.ErrCodeInvalidCategory)
	}
	if dto.ReceiptURL != nil {
		v.Field("comprovante", *dto.ReceiptURL).Required()
	}
	return v.Validate()
}

// RejectExpenseDTO carries the mandatory rejection note.
type RejectExpenseDTO struct {
	RejectionNote string `json:"observacao_rejeicao"`
}
