package expense

import (
	"time"

	"github.com/rmacedo/prestacao-viagens/internal"
)

// Expense statuses. A processed expense never goes back to PENDENTE except
// through an edit by its owner.
const (
	StatusPending  = "PENDENTE"
	StatusApproved = "APROVADO"
	StatusRejected = "REJEITADO"
)

const (
	CategoryFood      = "ALIMENTACAO"
	CategoryTransport = "TRANSPORTE"
	CategoryLodging   = "HOSPEDAGEM"
	CategoryOther     = "OUTROS"
)

// Categories lists the accepted values for the categoria field.
var Categories = []string{CategoryFood, CategoryTransport, CategoryLodging, CategoryOther}

// Expense is a reimbursable cost booked against a trip. Amounts are in
// centavos and the receipt is mandatory.
type Expense struct {
	ID            int64         `json:"id" gorm:"primaryKey"`
	TripID        int64         `json:"viagem" gorm:"column:viagem_id;not null"`
	UserID        int64         `json:"usuario" gorm:"column:usuario_id;not null"`
	AmountCents   int64         `json:"valor" gorm:"column:valor;not null"`
	ExpenseDate   internal.Date `json:"data_despesa" gorm:"column:data_despesa;not null"`
	Description   string        `json:"descricao" gorm:"column:descricao;size:255;not null"`
	Category      string        `json:"categoria" gorm:"column:categoria;default:OUTROS"`
	ReceiptURL    string        `json:"comprovante" gorm:"column:comprovante;not null"`
	Status        string        `json:"status" gorm:"default:PENDENTE"`
	ApproverID    *int64        `json:"aprovador,omitempty" gorm:"column:aprovador_id"`
	ApprovedAt    *time.Time    `json:"data_aprovacao,omitempty" gorm:"column:data_aprovacao"`
	RejectionNote *string       `json:"observacao_rejeicao,omitempty" gorm:"column:observacao_rejeicao"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Expense) TableName() string {
	return "despesas"
}

func (e *Expense) IsPending() bool {
	return e.Status == StatusPending
}

var (
	// ErrNotFoundOrProcessed deliberately hides whether the expense exists
	// or was already decided.
	ErrNotFoundOrProcessed = internal.NewNotFoundError("expense not found or already processed", internal.ErrCodeExpenseProcessed)

	ErrExpenseNotFound = internal.NewNotFoundError("expense not found", internal.ErrCodeExpenseNotFound)

	ErrSelfApproval          = internal.NewForbiddenError("you cannot review your own expenses", internal.ErrCodeSelfApproval)
	ErrNoApprovalProfile     = internal.NewForbiddenError("user has no approval profile", internal.ErrCodeNoApprovalProfile)
	ErrDirectorScope         = internal.NewForbiddenError("directors can only review managers' expenses", internal.ErrCodeApprovalScope)
	ErrManagerRoleScope      = internal.NewForbiddenError("managers can only review collaborators' expenses", internal.ErrCodeApprovalScope)
	ErrManagerDeptScope      = internal.NewForbiddenError("managers can only review collaborators of their departments", internal.ErrCodeApprovalScope)
	ErrApprovalNotAllowed    = internal.NewForbiddenError("you are not allowed to review expenses", internal.ErrCodeApprovalNotAllowed)
	ErrRejectionNoteRequired = internal.NewValidationError("observacao_rejeicao is required to reject", internal.ErrCodeRejectionNoteRequired)
)
