package postgres

import (
	"errors"
	"time"

	"github.com/rmacedo/prestacao-viagens/internal/auth"
	"github.com/rmacedo/prestacao-viagens/internal/expense"
	"gorm.io/gorm"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) GetByID(id int64) (*expense.Expense, error) {
	var e expense.Expense
	err := r.db.Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *ExpenseRepository) GetByUser(userID int64) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.Where("usuario_id = ?", userID).
		Order("data_despesa DESC, id DESC").Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) GetByTrip(tripID int64) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.Where("viagem_id = ?", tripID).
		Order("data_despesa DESC, id DESC").Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) GetByTripAndUser(tripID, userID int64) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.Where("viagem_id = ? AND usuario_id = ?", tripID, userID).
		Order("data_despesa DESC, id DESC").Find(&expenses).Error
	return expenses, err
}

// GetByTripAndManagerOwners narrows a trip to expenses owned by GESTOR
// profiles, the director's view.
func (r *ExpenseRepository) GetByTripAndManagerOwners(tripID int64) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.
		Where("viagem_id = ?", tripID).
		Where("usuario_id IN (SELECT usuario_id FROM perfis WHERE tipo = ?)", auth.RoleManager).
		Order("data_despesa DESC, id DESC").Find(&expenses).Error
	return expenses, err
}

// GetByTripAndSubordinates narrows a trip to expenses owned by collaborators
// of the manager's departments.
func (r *ExpenseRepository) GetByTripAndSubordinates(tripID, managerID int64) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.
		Where("viagem_id = ?", tripID).
		Where("usuario_id IN (?)", r.subordinateIDs(managerID)).
		Order("data_despesa DESC, id DESC").Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) PendingByManagerOwners() ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.
		Where("status = ?", expense.StatusPending).
		Where("usuario_id IN (SELECT usuario_id FROM perfis WHERE tipo = ?)", auth.RoleManager).
		Order("data_despesa ASC, id ASC").Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) PendingBySubordinates(managerID int64) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	err := r.db.
		Where("status = ?", expense.StatusPending).
		Where("usuario_id IN (?)", r.subordinateIDs(managerID)).
		Order("data_despesa ASC, id ASC").Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) subordinateIDs(managerID int64) *gorm.DB {
	return r.db.Table("perfis p").
		Select("DISTINCT p.usuario_id").
		Joins("JOIN perfil_departamentos pd ON pd.perfil_id = p.id").
		Joins("JOIN departamentos d ON d.id = pd.departamento_id").
		Where("p.tipo = ? AND d.gestor_id = ?", auth.RoleCollaborator, managerID)
}

func (r *ExpenseRepository) Create(e *expense.Expense) error {
	return r.db.Create(e).Error
}

func (r *ExpenseRepository) Update(e *expense.Expense) error {
	return r.db.Model(&expense.Expense{}).Where("id = ?", e.ID).Updates(map[string]interface{}{
		"viagem_id":    e.TripID,
		"valor":        e.AmountCents,
		"data_despesa": e.ExpenseDate,
		"descricao":    e.Description,
		"categoria":    e.Category,
		"comprovante":  e.ReceiptURL,
		"status":       e.Status,
	}).Error
}

func (r *ExpenseRepository) Delete(id int64) error {
	return r.db.Delete(&expense.Expense{}, id).Error
}

// MarkProcessed conditionally decides a pending expense. The WHERE on the
// current status makes concurrent reviews race safely: exactly one wins.
func (r *ExpenseRepository) MarkProcessed(id int64, status string, approverID int64, approvedAt time.Time, note *string) (bool, error) {
	updates := map[string]interface{}{
		"status":         status,
		"aprovador_id":   approverID,
		"data_aprovacao": approvedAt,
	}
	if note != nil {
		updates["observacao_rejeicao"] = *note
	}

	res := r.db.Model(&expense.Expense{}).
		Where("id = ? AND status = ?", id, expense.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SumByUser totals every expense of the user regardless of status, in
// centavos.
func (r *ExpenseRepository) SumByUser(userID int64) (int64, error) {
	var total int64
	err := r.db.Model(&expense.Expense{}).
		Where("usuario_id = ?", userID).
		Select("COALESCE(SUM(valor), 0)").
		Scan(&total).Error
	return total, err
}
