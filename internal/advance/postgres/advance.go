package postgres

import (
	"errors"

	"github.com/rmacedo/prestacao-viagens/internal/advance"
	"gorm.io/gorm"
)

type AdvanceRepository struct {
	db *gorm.DB
}

func NewAdvanceRepository(db *gorm.DB) *AdvanceRepository {
	return &AdvanceRepository{db: db}
}

// withTripTitle joins viagens so the read-only viagem_titulo column is
// always populated.
func (r *AdvanceRepository) withTripTitle() *gorm.DB {
	return r.db.Table("adiantamentos").
		Select("adiantamentos.*, viagens.titulo AS viagem_titulo").
		Joins("LEFT JOIN viagens ON viagens.id = adiantamentos.viagem_id")
}

func (r *AdvanceRepository) GetByID(id int64) (*advance.Advance, error) {
	var a advance.Advance
	err := r.withTripTitle().Where("adiantamentos.id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AdvanceRepository) GetAll(tripID *int64) ([]*advance.Advance, error) {
	q := r.withTripTitle().Order("adiantamentos.data_adiantamento DESC")
	if tripID != nil {
		q = q.Where("adiantamentos.viagem_id = ?", *tripID)
	}
	var advances []*advance.Advance
	err := q.Find(&advances).Error
	return advances, err
}

func (r *AdvanceRepository) GetByUser(userID int64, tripID *int64) ([]*advance.Advance, error) {
	q := r.withTripTitle().
		Where("adiantamentos.usuario_id = ?", userID).
		Order("adiantamentos.data_adiantamento DESC")
	if tripID != nil {
		q = q.Where("adiantamentos.viagem_id = ?", *tripID)
	}
	var advances []*advance.Advance
	err := q.Find(&advances).Error
	return advances, err
}

func (r *AdvanceRepository) Create(a *advance.Advance) error {
	return r.db.Create(a).Error
}

func (r *AdvanceRepository) Update(a *advance.Advance) error {
	return r.db.Model(&advance.Advance{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"viagem_id":            a.TripID,
		"usuario_id":           a.UserID,
		"valor":                a.AmountCents,
		"observacoes":          a.Notes,
		"comprovante_deposito": a.ReceiptURL,
	}).Error
}

func (r *AdvanceRepository) Delete(id int64) error {
	return r.db.Delete(&advance.Advance{}, id).Error
}

// SumByUser totals every advance granted to the user, in centavos.
func (r *AdvanceRepository) SumByUser(userID int64) (int64, error) {
	var total int64
	err := r.db.Model(&advance.Advance{}).
		Where("usuario_id = ?", userID).
		Select("COALESCE(SUM(valor), 0)").
		Scan(&total).Error
	return total, err
}
