package postgres

import (
	"errors"
	"time"

	"github.com/rmacedo/prestacao-viagens/internal"
	"github.com/rmacedo/prestacao-viagens/internal/auth"
	"github.com/rmacedo/prestacao-viagens/internal/trip"
	"github.com/rmacedo/prestacao-viagens/internal/user"
	"gorm.io/gorm"
)

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) GetByID(id int64) (*trip.Trip, error) {
	var t trip.Trip
	err := r.db.Preload("Participants.Profile.Departments").Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TripRepository) GetAll() ([]*trip.Trip, error) {
	var trips []*trip.Trip
	err := r.db.Preload("Participants.Profile.Departments").
		Order("data_inicio DESC").Find(&trips).Error
	return trips, err
}

func (r *TripRepository) GetByParticipant(userID int64) ([]*trip.Trip, error) {
	var trips []*trip.Trip
	err := r.db.Preload("Participants.Profile.Departments").
		Where("id IN (SELECT viagem_id FROM viagem_participantes WHERE usuario_id = ?)", userID).
		Order("data_inicio DESC").Find(&trips).Error
	return trips, err
}

// GetWithManagerExpenses lists trips carrying expenses owned by GESTOR
// profiles, the director's review queue.
func (r *TripRepository) GetWithManagerExpenses(pendingOnly bool) ([]*trip.Trip, error) {
	sub := r.db.Table("despesas d").
		Select("DISTINCT d.viagem_id").
		Joins("JOIN perfis p ON p.usuario_id = d.usuario_id").
		Where("p.tipo = ?", auth.RoleManager)
	if pendingOnly {
		sub = sub.Where("d.status = ?", "PENDENTE")
	}

	var trips []*trip.Trip
	err := r.db.Preload("Participants.Profile.Departments").
		Where("id IN (?)", sub).
		Order("data_inicio DESC").Find(&trips).Error
	return trips, err
}

// GetWithSubordinateExpenses lists trips carrying expenses owned by
// collaborators of the manager's departments.
func (r *TripRepository) GetWithSubordinateExpenses(managerID int64, pendingOnly bool) ([]*trip.Trip, error) {
	sub := r.db.Table("despesas d").
		Select("DISTINCT d.viagem_id").
		Joins("JOIN perfis p ON p.usuario_id = d.usuario_id").
		Joins("JOIN perfil_departamentos pd ON pd.perfil_id = p.id").
		Joins("JOIN departamentos dep ON dep.id = pd.departamento_id").
		Where("p.tipo = ? AND dep.gestor_id = ?", auth.RoleCollaborator, managerID)
	if pendingOnly {
		sub = sub.Where("d.status = ?", "PENDENTE")
	}

	var trips []*trip.Trip
	err := r.db.Preload("Participants.Profile.Departments").
		Where("id IN (?)", sub).
		Order("data_inicio DESC").Find(&trips).Error
	return trips, err
}

func (r *TripRepository) Create(t *trip.Trip, participantIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Participants").Create(t).Error; err != nil {
			return err
		}
		return replaceParticipants(tx, t, participantIDs)
	})
}

func (r *TripRepository) Update(t *trip.Trip, participantIDs *[]int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&trip.Trip{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
			"titulo":      t.Title,
			"data_inicio": t.StartDate,
			"data_fim":    t.EndDate,
			"status":      t.Status,
		}).Error
		if err != nil {
			return err
		}
		if participantIDs == nil {
			return nil
		}
		return replaceParticipants(tx, t, *participantIDs)
	})
}

func replaceParticipants(tx *gorm.DB, t *trip.Trip, participantIDs []int64) error {
	var participants []user.User
	if len(participantIDs) > 0 {
		if err := tx.Where("id IN ?", participantIDs).Find(&participants).Error; err != nil {
			return err
		}
	}
	return tx.Model(t).Association("Participants").Replace(&participants)
}

func (r *TripRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM viagem_participantes WHERE viagem_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&trip.Trip{}, id).Error
	})
}

// The three lookups below back the viagem_atual field on the self profile.
// The timestamp is truncated to its calendar date before comparing against
// the DATE columns, so a trip stays active through its final day.

func (r *TripRepository) ActiveTrip(userID int64, today time.Time) (*user.TripInfo, error) {
	day := internal.DateOf(today)
	return r.tripInfo(
		"v.data_inicio <= ? AND v.data_fim >= ?", []interface{}{day, day},
		"v.data_inicio ASC", userID)
}

func (r *TripRepository) NextTrip(userID int64, today time.Time) (*user.TripInfo, error) {
	return r.tripInfo(
		"v.data_inicio > ?", []interface{}{internal.DateOf(today)},
		"v.data_inicio ASC", userID)
}

func (r *TripRepository) LastTrip(userID int64, today time.Time) (*user.TripInfo, error) {
	return r.tripInfo(
		"v.data_fim < ?", []interface{}{internal.DateOf(today)},
		"v.data_fim DESC", userID)
}

func (r *TripRepository) tripInfo(cond string, condArgs []interface{}, order string, userID int64) (*user.TripInfo, error) {
	var info user.TripInfo
	err := r.db.Table("viagens v").
		Select("v.id, v.titulo AS title").
		Joins("JOIN viagem_participantes vp ON vp.viagem_id = v.id").
		Where("vp.usuario_id = ?", userID).
		Where(cond, condArgs...).
		Order(order).
		Limit(1).
		Scan(&info).Error
	if err != nil {
		return nil, err
	}
	if info.ID == 0 {
		return nil, nil
	}
	return &info, nil
}
