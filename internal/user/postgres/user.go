package postgres

import (
	"errors"

	"github.com/rmacedo/prestacao-viagens/internal/auth"
	"github.com/rmacedo/prestacao-viagens/internal/department"
	"github.com/rmacedo/prestacao-viagens/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Preload("Profile.Departments").Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetAll() ([]*user.User, error) {
	var users []*user.User
	err := r.db.Preload("Profile.Departments").Order("id ASC").Find(&users).Error
	return users, err
}

// Create inserts the user, its profile and the department memberships in one
// transaction. GESTOR users take over as manager of the listed departments.
func (r *UserRepository) Create(u *user.User, role string, photoURL *string, departmentIDs []int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}

		profile := &user.Profile{
			UserID:   u.ID,
			Role:     role,
			PhotoURL: photoURL,
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}

		if len(departmentIDs) == 0 {
			return nil
		}

		var depts []department.Department
		if err := tx.Where("id IN ?", departmentIDs).Find(&depts).Error; err != nil {
			return err
		}
		if err := tx.Model(profile).Association("Departments").Replace(&depts); err != nil {
			return err
		}

		if role == auth.RoleManager {
			if err := tx.Model(&department.Department{}).
				Where("id IN ?", departmentIDs).
				Update("gestor_id", u.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) UpdateFields(u *user.User) error {
	return r.db.Model(&user.User{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
	}).Error
}

// UpdateProfile rewrites the profile role and memberships. Management of
// departments previously held by the user is always released first, then
// reassigned when the user remains a GESTOR.
func (r *UserRepository) UpdateProfile(userID int64, role *string, departmentIDs []int64, departmentsProvided bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var profile user.Profile
		if err := tx.Where("usuario_id = ?", userID).First(&profile).Error; err != nil {
			return err
		}

		if role != nil {
			profile.Role = *role
			if err := tx.Model(&user.Profile{}).Where("id = ?", profile.ID).
				Update("tipo", *role).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&department.Department{}).
			Where("gestor_id = ?", userID).
			Update("gestor_id", nil).Error; err != nil {
			return err
		}

		if departmentsProvided {
			var depts []department.Department
			if len(departmentIDs) > 0 {
				if err := tx.Where("id IN ?", departmentIDs).Find(&depts).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&profile).Association("Departments").Replace(&depts); err != nil {
				return err
			}
		}

		if profile.Role == auth.RoleManager {
			ids := departmentIDs
			if !departmentsProvided {
				if err := tx.Table("perfil_departamentos").
					Where("perfil_id = ?", profile.ID).
					Pluck("departamento_id", &ids).Error; err != nil {
					return err
				}
			}
			if len(ids) > 0 {
				if err := tx.Model(&department.Department{}).
					Where("id IN ?", ids).
					Update("gestor_id", userID).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&department.Department{}).
			Where("gestor_id = ?", id).
			Update("gestor_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM perfil_departamentos WHERE perfil_id IN (SELECT id FROM perfis WHERE usuario_id = ?)",
			id).Error; err != nil {
			return err
		}
		if err := tx.Where("usuario_id = ?", id).Delete(&user.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user.User{}, id).Error
	})
}

// RoleFor reports the profile role of a user, if any.
func (r *UserRepository) RoleFor(userID int64) (string, bool, error) {
	var role string
	err := r.db.Raw("SELECT tipo FROM perfis WHERE usuario_id = ?", userID).Scan(&role).Error
	if err != nil {
		return "", false, err
	}
	if role == "" {
		return "", false, nil
	}
	return role, true, nil
}

// IsManagedCollaborator reports whether the user is a COLABORADOR in a
// department managed by the given manager.
func (r *UserRepository) IsManagedCollaborator(managerID, userID int64) (bool, error) {
	var count int64
	err := r.db.Raw(`
		SELECT COUNT(1)
		FROM perfis p
		JOIN perfil_departamentos pd ON pd.perfil_id = p.id
		JOIN departamentos d ON d.id = pd.departamento_id
		WHERE p.usuario_id = ? AND p.tipo = ? AND d.gestor_id = ?`,
		userID, auth.RoleCollaborator, managerID).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
