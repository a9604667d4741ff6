package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rmacedo/prestacao-viagens/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCredentials(username string) (int64, string, error) {
	var userID int64
	var passwordHash string
	query := `SELECT id, password_hash FROM users WHERE username = ? AND is_active = true`

	row := r.db.Raw(query, username).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", fmt.Errorf("user not found")
		}
		return 0, "", err
	}
	return userID, passwordHash, nil
}

// GetActor loads the authenticated actor with everything the scoping rules
// need: role tag, member departments and managed departments.
func (r *Repository) GetActor(userID int64) (*auth.User, error) {
	actor := &auth.User{}

	query := `SELECT id, username, email, is_superuser FROM users WHERE id = ? AND is_active = true`
	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&actor.ID, &actor.Username, &actor.Email, &actor.IsSuperuser); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	profileQuery := `SELECT tipo FROM perfis WHERE usuario_id = ?`
	row = r.db.Raw(profileQuery, userID).Row()
	if err := row.Scan(&actor.Role); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		// no profile: actor participates in no approval flow
		return actor, nil
	}
	actor.HasProfile = true

	deptQuery := `SELECT pd.departamento_id
	              FROM perfil_departamentos pd
	              JOIN perfis p ON p.id = pd.perfil_id
	              WHERE p.usuario_id = ?`
	deptIDs, err := r.scanIDs(deptQuery, userID)
	if err != nil {
		return nil, err
	}
	actor.DepartmentIDs = deptIDs

	managedQuery := `SELECT id FROM departamentos WHERE gestor_id = ?`
	managedIDs, err := r.scanIDs(managedQuery, userID)
	if err != nil {
		return nil, err
	}
	actor.ManagedDepartmentIDs = managedIDs

	return actor, nil
}

func (r *Repository) scanIDs(query string, args ...interface{}) ([]int64, error) {
	rows, err := r.db.Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
