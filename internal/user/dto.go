package user

import (
	"errors"
)

// CreateUserDTO is the admin-only payload for registering a user with a
// profile. Username doubles as email, matching the login flow.
type CreateUserDTO struct {
	Username     string  `json:"username"`
	Password     string  `json:"password"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Role         string  `json:"tipo"`
	Departments  []int64 `json:"departamentos"`
	ProfilePhoto *string `json:"foto_perfil,omitempty"`
}

func (dto CreateUserDTO) Validate() error {
	if dto.Username == "" {
		return errors.New("username is required")
	}
	if dto.Password == "" {
		return errors.New("password is required")
	}
	switch dto.Role {
	case "DIRETOR", "GESTOR", "COLABORADOR":
	default:
		return errors.New("tipo must be DIRETOR, GESTOR or COLABORADOR")
	}
	return nil
}

// ProfileDTO carries partial profile changes on user updates.
type ProfileDTO struct {
	Role        *string  `json:"tipo,omitempty"`
	Departments *[]int64 `json:"departamentos,omitempty"`
}

// UpdateUserDTO supports partial updates; nil fields are left untouched.
type UpdateUserDTO struct {
	Username  *string     `json:"username,omitempty"`
	FirstName *string     `json:"first_name,omitempty"`
	LastName  *string     `json:"last_name,omitempty"`
	Profile   *ProfileDTO `json:"perfil,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	if dto.Username != nil && *dto.Username == "" {
		return errors.New("username cannot be empty")
	}
	if dto.Profile != nil && dto.Profile.Role != nil {
		switch *dto.Profile.Role {
		case "DIRETOR", "GESTOR", "COLABORADOR":
		default:
			return errors.New("tipo must be DIRETOR, GESTOR or COLABORADOR")
		}
	}
	return nil
}

// MeResponse is the self-profile view: the user record enriched with the
// on-demand balance and the resolved current trip.
type MeResponse struct {
	*User
	Balance     int64     `json:"saldo"`
	CurrentTrip *TripInfo `json:"viagem_atual"`
}
