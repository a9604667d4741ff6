package expense

import (
	"github.com/rmacedo/prestacao-viagens/internal"
	"github.com/rmacedo/prestacao-viagens/internal/auth"
)

// Directory answers the profile questions the review chain needs about the
// expense owner.
type Directory interface {
	RoleFor(userID int64) (role string, hasProfile bool, err error)
	IsManagedCollaborator(managerID, userID int64) (bool, error)
}

// authorizeReview runs the shared approve/reject chain, in order: owners
// cannot review themselves, admins pass, a profile is required, directors
// only review managers, and managers only review collaborators of
// departments they manage.
func (s *Service) authorizeReview(actor *auth.User, e *Expense) *internal.AppError {
	if e.UserID == actor.ID {
		return ErrSelfApproval
	}

	if actor.IsSuperuser {
		return nil
	}

	if !actor.HasProfile {
		return ErrNoApprovalProfile
	}

	switch actor.Role {
	case auth.RoleDirector:
		ownerRole, ownerHasProfile, err := s.directory.RoleFor(e.UserID)
		if err != nil {
			return internal.NewInternalError("failed to resolve expense owner profile", err)
		}
		if !ownerHasProfile || ownerRole != auth.RoleManager {
			return ErrDirectorScope
		}
		return nil

	case auth.RoleManager:
		ownerRole, ownerHasProfile, err := s.directory.RoleFor(e.UserID)
		if err != nil {
			return internal.NewInternalError("failed to resolve expense owner profile", err)
		}
		if !ownerHasProfile || ownerRole != auth.RoleCollaborator {
			return ErrManagerRoleScope
		}
		managed, err := s.directory.IsManagedCollaborator(actor.ID, e.UserID)
		if err != nil {
			return internal.NewInternalError("failed to resolve managed departments", err)
		}
		if !managed {
			return ErrManagerDeptScope
		}
		return nil

	default:
		return ErrApprovalNotAllowed
	}
}
