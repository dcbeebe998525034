// Package permission answers authorization questions about the current session.
// Every function is pure: it reads a session snapshot and never calls out.
package permission

import (
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/auth"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
)

// HasRole reports whether s is signed in and holds role.
func HasRole(s *auth.Session, role models.Role) bool {
	if !s.Authenticated() {
		return false
	}
	return s.Roles.Has(role)
}

func hasAny(s *auth.Session, roles ...models.Role) bool {
	if !s.Authenticated() {
		return false
	}
	return s.Roles.HasAny(roles...)
}

// IsPlatformAdmin reports whether s holds PLATFORM_ADMIN.
func IsPlatformAdmin(s *auth.Session) bool {
	return HasRole(s, models.RolePlatformAdmin)
}

// IsInstitutionAdmin reports whether s supervises an institution.
func IsInstitutionAdmin(s *auth.Session) bool {
	return HasRole(s, models.RoleInstitutionSupervisor)
}

// CanUploadDataset reports whether s may submit datasets.
func CanUploadDataset(s *auth.Session) bool {
	return hasAny(s, models.RoleDatasetUploader, models.RoleInstitutionSupervisor, models.RolePlatformAdmin)
}

// CanManageApplication reports whether s may review app:
//   - platform admins always can
//   - supervisors and dataset approvers can if the dataset is in their institution
//   - the dataset's own provider can
func CanManageApplication(s *auth.Session, app *models.Application) bool {
	if !s.Authenticated() || app == nil {
		return false
	}
	if IsPlatformAdmin(s) {
		return true
	}
	inst := s.User.InstitutionID
	if inst != "" && inst == app.DatasetInstitutionID &&
		hasAny(s, models.RoleInstitutionSupervisor, models.RoleDatasetApprover) {
		return true
	}
	return app.ProviderID != "" && s.User.ID == app.ProviderID
}

// CanManageInstitutionUsers reports whether s may list and edit institution members.
func CanManageInstitutionUsers(s *auth.Session) bool {
	return hasAny(s, models.RoleInstitutionUserManager, models.RoleInstitutionSupervisor, models.RolePlatformAdmin)
}

// CanReviewDatasets reports whether s may approve or reject datasets.
func CanReviewDatasets(s *auth.Session) bool {
	return hasAny(s, models.RoleDatasetApprover, models.RoleInstitutionSupervisor, models.RolePlatformAdmin)
}

// CanReviewResearchOutputs reports whether s may approve or reject research outputs.
func CanReviewResearchOutputs(s *auth.Session) bool {
	return hasAny(s, models.RoleResearchOutputApprover, models.RoleInstitutionSupervisor, models.RolePlatformAdmin)
}

// CanAssignRole reports whether s may grant role to another user.
// Platform admins may grant anything; institution user managers only
// operational roles.
func CanAssignRole(s *auth.Session, role models.Role) bool {
	if !role.IsKnown() {
		return false
	}
	if IsPlatformAdmin(s) {
		return true
	}
	return CanManageInstitutionUsers(s) && !IsAdminRole(role)
}
