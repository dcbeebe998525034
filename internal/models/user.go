package models

import "time"

// Role is an authorization marker attached to a platform user.
type Role string

// The fixed role enumeration issued by the platform.
const (
	RolePlatformAdmin          Role = "PLATFORM_ADMIN"
	RoleInstitutionSupervisor  Role = "INSTITUTION_SUPERVISOR"
	RoleInstitutionUserManager Role = "INSTITUTION_USER_MANAGER"
	RoleDatasetUploader        Role = "DATASET_UPLOADER"
	RoleDatasetApprover        Role = "DATASET_APPROVER"
	RoleResearchOutputApprover Role = "RESEARCH_OUTPUT_APPROVER"
)

// AllRoles lists every role tag in display order.
var AllRoles = []Role{
	RolePlatformAdmin,
	RoleInstitutionSupervisor,
	RoleInstitutionUserManager,
	RoleDatasetUploader,
	RoleDatasetApprover,
	RoleResearchOutputApprover,
}

// IsKnown reports whether r is one of the fixed role tags.
func (r Role) IsKnown() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// User is the identity record of a platform account.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	RealName      string    `json:"realName,omitempty"`
	InstitutionID string    `json:"institutionId,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// UserAuthorities is the payload of /api/users/me/authorities.
type UserAuthorities struct {
	UserID      string `json:"userId"`
	Authorities []Role `json:"authorities"`
}

// LoginRequest is the body posted to the login endpoint.
type LoginRequest struct {
	Phone    string `json:"phone,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// LoginResponse carries the issued access token and the account it belongs to.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn,omitempty"`
	User      *User  `json:"user,omitempty"`
	Roles     []Role `json:"roles,omitempty"`
}

// RoleAssignmentRequest replaces the role set of a user.
type RoleAssignmentRequest struct {
	Authorities []Role `json:"authorities"`
}

// Identity returns the user id used for list deduplication.
func (u User) Identity() string { return u.ID }
