package permission

import (
	"sort"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
)

var displayNames = []struct {
	role  models.Role
	label string
}{
	{models.RolePlatformAdmin, "平台管理员"},
	{models.RoleInstitutionSupervisor, "机构管理员"},
	{models.RoleInstitutionUserManager, "机构用户管理员"},
	{models.RoleDatasetUploader, "数据集提供者"},
	{models.RoleDatasetApprover, "数据集审核员"},
	{models.RoleResearchOutputApprover, "研究成果审核员"},
}

var (
	roleToLabel = make(map[models.Role]string, len(displayNames))
	labelToRole = make(map[string]models.Role, len(displayNames))
)

func init() {
	for _, d := range displayNames {
		roleToLabel[d.role] = d.label
		labelToRole[d.label] = d.role
	}
}

// RoleDisplayName returns the localized label for role.
// Unknown roles are returned unchanged.
func RoleDisplayName(role models.Role) string {
	if label, ok := roleToLabel[role]; ok {
		return label
	}
	return string(role)
}

// RoleFromDisplayName is the reverse of RoleDisplayName.
func RoleFromDisplayName(label string) (models.Role, bool) {
	r, ok := labelToRole[label]
	return r, ok
}

// IsAdminRole reports whether role is one of the mutually exclusive administrator roles.
func IsAdminRole(role models.Role) bool {
	return role == models.RolePlatformAdmin || role == models.RoleInstitutionSupervisor
}

// RoleSelection is the role set being edited in an authority form.
// A user is either an administrator (exactly one admin role) or holds
// one or more operational roles, never both.
type RoleSelection struct {
	selected map[models.Role]struct{}
}

// NewRoleSelection starts a selection from roles, applying Select in order.
func NewRoleSelection(roles ...models.Role) *RoleSelection {
	rs := &RoleSelection{selected: make(map[models.Role]struct{})}
	for _, r := range roles {
		rs.Select(r)
	}
	return rs
}

// Select adds role, enforcing admin exclusivity. The zero RoleSelection is empty and ready to use.
func (rs *RoleSelection) Select(role models.Role) {
	if IsAdminRole(role) {
		rs.selected = map[models.Role]struct{}{role: {}}
		return
	}
	if rs.selected == nil {
		rs.selected = make(map[models.Role]struct{})
	}
	for r := range rs.selected {
		if IsAdminRole(r) {
			delete(rs.selected, r)
		}
	}
	rs.selected[role] = struct{}{}
}

// Deselect removes role if present.
func (rs *RoleSelection) Deselect(role models.Role) {
	delete(rs.selected, role)
}

// Toggle selects role if absent and deselects it otherwise.
func (rs *RoleSelection) Toggle(role models.Role) {
	if rs.Has(role) {
		rs.Deselect(role)
		return
	}
	rs.Select(role)
}

// Has reports whether role is selected.
func (rs *RoleSelection) Has(role models.Role) bool {
	_, ok := rs.selected[role]
	return ok
}

// Roles returns the selection sorted by name.
func (rs *RoleSelection) Roles() []models.Role {
	out := make([]models.Role, 0, len(rs.selected))
	for r := range rs.selected {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Normalize applies the exclusivity rule to roles as if each were selected in order.
func Normalize(roles []models.Role) []models.Role {
	return NewRoleSelection(roles...).Roles()
}
