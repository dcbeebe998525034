package permission

import (
	"testing"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/auth"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
)

func session(id, inst string, roles ...models.Role) *auth.Session {
	return &auth.Session{
		User:  &models.User{ID: id, InstitutionID: inst},
		Roles: auth.NewRoleSet(roles...),
	}
}

func TestHasRoleRequiresUser(t *testing.T) {
	anon := &auth.Session{Roles: auth.NewRoleSet(models.RolePlatformAdmin)}
	if HasRole(anon, models.RolePlatformAdmin) {
		t.Error("HasRole() true without a user")
	}
	if HasRole(nil, models.RolePlatformAdmin) {
		t.Error("HasRole(nil) = true")
	}
	if !HasRole(session("u1", "", models.RolePlatformAdmin), models.RolePlatformAdmin) {
		t.Error("HasRole() false for held role")
	}
}

func TestCanUploadDataset(t *testing.T) {
	tests := []struct {
		name  string
		roles []models.Role
		want  bool
	}{
		{"uploader", []models.Role{models.RoleDatasetUploader}, true},
		{"supervisor", []models.Role{models.RoleInstitutionSupervisor}, true},
		{"admin", []models.Role{models.RolePlatformAdmin}, true},
		{"approver only", []models.Role{models.RoleDatasetApprover}, false},
		{"no roles", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanUploadDataset(session("u1", "A", tt.roles...)); got != tt.want {
				t.Errorf("CanUploadDataset() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanManageApplication(t *testing.T) {
	app := &models.Application{ID: "app1", DatasetInstitutionID: "A", ProviderID: "provider"}

	tests := []struct {
		name string
		s    *auth.Session
		app  *models.Application
		want bool
	}{
		{"approver same institution", session("u1", "A", models.RoleDatasetApprover), app, true},
		{"supervisor same institution", session("u1", "A", models.RoleInstitutionSupervisor), app, true},
		{"approver other institution", session("u1", "B", models.RoleDatasetApprover), app, false},
		{"admin any institution", session("u1", "B", models.RolePlatformAdmin), app, true},
		{"provider without roles", session("provider", "B"), app, true},
		{"uploader same institution", session("u1", "A", models.RoleDatasetUploader), app, false},
		{"empty institutions never match", session("u1", "", models.RoleDatasetApprover),
			&models.Application{ID: "app2"}, false},
		{"signed out", nil, app, false},
		{"nil application", session("u1", "A", models.RolePlatformAdmin), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanManageApplication(tt.s, tt.app); got != tt.want {
				t.Errorf("CanManageApplication() = %v, want %v", got, tt.want)
			}
		})
	}

	// Moving the dataset to another institution revokes an approver's access
	s := session("u1", "A", models.RoleDatasetApprover)
	moved := *app
	moved.DatasetInstitutionID = "B"
	if CanManageApplication(s, &moved) {
		t.Error("approver kept access after institution change")
	}
}

func TestReviewerGates(t *testing.T) {
	approver := session("u1", "A", models.RoleDatasetApprover)
	outputs := session("u2", "A", models.RoleResearchOutputApprover)
	manager := session("u3", "A", models.RoleInstitutionUserManager)

	if !CanReviewDatasets(approver) || CanReviewResearchOutputs(approver) {
		t.Error("dataset approver gates wrong")
	}
	if CanReviewDatasets(outputs) || !CanReviewResearchOutputs(outputs) {
		t.Error("output approver gates wrong")
	}
	if !CanManageInstitutionUsers(manager) || CanManageInstitutionUsers(approver) {
		t.Error("user manager gates wrong")
	}
}

func TestCanAssignRole(t *testing.T) {
	admin := session("a", "", models.RolePlatformAdmin)
	sup := session("s", "A", models.RoleInstitutionSupervisor)
	manager := session("m", "A", models.RoleInstitutionUserManager)

	if !CanAssignRole(admin, models.RoleInstitutionSupervisor) {
		t.Error("admin should assign supervisor")
	}
	if CanAssignRole(sup, models.RolePlatformAdmin) || CanAssignRole(sup, models.RoleInstitutionSupervisor) {
		t.Error("supervisor must not assign admin roles")
	}
	if !CanAssignRole(sup, models.RoleDatasetApprover) {
		t.Error("supervisor should assign operational roles")
	}
	if !CanAssignRole(manager, models.RoleDatasetApprover) || CanAssignRole(manager, models.RolePlatformAdmin) {
		t.Error("user manager should assign operational roles only")
	}
	if CanAssignRole(session("x", "A", models.RoleDatasetApprover), models.RoleDatasetUploader) {
		t.Error("approver cannot assign roles")
	}
	if CanAssignRole(admin, models.Role("ROOT")) {
		t.Error("unknown role assignable")
	}
}

func TestRoleDisplayName(t *testing.T) {
	for _, role := range models.AllRoles {
		label := RoleDisplayName(role)
		if label == string(role) {
			t.Errorf("no label for %s", role)
		}
		back, ok := RoleFromDisplayName(label)
		if !ok || back != role {
			t.Errorf("RoleFromDisplayName(%q) = %s, %v", label, back, ok)
		}
	}

	if got := RoleDisplayName("SOMETHING_NEW"); got != "SOMETHING_NEW" {
		t.Errorf("unknown role = %q, want echo", got)
	}
	if _, ok := RoleFromDisplayName("nobody"); ok {
		t.Error("unknown label resolved")
	}
}

func TestRoleSelectionExclusivity(t *testing.T) {
	sel := NewRoleSelection()
	sel.Select(models.RoleDatasetUploader)
	sel.Select(models.RoleDatasetApprover)
	sel.Select(models.RoleInstitutionSupervisor)

	got := sel.Roles()
	if len(got) != 1 || got[0] != models.RoleInstitutionSupervisor {
		t.Fatalf("Roles() = %v, want [INSTITUTION_SUPERVISOR]", got)
	}

	sel.Select(models.RoleDatasetUploader)
	got = sel.Roles()
	if len(got) != 1 || got[0] != models.RoleDatasetUploader {
		t.Fatalf("Roles() = %v, want [DATASET_UPLOADER]", got)
	}

	sel.Select(models.RolePlatformAdmin)
	sel.Select(models.RoleInstitutionSupervisor)
	got = sel.Roles()
	if len(got) != 1 || got[0] != models.RoleInstitutionSupervisor {
		t.Fatalf("admin roles should replace each other, got %v", got)
	}

	sel.Toggle(models.RoleInstitutionSupervisor)
	if len(sel.Roles()) != 0 {
		t.Errorf("Toggle should deselect, got %v", sel.Roles())
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]models.Role{
		models.RolePlatformAdmin,
		models.RoleDatasetApprover,
		models.RoleDatasetUploader,
		models.RoleDatasetApprover,
	})
	want := []models.Role{models.RoleDatasetApprover, models.RoleDatasetUploader}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Normalize() = %v, want %v", got, want)
	}
}

func TestRoleSelectionZeroValue(t *testing.T) {
	var rs RoleSelection
	if rs.Has(models.RoleDatasetUploader) || len(rs.Roles()) != 0 {
		t.Fatal("zero RoleSelection is not empty")
	}

	rs.Select(models.RoleDatasetUploader)
	rs.Toggle(models.RoleDatasetApprover)
	got := rs.Roles()
	if len(got) != 2 || got[0] != models.RoleDatasetApprover || got[1] != models.RoleDatasetUploader {
		t.Errorf("Roles() = %v", got)
	}

	var other RoleSelection
	other.Deselect(models.RoleDatasetUploader)
	other.Toggle(models.RoleResearchOutputApprover)
	if !other.Has(models.RoleResearchOutputApprover) {
		t.Error("Toggle on zero value did not select")
	}
}
