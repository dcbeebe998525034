package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/events"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
)

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestSessionFromToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Username:      "alice",
		InstitutionID: "inst-1",
		Roles:         []string{"ROLE_DATASET_UPLOADER"},
		Authorities:   []string{"DATASET_APPROVER", "DATASET_UPLOADER"},
	})

	s, err := SessionFromToken(tok)
	if err != nil {
		t.Fatalf("SessionFromToken() error = %v", err)
	}
	if s.User.ID != "u1" || s.User.InstitutionID != "inst-1" {
		t.Errorf("User = %+v", s.User)
	}
	if !s.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", s.ExpiresAt, exp)
	}
	if len(s.Roles) != 2 || !s.Roles.Has(models.RoleDatasetUploader) || !s.Roles.Has(models.RoleDatasetApprover) {
		t.Errorf("Roles = %v", s.Roles.Slice())
	}
}

func TestSessionFromTokenRejectsGarbage(t *testing.T) {
	if _, err := SessionFromToken("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
	if _, err := SessionFromToken(signToken(t, &Claims{})); err == nil {
		t.Error("expected error for token without subject")
	}
}

func TestSessionCloneIsDeep(t *testing.T) {
	orig := &Session{
		User:  &models.User{ID: "u1"},
		Roles: NewRoleSet(models.RolePlatformAdmin),
	}
	c := orig.Clone()
	c.User.ID = "changed"
	delete(c.Roles, models.RolePlatformAdmin)

	if orig.User.ID != "u1" || !orig.Roles.Has(models.RolePlatformAdmin) {
		t.Error("Clone shares state with original")
	}
	if (*Session)(nil).Clone() != nil {
		t.Error("nil Clone should be nil")
	}
}

func TestStoreSetClearPublishes(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	ch := bus.Subscribe(events.EventSessionChanged)

	st := NewStore(bus)
	if st.IsAuthenticated() || st.Current() != nil {
		t.Fatal("new store should be signed out")
	}

	st.Set(&Session{User: &models.User{ID: "u1"}, Roles: NewRoleSet(models.RoleDatasetUploader)})
	if !st.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after Set")
	}

	// Mutating a snapshot does not touch the store
	snap := st.Current()
	snap.Roles[models.RolePlatformAdmin] = struct{}{}
	if st.Current().Roles.Has(models.RolePlatformAdmin) {
		t.Error("snapshot mutation leaked into store")
	}

	st.Clear()
	if st.IsAuthenticated() {
		t.Error("IsAuthenticated() = true after Clear")
	}

	first := (<-ch).(*events.SessionEvent)
	second := (<-ch).(*events.SessionEvent)
	if !first.Authenticated || first.UserID != "u1" {
		t.Errorf("login event = %+v", first)
	}
	if second.Authenticated {
		t.Errorf("logout event = %+v", second)
	}
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")

	if _, err := LoadToken(path); !errors.Is(err, ErrNoToken) {
		t.Errorf("LoadToken() on missing file = %v, want ErrNoToken", err)
	}
	if err := SaveToken(path, " abc.def.ghi "); err != nil {
		t.Fatal(err)
	}
	tok, err := LoadToken(path)
	if err != nil || tok != "abc.def.ghi" {
		t.Errorf("LoadToken() = %q, %v", tok, err)
	}
	if err := DeleteToken(path); err != nil {
		t.Fatal(err)
	}
	if err := DeleteToken(path); err != nil {
		t.Errorf("DeleteToken() on missing file = %v", err)
	}
}

type fakeProfile struct {
	user  *models.User
	roles []models.Role
	err   error
}

func (f *fakeProfile) GetCurrentUser(context.Context) (*models.User, error) { return f.user, f.err }
func (f *fakeProfile) GetAuthorities(context.Context) ([]models.Role, error) { return f.roles, f.err }

func TestRestorePrefersServerProfile(t *testing.T) {
	tok := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		Roles:            []string{"PLATFORM_ADMIN"},
	})
	src := &fakeProfile{
		user:  &models.User{ID: "u1", RealName: "Alice"},
		roles: []models.Role{models.RoleDatasetUploader},
	}

	s, err := Restore(context.Background(), src, tok)
	if err != nil {
		t.Fatal(err)
	}
	if s.User.RealName != "Alice" || s.Token != tok {
		t.Errorf("session = %+v", s)
	}
	if s.Roles.Has(models.RolePlatformAdmin) || !s.Roles.Has(models.RoleDatasetUploader) {
		t.Errorf("Roles = %v", s.Roles.Slice())
	}

	src.err = errors.New("401")
	if _, err := Restore(context.Background(), src, "opaque"); err == nil {
		t.Error("expected error when profile fetch fails")
	}
}
