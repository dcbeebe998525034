package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/auth"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/logging"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/paging"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/pending"
)

type mockReviewAPI struct {
	mock.Mock
}

func (m *mockReviewAPI) ReviewApplication(ctx context.Context, id string, review models.ReviewRequest) error {
	return m.Called(ctx, id, review).Error(0)
}

func (m *mockReviewAPI) ReviewDataset(ctx context.Context, id string, review models.ReviewRequest) error {
	return m.Called(ctx, id, review).Error(0)
}

func (m *mockReviewAPI) ReviewResearchOutput(ctx context.Context, id string, review models.ReviewRequest) error {
	return m.Called(ctx, id, review).Error(0)
}

func (m *mockReviewAPI) AssignRoles(ctx context.Context, userID string, roles []models.Role) error {
	return m.Called(ctx, userID, roles).Error(0)
}

type mockPending struct {
	mock.Mock
}

func (m *mockPending) Refresh(ctx context.Context, cat pending.Category) error {
	return m.Called(ctx, cat).Error(0)
}

func storeWith(id, inst string, roles ...models.Role) *auth.Store {
	st := auth.NewStore(nil)
	st.Set(&auth.Session{
		User:  &models.User{ID: id, InstitutionID: inst},
		Roles: auth.NewRoleSet(roles...),
	})
	return st
}

func TestApproveApplication_RefreshesCountsAndLists(t *testing.T) {
	api := new(mockReviewAPI)
	pend := new(mockPending)
	svc := NewReviewService(api, storeWith("u1", "A", models.RoleDatasetApprover), pend, nil)

	refetched := 0
	svc.RegisterRefetcher(ListApplications, func(context.Context) error { refetched++; return nil })
	svc.RefetchHandler(ListDatasets)(func(context.Context) error { t.Error("datasets list refetched"); return nil })

	app := &models.Application{ID: "app1", DatasetInstitutionID: "A"}
	api.On("ReviewApplication", mock.Anything, "app1", models.ReviewRequest{Approved: true, Comment: "ok"}).Return(nil)
	pend.On("Refresh", mock.Anything, pending.CategoryApplications).Return(nil)

	err := svc.ApproveApplication(context.Background(), app, "ok")

	require.NoError(t, err)
	assert.Equal(t, 1, refetched)
	api.AssertExpectations(t)
	pend.AssertExpectations(t)
}

func TestApproveApplication_ForbiddenSkipsAPI(t *testing.T) {
	api := new(mockReviewAPI)
	svc := NewReviewService(api, storeWith("u1", "B", models.RoleDatasetApprover), nil, nil)

	err := svc.ApproveApplication(context.Background(), &models.Application{ID: "app1", DatasetInstitutionID: "A"}, "")

	assert.ErrorIs(t, err, ErrForbidden)
	api.AssertNotCalled(t, "ReviewApplication", mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectApplication_RequiresReason(t *testing.T) {
	api := new(mockReviewAPI)
	svc := NewReviewService(api, storeWith("admin", "", models.RolePlatformAdmin), nil, nil)

	err := svc.RejectApplication(context.Background(), &models.Application{ID: "app1"}, "  ")

	assert.Error(t, err)
	api.AssertNotCalled(t, "ReviewApplication", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewDataset_APIErrorSkipsRefresh(t *testing.T) {
	api := new(mockReviewAPI)
	pend := new(mockPending)
	svc := NewReviewService(api, storeWith("u1", "A", models.RoleInstitutionSupervisor), pend, nil)

	apiErr := errors.New("409 already reviewed")
	api.On("ReviewDataset", mock.Anything, "d1", models.ReviewRequest{Approved: false, Comment: "missing consent"}).Return(apiErr)

	err := svc.ReviewDataset(context.Background(), "d1", false, "missing consent")

	assert.ErrorIs(t, err, apiErr)
	pend.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestReviewResearchOutput_PendingFailureIsNotFatal(t *testing.T) {
	api := new(mockReviewAPI)
	pend := new(mockPending)
	svc := NewReviewService(api, storeWith("u1", "A", models.RoleResearchOutputApprover), pend, nil)

	api.On("ReviewResearchOutput", mock.Anything, "o1", mock.Anything).Return(nil)
	pend.On("Refresh", mock.Anything, pending.CategoryResearchOutputs).Return(errors.New("timeout"))

	err := svc.ReviewResearchOutput(context.Background(), "o1", true, "")

	assert.NoError(t, err)
	pend.AssertExpectations(t)

	uploader := NewReviewService(api, storeWith("u2", "A", models.RoleDatasetUploader), pend, nil)
	assert.ErrorIs(t, uploader.ReviewResearchOutput(context.Background(), "o1", true, ""), ErrForbidden)
}

func TestAssignRoles_NormalizesAndGates(t *testing.T) {
	api := new(mockReviewAPI)
	svc := NewReviewService(api, storeWith("s1", "A", models.RoleInstitutionSupervisor), nil, nil)

	want := []models.Role{models.RoleDatasetApprover, models.RoleDatasetUploader}
	api.On("AssignRoles", mock.Anything, "u9", want).Return(nil)

	got, err := svc.AssignRoles(context.Background(), "u9", []models.Role{
		models.RoleInstitutionSupervisor,
		models.RoleDatasetUploader,
		models.RoleDatasetApprover,
	})

	require.NoError(t, err)
	assert.Equal(t, want, got)
	api.AssertExpectations(t)

	_, err = svc.AssignRoles(context.Background(), "u9", []models.Role{models.RolePlatformAdmin})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.AssignRoles(context.Background(), "u9", []models.Role{"ROOT"})
	assert.Error(t, err)
}

func TestAssignRoles_SignedOut(t *testing.T) {
	api := new(mockReviewAPI)
	svc := NewReviewService(api, auth.NewStore(nil), nil, nil)

	_, err := svc.AssignRoles(context.Background(), "u9", []models.Role{models.RoleDatasetUploader})

	assert.ErrorIs(t, err, ErrForbidden)
	api.AssertNotCalled(t, "AssignRoles", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefetchers_ClosedEngineIsDroppedQuietly(t *testing.T) {
	api := new(mockReviewAPI)
	var logs bytes.Buffer
	svc := NewReviewService(api, storeWith("u1", "A", models.RoleDatasetApprover), nil, logging.NewWithWriter(&logs))

	fetches := 0
	engine := paging.NewIncremental(func(context.Context, int, int) (*models.Page[models.Dataset], error) {
		fetches++
		return &models.Page[models.Dataset]{}, nil
	}, paging.WithRefetchHandler(svc.RefetchHandler(ListDatasets)))
	require.Equal(t, 1, svc.RefetcherCount(ListDatasets))
	engine.Close()

	api.On("ReviewDataset", mock.Anything, "d1", mock.Anything).Return(nil)

	require.NoError(t, svc.ReviewDataset(context.Background(), "d1", true, ""))
	assert.Equal(t, 0, svc.RefetcherCount(ListDatasets))
	assert.Zero(t, fetches)
	assert.NotContains(t, logs.String(), "List refetch after review failed")

	require.NoError(t, svc.ReviewDataset(context.Background(), "d1", true, ""))
	assert.Zero(t, fetches)
}

func TestRefetchers_Unregister(t *testing.T) {
	api := new(mockReviewAPI)
	svc := NewReviewService(api, storeWith("u1", "A", models.RoleDatasetApprover), nil, nil)

	calls := 0
	unregister := svc.RegisterRefetcher(ListDatasets, func(context.Context) error { calls++; return nil })
	keep := svc.RegisterRefetcher(ListDatasets, func(context.Context) error { calls += 10; return nil })
	defer keep()
	unregister()
	unregister()

	api.On("ReviewDataset", mock.Anything, "d1", mock.Anything).Return(nil)
	require.NoError(t, svc.ReviewDataset(context.Background(), "d1", true, ""))

	assert.Equal(t, 10, calls)
	assert.Equal(t, 1, svc.RefetcherCount(ListDatasets))
}
