// Package services provides frontend-agnostic business logic for Nabotix.
// This layer sits between the CLI and the API client: it checks permissions,
// performs the call, and refreshes whatever the mutation made stale.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/auth"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/logging"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/paging"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/pending"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/permission"
)

// ErrForbidden is returned before any API call when the session lacks permission.
var ErrForbidden = errors.New("permission denied")

// List names used with RegisterRefetcher.
const (
	ListApplications    = "applications"
	ListDatasets        = "datasets"
	ListResearchOutputs = "research-outputs"
	ListUsers           = "users"
)

// ReviewAPI is the part of the API client the review service calls.
type ReviewAPI interface {
	ReviewApplication(ctx context.Context, id string, review models.ReviewRequest) error
	ReviewDataset(ctx context.Context, id string, review models.ReviewRequest) error
	ReviewResearchOutput(ctx context.Context, id string, review models.ReviewRequest) error
	AssignRoles(ctx context.Context, userID string, roles []models.Role) error
}

// PendingRefresher refreshes one pending-count category.
type PendingRefresher interface {
	Refresh(ctx context.Context, cat pending.Category) error
}

// ReviewService runs review and role-assignment actions.
type ReviewService struct {
	api      ReviewAPI
	sessions auth.Provider
	pending  PendingRefresher
	logger   *logging.Logger

	mu         sync.RWMutex
	nextID     uint64
	refetchers map[string][]refetcherEntry
}

type refetcherEntry struct {
	id uint64
	fn paging.Refetcher
}

// NewReviewService creates a review service. pending may be nil.
func NewReviewService(api ReviewAPI, sessions auth.Provider, pending PendingRefresher, logger *logging.Logger) *ReviewService {
	return &ReviewService{
		api:        api,
		sessions:   sessions,
		pending:    pending,
		logger:     logging.OrNop(logger).Named("review"),
		refetchers: make(map[string][]refetcherEntry),
	}
}

// RegisterRefetcher makes r run after any action that changes list and
// returns a func that unregisters it. A refetcher whose engine reports
// paging.ErrClosed is unregistered on its next run.
func (s *ReviewService) RegisterRefetcher(list string, r paging.Refetcher) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.refetchers[list] = append(s.refetchers[list], refetcherEntry{id: id, fn: r})
	return func() { s.unregister(list, id) }
}

func (s *ReviewService) unregister(list string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.refetchers[list]
	for i, e := range entries {
		if e.id == id {
			s.refetchers[list] = append(entries[:i:i], entries[i+1:]...)
			if len(s.refetchers[list]) == 0 {
				delete(s.refetchers, list)
			}
			return
		}
	}
}

// RefetcherCount returns the number of refetchers registered for list.
func (s *ReviewService) RefetcherCount(list string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.refetchers[list])
}

// RefetchHandler returns a paging.WithRefetchHandler callback registering under list.
func (s *ReviewService) RefetchHandler(list string) func(paging.Refetcher) {
	return func(r paging.Refetcher) { _ = s.RegisterRefetcher(list, r) }
}

// ApproveApplication approves an access application.
func (s *ReviewService) ApproveApplication(ctx context.Context, app *models.Application, comment string) error {
	return s.reviewApplication(ctx, app, true, comment)
}

// RejectApplication rejects an access application. A reason is required.
func (s *ReviewService) RejectApplication(ctx context.Context, app *models.Application, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("a rejection reason is required")
	}
	return s.reviewApplication(ctx, app, false, reason)
}

func (s *ReviewService) reviewApplication(ctx context.Context, app *models.Application, approved bool, comment string) error {
	if !permission.CanManageApplication(s.sessions.Current(), app) {
		return ErrForbidden
	}
	review := models.ReviewRequest{Approved: approved, Comment: comment}
	if err := s.api.ReviewApplication(ctx, app.ID, review); err != nil {
		return fmt.Errorf("failed to review application %s: %w", app.ID, err)
	}
	s.logger.Info().Str("application", app.ID).Bool("approved", approved).Msg("Application reviewed")
	s.afterMutation(ctx, pending.CategoryApplications, ListApplications)
	return nil
}

// ReviewDataset approves or rejects a dataset.
func (s *ReviewService) ReviewDataset(ctx context.Context, id string, approved bool, comment string) error {
	if !permission.CanReviewDatasets(s.sessions.Current()) {
		return ErrForbidden
	}
	if err := s.api.ReviewDataset(ctx, id, models.ReviewRequest{Approved: approved, Comment: comment}); err != nil {
		return fmt.Errorf("failed to review dataset %s: %w", id, err)
	}
	s.logger.Info().Str("dataset", id).Bool("approved", approved).Msg("Dataset reviewed")
	s.afterMutation(ctx, pending.CategoryDatasets, ListDatasets)
	return nil
}

// ReviewResearchOutput approves or rejects a research output.
func (s *ReviewService) ReviewResearchOutput(ctx context.Context, id string, approved bool, comment string) error {
	if !permission.CanReviewResearchOutputs(s.sessions.Current()) {
		return ErrForbidden
	}
	if err := s.api.ReviewResearchOutput(ctx, id, models.ReviewRequest{Approved: approved, Comment: comment}); err != nil {
		return fmt.Errorf("failed to review research output %s: %w", id, err)
	}
	s.logger.Info().Str("research_output", id).Bool("approved", approved).Msg("Research output reviewed")
	s.afterMutation(ctx, pending.CategoryResearchOutputs, ListResearchOutputs)
	return nil
}

// AssignRoles replaces a user's roles. The roles are normalized so a user is
// never both an administrator and an operational role holder, and every
// resulting role must be assignable by the caller.
func (s *ReviewService) AssignRoles(ctx context.Context, userID string, roles []models.Role) ([]models.Role, error) {
	sess := s.sessions.Current()
	if !permission.CanManageInstitutionUsers(sess) {
		return nil, ErrForbidden
	}

	normalized := permission.Normalize(roles)
	for _, r := range normalized {
		if !r.IsKnown() {
			return nil, fmt.Errorf("unknown role %q", r)
		}
		if !permission.CanAssignRole(sess, r) {
			return nil, fmt.Errorf("%w: cannot assign %s", ErrForbidden, permission.RoleDisplayName(r))
		}
	}

	if err := s.api.AssignRoles(ctx, userID, normalized); err != nil {
		return nil, fmt.Errorf("failed to assign roles to %s: %w", userID, err)
	}
	s.logger.Info().Str("user", userID).Interface("roles", normalized).Msg("Roles assigned")
	s.refetch(ctx, ListUsers)
	return normalized, nil
}

// afterMutation refreshes stale state. Failures are logged; the mutation
// itself already succeeded.
func (s *ReviewService) afterMutation(ctx context.Context, cat pending.Category, list string) {
	if s.pending != nil {
		if err := s.pending.Refresh(ctx, cat); err != nil {
			s.logger.Warn().Err(err).Str("category", string(cat)).Msg("Pending count refresh after review failed")
		}
	}
	s.refetch(ctx, list)
}

func (s *ReviewService) refetch(ctx context.Context, list string) {
	s.mu.RLock()
	entries := append([]refetcherEntry(nil), s.refetchers[list]...)
	s.mu.RUnlock()

	for _, e := range entries {
		err := e.fn(ctx)
		switch {
		case err == nil:
		case errors.Is(err, paging.ErrClosed):
			s.unregister(list, e.id)
		default:
			s.logger.Warn().Err(err).Str("list", list).Msg("List refetch after review failed")
		}
	}
}
