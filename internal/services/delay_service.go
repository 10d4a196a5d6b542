package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
	"github.com/transitpulse/transit-assistant-backend/internal/repository"
)

const (
	DefaultDelayLimit = 50
	MaxDelayLimit     = 200
)

// DelayListQuery holds the parsed query of GET /api/delays
type DelayListQuery struct {
	RouteID string
	Status  string
	Limit   int
}

// DelayService handles crowd-sourced delay reports and their moderation
type DelayService struct {
	delays repository.DelayReportStore
	routes repository.RouteStore
	users  repository.UserStore
	logger *logrus.Logger
}

// NewDelayService creates a new DelayService
func NewDelayService(
	delays repository.DelayReportStore,
	routes repository.RouteStore,
	users repository.UserStore,
	logger *logrus.Logger,
) *DelayService {
	return &DelayService{
		delays: delays,
		routes: routes,
		users:  users,
		logger: logger,
	}
}

// Report stores a new pending delay report. reporter is nil for anonymous reports.
func (s *DelayService) Report(ctx context.Context, req models.ReportDelayRequest, reporter *uuid.UUID) (*models.DelayReportView, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	routeID, err := parseResourceID(req.RouteID, "route")
	if err != nil {
		return nil, err
	}
	route, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		return nil, storeError(err, "route", "get route")
	}

	reason := models.DelayReason(req.Reason)
	if reason == "" {
		reason = models.ReasonOther
	}
	direction := req.AffectedDirection
	if direction == "" {
		direction = "both"
	}

	now := time.Now().UTC()
	report := &models.DelayReport{
		ID:                uuid.New(),
		RouteID:           route.ID,
		ReportedBy:        reporter,
		DelayMinutes:      req.DelayMinutes,
		Reason:            reason,
		Description:       strings.TrimSpace(req.Description),
		Location:          req.Location,
		StopName:          strings.TrimSpace(req.StopName),
		AffectedDirection: direction,
		Upvotes:           models.UUIDSet{},
		Downvotes:         models.UUIDSet{},
		Status:            models.DelayPending,
		Severity:          models.SeverityFor(req.DelayMinutes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.delays.Create(ctx, report); err != nil {
		return nil, storeError(err, "delay report", "create delay report")
	}

	s.logger.WithFields(logrus.Fields{
		"report_id":     report.ID,
		"route_id":      route.ID,
		"delay_minutes": report.DelayMinutes,
		"severity":      report.Severity,
	}).Info("Delay reported")

	views, err := s.views(ctx, []models.DelayReport{*report})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns reports newest first with route and reporter summaries
func (s *DelayService) List(ctx context.Context, q DelayListQuery) ([]models.DelayReportView, error) {
	filter := models.DelayFilter{
		Limit: clampLimit(q.Limit, DefaultDelayLimit, MaxDelayLimit),
	}

	if raw := strings.TrimSpace(q.RouteID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, models.ErrBadRequest("routeId must be a valid UUID")
		}
		filter.RouteID = &id
	}
	if raw := strings.TrimSpace(q.Status); raw != "" {
		status := models.DelayStatus(raw)
		if !status.Valid() {
			return nil, models.ErrBadRequest("unknown status %q", raw)
		}
		filter.Status = status
	}

	reports, err := s.delays.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "delay report", "list delay reports")
	}

	return s.views(ctx, reports)
}

// Get returns one report with its summaries
func (s *DelayService) Get(ctx context.Context, rawID string) (*models.DelayReportView, error) {
	id, err := parseResourceID(rawID, "delay report")
	if err != nil {
		return nil, err
	}

	report, err := s.delays.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "delay report", "get delay report")
	}

	views, err := s.views(ctx, []models.DelayReport{*report})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Vote toggles the user's vote in the given direction. The authenticated user
// wins over bodyUserID.
func (s *DelayService) Vote(ctx context.Context, rawID string, tokenUser *uuid.UUID, bodyUserID string, direction models.VoteDirection) (*models.VoteResult, error) {
	id, err := parseResourceID(rawID, "delay report")
	if err != nil {
		return nil, err
	}

	var userID uuid.UUID
	switch {
	case tokenUser != nil:
		userID = *tokenUser
	case strings.TrimSpace(bodyUserID) != "":
		userID, err = uuid.Parse(strings.TrimSpace(bodyUserID))
		if err != nil {
			return nil, models.ErrBadRequest("userId must be a valid UUID")
		}
	default:
		return nil, models.ErrBadRequest("user id is required")
	}

	result, err := s.delays.ToggleVote(ctx, id, userID, direction)
	if err != nil {
		return nil, storeError(err, "delay report", "toggle vote")
	}

	s.logger.WithFields(logrus.Fields{
		"report_id": id,
		"user_id":   userID,
		"direction": direction,
		"voted":     result.Voted,
	}).Debug("Delay report vote toggled")

	return result, nil
}

// Moderate applies an admin action to a report
func (s *DelayService) Moderate(ctx context.Context, rawID string, action models.DelayAction, adminID *uuid.UUID) (*models.DelayReportView, error) {
	id, err := parseResourceID(rawID, "delay report")
	if err != nil {
		return nil, err
	}

	from, to, ok := action.Transition()
	if !ok {
		return nil, models.ErrBadRequest("unknown action %q", action)
	}

	change := models.StatusChange{
		From: from,
		To:   to,
		At:   time.Now().UTC(),
	}
	if action == models.ActionVerify {
		change.VerifiedBy = adminID
	}

	report, applied, err := s.delays.ApplyStatusChange(ctx, id, change)
	if err != nil {
		return nil, storeError(err, "delay report", "update delay report status")
	}
	if !applied {
		current, err := s.delays.GetByID(ctx, id)
		if err != nil {
			return nil, storeError(err, "delay report", "get delay report")
		}
		if models.CanTransition(current.Status, to) {
			return nil, models.ErrConflict("delay report was modified concurrently, retry")
		}
		return nil, models.ErrInvalidTransition(current.Status, action)
	}

	s.logger.WithFields(logrus.Fields{
		"report_id": id,
		"action":    action,
		"status":    report.Status,
	}).Info("Delay report moderated")

	views, err := s.views(ctx, []models.DelayReport{*report})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Verify moves a pending report to verified
func (s *DelayService) Verify(ctx context.Context, rawID string, adminID *uuid.UUID) (*models.DelayReportView, error) {
	return s.Moderate(ctx, rawID, models.ActionVerify, adminID)
}

// Resolve moves a verified report to resolved
func (s *DelayService) Resolve(ctx context.Context, rawID string) (*models.DelayReportView, error) {
	return s.Moderate(ctx, rawID, models.ActionResolve, nil)
}

// Reject marks a pending or verified report as a false report
func (s *DelayService) Reject(ctx context.Context, rawID string) (*models.DelayReportView, error) {
	return s.Moderate(ctx, rawID, models.ActionReject, nil)
}

// BulkAction applies one action to many reports independently. Only a
// malformed request fails as a whole; per-report failures are listed.
func (s *DelayService) BulkAction(ctx context.Context, req models.BulkActionRequest, adminID *uuid.UUID) (*models.BulkActionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	action := models.DelayAction(req.Action)
	resp := &models.BulkActionResponse{
		Action:  action,
		Results: make([]models.BulkActionResult, 0, len(req.ReportIDs)),
	}

	for _, rawID := range req.ReportIDs {
		result := models.BulkActionResult{ID: rawID}

		view, err := s.Moderate(ctx, rawID, action, adminID)
		if err != nil {
			if !isDomainError(err) {
				s.logger.WithError(err).WithField("report_id", rawID).Error("Bulk action failed")
				result.Error = "internal error"
			} else {
				result.Error = err.Error()
			}
			resp.Failed++
		} else {
			result.Success = true
			result.Status = view.Status
			resp.Succeeded++
		}

		resp.Results = append(resp.Results, result)
	}

	s.logger.WithFields(logrus.Fields{
		"action":    action,
		"succeeded": resp.Succeeded,
		"failed":    resp.Failed,
	}).Info("Bulk delay action completed")

	return resp, nil
}

// views joins route and reporter summaries onto reports
func (s *DelayService) views(ctx context.Context, reports []models.DelayReport) ([]models.DelayReportView, error) {
	routeIDs := make([]uuid.UUID, 0, len(reports))
	userIDs := make([]uuid.UUID, 0, len(reports))
	for _, r := range reports {
		routeIDs = append(routeIDs, r.RouteID)
		if r.ReportedBy != nil {
			userIDs = append(userIDs, *r.ReportedBy)
		}
	}

	routes, err := s.routes.GetSummaries(ctx, uniqueIDs(routeIDs))
	if err != nil {
		return nil, storeError(err, "route", "load route summaries")
	}
	users := map[uuid.UUID]models.UserSummary{}
	if len(userIDs) > 0 {
		users, err = s.users.GetSummaries(ctx, uniqueIDs(userIDs))
		if err != nil {
			return nil, storeError(err, "user", "load reporter summaries")
		}
	}

	views := make([]models.DelayReportView, 0, len(reports))
	for _, r := range reports {
		var route *models.RouteSummary
		if summary, ok := routes[r.RouteID]; ok {
			route = &summary
		}
		var reporter *models.UserSummary
		if r.ReportedBy != nil {
			if summary, ok := users[*r.ReportedBy]; ok {
				reporter = &summary
			}
		}
		views = append(views, models.NewDelayReportView(r, route, reporter))
	}
	return views, nil
}

// isDomainError reports whether err is one of the typed request errors
func isDomainError(err error) bool {
	var (
		verr     *models.ValidationError
		badReq   *models.BadRequestError
		notFound *models.NotFoundError
		conflict *models.ConflictError
		unauth   *models.UnauthorizedError
	)
	return errors.As(err, &verr) ||
		errors.As(err, &badReq) ||
		errors.As(err, &notFound) ||
		errors.As(err, &conflict) ||
		errors.As(err, &unauth)
}
