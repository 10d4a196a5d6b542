package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/transitpulse/transit-assistant-backend/internal/models"
)

// DelayReportStore implements repository.DelayReportStore
type DelayReportStore struct {
	s *Store
}

func (d *DelayReportStore) Create(ctx context.Context, report *models.DelayReport) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	if _, ok := d.s.delays[report.ID]; ok {
		return models.ErrDuplicateKey
	}
	d.s.delays[report.ID] = copyReport(report)
	return nil
}

func (d *DelayReportStore) GetByID(ctx context.Context, id uuid.UUID) (*models.DelayReport, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	report, ok := d.s.delays[id]
	if !ok {
		return nil, models.ErrNoRecord
	}
	return copyReport(report), nil
}

func (d *DelayReportStore) List(ctx context.Context, filter models.DelayFilter) ([]models.DelayReport, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	out := []models.DelayReport{}
	for _, report := range d.s.delays {
		if filter.RouteID != nil && report.RouteID != *filter.RouteID {
			continue
		}
		if filter.Status != "" && report.Status != filter.Status {
			continue
		}
		out = append(out, *copyReport(report))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (d *DelayReportStore) ToggleVote(ctx context.Context, id, userID uuid.UUID, direction models.VoteDirection) (*models.VoteResult, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	report, ok := d.s.delays[id]
	if !ok {
		return nil, models.ErrNoRecord
	}

	own, other := &report.Upvotes, &report.Downvotes
	if direction == models.VoteDown {
		own, other = &report.Downvotes, &report.Upvotes
	}

	voted := false
	if own.Contains(userID) {
		*own = own.Without(userID)
	} else {
		*own = append(*own, userID)
		*other = other.Without(userID)
		voted = true
	}
	report.UpdatedAt = time.Now()

	return &models.VoteResult{
		Upvotes:   len(report.Upvotes),
		Downvotes: len(report.Downvotes),
		Voted:     voted,
	}, nil
}

func (d *DelayReportStore) ApplyStatusChange(ctx context.Context, id uuid.UUID, change models.StatusChange) (*models.DelayReport, bool, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	report, ok := d.s.delays[id]
	if !ok {
		return nil, false, models.ErrNoRecord
	}

	allowed := false
	for _, s := range change.From {
		if report.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, false, nil
	}

	at := change.At
	report.Status = change.To
	switch change.To {
	case models.DelayVerified:
		if change.VerifiedBy != nil {
			by := *change.VerifiedBy
			report.VerifiedBy = &by
		}
		report.VerifiedAt = &at
	case models.DelayResolved:
		report.ResolvedAt = &at
	}
	report.UpdatedAt = at

	return copyReport(report), true, nil
}

func (d *DelayReportStore) CountByStatus(ctx context.Context, status models.DelayStatus) (int, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	n := 0
	for _, report := range d.s.delays {
		if report.Status == status {
			n++
		}
	}
	return n, nil
}

func (d *DelayReportStore) WeekdayStats(ctx context.Context, since *time.Time) ([]models.WeekdayDelayStat, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	var byDay [7]models.WeekdayDelayStat
	for _, report := range d.s.delays {
		if since != nil && report.CreatedAt.Before(*since) {
			continue
		}
		day := report.CreatedAt.UTC().Weekday()
		byDay[day].Count++
		byDay[day].TotalMinutes += report.DelayMinutes
	}

	out := []models.WeekdayDelayStat{}
	for day, stat := range byDay {
		if stat.Count == 0 {
			continue
		}
		stat.Weekday = time.Weekday(day)
		out = append(out, stat)
	}
	return out, nil
}

func (d *DelayReportStore) TopDelayedRoutes(ctx context.Context, since *time.Time, limit int) ([]models.RouteCount, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	counts := map[uuid.UUID]int{}
	for _, report := range d.s.delays {
		if since != nil && report.CreatedAt.Before(*since) {
			continue
		}
		counts[report.RouteID]++
	}
	return d.s.rankRoutes(counts, limit), nil
}

// rankRoutes joins route names onto counts and keeps the top limit.
// Counts for routes that no longer exist are dropped. Must be called with the lock held.
func (s *Store) rankRoutes(counts map[uuid.UUID]int, limit int) []models.RouteCount {
	out := make([]models.RouteCount, 0, len(counts))
	for id, n := range counts {
		route, ok := s.routes[id]
		if !ok {
			continue
		}
		out = append(out, models.RouteCount{
			RouteID:     id,
			RouteNumber: route.RouteNumber,
			Name:        route.Name,
			Count:       n,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].RouteNumber < out[j].RouteNumber
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
