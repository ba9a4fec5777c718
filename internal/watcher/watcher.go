package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/handii-app/volunteer-directory/internal/domain"
	"github.com/handii-app/volunteer-directory/internal/logger"
	"github.com/handii-app/volunteer-directory/internal/storage"
	"github.com/handii-app/volunteer-directory/pkg/publishers"
	"github.com/handii-app/volunteer-directory/pkg/volunteers"
)

const defaultListLimit = 500

// Result summarizes one watch pass.
type Result struct {
	Seen                int  `json:"seen"`
	Total               int  `json:"total"`
	Complete            bool `json:"complete"`
	Added               int  `json:"added"`
	Updated             int  `json:"updated"`
	AvailabilityChanged int  `json:"availability_changed"`
	Removed             int  `json:"removed"`
	Published           int  `json:"published"`
}

// Service diffs the directory against the snapshot store and publishes
// change events.
type Service struct {
	dir   Directory
	hubs  HubMatcher
	pub   EventPublisher
	store storage.Store
	log   logger.Logger
	limit int
	now   func() time.Time
}

// NewService wires a watcher. hubs and pub may be nil.
func NewService(dir Directory, hubs HubMatcher, pub EventPublisher, store storage.Store, log logger.Logger, limit int) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return &Service{
		dir:   dir,
		hubs:  hubs,
		pub:   pub,
		store: store,
		log:   log,
		limit: limit,
		now:   time.Now,
	}
}

// RunOnce executes a single pass. Per-volunteer failures are joined into the
// returned error; the pass still processes every volunteer.
func (s *Service) RunOnce(ctx context.Context) (Result, error) {
	var res Result
	if s == nil || s.dir == nil || s.store == nil {
		return res, fmt.Errorf("watcher service is not initialized")
	}

	health, err := s.dir.Health(ctx)
	if err != nil {
		return res, fmt.Errorf("directory health: %w", err)
	}
	if health.Status != "" && health.Status != "healthy" {
		s.log.WarnObj("directory reports degraded health", "directory_health", health)
	}

	resp, err := s.dir.List(ctx, volunteers.Filter{Limit: s.limit})
	if err != nil {
		return res, fmt.Errorf("list volunteers: %w", err)
	}
	res.Seen = len(resp.Volunteers)
	res.Total = resp.Total
	res.Complete = resp.Complete()

	var errs []error
	seen := make(map[int64]struct{}, len(resp.Volunteers))
	for i := range resp.Volunteers {
		v := resp.Volunteers[i]
		seen[v.ID] = struct{}{}
		if err := s.observe(ctx, v, &res); err != nil {
			errs = append(errs, err)
		}
	}

	if res.Complete {
		if err := s.sweepRemoved(ctx, seen, &res); err != nil {
			errs = append(errs, err)
		}
	} else {
		s.log.DebugObj("listing truncated; skipping removal sweep", "watch_listing", map[string]any{
			"returned": res.Seen,
			"total":    res.Total,
		})
	}

	s.log.InfoObj("watch pass completed", "watch_result", res)
	return res, errors.Join(errs...)
}

func (s *Service) observe(ctx context.Context, v domain.Volunteer, res *Result) error {
	fp, err := fingerprint(v)
	if err != nil {
		return fmt.Errorf("fingerprint volunteer %d: %w", v.ID, err)
	}

	prev, known, err := s.store.Snapshot(ctx, v.ID)
	if err != nil {
		return fmt.Errorf("load snapshot %d: %w", v.ID, err)
	}

	var types []string
	switch {
	case !known:
		types = append(types, publishers.EventVolunteerAdded)
	default:
		if prev.Fingerprint != fp {
			types = append(types, publishers.EventVolunteerUpdated)
		}
		if prev.Available != v.Available {
			types = append(types, publishers.EventVolunteerAvailabilityChanged)
		}
	}

	// The snapshot only advances the parts whose event was delivered, so a
	// failed event is retried next pass without repeating its siblings.
	snap := prev
	if !known {
		snap = storage.Snapshot{ID: v.ID}
	}

	hubIDs := s.matchHubs(v)
	var errs []error
	for _, typ := range types {
		if err := s.publish(ctx, publishers.NewEvent(typ, v.ID, &v, hubIDs), res); err != nil {
			errs = append(errs, err)
			continue
		}
		countEvent(typ, res)
		switch typ {
		case publishers.EventVolunteerAdded:
			snap.Available = v.Available
			snap.UpdatedAt = v.UpdatedAt
			snap.Fingerprint = fp
		case publishers.EventVolunteerUpdated:
			snap.UpdatedAt = v.UpdatedAt
			snap.Fingerprint = fp
		case publishers.EventVolunteerAvailabilityChanged:
			snap.Available = v.Available
		}
	}

	if !known && len(errs) > 0 {
		return errors.Join(errs...)
	}

	snap.SeenAt = s.now().UTC()
	if err := s.store.Save(ctx, snap); err != nil {
		errs = append(errs, fmt.Errorf("save snapshot %d: %w", v.ID, err))
	}
	return errors.Join(errs...)
}

func (s *Service) sweepRemoved(ctx context.Context, seen map[int64]struct{}, res *Result) error {
	known, err := s.store.Known(ctx)
	if err != nil {
		return fmt.Errorf("list known volunteers: %w", err)
	}

	var errs []error
	for _, id := range known {
		if _, ok := seen[id]; ok {
			continue
		}
		if err := s.publish(ctx, publishers.NewEvent(publishers.EventVolunteerRemoved, id, nil, nil), res); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.store.Forget(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("forget volunteer %d: %w", id, err))
			continue
		}
		res.Removed++
	}
	return errors.Join(errs...)
}

// publish fails only when no sink accepted the event, so the change is
// retried on the next pass. Partial failures are logged.
func (s *Service) publish(ctx context.Context, evt publishers.Event, res *Result) error {
	if s.pub == nil {
		return nil
	}
	delivered, err := s.pub.Publish(ctx, evt)
	if delivered > 0 {
		res.Published++
	}
	if err == nil {
		return nil
	}
	if delivered == 0 {
		return fmt.Errorf("publish %s for volunteer %d: %w", evt.Type, evt.VolunteerID, err)
	}
	s.log.WarnObj("event partially delivered", "publish_error", map[string]any{
		"event_id":     evt.ID,
		"event_type":   evt.Type,
		"volunteer_id": evt.VolunteerID,
		"delivered":    delivered,
		"error":        err.Error(),
	})
	return nil
}

func (s *Service) matchHubs(v domain.Volunteer) []string {
	if s.hubs == nil {
		return nil
	}
	return s.hubs.MatchingIDs(v)
}

func countEvent(typ string, res *Result) {
	switch typ {
	case publishers.EventVolunteerAdded:
		res.Added++
	case publishers.EventVolunteerUpdated:
		res.Updated++
	case publishers.EventVolunteerAvailabilityChanged:
		res.AvailabilityChanged++
	}
}
