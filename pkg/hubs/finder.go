package hubs

import (
	"context"
	"errors"
	"fmt"

	"github.com/handii-app/volunteer-directory/internal/domain"
)

// SkillSearcher is the directory capability the finder needs.
type SkillSearcher interface {
	SearchBySkill(ctx context.Context, skill string, limit int) (domain.VolunteersResponse, error)
}

// Finder lists the volunteers serving a hub.
type Finder struct {
	dir SkillSearcher
}

func NewFinder(dir SkillSearcher) *Finder {
	return &Finder{dir: dir}
}

// Volunteers searches every hub skill and merges the results by id, keeping
// first-seen order and capping at limit. Failed skills are joined into the
// returned error alongside whatever was found.
func (f *Finder) Volunteers(ctx context.Context, hub Hub, limit int) ([]domain.Volunteer, error) {
	if f == nil || f.dir == nil {
		return nil, errors.New("hub finder is not initialized")
	}

	var (
		out  []domain.Volunteer
		errs []error
		seen = make(map[int64]struct{})
	)
	for _, skill := range hub.Skills {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		resp, err := f.dir.SearchBySkill(ctx, skill, limit)
		if err != nil {
			errs = append(errs, fmt.Errorf("hub %s skill %q: %w", hub.ID, skill, err))
			continue
		}
		for _, v := range resp.Volunteers {
			if _, dup := seen[v.ID]; dup {
				continue
			}
			seen[v.ID] = struct{}{}
			out = append(out, v)
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, errors.Join(errs...)
}
