package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/folio/internal/repository"
)

// GetActivity looks an activity up in the live log, then the archive.
func (s *Service) GetActivity(ctx context.Context, id string) (*Activity, error) {
	a, err := s.store.Get(ctx, id)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("getting activity: %w", err)
	}
	a, err = s.archive.Get(ctx, id)
	if err == nil {
		return a, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrActivityNotFound
	}
	return nil, fmt.Errorf("getting archived activity: %w", err)
}

// GetRecentActivities returns the newest live activities first.
func (s *Service) GetRecentActivities(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.store.Recent(ctx, limit)
}

// GetActivitiesSince returns live activities whose endTime is strictly after t.
func (s *Service) GetActivitiesSince(ctx context.Context, t string) ([]Activity, error) {
	return s.store.Since(ctx, t)
}

// GetActivitiesByType returns live activities of one type in time order.
func (s *Service) GetActivitiesByType(ctx context.Context, t Type) ([]Activity, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, t)
	}
	return s.store.AllByType(ctx, t)
}

// GetActivitiesForObject returns the live history of one object.
func (s *Service) GetActivitiesForObject(ctx context.Context, objectID string) ([]Activity, error) {
	return s.store.AllByObject(ctx, objectID)
}

// GetArchivedActivitiesForObject returns the archived history of one object.
func (s *Service) GetArchivedActivitiesForObject(ctx context.Context, objectID string) ([]Activity, error) {
	return s.archive.AllByObject(ctx, objectID)
}

// GetAllActivitiesForObject returns the full history of one object across
// the live log and the archive, ordered by time.
func (s *Service) GetAllActivitiesForObject(ctx context.Context, objectID string) ([]Activity, error) {
	all, err := s.history.AllByObject(ctx, objectID)
	if err != nil {
		return nil, fmt.Errorf("loading object history: %w", err)
	}
	return all, nil
}

// ExportAll returns every known activity, archived and live, in time order.
// It is the payload another device feeds to its importer.
func (s *Service) ExportAll(ctx context.Context) ([]Activity, error) {
	all, err := s.history.AllByTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting activities: %w", err)
	}
	return all, nil
}

// GetStats summarizes the live log.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	all, err := s.store.AllByTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}

	stats := &Stats{
		Total:  len(all),
		ByType: make(map[string]int, len(Types)),
	}
	for _, t := range Types {
		stats.ByType[string(t)] = 0
	}
	for _, a := range all {
		stats.ByType[string(a.Type)]++
	}
	if len(all) > 0 {
		stats.Oldest = all[0].EndTime
		stats.Newest = all[len(all)-1].EndTime
	}
	return stats, nil
}

// GetArchiveStats reports how the history is split between live and archive.
func (s *Service) GetArchiveStats(ctx context.Context) (*ArchiveStats, error) {
	split, err := s.history.Split(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading archive stats: %w", err)
	}
	return &ArchiveStats{
		MainCount:      split.Live,
		ArchiveCount:   split.Archived,
		TotalCount:     split.Live + split.Archived,
		MaxEntries:     s.maxEntries,
		RetentionCount: s.retentionCount,
		OldestArchived: split.OldestArchived,
		NewestArchived: split.NewestArchived,
	}, nil
}

// ClearAll deletes every activity from both stores. It is an explicit
// maintenance operation outside the normal write path.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing activity log: %w", err)
	}
	if err := s.archive.Clear(ctx); err != nil {
		return fmt.Errorf("clearing activity archive: %w", err)
	}
	s.logger.Warn("activity log cleared")
	return nil
}
