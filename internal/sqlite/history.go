package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/folio/internal/domain/activity"
)

// history is the live log and the archive as one relation. A row lives in
// exactly one of the two tables, and seq is never reused, so (end_time, seq)
// orders the union the same way it orders each table.
const history = `(
	SELECT seq, doc, end_time, object_id FROM activities
	UNION ALL
	SELECT seq, doc, end_time, object_id FROM activities_archive
) AS history`

// HistoryRepository reads the live log and the archive together. Every read
// is a single statement, so it observes both tables at the same instant even
// while a rotation moves rows from one to the other.
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Count returns the number of activities across both tables.
func (r *HistoryRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM activities) + (SELECT COUNT(*) FROM activities_archive)").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// AllByTime returns every known activity, oldest first.
func (r *HistoryRepository) AllByTime(ctx context.Context) ([]activity.Activity, error) {
	list, err := queryActivities(ctx, r.db, "SELECT "+selectColumns+" FROM "+history+timeOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return list, nil
}

// AllByObject returns the full history of one object, oldest first.
func (r *HistoryRepository) AllByObject(ctx context.Context, objectID string) ([]activity.Activity, error) {
	list, err := queryActivities(ctx, r.db,
		"SELECT "+selectColumns+" FROM "+history+" WHERE object_id = ?"+timeOrder, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list object history: %w", err)
	}
	return list, nil
}

// Newest returns the most recent activity in either table, or nil when both
// are empty.
func (r *HistoryRepository) Newest(ctx context.Context) (*activity.Activity, error) {
	list, err := queryActivities(ctx, r.db,
		"SELECT "+selectColumns+" FROM "+history+" ORDER BY end_time DESC, seq DESC LIMIT 1")
	if err != nil {
		return nil, fmt.Errorf("failed to read newest activity: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// Split reports how many activities each table holds and the time range of
// the archive.
func (r *HistoryRepository) Split(ctx context.Context) (activity.StoreSplit, error) {
	var split activity.StoreSplit
	var oldest, newest sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM activities),
			(SELECT COUNT(*) FROM activities_archive),
			(SELECT doc FROM activities_archive ORDER BY end_time ASC, seq ASC LIMIT 1),
			(SELECT doc FROM activities_archive ORDER BY end_time DESC, seq DESC LIMIT 1)`,
	).Scan(&split.Live, &split.Archived, &oldest, &newest)
	if err != nil {
		return activity.StoreSplit{}, fmt.Errorf("failed to read store split: %w", err)
	}

	if split.OldestArchived, err = endTimeOf(oldest); err != nil {
		return activity.StoreSplit{}, err
	}
	if split.NewestArchived, err = endTimeOf(newest); err != nil {
		return activity.StoreSplit{}, err
	}
	return split, nil
}

func endTimeOf(doc sql.NullString) (string, error) {
	if !doc.Valid {
		return "", nil
	}
	a, err := decodeActivity(doc.String)
	if err != nil {
		return "", err
	}
	return a.EndTime, nil
}
