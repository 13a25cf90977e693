package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/rpggio/folio/internal/repository"
)

const (
	activitiesTable = "activities"
	archiveTable    = "activities_archive"

	selectColumns  = "seq, doc"
	timeOrder      = " ORDER BY end_time ASC, seq ASC"
	insertActivity = "INSERT INTO activities (id, type, end_time, object_id, object_type, doc) "
)

// collection holds the read queries shared by the live and archive tables.
type collection struct {
	db    *DB
	table string
}

func (c collection) get(ctx context.Context, id string) (*activity.Activity, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM "+c.table+" WHERE id = ?", id)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return a, nil
}

func (c collection) count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", c.table, err)
	}
	return n, nil
}

func (c collection) list(ctx context.Context, where, order string, args ...any) ([]activity.Activity, error) {
	query := "SELECT " + selectColumns + " FROM " + c.table
	if where != "" {
		query += " WHERE " + where
	}
	query += order

	activities, err := queryActivities(ctx, c.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.table, err)
	}
	return activities, nil
}

func (c collection) newest(ctx context.Context) (*activity.Activity, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM "+c.table+" ORDER BY end_time DESC, seq DESC LIMIT 1")
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read newest activity: %w", err)
	}
	return a, nil
}

func (c collection) clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM "+c.table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", c.table, err)
	}
	return nil
}

// ActivityRepository is the live, size-bounded activity log.
type ActivityRepository struct {
	collection
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{collection{db: db, table: activitiesTable}}
}

// Put inserts a new activity. An id that is already stored yields
// repository.ErrConflict.
func (r *ActivityRepository) Put(ctx context.Context, a *activity.Activity) error {
	inserted, err := r.insert(ctx, a, insertActivity+"VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	if !inserted {
		return repository.ErrConflict
	}
	return nil
}

// ImportIfUnknown inserts a only when its id is in neither the live log nor
// the archive, and reports whether a row was written. The archive check and
// the insert are one statement, so a concurrent rotation cannot move the id
// between them. An existing row is never touched.
func (r *ActivityRepository) ImportIfUnknown(ctx context.Context, a *activity.Activity) (bool, error) {
	return r.insert(ctx, a, insertActivity+`SELECT ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM activities_archive WHERE id = ?)
		ON CONFLICT(id) DO NOTHING`, a.ID)
}

func (r *ActivityRepository) insert(ctx context.Context, a *activity.Activity, stmt string, extra ...any) (bool, error) {
	doc, err := json.Marshal(a)
	if err != nil {
		return false, fmt.Errorf("failed to encode activity: %w", err)
	}

	args := append([]any{
		a.ID, string(a.Type), sortTime(a.EndTime), a.Object.ID, a.Object.Type, string(doc),
	}, extra...)
	result, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert activity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}
	if seq, err := result.LastInsertId(); err == nil {
		a.Seq = seq
	}
	return true, nil
}

// Get returns the activity with id, or repository.ErrNotFound.
func (r *ActivityRepository) Get(ctx context.Context, id string) (*activity.Activity, error) {
	return r.get(ctx, id)
}

// Count returns the number of live activities.
func (r *ActivityRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx)
}

// AllByTime returns every live activity, oldest first.
func (r *ActivityRepository) AllByTime(ctx context.Context) ([]activity.Activity, error) {
	return r.list(ctx, "", timeOrder)
}

// AllByObject returns the live history of one object, oldest first.
func (r *ActivityRepository) AllByObject(ctx context.Context, objectID string) ([]activity.Activity, error) {
	return r.list(ctx, "object_id = ?", timeOrder, objectID)
}

// AllByType returns live activities of type t, oldest first.
func (r *ActivityRepository) AllByType(ctx context.Context, t activity.Type) ([]activity.Activity, error) {
	return r.list(ctx, "type = ?", timeOrder, string(t))
}

// Since returns live activities with endTime strictly after endTime.
func (r *ActivityRepository) Since(ctx context.Context, endTime string) ([]activity.Activity, error) {
	return r.list(ctx, "end_time > ?", timeOrder, sortTime(endTime))
}

// Recent returns at most limit live activities, newest first.
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]activity.Activity, error) {
	return r.list(ctx, "", " ORDER BY end_time DESC, seq DESC LIMIT ?", limit)
}

// Newest returns the most recent live activity, or nil when the log is empty.
func (r *ActivityRepository) Newest(ctx context.Context) (*activity.Activity, error) {
	return r.newest(ctx)
}

// Clear deletes every live activity.
func (r *ActivityRepository) Clear(ctx context.Context) error {
	return r.clear(ctx)
}

// ArchiveRepository holds activities rotated out of the live log. Rows only
// arrive through Rotator.
type ArchiveRepository struct {
	collection
}

// NewArchiveRepository creates a new ArchiveRepository
func NewArchiveRepository(db *DB) *ArchiveRepository {
	return &ArchiveRepository{collection{db: db, table: archiveTable}}
}

// Get returns the archived activity with id, or repository.ErrNotFound.
func (r *ArchiveRepository) Get(ctx context.Context, id string) (*activity.Activity, error) {
	return r.get(ctx, id)
}

// Count returns the number of archived activities.
func (r *ArchiveRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx)
}

// AllByTime returns every archived activity, oldest first.
func (r *ArchiveRepository) AllByTime(ctx context.Context) ([]activity.Activity, error) {
	return r.list(ctx, "", timeOrder)
}

// AllByObject returns the archived history of one object, oldest first.
func (r *ArchiveRepository) AllByObject(ctx context.Context, objectID string) ([]activity.Activity, error) {
	return r.list(ctx, "object_id = ?", timeOrder, objectID)
}

// Newest returns the most recent archived activity, or nil when empty.
func (r *ArchiveRepository) Newest(ctx context.Context) (*activity.Activity, error) {
	return r.newest(ctx)
}

// Clear deletes every archived activity.
func (r *ArchiveRepository) Clear(ctx context.Context) error {
	return r.clear(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryActivities(ctx context.Context, q querier, query string, args ...any) ([]activity.Activity, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []activity.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return activities, nil
}

func scanActivity(row rowScanner) (*activity.Activity, error) {
	var seq int64
	var doc string
	if err := row.Scan(&seq, &doc); err != nil {
		return nil, err
	}
	a, err := decodeActivity(doc)
	if err != nil {
		return nil, err
	}
	a.Seq = seq
	return a, nil
}

func decodeActivity(doc string) (*activity.Activity, error) {
	var a activity.Activity
	if err := json.Unmarshal([]byte(doc), &a); err != nil {
		return nil, fmt.Errorf("failed to decode activity: %w", err)
	}
	return &a, nil
}

// sortLayout is RFC 3339 with a fixed nine-digit fraction, so the indexed
// end_time column compares as text in chronological order at full precision.
const sortLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sortTime canonicalizes an endTime for the end_time column. Unparseable
// values are stored as given.
func sortTime(endTime string) string {
	t, err := time.Parse(time.RFC3339Nano, endTime)
	if err != nil {
		return endTime
	}
	return t.UTC().Format(sortLayout)
}
