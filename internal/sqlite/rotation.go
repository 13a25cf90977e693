package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/rpggio/folio/internal/repository"
)

// Rotator moves the oldest live activities into the archive.
type Rotator struct {
	db  *DB
	now func() time.Time
}

// NewRotator creates a new Rotator
func NewRotator(db *DB) *Rotator {
	return &Rotator{db: db, now: time.Now}
}

// Rotate trims the live log down to keep entries, moving the excess oldest
// entries into the archive. The copy and the delete happen in one
// transaction, so a failure leaves both tables as they were. It returns the
// number of activities moved.
func (r *Rotator) Rotate(ctx context.Context, keep int) (moved int, err error) {
	if keep < 0 {
		return 0, fmt.Errorf("%w: keep count %d", repository.ErrInvalidInput, keep)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin rotation: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	excess := count - keep
	if excess <= 0 {
		return 0, tx.Commit()
	}

	// An id already present in the archive converges instead of failing.
	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO activities_archive
			(id, seq, type, end_time, object_id, object_type, doc, archived_at)
		SELECT id, seq, type, end_time, object_id, object_type, doc, ?
		FROM activities
		ORDER BY end_time ASC, seq ASC
		LIMIT ?`,
		activity.FormatTime(r.now()), excess,
	); err != nil {
		return 0, fmt.Errorf("failed to archive activities: %w", err)
	}

	deleted, err := deleteOldest(ctx, tx, excess)
	if err != nil {
		return 0, err
	}
	if deleted != excess {
		return 0, fmt.Errorf("rotation removed %d activities, expected %d", deleted, excess)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rotation: %w", err)
	}
	return excess, nil
}

func deleteOldest(ctx context.Context, tx *sql.Tx, n int) (int, error) {
	result, err := tx.ExecContext(ctx, `
		DELETE FROM activities WHERE seq IN (
			SELECT seq FROM activities
			ORDER BY end_time ASC, seq ASC
			LIMIT ?
		)`, n)
	if err != nil {
		return 0, fmt.Errorf("failed to delete rotated activities: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(rows), nil
}
