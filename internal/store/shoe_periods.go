package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"getsneaks/internal/workout"
)

// ArchiveShoePeriod moves the given workouts into a new archived shoe period
// and deletes the rows with the given workout IDs, all in one transaction.
// Rows not named in workoutIDs stay in the current period.
func (s *Store) ArchiveShoePeriod(ctx context.Context, records []workout.Record, workoutIDs []int64, archivedAt time.Time) (*ShoePeriod, error) {
	var total float64
	for _, r := range records {
		total += r.DistanceMiles()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	archivedAt = archivedAt.UTC().Truncate(time.Second)
	result, err := tx.ExecContext(ctx, `
		INSERT INTO shoe_periods (archived_at, total_miles, workout_count)
		VALUES (?, ?, ?)
	`, archivedAt.Format(time.RFC3339), total, len(records))
	if err != nil {
		return nil, fmt.Errorf("inserting shoe period: %w", err)
	}
	periodID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO archived_workouts (period_id, workout_date, distance_miles, calories, duration_minutes)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, periodID, r.Date().Format("2006-01-02"),
			r.DistanceMiles(), r.Calories(), r.DurationMinutes()); err != nil {
			return nil, fmt.Errorf("inserting archived workout: %w", err)
		}
	}

	del, err := tx.PrepareContext(ctx, `DELETE FROM workouts WHERE id = ?`)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer del.Close()

	for _, id := range workoutIDs {
		if _, err := del.ExecContext(ctx, id); err != nil {
			return nil, fmt.Errorf("deleting archived workout %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return &ShoePeriod{
		ID:           periodID,
		ArchivedAt:   archivedAt,
		TotalMiles:   total,
		WorkoutCount: len(records),
	}, nil
}

// ListShoePeriods returns archived shoe periods, most recent first.
func (s *Store) ListShoePeriods(ctx context.Context) ([]ShoePeriod, error) {
	return s.queryShoePeriods(ctx, `
		SELECT id, archived_at, total_miles, workout_count, synced_at
		FROM shoe_periods
		ORDER BY archived_at DESC, id DESC
	`)
}

// PendingShoePeriods returns periods the remote sync has not accepted yet, oldest first.
func (s *Store) PendingShoePeriods(ctx context.Context) ([]ShoePeriod, error) {
	return s.queryShoePeriods(ctx, `
		SELECT id, archived_at, total_miles, workout_count, synced_at
		FROM shoe_periods
		WHERE synced_at IS NULL
		ORDER BY id
	`)
}

// GetShoePeriod retrieves a single archived period.
func (s *Store) GetShoePeriod(ctx context.Context, id int64) (*ShoePeriod, error) {
	periods, err := s.queryShoePeriods(ctx, `
		SELECT id, archived_at, total_miles, workout_count, synced_at
		FROM shoe_periods
		WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, ErrShoePeriodNotFound
	}
	return &periods[0], nil
}

// MarkPeriodSynced records that the remote sync accepted a period.
func (s *Store) MarkPeriodSynced(ctx context.Context, id int64, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE shoe_periods SET synced_at = ? WHERE id = ?
	`, at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrShoePeriodNotFound
	}
	return nil
}

// ArchivedWorkouts returns the workouts of one archived period ordered by date.
func (s *Store) ArchivedWorkouts(ctx context.Context, periodID int64) ([]ArchivedWorkout, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, period_id, workout_date, distance_miles, calories, duration_minutes
		FROM archived_workouts
		WHERE period_id = ?
		ORDER BY workout_date, id
	`, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ArchivedWorkout
	for rows.Next() {
		var w ArchivedWorkout
		var date string
		if err := rows.Scan(&w.ID, &w.PeriodID, &date, &w.DistanceMiles, &w.Calories, &w.DurationMinutes); err != nil {
			return nil, err
		}
		w.Date, err = time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("parsing workout_date %q: %w", date, err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func (s *Store) queryShoePeriods(ctx context.Context, query string, args ...any) ([]ShoePeriod, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ShoePeriod
	for rows.Next() {
		var p ShoePeriod
		var archivedAt string
		var syncedAt sql.NullString
		if err := rows.Scan(&p.ID, &archivedAt, &p.TotalMiles, &p.WorkoutCount, &syncedAt); err != nil {
			return nil, err
		}

		p.ArchivedAt, err = time.Parse(time.RFC3339, archivedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing archived_at %q: %w", archivedAt, err)
		}
		if syncedAt.Valid {
			t, err := time.Parse(time.RFC3339, syncedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parsing synced_at %q: %w", syncedAt.String, err)
			}
			p.SyncedAt = &t
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
