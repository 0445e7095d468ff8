package store

import (
	"context"
	"fmt"
)

// FetchAll returns every workout in the current shoe period, in insertion order.
func (s *Store) FetchAll(ctx context.Context) ([]WorkoutRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workout_date, distance_miles, calories, duration_minutes, source
		FROM workouts
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []WorkoutRow
	for rows.Next() {
		var w WorkoutRow
		if err := rows.Scan(&w.ID, &w.Date, &w.DistanceMiles, &w.Calories, &w.DurationMinutes, &w.Source); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// InsertWorkout stores a workout and returns its ID.
func (s *Store) InsertWorkout(ctx context.Context, w WorkoutRow) (int64, error) {
	source := w.Source
	if source == "" {
		source = SourceManual
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO workouts (workout_date, distance_miles, calories, duration_minutes, source)
		VALUES (?, ?, ?, ?, ?)
	`, w.Date, w.DistanceMiles, w.Calories, w.DurationMinutes, source)
	if err != nil {
		return 0, fmt.Errorf("inserting workout: %w", err)
	}
	return result.LastInsertId()
}

// DeleteWorkout removes a single workout.
func (s *Store) DeleteWorkout(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	return err
}

// DeleteAll removes every workout in the current shoe period.
func (s *Store) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM workouts`)
	return err
}

// CountWorkouts returns the number of workouts in the current shoe period.
func (s *Store) CountWorkouts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts`).Scan(&n)
	return n, err
}
