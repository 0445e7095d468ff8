package store

import (
	"time"

	"getsneaks/internal/workout"
)

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Profile is the user's personal info; weight feeds calorie estimates
type Profile struct {
	Name         string  `db:"name"`
	Email        string  `db:"email"`
	Gender       string  `db:"gender"`
	Age          int     `db:"age"`
	HeightInches int     `db:"height_inches"`
	WeightPounds float64 `db:"weight_pounds"`
}

// Workout sources
const (
	SourceManual = "manual"
	SourceStrava = "strava"
)

// WorkoutRow is a workout in the current shoe period, as stored.
// Measurement fields are nullable.
type WorkoutRow struct {
	ID              int64    `db:"id"`
	Date            *string  `db:"workout_date"` // YYYY-MM-DD
	DistanceMiles   *float64 `db:"distance_miles"`
	Calories        *float64 `db:"calories"`
	DurationMinutes *float64 `db:"duration_minutes"`
	Source          string   `db:"source"`
}

// Raw converts the row into the shape the workout engine validates
func (r WorkoutRow) Raw() workout.RawRecord {
	raw := workout.RawRecord{
		DistanceMiles:   r.DistanceMiles,
		Calories:        r.Calories,
		DurationMinutes: r.DurationMinutes,
	}
	if r.Date != nil {
		raw.Date = *r.Date
	}
	return raw
}

// RowFromRecord builds a row for a validated workout
func RowFromRecord(r workout.Record, source string) WorkoutRow {
	raw := r.Raw()
	return WorkoutRow{
		Date:            &raw.Date,
		DistanceMiles:   raw.DistanceMiles,
		Calories:        raw.Calories,
		DurationMinutes: raw.DurationMinutes,
		Source:          source,
	}
}

// ShoePeriod is an archived pair of shoes and its workouts summary
type ShoePeriod struct {
	ID           int64      `db:"id"`
	ArchivedAt   time.Time  `db:"archived_at"`
	TotalMiles   float64    `db:"total_miles"`
	WorkoutCount int        `db:"workout_count"`
	SyncedAt     *time.Time `db:"synced_at"` // nil until the remote sync accepts it
}

// ArchivedWorkout is a workout that belonged to an archived shoe period
type ArchivedWorkout struct {
	ID              int64     `db:"id"`
	PeriodID        int64     `db:"period_id"`
	Date            time.Time `db:"workout_date"`
	DistanceMiles   float64   `db:"distance_miles"`
	Calories        float64   `db:"calories"`
	DurationMinutes float64   `db:"duration_minutes"`
}
