package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"getsneaks/internal/analysis"
	"getsneaks/internal/async"
	"getsneaks/internal/store"
	"getsneaks/internal/strava"
	"getsneaks/internal/workout"
)

// Sensor reads recent activity and writes finished workouts back
type Sensor interface {
	QueryDistanceAndDuration(ctx context.Context, since time.Time) (strava.Reading, error)
	SaveWorkout(ctx context.Context, u strava.Upload) error
}

// rateLimited is implemented by sensors with a request budget
type rateLimited interface {
	RateLimitStatus() (shortRemaining, dailyRemaining int)
}

// ImportState is where imports remember what they last covered
type ImportState interface {
	GetProfile(ctx context.Context) (*store.Profile, error)
	GetSyncState(ctx context.Context, key string) (string, error)
	SetSyncState(ctx context.Context, key, value string) error
}

// Draft is a sensor reading turned into the fields of a new workout
type Draft struct {
	Start        time.Time
	End          time.Time
	Miles        float64 // rounded to 2 places
	DurationText string  // H:MM:SS
	Minutes      int
	Calories     float64 // estimated from profile weight
}

// Record converts the draft into a workout dated on its start day
func (d Draft) Record() (workout.Record, error) {
	return workout.NewRecord(d.Start, d.Miles, d.Calories, float64(d.Minutes))
}

// ImportService builds workouts from the sensor
type ImportService struct {
	sensor  Sensor
	state   ImportState
	history *HistoryService
}

// NewImportService creates an import service
func NewImportService(sensor Sensor, state ImportState, history *HistoryService) *ImportService {
	return &ImportService{sensor: sensor, state: state, history: history}
}

// RateLimitStatus reports the sensor's remaining request budget.
// ok is false when the sensor has none.
func (s *ImportService) RateLimitStatus() (shortRemaining, dailyRemaining int, ok bool) {
	rl, ok := s.sensor.(rateLimited)
	if !ok {
		return 0, 0, false
	}
	shortRemaining, dailyRemaining = rl.RateLimitStatus()
	return shortRemaining, dailyRemaining, true
}

// SuggestedStart is the end of the last import, or DefaultImportWindow before now
func (s *ImportService) SuggestedStart(ctx context.Context, now time.Time) time.Time {
	v, err := s.state.GetSyncState(ctx, store.KeyLastSensorImport)
	if err == nil && v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil && t.Before(now) {
			return t
		}
	}
	return now.Add(-DefaultImportWindow)
}

// Draft queries the sensor for the distance covered since start and
// prepares a workout from it. The sensor and the profile are read concurrently.
func (s *ImportService) Draft(ctx context.Context, start time.Time) *async.Future[Draft] {
	return async.Go(ctx, func(ctx context.Context) (Draft, error) {
		var reading strava.Reading
		var profile *store.Profile

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			reading, err = s.sensor.QueryDistanceAndDuration(gctx, start)
			return err
		})
		g.Go(func() error {
			var err error
			profile, err = s.state.GetProfile(gctx)
			if errors.Is(err, store.ErrNoProfile) {
				return fmt.Errorf("a profile weight is needed to estimate calories: %w", err)
			}
			return err
		})
		if err := g.Wait(); err != nil {
			return Draft{}, err
		}

		return newDraft(reading, profile.WeightPounds), nil
	})
}

func newDraft(r strava.Reading, weightPounds float64) Draft {
	seconds := r.Duration().Seconds()
	miles := analysis.RoundTo(r.DistanceMiles, DraftMilesPlaces)
	return Draft{
		Start:        r.Start,
		End:          r.End,
		Miles:        miles,
		DurationText: analysis.FormatDuration(seconds),
		Minutes:      analysis.MinutesFromSeconds(seconds),
		Calories:     analysis.RoundTo(analysis.EstimateCalories(weightPounds, miles), DraftCaloriesPlaces),
	}
}

// Save uploads the draft to the sensor and records it locally.
// Nothing is recorded when the upload fails.
func (s *ImportService) Save(ctx context.Context, d Draft) *async.Future[workout.Record] {
	r, err := d.Record()
	if err != nil {
		return async.Resolved(workout.Record{}, err)
	}

	return async.Go(ctx, func(ctx context.Context) (workout.Record, error) {
		err := s.sensor.SaveWorkout(ctx, strava.Upload{
			Start:         d.Start,
			End:           d.End,
			DistanceMiles: d.Miles,
			Calories:      d.Calories,
		})
		if err != nil {
			return workout.Record{}, err
		}

		if err := s.history.Record(ctx, r, store.SourceStrava); err != nil {
			return workout.Record{}, err
		}

		if err := s.state.SetSyncState(ctx, store.KeyLastSensorImport, d.End.UTC().Format(time.RFC3339)); err != nil {
			logrus.WithError(err).Warn("could not remember last sensor import")
		}
		return r, nil
	})
}
