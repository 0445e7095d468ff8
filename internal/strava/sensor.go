package strava

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"getsneaks/internal/analysis"
)

// UploadName names the manual activities SaveWorkout creates
const UploadName = "GetSneaks run"

// ErrNoSensorData is returned when no activity was recorded in the queried window
var ErrNoSensorData = errors.New("no activity recorded since the given start time")

// Reading is the distance covered since a start time and when the last activity ended
type Reading struct {
	Start         time.Time
	End           time.Time
	DistanceMiles float64
}

// Duration is the time between the requested start and the end of the last activity
func (r Reading) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Upload is a finished workout written back to Strava
type Upload struct {
	Start         time.Time
	End           time.Time
	DistanceMiles float64
	Calories      float64
}

// Sensor reads and writes workouts through the Strava API
type Sensor struct {
	client *Client
}

// NewSensor wraps a Strava client
func NewSensor(client *Client) *Sensor {
	return &Sensor{client: client}
}

// RateLimitStatus reports the API requests left in the current windows
func (s *Sensor) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return s.client.RateLimitStatus()
}

// QueryDistanceAndDuration sums the distance of the running activities that
// started at or after since, and reports when the latest of them ended.
// Runs uploaded by SaveWorkout are skipped so an import never counts itself.
func (s *Sensor) QueryDistanceAndDuration(ctx context.Context, since time.Time) (Reading, error) {
	// Strava's "after" filter is exclusive and second-granular
	activities, err := s.client.GetAllActivities(ctx, since.Add(-time.Second))
	if err != nil {
		return Reading{}, fmt.Errorf("querying activities: %w", err)
	}

	reading := Reading{Start: since}
	var meters float64
	var found int
	for _, a := range activities {
		if !a.IsRun() || a.StartDate.Before(since) || a.uploaded() {
			continue
		}
		found++
		meters += a.Distance
		if end := a.End(); end.After(reading.End) {
			reading.End = end
		}
	}

	if found == 0 {
		return Reading{}, ErrNoSensorData
	}

	reading.DistanceMiles = analysis.MetersToMiles(meters)
	logrus.WithFields(logrus.Fields{
		"activities": found,
		"miles":      reading.DistanceMiles,
		"since":      since.Format(time.RFC3339),
	}).Debug("sensor query")
	return reading, nil
}

// SaveWorkout uploads a workout as a manual Strava run
func (s *Sensor) SaveWorkout(ctx context.Context, u Upload) error {
	if !u.End.After(u.Start) {
		return fmt.Errorf("workout end %s is not after start %s", u.End.Format(time.RFC3339), u.Start.Format(time.RFC3339))
	}

	created, err := s.client.CreateActivity(ctx, NewActivity{
		Name:           UploadName,
		SportType:      "Run",
		StartDateLocal: u.Start.Format(time.RFC3339),
		ElapsedTime:    int(u.End.Sub(u.Start).Seconds()),
		Distance:       analysis.MilesToMeters(u.DistanceMiles),
		Description:    fmt.Sprintf("%.0f calories", u.Calories),
	})
	if err != nil {
		return fmt.Errorf("saving workout: %w", err)
	}

	logrus.WithField("activity_id", created.ID).Info("workout uploaded to strava")
	return nil
}
