package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"getsneaks/internal/remotesync"
	"getsneaks/internal/store"
)

// Sender delivers one archived shoe period to the remote account
type Sender interface {
	Send(ctx context.Context, p remotesync.Payload) error
}

// ArchiveOutbox is the store side of archive delivery
type ArchiveOutbox interface {
	PendingShoePeriods(ctx context.Context) ([]store.ShoePeriod, error)
	ArchivedWorkouts(ctx context.Context, periodID int64) ([]store.ArchivedWorkout, error)
	MarkPeriodSynced(ctx context.Context, id int64, at time.Time) error
	GetProfile(ctx context.Context) (*store.Profile, error)
	SetSyncState(ctx context.Context, key, value string) error
}

// SyncService delivers archived shoe periods that the remote account has not accepted yet
type SyncService struct {
	sender Sender
	outbox ArchiveOutbox
	now    func() time.Time
}

// NewSyncService creates a new sync service
func NewSyncService(sender Sender, outbox ArchiveOutbox) *SyncService {
	return &SyncService{sender: sender, outbox: outbox, now: time.Now}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Total     int
	Completed int
	PeriodID  int64
	Error     error
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	Pending int
	Sent    int
	Errors  []error
}

// PushArchives sends every pending period, oldest first. A period that
// fails stays pending for the next push; the others are still attempted.
func (s *SyncService) PushArchives(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}

	pending, err := s.outbox.PendingShoePeriods(ctx)
	if err != nil {
		return result, fmt.Errorf("listing pending periods: %w", err)
	}
	result.Pending = len(pending)
	if len(pending) == 0 {
		return result, nil
	}

	athlete, err := s.athlete(ctx)
	if err != nil {
		return result, err
	}

	for i, period := range pending {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		err := s.pushOne(ctx, athlete, period)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("period %d: %w", period.ID, err))
			logrus.WithError(err).WithField("period_id", period.ID).Warn("archive left pending")
		} else {
			result.Sent++
		}

		if progress != nil {
			progress <- SyncProgress{Total: len(pending), Completed: i + 1, PeriodID: period.ID, Error: err}
		}
	}

	if result.Sent > 0 {
		if err := s.outbox.SetSyncState(ctx, store.KeyLastArchivePush, s.now().UTC().Format(time.RFC3339)); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("saving sync time: %w", err))
		}
	}

	logrus.WithFields(logrus.Fields{
		"pending": result.Pending,
		"sent":    result.Sent,
		"failed":  len(result.Errors),
	}).Info("archive push finished")
	return result, nil
}

func (s *SyncService) pushOne(ctx context.Context, athlete remotesync.Athlete, period store.ShoePeriod) error {
	workouts, err := s.outbox.ArchivedWorkouts(ctx, period.ID)
	if err != nil {
		return fmt.Errorf("loading workouts: %w", err)
	}

	payload := remotesync.Payload{
		PeriodID:   period.ID,
		Athlete:    athlete,
		ArchivedAt: period.ArchivedAt,
		TotalMiles: period.TotalMiles,
		Workouts:   make([]remotesync.Workout, len(workouts)),
	}
	for i, w := range workouts {
		payload.Workouts[i] = remotesync.Workout{
			Date:            w.Date.Format("2006-01-02"),
			DistanceMiles:   w.DistanceMiles,
			Calories:        w.Calories,
			DurationMinutes: w.DurationMinutes,
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, SendTimeout)
	defer cancel()
	if err := s.sender.Send(sendCtx, payload); err != nil {
		return err
	}

	return s.outbox.MarkPeriodSynced(ctx, period.ID, s.now())
}

func (s *SyncService) athlete(ctx context.Context) (remotesync.Athlete, error) {
	p, err := s.outbox.GetProfile(ctx)
	if errors.Is(err, store.ErrNoProfile) {
		return remotesync.Athlete{}, fmt.Errorf("a profile is needed to sync archives: %w", err)
	}
	if err != nil {
		return remotesync.Athlete{}, err
	}
	return remotesync.Athlete{Name: p.Name, Email: p.Email, Gender: p.Gender, Age: p.Age}, nil
}
