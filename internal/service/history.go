package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"getsneaks/internal/store"
	"getsneaks/internal/workout"
)

// WorkoutRepository is the persistence the history service needs
type WorkoutRepository interface {
	FetchAll(ctx context.Context) ([]store.WorkoutRow, error)
	InsertWorkout(ctx context.Context, w store.WorkoutRow) (int64, error)
	DeleteWorkout(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	ArchiveShoePeriod(ctx context.Context, records []workout.Record, workoutIDs []int64, archivedAt time.Time) (*store.ShoePeriod, error)
	ListShoePeriods(ctx context.Context) ([]store.ShoePeriod, error)
	ArchivedWorkouts(ctx context.Context, periodID int64) ([]store.ArchivedWorkout, error)
}

// HistoryService is the single writer around the workout engine and its store
type HistoryService struct {
	mu     sync.Mutex
	repo   WorkoutRepository
	engine *workout.Engine
	ids    []int64 // store IDs, parallel to the engine's insertion order
	now    func() time.Time
}

// NewHistoryService creates a history service with an empty working set.
// Call Refresh to load persisted workouts.
func NewHistoryService(repo WorkoutRepository) *HistoryService {
	return &HistoryService{
		repo:   repo,
		engine: workout.NewEngine(),
		now:    time.Now,
	}
}

// Refresh reloads the working set from the store. When any stored row is
// invalid the previous working set is kept and the error returned.
func (h *HistoryService) Refresh(ctx context.Context) error {
	// fetch and load under one lock so a concurrent Record cannot land
	// between the read and the swap
	h.mu.Lock()
	defer h.mu.Unlock()

	rows, err := h.repo.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetching workouts: %w", err)
	}

	raw := make([]workout.RawRecord, len(rows))
	for i, row := range rows {
		raw[i] = row.Raw()
	}

	if err := h.engine.LoadRaw(raw); err != nil {
		return fmt.Errorf("loading workouts: %w", err)
	}
	h.ids = make([]int64, len(rows))
	for i, row := range rows {
		h.ids[i] = row.ID
	}

	logrus.WithFields(logrus.Fields{
		"workouts": h.engine.Len(),
		"miles":    h.engine.CumulativeDistance(),
	}).Debug("history refreshed")
	return nil
}

// Record persists a workout and adds it to the working set
func (h *HistoryService) Record(ctx context.Context, r workout.Record, source string) error {
	if err := r.Validate(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	id, err := h.repo.InsertWorkout(ctx, store.RowFromRecord(r, source))
	if err != nil {
		return fmt.Errorf("saving workout: %w", err)
	}
	if err := h.engine.Record(r); err != nil {
		return err
	}
	h.ids = append(h.ids, id)

	logrus.WithFields(logrus.Fields{
		"id":     id,
		"date":   r.Label(),
		"miles":  r.DistanceMiles(),
		"source": source,
	}).Info("workout recorded")
	return nil
}

// Series returns the chronological series for one metric
func (h *HistoryService) Series(m workout.Metric) workout.Series {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine.SeriesFor(m)
}

// Workouts returns the working set in chronological order
func (h *HistoryService) Workouts() []workout.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine.SortedByDate()
}

// ShoeState reports the mileage on the current shoes
func (h *HistoryService) ShoeState() workout.ShoeState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine.ShoeState()
}

// ArchiveShoes stores the current shoe period, then clears the working set.
// The store is written first, so a failed write leaves the working set as it was.
// With no workouts nothing is stored and the returned period is nil.
func (h *HistoryService) ArchiveShoes(ctx context.Context) (*store.ShoePeriod, []workout.Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.engine.Len() == 0 {
		return nil, h.engine.ArchiveAndReset(), nil
	}

	period, err := h.repo.ArchiveShoePeriod(ctx, h.engine.Records(), h.ids, h.now())
	if err != nil {
		return nil, nil, fmt.Errorf("archiving shoe period: %w", err)
	}
	archived := h.engine.ArchiveAndReset()
	h.ids = nil

	logrus.WithFields(logrus.Fields{
		"period_id": period.ID,
		"miles":     period.TotalMiles,
		"workouts":  period.WorkoutCount,
	}).Info("shoes archived")
	return period, archived, nil
}

// Delete removes the workout at pos in chronological order, the order of
// Workouts and Series. Editing a workout is a Delete followed by a Record.
func (h *HistoryService) Delete(ctx context.Context, pos int) (workout.Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	records := h.engine.Records()
	if pos < 0 || pos >= len(records) {
		return workout.Record{}, fmt.Errorf("no workout at position %d", pos)
	}
	i := chronological(records)[pos]
	removed := records[i]

	if err := h.repo.DeleteWorkout(ctx, h.ids[i]); err != nil {
		return workout.Record{}, fmt.Errorf("deleting workout: %w", err)
	}
	if err := h.engine.Load(slices.Delete(records, i, i+1)); err != nil {
		return workout.Record{}, err
	}
	h.ids = slices.Delete(h.ids, i, i+1)

	logrus.WithFields(logrus.Fields{
		"date":  removed.Label(),
		"miles": removed.DistanceMiles(),
	}).Info("workout deleted")
	return removed, nil
}

// Clear drops the current shoe period without archiving it
func (h *HistoryService) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clearing workouts: %w", err)
	}
	dropped := h.engine.ArchiveAndReset()
	h.ids = nil

	logrus.WithField("workouts", len(dropped)).Warn("working set cleared without archiving")
	return nil
}

// chronological maps sorted positions to insertion indexes, ties kept in insertion order
func chronological(records []workout.Record) []int {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return records[order[a]].Date().Before(records[order[b]].Date())
	})
	return order
}

// ShoePeriods lists archived shoe periods, most recent first
func (h *HistoryService) ShoePeriods(ctx context.Context) ([]store.ShoePeriod, error) {
	return h.repo.ListShoePeriods(ctx)
}

// PeriodWorkouts returns the workouts of one archived period
func (h *HistoryService) PeriodWorkouts(ctx context.Context, periodID int64) ([]store.ArchivedWorkout, error) {
	return h.repo.ArchivedWorkouts(ctx, periodID)
}
