package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"getsneaks/internal/store"
	"getsneaks/internal/workout"
)

func day(n int) time.Time {
	return time.Date(2024, 3, n, 0, 0, 0, 0, time.UTC)
}

func mustRecord(t *testing.T, date time.Time, miles, calories, minutes float64) workout.Record {
	t.Helper()
	r, err := workout.NewRecord(date, miles, calories, minutes)
	require.NoError(t, err)
	return r
}

// failingArchive wraps a real store and fails the archive write
type failingArchive struct {
	*store.Store
}

func (f failingArchive) ArchiveShoePeriod(context.Context, []workout.Record, []int64, time.Time) (*store.ShoePeriod, error) {
	return nil, errors.New("disk full")
}

// blockingFetch holds its first FetchAll until release is closed
type blockingFetch struct {
	*store.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (b *blockingFetch) FetchAll(ctx context.Context) ([]store.WorkoutRow, error) {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return b.Store.FetchAll(ctx)
}

func TestHistoryRecordAndRefresh(t *testing.T) {
	s := store.NewTestStore(t)
	ctx := context.Background()
	h := NewHistoryService(s)

	require.NoError(t, h.Record(ctx, mustRecord(t, day(3), 2, 200, 20), store.SourceManual))
	require.NoError(t, h.Record(ctx, mustRecord(t, day(1), 1, 100, 10), store.SourceManual))

	series := h.Series(workout.Distance)
	assert.Equal(t, []string{"03/01/24", "03/03/24"}, series.Labels)
	assert.Equal(t, []float64{1, 2}, series.Values)

	// a fresh service sees the persisted workouts after Refresh
	other := NewHistoryService(s)
	assert.Zero(t, other.ShoeState().CumulativeMiles)
	require.NoError(t, other.Refresh(ctx))
	assert.Equal(t, 3.0, other.ShoeState().CumulativeMiles)
	assert.Equal(t, h.Series(workout.Duration), other.Series(workout.Duration))
	assert.Len(t, other.Workouts(), 2)
}

func TestHistoryRecordRejectsInvalid(t *testing.T) {
	s := store.NewTestStore(t)
	ctx := context.Background()
	h := NewHistoryService(s)

	var verr *workout.ValidationError
	require.ErrorAs(t, h.Record(ctx, workout.Record{}, store.SourceManual), &verr)

	n, err := s.CountWorkouts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHistoryRefreshKeepsWorkingSetOnBadRow(t *testing.T) {
	s := store.NewTestStore(t)
	ctx := context.Background()
	h := NewHistoryService(s)
	require.NoError(t, h.Record(ctx, mustRecord(t, day(1), 5, 500, 50), store.SourceManual))

	// row written behind the service's back, missing its calories
	date, miles, mins := "2024-03-02", 1.0, 10.0
	_, err := s.InsertWorkout(ctx, store.WorkoutRow{Date: &date, DistanceMiles: &miles, DurationMinutes: &mins})
	require.NoError(t, err)

	err = h.Refresh(ctx)
	var verr *workout.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "calories", verr.Field)
	assert.Equal(t, 5.0, h.ShoeState().CumulativeMiles)
}

func TestHistoryArchiveShoes(t *testing.T) {
	s := store.NewTestStore(t)
	ctx := context.Background()
	h := NewHistoryService(s)
	h.now = func() time.Time { return time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC) }

	in := []workout.Record{
		mustRecord(t, day(5), 250, 0, 0),
		mustRecord(t, day(2), 150, 0, 0),
	}
	for _, r := range in {
		require.NoError(t, h.Record(ctx, r, store.SourceManual))
	}
	require.True(t, h.ShoeState().NeedsReplacement)

	period, archived, err := h.ArchiveShoes(ctx)
	require.NoError(t, err)
	require.NotNil(t, period)
	assert.Equal(t, in, archived)
	assert.Equal(t, 400.0, period.TotalMiles)
	assert.Equal(t, 2, period.WorkoutCount)
	assert.Zero(t, h.ShoeState().CumulativeMiles)

	// the store agrees with the engine
	require.NoError(t, h.Refresh(ctx))
	assert.Zero(t, h.ShoeState().CumulativeMiles)

	periods, err := h.ShoePeriods(ctx)
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, period.ID, periods[0].ID)

	workouts, err := h.PeriodWorkouts(ctx, period.ID)
	require.NoError(t, err)
	assert.Len(t, workouts, 2)
}

func TestHistoryRecordDuringRefreshIsKept(t *testing.T) {
	s := store.NewTestStore(t)
	ctx := context.Background()
	_, err := s.InsertWorkout(ctx, store.RowFromRecord(mustRecord(t, day(1), 1, 100, 10), store.SourceManual))
	require.NoError(t, err)

	repo := &blockingFetch{Store: s, entered: make(chan struct{}), release: make(chan struct{})}
	h := NewHistoryService(repo)

	refreshed := make(chan error, 1)
	go func() { refreshed <- h.Refresh(ctx) }()
	<-repo.entered

	recorded := make(chan error, 1)
	go func() { recorded <- h.Record(ctx, mustRecord(t, day(2), 2, 200, 20), store.SourceManual) }()
	time.Sleep(20 * time.Millisecond)
	close(repo.release)

	require.NoError(t, <-refreshed)
	require.NoError(t, <-recorded)
	assert.Equal(t, 3.0, h.ShoeState().CumulativeMiles)
	assert.Len(t, h.Workouts(), 2)

	period, _, err := h.ArchiveShoes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, period.WorkoutCount)

	n, err := s.CountWorkouts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHistoryArchiveKeepsUnloadedRows(t *testing.T) {
	s := store.NewTestStore(t)
	ctx := context.Background()
	h := NewHistoryService(s)
	require.NoError(t, h.Record(ctx, mustRecord(t, day(1), 400, 0, 0), store.SourceManual))

	// written by another writer after the working set was built
	_, err := s.InsertWorkout(ctx, store.RowFromRecord(mustRecord(t, day(2), 4, 400, 40), store.SourceStrava))
	require.NoError(t, err)

	period, _, err := h.ArchiveShoes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 400.0, period.TotalMiles)

	require.NoError(t, h.Refresh(ctx))
	assert.Equal(t, 4.0, h.ShoeState().CumulativeMiles)
}

func TestHistoryArchiveEmptyIsNoop(t *testing.T) {
	s := store.NewTestStore(t)
	ctx := context.Background()
	h := NewHistoryService(s)

	period, archived, err := h.ArchiveShoes(ctx)
	require.NoError(t, err)
	assert.Nil(t, period)
	assert.NotNil(t, archived)
	assert.Empty(t, archived)

	periods, err := s.ListShoePeriods(ctx)
	require.NoError(t, err)
	assert.Empty(t, periods)
}

func TestHistoryArchiveFailureKeepsWorkingSet(t *testing.T) {
	s := store.NewTestStore(t)
	ctx := context.Background()
	h := NewHistoryService(failingArchive{s})

	require.NoError(t, h.Record(ctx, mustRecord(t, day(1), 401, 0, 0), store.SourceManual))

	_, _, err := h.ArchiveShoes(ctx)
	require.Error(t, err)
	assert.Equal(t, 401.0, h.ShoeState().CumulativeMiles)
	assert.True(t, h.ShoeState().NeedsReplacement)
}

func TestHistoryDeleteByChronologicalPosition(t *testing.T) {
	s := store.NewTestStore(t)
	ctx := context.Background()
	h := NewHistoryService(s)

	require.NoError(t, h.Record(ctx, mustRecord(t, day(3), 3, 0, 0), store.SourceManual))
	require.NoError(t, h.Record(ctx, mustRecord(t, day(1), 1, 0, 0), store.SourceManual))
	require.NoError(t, h.Record(ctx, mustRecord(t, day(2), 2, 0, 0), store.SourceManual))

	// position 1 is 03/02 even though it was recorded last
	removed, err := h.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "03/02/24", removed.Label())
	assert.Equal(t, []float64{1, 3}, h.Series(workout.Distance).Values)

	require.NoError(t, h.Refresh(ctx))
	assert.Equal(t, []float64{1, 3}, h.Series(workout.Distance).Values)

	// IDs stay aligned after a refresh
	_, err = h.Delete(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, h.Refresh(ctx))
	assert.Equal(t, []string{"03/03/24"}, h.Series(workout.Distance).Labels)

	_, err = h.Delete(ctx, 5)
	assert.Error(t, err)
}

func TestHistoryClear(t *testing.T) {
	s := store.NewTestStore(t)
	ctx := context.Background()
	h := NewHistoryService(s)
	require.NoError(t, h.Record(ctx, mustRecord(t, day(1), 10, 0, 0), store.SourceManual))

	require.NoError(t, h.Clear(ctx))
	assert.Zero(t, h.ShoeState().CumulativeMiles)

	n, err := s.CountWorkouts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	periods, err := s.ListShoePeriods(ctx)
	require.NoError(t, err)
	assert.Empty(t, periods)
}
