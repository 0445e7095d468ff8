package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"getsneaks/internal/workout"
)

func ptr[T any](v T) *T { return &v }

func mustRecord(t *testing.T, date string, miles, cal, mins float64) workout.Record {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	r, err := workout.NewRecord(d, miles, cal, mins)
	require.NoError(t, err)
	return r
}

func TestInsertAndFetchWorkouts(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	first := RowFromRecord(mustRecord(t, "2024-03-03", 3.1, 300, 28), SourceManual)
	second := RowFromRecord(mustRecord(t, "2024-03-01", 5, 500, 45), SourceStrava)

	id1, err := s.InsertWorkout(ctx, first)
	require.NoError(t, err)
	id2, err := s.InsertWorkout(ctx, second)
	require.NoError(t, err)
	assert.Less(t, id1, id2)

	rows, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// insertion order, not date order
	assert.Equal(t, "2024-03-03", *rows[0].Date)
	assert.Equal(t, 3.1, *rows[0].DistanceMiles)
	assert.Equal(t, SourceManual, rows[0].Source)
	assert.Equal(t, "2024-03-01", *rows[1].Date)
	assert.Equal(t, SourceStrava, rows[1].Source)

	n, err := s.CountWorkouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInsertWorkoutDefaultsSource(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	_, err := s.InsertWorkout(ctx, WorkoutRow{
		Date:            ptr("2024-03-01"),
		DistanceMiles:   ptr(1.0),
		Calories:        ptr(100.0),
		DurationMinutes: ptr(10.0),
	})
	require.NoError(t, err)

	rows, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, SourceManual, rows[0].Source)
}

func TestFetchAllKeepsNullColumns(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	_, err := s.InsertWorkout(ctx, WorkoutRow{Date: ptr("2024-03-01"), DistanceMiles: ptr(2.0)})
	require.NoError(t, err)

	rows, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Calories)
	assert.Nil(t, rows[0].DurationMinutes)

	_, err = workout.ParseRecord(rows[0].Raw())
	assert.Error(t, err)
}

func TestDeleteWorkouts(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	id, err := s.InsertWorkout(ctx, RowFromRecord(mustRecord(t, "2024-03-01", 1, 1, 1), SourceManual))
	require.NoError(t, err)
	_, err = s.InsertWorkout(ctx, RowFromRecord(mustRecord(t, "2024-03-02", 2, 2, 2), SourceManual))
	require.NoError(t, err)

	require.NoError(t, s.DeleteWorkout(ctx, id))
	n, err := s.CountWorkouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.DeleteAll(ctx))
	rows, err := s.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestArchiveShoePeriod(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	records := []workout.Record{
		mustRecord(t, "2024-03-03", 3, 300, 30),
		mustRecord(t, "2024-03-01", 5.5, 550, 50),
	}
	var ids []int64
	for _, r := range records {
		id, err := s.InsertWorkout(ctx, RowFromRecord(r, SourceManual))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	at := time.Date(2024, 3, 10, 8, 30, 15, 500, time.UTC)
	period, err := s.ArchiveShoePeriod(ctx, records, ids, at)
	require.NoError(t, err)
	assert.InDelta(t, 8.5, period.TotalMiles, 1e-9)
	assert.Equal(t, 2, period.WorkoutCount)
	assert.Equal(t, at.Truncate(time.Second), period.ArchivedAt)
	assert.Nil(t, period.SyncedAt)

	n, err := s.CountWorkouts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "current period should be cleared")

	got, err := s.GetShoePeriod(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, *period, *got)

	archived, err := s.ArchivedWorkouts(ctx, period.ID)
	require.NoError(t, err)
	require.Len(t, archived, 2)
	assert.Equal(t, "2024-03-01", archived[0].Date.Format("2006-01-02"))
	assert.Equal(t, 5.5, archived[0].DistanceMiles)
	assert.Equal(t, "2024-03-03", archived[1].Date.Format("2006-01-02"))
	assert.Equal(t, 30.0, archived[1].DurationMinutes)
}

func TestArchiveShoePeriodDeletesOnlyGivenIDs(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	archived := mustRecord(t, "2024-03-01", 400, 1, 1)
	id, err := s.InsertWorkout(ctx, RowFromRecord(archived, SourceManual))
	require.NoError(t, err)
	_, err = s.InsertWorkout(ctx, RowFromRecord(mustRecord(t, "2024-03-02", 3, 300, 30), SourceStrava))
	require.NoError(t, err)

	_, err = s.ArchiveShoePeriod(ctx, []workout.Record{archived}, []int64{id}, time.Now())
	require.NoError(t, err)

	rows, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03-02", *rows[0].Date)
}

func TestListAndPendingShoePeriods(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	older, err := s.ArchiveShoePeriod(ctx, []workout.Record{mustRecord(t, "2023-12-01", 400, 1, 1)}, nil, base)
	require.NoError(t, err)
	newer, err := s.ArchiveShoePeriod(ctx, []workout.Record{mustRecord(t, "2024-05-01", 410, 1, 1)}, nil, base.AddDate(0, 6, 0))
	require.NoError(t, err)

	all, err := s.ListShoePeriods(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)
	assert.Equal(t, older.ID, all[1].ID)

	syncedAt := base.AddDate(0, 7, 0)
	require.NoError(t, s.MarkPeriodSynced(ctx, older.ID, syncedAt))

	pending, err := s.PendingShoePeriods(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, newer.ID, pending[0].ID)

	got, err := s.GetShoePeriod(ctx, older.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SyncedAt)
	assert.True(t, syncedAt.Equal(*got.SyncedAt))
}

func TestShoePeriodNotFound(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	_, err := s.GetShoePeriod(ctx, 99)
	assert.ErrorIs(t, err, ErrShoePeriodNotFound)
	assert.ErrorIs(t, s.MarkPeriodSynced(ctx, 99, time.Now()), ErrShoePeriodNotFound)
}

func TestProfileRoundTrip(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	_, err := s.GetProfile(ctx)
	assert.ErrorIs(t, err, ErrNoProfile)

	p := &Profile{Name: "Sam", Email: "sam@example.com", WeightPounds: 163}
	require.NoError(t, s.SaveProfile(ctx, p))

	got, err := s.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, *p, *got)

	p.Gender = "F"
	p.Age = 34
	p.HeightInches = 66
	p.WeightPounds = 150
	require.NoError(t, s.SaveProfile(ctx, p))

	got, err = s.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, *p, *got)
}

func TestAuth(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	_, err := s.GetAuth(ctx)
	assert.ErrorIs(t, err, ErrNoAuth)
	assert.ErrorIs(t, s.UpdateTokens(ctx, "a", "r", time.Now()), ErrNoAuth)

	expires := time.Unix(1_700_000_000, 0)
	require.NoError(t, s.SaveAuth(ctx, &Auth{
		AthleteID:    42,
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    expires,
	}))

	newExpiry := expires.Add(6 * time.Hour)
	require.NoError(t, s.UpdateTokens(ctx, "access2", "refresh2", newExpiry))

	got, err := s.GetAuth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.AthleteID)
	assert.Equal(t, "access2", got.AccessToken)
	assert.Equal(t, "refresh2", got.RefreshToken)
	assert.True(t, newExpiry.Equal(got.ExpiresAt))
}

func TestSyncState(t *testing.T) {
	s := NewTestStore(t)
	ctx := context.Background()

	v, err := s.GetSyncState(ctx, KeyLastArchivePush)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetSyncState(ctx, KeyLastArchivePush, "one"))
	require.NoError(t, s.SetSyncState(ctx, KeyLastArchivePush, "two"))

	v, err = s.GetSyncState(ctx, KeyLastArchivePush)
	require.NoError(t, err)
	assert.Equal(t, "two", v)
}
