package workout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2017, 1, n, 0, 0, 0, 0, time.UTC)
}

func mustRecord(t *testing.T, date time.Time, miles, calories, minutes float64) Record {
	t.Helper()
	r, err := NewRecord(date, miles, calories, minutes)
	require.NoError(t, err)
	return r
}

func milesOf(records []Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.DistanceMiles()
	}
	return out
}

func TestEngineSortedByDate(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load([]Record{
		mustRecord(t, day(1), 1.0, 100, 10),
		mustRecord(t, day(3), 2.0, 200, 20),
		mustRecord(t, day(2), 3.0, 300, 30),
	}))

	sorted := e.SortedByDate()
	require.Len(t, sorted, 3)
	assert.Equal(t, []time.Time{day(1), day(2), day(3)}, []time.Time{sorted[0].Date(), sorted[1].Date(), sorted[2].Date()})
	assert.Equal(t, []float64{1.0, 3.0, 2.0}, milesOf(sorted))
}

func TestEngineSortIsStable(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load([]Record{
		mustRecord(t, day(5), 1, 0, 0),
		mustRecord(t, day(2), 2, 0, 0),
		mustRecord(t, day(5), 3, 0, 0),
		mustRecord(t, day(2), 4, 0, 0),
		mustRecord(t, day(5), 5, 0, 0),
	}))

	assert.Equal(t, []float64{2, 4, 1, 3, 5}, milesOf(e.SortedByDate()))

	// repeated calls give the same order
	assert.Equal(t, e.SortedByDate(), e.SortedByDate())
}

func TestEngineSortedByDateReturnsCopy(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Record(mustRecord(t, day(2), 2, 0, 0)))
	require.NoError(t, e.Record(mustRecord(t, day(1), 1, 0, 0)))

	first := e.SortedByDate()
	first[0] = mustRecord(t, day(9), 99, 0, 0)

	assert.Equal(t, []float64{1, 2}, milesOf(e.SortedByDate()))
}

func TestEngineSeriesFor(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Load([]Record{
		mustRecord(t, day(3), 2.0, 250, 22),
		mustRecord(t, day(1), 1.0, 120, 11),
		mustRecord(t, day(2), 3.0, 330, 33),
	}))

	tests := []struct {
		metric Metric
		values []float64
	}{
		{Distance, []float64{1.0, 3.0, 2.0}},
		{Calories, []float64{120, 330, 250}},
		{Duration, []float64{11, 33, 22}},
	}

	for _, tt := range tests {
		t.Run(tt.metric.String(), func(t *testing.T) {
			s := e.SeriesFor(tt.metric)
			assert.Equal(t, tt.metric, s.Metric)
			assert.Equal(t, []string{"01/01/17", "01/02/17", "01/03/17"}, s.Labels)
			assert.Equal(t, tt.values, s.Values)
		})
	}
}

func TestEngineSeriesLengthsMatchWorkingSet(t *testing.T) {
	e := NewEngine()
	for n := 0; n < 12; n++ {
		for _, m := range Metrics {
			s := e.SeriesFor(m)
			assert.Len(t, s.Labels, e.Len())
			assert.Len(t, s.Values, e.Len())
		}
		require.NoError(t, e.Record(mustRecord(t, day(12-n), float64(n), float64(n*100), float64(n*10))))
	}
}

func TestEngineSeriesAreIndependent(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Record(mustRecord(t, day(1), 3, 300, 30)))

	miles := e.SeriesFor(Distance)
	cals := e.SeriesFor(Calories)
	miles.Values[0] = -1

	assert.Equal(t, []float64{300}, cals.Values)
	assert.Equal(t, []float64{3}, e.SeriesFor(Distance).Values)
}

func TestEngineSeriesForUnknownMetric(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Record(mustRecord(t, day(1), 3, 300, 30)))

	s := e.SeriesFor(Metric(7))
	assert.Equal(t, 0, s.Len())
	assert.Len(t, s.Labels, 0)
}

func TestEnginePointsIsRestartable(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Record(mustRecord(t, day(2), 2, 0, 0)))
	require.NoError(t, e.Record(mustRecord(t, day(1), 1, 0, 0)))

	points := e.Points(Distance)
	collect := func() []float64 {
		var out []float64
		for _, v := range points {
			out = append(out, v)
		}
		return out
	}

	assert.Equal(t, []float64{1, 2}, collect())
	assert.Equal(t, []float64{1, 2}, collect())

	// early break leaves nothing behind
	for range points {
		break
	}
	assert.Equal(t, []float64{1, 2}, collect())
}

func TestEngineCumulativeDistance(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, 0.0, e.CumulativeDistance())

	miles := []float64{3.1, 6.2, 13.1, 26.2}
	var want float64
	for i, m := range miles {
		require.NoError(t, e.Record(mustRecord(t, day(i+1), m, 0, 0)))
		want += m
	}
	assert.Equal(t, want, e.CumulativeDistance())
}

func TestEngineShoeState(t *testing.T) {
	tests := []struct {
		name  string
		miles []float64
		want  bool
	}{
		{"empty", nil, false},
		{"below threshold", []float64{100, 150, 149.99}, false},
		{"exactly threshold", []float64{200, 200}, true},
		{"above threshold", []float64{250, 250}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine()
			for i, m := range tt.miles {
				require.NoError(t, e.Record(mustRecord(t, day(i+1), m, 0, 0)))
			}

			state := e.ShoeState()
			assert.Equal(t, tt.want, state.NeedsReplacement)
			assert.Equal(t, ShoeThresholdMiles, state.ThresholdMiles)
			assert.Equal(t, e.CumulativeDistance(), state.CumulativeMiles)
		})
	}
}

func TestShoeStateHelpers(t *testing.T) {
	s := ShoeState{CumulativeMiles: 100, ThresholdMiles: 400}
	assert.Equal(t, 300.0, s.RemainingMiles())
	assert.Equal(t, 0.25, s.Progress())

	s = ShoeState{CumulativeMiles: 450, ThresholdMiles: 400, NeedsReplacement: true}
	assert.Equal(t, 0.0, s.RemainingMiles())
	assert.Equal(t, 1.0, s.Progress())
}

func TestEngineArchiveAndReset(t *testing.T) {
	e := NewEngine()
	in := []Record{
		mustRecord(t, day(3), 200, 0, 0),
		mustRecord(t, day(1), 150, 0, 0),
		mustRecord(t, day(2), 60, 0, 0),
	}
	require.NoError(t, e.Load(in))
	require.True(t, e.ShoeState().NeedsReplacement)

	archived := e.ArchiveAndReset()
	assert.Equal(t, in, archived)
	assert.Equal(t, 0.0, e.CumulativeDistance())
	assert.Equal(t, 0, e.Len())
	assert.Empty(t, e.SortedByDate())

	again := e.ArchiveAndReset()
	assert.NotNil(t, again)
	assert.Empty(t, again)
}

func TestEngineArchiveDoesNotAliasNewRecords(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Record(mustRecord(t, day(1), 1, 0, 0)))
	archived := e.ArchiveAndReset()

	require.NoError(t, e.Record(mustRecord(t, day(2), 2, 0, 0)))
	assert.Equal(t, []float64{1}, milesOf(archived))
}

func TestEngineRejectsInvalidRecords(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Record(mustRecord(t, day(1), 1, 0, 0)))

	var verr *ValidationError
	require.ErrorAs(t, e.Record(Record{}), &verr)
	assert.Equal(t, 1, e.Len())

	err := e.Load([]Record{mustRecord(t, day(2), 2, 0, 0), {}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []float64{1}, milesOf(e.SortedByDate()), "failed load must keep the previous working set")
}

func TestEngineLoadRaw(t *testing.T) {
	e := NewEngine()
	err := e.LoadRaw([]RawRecord{
		{Date: "2017-01-02", DistanceMiles: floatPtr(2), Calories: floatPtr(20), DurationMinutes: floatPtr(2)},
		{Date: "01/01/17", DistanceMiles: floatPtr(1), Calories: floatPtr(10), DurationMinutes: floatPtr(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, milesOf(e.SortedByDate()))

	err = e.LoadRaw([]RawRecord{
		{Date: "2017-01-05", DistanceMiles: floatPtr(5), Calories: floatPtr(50), DurationMinutes: floatPtr(5)},
		{Date: "2017-01-06", DistanceMiles: floatPtr(6)},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "calories", verr.Field)
	assert.Equal(t, 2, e.Len())
}

func TestEngineLoadReplacesWorkingSet(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Record(mustRecord(t, day(1), 1, 0, 0)))
	_ = e.SortedByDate() // warm the cache

	require.NoError(t, e.Load([]Record{mustRecord(t, day(4), 4, 0, 0)}))
	assert.Equal(t, []float64{4}, milesOf(e.SortedByDate()))
	assert.Equal(t, []float64{4}, e.SeriesFor(Distance).Values)
}

func TestEngineRecordsKeepsInsertionOrder(t *testing.T) {
	e := NewEngine()
	assert.NotNil(t, e.Records())
	assert.Empty(t, e.Records())

	require.NoError(t, e.Record(mustRecord(t, day(4), 4, 0, 0)))
	require.NoError(t, e.Record(mustRecord(t, day(1), 1, 0, 0)))

	got := e.Records()
	assert.Equal(t, []float64{4, 1}, milesOf(got))

	got[0] = mustRecord(t, day(9), 9, 0, 0)
	assert.Equal(t, []float64{4, 1}, milesOf(e.Records()))
}
