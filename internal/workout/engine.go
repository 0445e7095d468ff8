package workout

import (
	"iter"
	"sort"
)

// ShoeThresholdMiles is the mileage after which shoes should be replaced
const ShoeThresholdMiles = 400.0

// ShoeState summarizes the mileage on the current pair of shoes
type ShoeState struct {
	CumulativeMiles  float64
	ThresholdMiles   float64
	NeedsReplacement bool
}

// RemainingMiles returns the miles left before the threshold, never negative
func (s ShoeState) RemainingMiles() float64 {
	if s.CumulativeMiles >= s.ThresholdMiles {
		return 0
	}
	return s.ThresholdMiles - s.CumulativeMiles
}

// Progress returns the fraction of the threshold used, clamped to [0, 1]
func (s ShoeState) Progress() float64 {
	if s.ThresholdMiles <= 0 {
		return 1
	}
	p := s.CumulativeMiles / s.ThresholdMiles
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// Engine owns the working set of workouts for the current shoe period.
// It performs no I/O and is not safe for concurrent use.
type Engine struct {
	records []Record // insertion order
	sorted  []Record // cached chronological order, nil when stale
}

// NewEngine returns an engine with an empty working set
func NewEngine() *Engine {
	return &Engine{}
}

// Load replaces the working set. If any record is invalid the working set
// is left unchanged.
func (e *Engine) Load(records []Record) error {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	e.records = append([]Record(nil), records...)
	e.sorted = nil
	return nil
}

// LoadRaw parses persistence rows and replaces the working set.
// Nothing is loaded unless every row parses.
func (e *Engine) LoadRaw(rows []RawRecord) error {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		r, err := ParseRecord(row)
		if err != nil {
			return err
		}
		records = append(records, r)
	}
	return e.Load(records)
}

// Record appends a workout to the working set
func (e *Engine) Record(r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	e.records = append(e.records, r)
	e.sorted = nil
	return nil
}

// Len returns the size of the working set
func (e *Engine) Len() int {
	return len(e.records)
}

// Records returns a copy of the working set in insertion order
func (e *Engine) Records() []Record {
	return append([]Record{}, e.records...)
}

// SortedByDate returns the working set ordered by date ascending.
// Records sharing a date keep their insertion order.
func (e *Engine) SortedByDate() []Record {
	if e.sorted == nil {
		e.sorted = append(make([]Record, 0, len(e.records)), e.records...)
		sort.SliceStable(e.sorted, func(i, j int) bool {
			return e.sorted[i].date.Before(e.sorted[j].date)
		})
	}
	return append([]Record(nil), e.sorted...)
}

// SeriesFor builds the chronological series for one metric
func (e *Engine) SeriesFor(m Metric) Series {
	s := Series{Metric: m, Labels: []string{}, Values: []float64{}}
	for label, value := range e.Points(m) {
		s.Labels = append(s.Labels, label)
		s.Values = append(s.Values, value)
	}
	return s
}

// Points yields (label, value) pairs for a metric in chronological order.
// Each iteration starts from a fresh snapshot of the working set.
func (e *Engine) Points(m Metric) iter.Seq2[string, float64] {
	return func(yield func(string, float64) bool) {
		for _, r := range e.SortedByDate() {
			v, ok := r.Value(m)
			if !ok {
				return
			}
			if !yield(r.Label(), v) {
				return
			}
		}
	}
}

// CumulativeDistance returns the total miles in the working set
func (e *Engine) CumulativeDistance() float64 {
	var total float64
	for _, r := range e.records {
		total += r.distanceMiles
	}
	return total
}

// ShoeState reports whether the current shoes have reached the threshold
func (e *Engine) ShoeState() ShoeState {
	miles := e.CumulativeDistance()
	return ShoeState{
		CumulativeMiles:  miles,
		ThresholdMiles:   ShoeThresholdMiles,
		NeedsReplacement: miles >= ShoeThresholdMiles,
	}
}

// ArchiveAndReset returns the whole working set in insertion order and
// clears it. On an empty working set it returns an empty slice.
// The engine does not check ShoeState; callers decide when to archive.
func (e *Engine) ArchiveAndReset() []Record {
	archived := e.records
	if archived == nil {
		archived = []Record{}
	}
	e.records = nil
	e.sorted = nil
	return archived
}
