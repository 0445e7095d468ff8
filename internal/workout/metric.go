package workout

import (
	"fmt"
	"strings"
)

// Metric is the y-axis dimension of a series
type Metric int

const (
	Distance Metric = iota // miles
	Calories               // kcal
	Duration               // minutes
)

// Metrics lists every metric in display order
var Metrics = []Metric{Distance, Calories, Duration}

// String returns the legend label for the metric
func (m Metric) String() string {
	switch m {
	case Distance:
		return "Miles"
	case Calories:
		return "Calories"
	case Duration:
		return "Minutes"
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// ParseMetric parses a legend label ("miles", "Calories", ...)
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}

// Series is a chart-ready sequence of (label, value) pairs in chronological order.
// Labels[i] and Values[i] always refer to the same workout.
type Series struct {
	Metric Metric
	Labels []string
	Values []float64
}

// Len returns the number of points in the series
func (s Series) Len() int {
	return len(s.Values)
}
