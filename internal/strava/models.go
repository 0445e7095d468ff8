package strava

import "time"

// Activity is the subset of a Strava activity the sensor reads
type Activity struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	SportType      string    `json:"sport_type"`
	StartDate      time.Time `json:"start_date"`
	StartDateLocal time.Time `json:"start_date_local"`
	Distance       float64   `json:"distance"`     // meters
	MovingTime     int       `json:"moving_time"`  // seconds
	ElapsedTime    int       `json:"elapsed_time"` // seconds
	Manual         bool      `json:"manual"`
}

// End returns when the activity finished
func (a Activity) End() time.Time {
	return a.StartDate.Add(time.Duration(a.ElapsedTime) * time.Second)
}

func (a Activity) uploaded() bool {
	return a.Manual && a.Name == UploadName
}

// IsRun reports whether the activity counts toward shoe mileage
func (a Activity) IsRun() bool {
	switch a.SportType {
	case "Run", "TrailRun", "VirtualRun", "Walk", "Hike":
		return true
	case "":
		return a.Type == "Run" || a.Type == "Walk" || a.Type == "Hike"
	}
	return false
}

// NewActivity is the body of a manual activity upload
type NewActivity struct {
	Name           string  `json:"name"`
	SportType      string  `json:"sport_type"`
	StartDateLocal string  `json:"start_date_local"` // ISO 8601
	ElapsedTime    int     `json:"elapsed_time"`     // seconds
	Distance       float64 `json:"distance"`         // meters
	Description    string  `json:"description,omitempty"`
}
