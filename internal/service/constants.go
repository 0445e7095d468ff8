package service

import "time"

const (
	// Rounding applied to sensor imports
	DraftMilesPlaces    = 2
	DraftCaloriesPlaces = 2

	// Time budget for one archive delivery
	SendTimeout = 30 * time.Second

	// Default look-back for a sensor import when none was done before
	DefaultImportWindow = 2 * time.Hour
)
