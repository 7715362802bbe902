package services

import (
	"time"

	"cloud.google.com/go/civil"

	"mindfuelAPI/internal/progress"
)

const sugarFreeThreshold = progress.SugarFreeThreshold

// civilToday is the UTC calendar date of now().
func civilToday(now func() time.Time) civil.Date {
	return civil.DateOf(now().UTC())
}
