package stats

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func TestTotalDays(t *testing.T) {
	today := civil.Date{Year: 2024, Month: 3, Day: 10}
	first := civil.Date{Year: 2024, Month: 3, Day: 1}
	future := civil.Date{Year: 2024, Month: 3, Day: 12}

	assert.Equal(t, 0, TotalDays(nil, today))
	assert.Equal(t, 10, TotalDays(&first, today))
	assert.Equal(t, 1, TotalDays(&today, today))
	assert.Equal(t, 0, TotalDays(&future, today))
}
