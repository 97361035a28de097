package services

import (
	"testing"

	"github.com/chipchip/sgl-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInTracker_CheckIn(t *testing.T) {
	tracker := NewCheckInTracker(fixedClock(may1))

	first, err := tracker.CheckIn(nil, "Abebe", "2024-05-01")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Abebe", first.SalespersonName)
	assert.Equal(t, "2024-05-01", first.Date)
	assert.Equal(t, may1, first.Timestamp)

	records := []models.CheckInRecord{first}

	_, err = tracker.CheckIn(records, "Abebe", "2024-05-01")
	var duplicate *DuplicateCheckInError
	require.ErrorAs(t, err, &duplicate)
	assert.Equal(t, "Abebe", duplicate.SalespersonName)
	assert.Equal(t, "2024-05-01", duplicate.Date)

	next, err := tracker.CheckIn(records, "Abebe", "2024-05-02")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, next.ID)

	_, err = tracker.CheckIn(records, "Sara", "2024-05-01")
	assert.NoError(t, err)
}

func TestCheckInTracker_Validation(t *testing.T) {
	tracker := NewCheckInTracker(fixedClock(may1))

	_, err := tracker.CheckIn(nil, "   ", "2024-05-01")
	assert.True(t, IsValidationError(err))

	_, err = tracker.CheckIn(nil, "Abebe", "May 1")
	assert.True(t, IsValidationError(err))
}

func TestHasCheckedIn(t *testing.T) {
	records := []models.CheckInRecord{
		{SalespersonName: "Abebe", Date: "2024-05-01"},
		{SalespersonName: "Sara", Date: "2024-05-02"},
	}

	assert.True(t, HasCheckedIn(records, "Abebe", "2024-05-01"))
	assert.False(t, HasCheckedIn(records, "Abebe", "2024-05-02"))
	assert.False(t, HasCheckedIn(nil, "Abebe", "2024-05-01"))
}

func TestCheckInsForDate(t *testing.T) {
	records := []models.CheckInRecord{
		{ID: "1", SalespersonName: "Abebe", Date: "2024-05-01"},
		{ID: "2", SalespersonName: "Sara", Date: "2024-05-02"},
		{ID: "3", SalespersonName: "Sara", Date: "2024-05-01"},
	}

	matched := CheckInsForDate(records, "2024-05-01")
	require.Len(t, matched, 2)
	assert.Equal(t, "1", matched[0].ID)
	assert.Equal(t, "3", matched[1].ID)

	assert.Empty(t, CheckInsForDate(records, "2024-06-01"))
}
