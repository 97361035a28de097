package services

import (
	"strings"
	"time"

	"github.com/chipchip/sgl-tracker/internal/models"
	"github.com/chipchip/sgl-tracker/pkg/dateutil"
	"github.com/google/uuid"
)

// CheckInTracker enforces one check-in per salesperson per calendar day
type CheckInTracker struct {
	now   func() time.Time
	newID func() string
}

// NewCheckInTracker creates a tracker stamping records with now
func NewCheckInTracker(now func() time.Time) *CheckInTracker {
	if now == nil {
		now = time.Now
	}
	return &CheckInTracker{
		now:   now,
		newID: uuid.NewString,
	}
}

// HasCheckedIn reports whether records already hold a check-in for (name, date)
func HasCheckedIn(records []models.CheckInRecord, name, date string) bool {
	for _, r := range records {
		if r.SalespersonName == name && r.Date == date {
			return true
		}
	}
	return false
}

// CheckInsForDate returns the records whose date equals date, in stored order
func CheckInsForDate(records []models.CheckInRecord, date string) []models.CheckInRecord {
	matched := []models.CheckInRecord{}
	for _, r := range records {
		if r.Date == date {
			matched = append(matched, r)
		}
	}
	return matched
}

// CheckIn creates the check-in for name on date. It fails with
// DuplicateCheckInError when one already exists in records.
func (t *CheckInTracker) CheckIn(records []models.CheckInRecord, name, date string) (models.CheckInRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CheckInRecord{}, &ValidationError{Field: "salesperson_name", Message: "is required"}
	}
	if !dateutil.IsDate(date) {
		return models.CheckInRecord{}, &ValidationError{Field: "date", Message: dateutil.ErrInvalidDate.Error()}
	}
	if HasCheckedIn(records, name, date) {
		return models.CheckInRecord{}, &DuplicateCheckInError{SalespersonName: name, Date: date}
	}

	return models.CheckInRecord{
		ID:              t.newID(),
		SalespersonName: name,
		Date:            date,
		Timestamp:       t.now(),
	}, nil
}
