package models

import "time"

// CheckInRecord marks a salesperson's daily check-in. At most one record
// exists per (SalespersonName, Date).
type CheckInRecord struct {
	ID              string    `json:"id"`
	SalespersonName string    `json:"salesperson_name"`
	Date            string    `json:"date"` // YYYY-MM-DD
	Timestamp       time.Time `json:"timestamp"`
}

// CheckInRequest is the payload for checking in
type CheckInRequest struct {
	SalespersonName string `json:"salesperson_name" binding:"required"`
}
