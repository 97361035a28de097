package services

import (
	"errors"
	"fmt"
)

// ValidationError represents invalid user input. The operation is aborted
// before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError represents a reference to a record that does not exist
type NotFoundError struct {
	Entity string // "lead", "leader", "salesperson"
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// DuplicateCheckInError is returned when a salesperson already checked in on Date
type DuplicateCheckInError struct {
	SalespersonName string
	Date            string
}

func (e *DuplicateCheckInError) Error() string {
	return fmt.Sprintf("%s has already checked in on %s", e.SalespersonName, e.Date)
}

// AlreadyPromotedError is returned when a lead already has an onboarded leader
type AlreadyPromotedError struct {
	LeadID string
}

func (e *AlreadyPromotedError) Error() string {
	return fmt.Sprintf("lead %q has already been promoted", e.LeadID)
}

// DuplicateSalespersonError is returned when a team member with the same name exists
type DuplicateSalespersonError struct {
	Name string
}

func (e *DuplicateSalespersonError) Error() string {
	return fmt.Sprintf("salesperson %q already exists", e.Name)
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err wraps a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict reports whether err is one of the invariant violations that
// reject a write because the record already exists
func IsConflict(err error) bool {
	var (
		checkIn     *DuplicateCheckInError
		promoted    *AlreadyPromotedError
		salesperson *DuplicateSalespersonError
	)
	return errors.As(err, &checkIn) || errors.As(err, &promoted) || errors.As(err, &salesperson)
}
