package models

import (
	"fmt"
	"strings"
)

// LeadStatus represents where a lead is in the sales pipeline
type LeadStatus string

const (
	LeadStatusNotContacted     LeadStatus = "Not contacted"
	LeadStatusContacted        LeadStatus = "Contacted"
	LeadStatusNeedsFollowUp    LeadStatus = "Needs follow-up"
	LeadStatusAppointmentSet   LeadStatus = "Appointment set"
	LeadStatusAwaitingDecision LeadStatus = "Awaiting decision"
	LeadStatusConverted        LeadStatus = "Converted"
	LeadStatusNotInterested    LeadStatus = "Not interested"
)

// LeadStatuses lists every status in pipeline order
var LeadStatuses = []LeadStatus{
	LeadStatusNotContacted,
	LeadStatusContacted,
	LeadStatusNeedsFollowUp,
	LeadStatusAppointmentSet,
	LeadStatusAwaitingDecision,
	LeadStatusConverted,
	LeadStatusNotInterested,
}

// IsValid reports whether s is one of the known statuses
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNotContacted,
		LeadStatusContacted,
		LeadStatusNeedsFollowUp,
		LeadStatusAppointmentSet,
		LeadStatusAwaitingDecision,
		LeadStatusConverted,
		LeadStatusNotInterested:
		return true
	default:
		return false
	}
}

// ParseLeadStatus matches value against the known statuses, ignoring case and
// surrounding whitespace
func ParseLeadStatus(value string) (LeadStatus, error) {
	value = strings.TrimSpace(value)
	if status := LeadStatus(value); status.IsValid() {
		return status, nil
	}
	for _, status := range LeadStatuses {
		if strings.EqualFold(string(status), value) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown lead status %q", value)
}

// LeadSource is free text describing where a lead came from. The constants
// are the values the team uses most; any other text is accepted.
type LeadSource string

const (
	LeadSourceFromList LeadSource = "From List"
	LeadSourceReferral LeadSource = "Referral"
	LeadSourceWalkIn   LeadSource = "Walk-in"
)

// DefaultLeadSource is applied when no source is given
const DefaultLeadSource = LeadSourceFromList

// UnassignedCohort groups leads that carry no cohort tag
const UnassignedCohort = "Unassigned"

// Lead is a prospective group leader
type Lead struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Location    string     `json:"location"`
	Status      LeadStatus `json:"status"`
	Remark      string     `json:"remark,omitempty"`
	Appointment string     `json:"appointment,omitempty"` // YYYY-MM-DD
	Salesperson string     `json:"salesperson,omitempty"`
	Source      LeadSource `json:"source"`
	Cohort      string     `json:"cohort,omitempty"`
	IsPromoted  bool       `json:"is_promoted"`
}

// CohortName returns the grouping tag, falling back to UnassignedCohort
func (l Lead) CohortName() string {
	if strings.TrimSpace(l.Cohort) == "" {
		return UnassignedCohort
	}
	return l.Cohort
}

// LeadInput is the payload for adding a lead by hand
type LeadInput struct {
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Status      string `json:"status"`
	Remark      string `json:"remark"`
	Appointment string `json:"appointment"`
	Salesperson string `json:"salesperson" binding:"required"`
	Source      string `json:"source"`
	Cohort      string `json:"cohort"`
}

// LeadUpdate carries the editable lead fields; nil means unchanged
type LeadUpdate struct {
	Status      *string `json:"status,omitempty"`
	Remark      *string `json:"remark,omitempty"`
	Appointment *string `json:"appointment,omitempty"`
	Salesperson *string `json:"salesperson,omitempty"`
}

// ActiveLeads returns the leads that have not been promoted
func ActiveLeads(leads []Lead) []Lead {
	active := make([]Lead, 0, len(leads))
	for _, lead := range leads {
		if !lead.IsPromoted {
			active = append(active, lead)
		}
	}
	return active
}

// FindLead returns the index of the lead with the given id, or -1
func FindLead(leads []Lead, id string) int {
	for i, lead := range leads {
		if lead.ID == id {
			return i
		}
	}
	return -1
}
