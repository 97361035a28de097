package models

// OnboardedLeader is a lead that has been promoted. ID equals the source lead's
// ID; Name and Phone are frozen at promotion time.
type OnboardedLeader struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Location    string     `json:"location"`
	UpgradeDate string     `json:"upgrade_date"` // YYYY-MM-DD
	Ordered     bool       `json:"ordered"`
	Salesperson string     `json:"salesperson,omitempty"`
	Source      LeadSource `json:"source"`
	Cohort      string     `json:"cohort,omitempty"`
	Remark      string     `json:"remark,omitempty"`
}

// LeaderUpdate carries the editable leader fields; nil means unchanged.
// Name and phone are deliberately absent.
type LeaderUpdate struct {
	Ordered     *bool   `json:"ordered,omitempty"`
	Remark      *string `json:"remark,omitempty"`
	Salesperson *string `json:"salesperson,omitempty"`
}

// LeaderView is a leader annotated with its follow-up flag
type LeaderView struct {
	OnboardedLeader
	NeedsFollowUp bool `json:"needs_follow_up"`
}

// FindLeader returns the index of the leader with the given id, or -1
func FindLeader(leaders []OnboardedLeader, id string) int {
	for i, leader := range leaders {
		if leader.ID == id {
			return i
		}
	}
	return -1
}
