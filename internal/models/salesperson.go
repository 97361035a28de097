package models

// Salesperson is a member of the sales team. Leads, leaders and check-ins
// reference salespeople by Name, so names are unique within the team.
type Salesperson struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Region     string `json:"region"`
	JoinedDate string `json:"joined_date"` // YYYY-MM-DD
}

// SalespersonInput is the payload for adding a salesperson
type SalespersonInput struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Region     string `json:"region" binding:"required"`
	JoinedDate string `json:"joined_date" binding:"required"`
}

// FindSalesperson returns the team member with the given name
func FindSalesperson(team []Salesperson, name string) (Salesperson, bool) {
	for _, sp := range team {
		if sp.Name == name {
			return sp, true
		}
	}
	return Salesperson{}, false
}
