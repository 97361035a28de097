package services

import (
	"time"

	"github.com/chipchip/sgl-tracker/internal/models"
	"github.com/chipchip/sgl-tracker/pkg/dateutil"
)

// PromotionEngine turns leads into onboarded leaders. It never touches storage;
// callers append the results to their collections.
type PromotionEngine struct {
	now func() time.Time
}

// NewPromotionEngine creates a promotion engine. now supplies the promotion
// moment and should already be in the tracker's time zone.
func NewPromotionEngine(now func() time.Time) *PromotionEngine {
	if now == nil {
		now = time.Now
	}
	return &PromotionEngine{now: now}
}

// Promote returns a copy of lead marked as promoted and the leader created from it.
// The leader carries the lead's id and an upgrade date of today.
func (e *PromotionEngine) Promote(lead models.Lead) (models.Lead, models.OnboardedLeader) {
	updated := lead
	updated.IsPromoted = true

	leader := models.OnboardedLeader{
		ID:          lead.ID,
		Name:        lead.Name,
		Phone:       lead.Phone,
		Location:    lead.Location,
		UpgradeDate: dateutil.FormatDate(e.now()),
		Ordered:     false,
		Salesperson: lead.Salesperson,
		Source:      lead.Source,
		Cohort:      lead.Cohort,
		Remark:      lead.Remark,
	}

	return updated, leader
}

// PromoteByID promotes the lead with the given id inside the supplied collections
// and returns the updated collections. The inputs are not modified.
//
// Returns NotFoundError when no lead has that id and AlreadyPromotedError when
// the lead is flagged as promoted or a leader with its id already exists.
func (e *PromotionEngine) PromoteByID(
	leads []models.Lead,
	leaders []models.OnboardedLeader,
	id string,
) ([]models.Lead, []models.OnboardedLeader, models.OnboardedLeader, error) {
	idx := models.FindLead(leads, id)
	if idx < 0 {
		return nil, nil, models.OnboardedLeader{}, &NotFoundError{Entity: "lead", ID: id}
	}

	lead := leads[idx]
	if lead.IsPromoted || models.FindLeader(leaders, id) >= 0 {
		return nil, nil, models.OnboardedLeader{}, &AlreadyPromotedError{LeadID: id}
	}

	updated, leader := e.Promote(lead)

	nextLeads := make([]models.Lead, len(leads))
	copy(nextLeads, leads)
	nextLeads[idx] = updated

	nextLeaders := make([]models.OnboardedLeader, 0, len(leaders)+1)
	nextLeaders = append(nextLeaders, leaders...)
	nextLeaders = append(nextLeaders, leader)

	return nextLeads, nextLeaders, leader, nil
}
