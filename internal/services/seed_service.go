package services

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/chipchip/sgl-tracker/internal/models"
	"github.com/chipchip/sgl-tracker/pkg/dateutil"
)

// SeedOptions configures demo data generation
type SeedOptions struct {
	Salespeople  int
	Leads        int
	PromoteRatio float64 // 0.0-1.0 share of generated leads promoted
	Seed         int64   // same seed, same data
}

// SeedSummary reports what was generated
type SeedSummary struct {
	Salespeople int `json:"salespeople"`
	Leads       int `json:"leads"`
	Promoted    int `json:"promoted"`
}

var (
	seedRegions   = []string{"Addis Ababa", "Adama", "Bahir Dar", "Hawassa", "Dire Dawa", "Mekelle"}
	seedLocations = []string{"Bole", "Piassa", "Kazanchis", "CMC", "Megenagna", "Sarbet", "Ayat", "Gerji"}
	seedCohorts   = []string{"Week 1 list", "Week 2 list", "Referral drive", ""}
	seedSources   = []models.LeadSource{models.LeadSourceFromList, models.LeadSourceReferral, models.LeadSourceWalkIn}
)

// SeedDemoData fills the tracker with fake salespeople and leads through the
// regular operations, so every validation rule still applies.
func SeedDemoData(tracker *TrackerService, opts SeedOptions) (SeedSummary, error) {
	faker := gofakeit.New(opts.Seed)
	summary := SeedSummary{}

	names := make([]string, 0, opts.Salespeople)
	for attempts := 0; len(names) < opts.Salespeople && attempts < opts.Salespeople*5; attempts++ {
		joined := tracker.Now().AddDate(0, 0, -faker.Number(7, 365))
		sp, _, err := tracker.AddSalesperson(models.SalespersonInput{
			Name:       faker.FirstName(),
			Phone:      fakePhone(faker),
			Region:     faker.RandomString(seedRegions),
			JoinedDate: dateutil.FormatDate(joined),
		})
		if IsConflict(err) {
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("failed to seed salesperson: %w", err)
		}
		names = append(names, sp.Name)
		summary.Salespeople++
	}
	if len(names) == 0 {
		return summary, &ValidationError{Field: "salespeople", Message: "at least one salesperson is needed to seed leads"}
	}

	for i := 0; i < opts.Leads; i++ {
		status := models.LeadStatuses[faker.Number(0, len(models.LeadStatuses)-1)]
		lead, _, err := tracker.AddLead(models.LeadInput{
			Name:        faker.Name(),
			Phone:       fakePhone(faker),
			Location:    faker.RandomString(seedLocations),
			Status:      string(status),
			Salesperson: faker.RandomString(names),
			Source:      string(seedSources[faker.Number(0, len(seedSources)-1)]),
			Cohort:      faker.RandomString(seedCohorts),
		})
		if err != nil {
			return summary, fmt.Errorf("failed to seed lead: %w", err)
		}
		summary.Leads++

		if faker.Float64Range(0, 1) < opts.PromoteRatio {
			if _, err := tracker.PromoteLead(lead.ID); err != nil {
				return summary, fmt.Errorf("failed to promote seeded lead: %w", err)
			}
			summary.Promoted++
		}
	}

	return summary, nil
}

// fakePhone returns a local-format number, written the way people type them
func fakePhone(faker *gofakeit.Faker) string {
	subscriber := faker.Number(10000000, 99999999)
	switch faker.Number(0, 2) {
	case 0:
		return fmt.Sprintf("09%08d", subscriber)
	case 1:
		return fmt.Sprintf("+251 9%08d", subscriber)
	default:
		return fmt.Sprintf("9%08d", subscriber)
	}
}
