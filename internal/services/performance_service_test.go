package services

import (
	"testing"
	"time"

	"github.com/chipchip/sgl-tracker/internal/models"
	"github.com/chipchip/sgl-tracker/pkg/dateutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leadersUpgradedOn(date, salesperson string, count int, ordered int) []models.OnboardedLeader {
	leaders := make([]models.OnboardedLeader, 0, count)
	for i := 0; i < count; i++ {
		leaders = append(leaders, models.OnboardedLeader{
			ID:          salesperson + "-" + date + "-" + string(rune('a'+i)),
			UpgradeDate: date,
			Salesperson: salesperson,
			Ordered:     i < ordered,
		})
	}
	return leaders
}

func TestWeeklySalesPerformance(t *testing.T) {
	aggregator := NewPerformanceAggregator(6)
	week := dateutil.WeekRange(may1)
	team := []models.Salesperson{{Name: "Sara"}, {Name: "Dawit"}, {Name: "Hana"}}

	var leaders []models.OnboardedLeader
	leaders = append(leaders, leadersUpgradedOn("2024-04-29", "Sara", 3, 1)...)
	leaders = append(leaders, leadersUpgradedOn("2024-05-02", "Dawit", 9, 4)...)
	leaders = append(leaders, leadersUpgradedOn("2024-04-27", "Sara", 2, 2)...) // previous week
	leaders = append(leaders, leadersUpgradedOn("2024-05-04", "", 1, 1)...)     // unassigned
	leaders = append(leaders, leadersUpgradedOn("2024-04-28", "Meron", 1, 0)...) // not on the team
	leaders = append(leaders, models.OnboardedLeader{ID: "bad", UpgradeDate: "soon", Salesperson: "Sara"})

	result := aggregator.WeeklySalesPerformance(leaders, team, week, "")

	assert.Equal(t, 6, result.WeeklyTarget)
	assert.Equal(t, 14, result.TotalUpgraded)
	assert.Equal(t, 6, result.TotalOrdered)

	require.Len(t, result.Salespeople, 4)
	assert.Equal(t, models.SalesPerformance{SalespersonName: "Sara", UpgradedCount: 3, OrderedCount: 1, Progress: 50}, result.Salespeople[0])
	assert.Equal(t, models.SalesPerformance{SalespersonName: "Dawit", UpgradedCount: 9, OrderedCount: 4, Progress: 100}, result.Salespeople[1])
	assert.Equal(t, models.SalesPerformance{SalespersonName: "Hana"}, result.Salespeople[2])
	assert.Equal(t, "Meron", result.Salespeople[3].SalespersonName)
	assert.Equal(t, 1, result.Salespeople[3].UpgradedCount)
}

func TestWeeklySalesPerformance_Filter(t *testing.T) {
	aggregator := NewPerformanceAggregator(6)
	week := dateutil.WeekRange(may1)
	team := []models.Salesperson{{Name: "Sara"}, {Name: "Dawit"}}

	var leaders []models.OnboardedLeader
	leaders = append(leaders, leadersUpgradedOn("2024-04-29", "Sara", 2, 2)...)
	leaders = append(leaders, leadersUpgradedOn("2024-04-30", "Dawit", 5, 0)...)

	result := aggregator.WeeklySalesPerformance(leaders, team, week, "Sara")

	assert.Equal(t, 2, result.TotalUpgraded)
	assert.Equal(t, 2, result.TotalOrdered)
	require.Len(t, result.Salespeople, 1)
	assert.Equal(t, "Sara", result.Salespeople[0].SalespersonName)
	assert.InDelta(t, 33.333, result.Salespeople[0].Progress, 0.01)
}

func TestWeeklySalesPerformance_Empty(t *testing.T) {
	aggregator := NewPerformanceAggregator(6)
	result := aggregator.WeeklySalesPerformance(nil, nil, dateutil.WeekRange(may1), "")

	assert.NotNil(t, result.Salespeople)
	assert.Empty(t, result.Salespeople)
	assert.Zero(t, result.TotalUpgraded)
}

func TestProgress(t *testing.T) {
	aggregator := NewPerformanceAggregator(6)

	tests := []struct {
		upgraded int
		expected float64
	}{
		{0, 0},
		{3, 50},
		{6, 100},
		{9, 100},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, aggregator.Progress(tc.upgraded))
	}

	fallback := NewPerformanceAggregator(0).WeeklySalesPerformance(nil, nil, dateutil.WeekRange(may1), "")
	assert.Equal(t, DefaultWeeklyTarget, fallback.WeeklyTarget)
}

func TestCohortInsights(t *testing.T) {
	aggregator := NewPerformanceAggregator(6)
	leads := []models.Lead{
		{ID: "1", Cohort: "A"},
		{ID: "2", Cohort: "A"},
		{ID: "3", Cohort: "B"},
	}
	leaders := []models.OnboardedLeader{{ID: "1"}}

	insights := aggregator.CohortInsights(leads, leaders)

	require.Len(t, insights, 2)
	assert.Equal(t, models.CohortInsight{
		Name: "A", TotalLeads: 2, PromotedLeads: 1, ConversionRate: 50, RateLabel: "50.0", Tier: models.TierMedium,
	}, insights[0])
	assert.Equal(t, models.CohortInsight{
		Name: "B", TotalLeads: 1, PromotedLeads: 0, ConversionRate: 0, RateLabel: "0.0", Tier: models.TierLow,
	}, insights[1])
}

func TestCohortInsights_UnassignedAndOrdering(t *testing.T) {
	aggregator := NewPerformanceAggregator(6)
	leads := []models.Lead{
		{ID: "1", Cohort: "Small"},
		{ID: "2"},
		{ID: "3", Cohort: "  "},
		{ID: "4", Cohort: "Tie"},
		{ID: "5", Cohort: "Tie"},
	}
	// A promoted lead whose flag was never set still counts through the leader
	leaders := []models.OnboardedLeader{{ID: "2"}, {ID: "3"}, {ID: "99"}}

	insights := aggregator.CohortInsights(leads, leaders)

	require.Len(t, insights, 3)
	assert.Equal(t, models.UnassignedCohort, insights[0].Name)
	assert.Equal(t, 2, insights[0].PromotedLeads)
	assert.Equal(t, models.TierHigh, insights[0].Tier)
	assert.Equal(t, "100.0", insights[0].RateLabel)
	assert.Equal(t, "Tie", insights[1].Name, "ties keep encounter order")
	assert.Equal(t, "Small", insights[2].Name)
}

func TestClassifyTier(t *testing.T) {
	tests := []struct {
		rate     float64
		expected models.ConversionTier
	}{
		{0, models.TierLow},
		{33, models.TierLow},
		{33.1, models.TierMedium},
		{66, models.TierMedium},
		{66.7, models.TierHigh},
		{100, models.TierHigh},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, ClassifyTier(tc.rate), "rate %v", tc.rate)
	}
}

func TestConversionRate(t *testing.T) {
	assert.Equal(t, 0.0, ConversionRate(0, 0))
	assert.Equal(t, 50.0, ConversionRate(1, 2))
	assert.Equal(t, "33.3", RateLabel(ConversionRate(1, 3)))
	assert.Equal(t, "66.7", RateLabel(ConversionRate(2, 3)))
}

func TestNeedsFollowUp(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		leader   models.OnboardedLeader
		expected bool
	}{
		{"Old and not ordered", models.OnboardedLeader{UpgradeDate: "2024-05-01"}, true},
		{"Old but ordered", models.OnboardedLeader{UpgradeDate: "2024-05-01", Ordered: true}, false},
		{"Promoted today", models.OnboardedLeader{UpgradeDate: "2024-05-10"}, false},
		{"Exactly three days", models.OnboardedLeader{UpgradeDate: "2024-05-07"}, true},
		{"Two days", models.OnboardedLeader{UpgradeDate: "2024-05-08"}, false},
		{"Unparseable date", models.OnboardedLeader{UpgradeDate: "someday"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NeedsFollowUp(tc.leader, now, 3))
		})
	}
}
