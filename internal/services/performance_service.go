package services

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/chipchip/sgl-tracker/internal/models"
	"github.com/chipchip/sgl-tracker/pkg/dateutil"
)

// DefaultWeeklyTarget is the number of promotions expected per salesperson per week
const DefaultWeeklyTarget = 6

// Tier thresholds on the conversion rate, in percent
const (
	highTierAbove   = 66.0
	mediumTierAbove = 33.0
)

// PerformanceAggregator computes the dashboard figures. All methods are pure
// functions of their inputs.
type PerformanceAggregator struct {
	weeklyTarget int
}

// NewPerformanceAggregator creates an aggregator. A non-positive target falls
// back to DefaultWeeklyTarget.
func NewPerformanceAggregator(weeklyTarget int) *PerformanceAggregator {
	if weeklyTarget <= 0 {
		weeklyTarget = DefaultWeeklyTarget
	}
	return &PerformanceAggregator{weeklyTarget: weeklyTarget}
}

// WeeklySalesPerformance counts promotions and orders per salesperson for leaders
// upgraded inside week. An empty filter includes the whole team.
//
// Team members get a row even with no activity. A leader assigned to someone
// outside the team still gets a row, appended in encounter order. Leaders with
// no salesperson count toward the totals only.
func (a *PerformanceAggregator) WeeklySalesPerformance(
	leaders []models.OnboardedLeader,
	team []models.Salesperson,
	week dateutil.Week,
	filter string,
) models.WeeklyPerformance {
	result := models.WeeklyPerformance{
		WeekStart:    week.Start,
		WeekEnd:      week.End,
		WeeklyTarget: a.weeklyTarget,
		Salespeople:  []models.SalesPerformance{},
	}

	rows := make(map[string]int)
	addRow := func(name string) int {
		if idx, ok := rows[name]; ok {
			return idx
		}
		rows[name] = len(result.Salespeople)
		result.Salespeople = append(result.Salespeople, models.SalesPerformance{SalespersonName: name})
		return rows[name]
	}

	for _, sp := range team {
		if filter == "" || sp.Name == filter {
			addRow(sp.Name)
		}
	}

	for _, leader := range leaders {
		if !dateutil.IsInWeek(leader.UpgradeDate, week.Start, week.End) {
			continue
		}
		if filter != "" && leader.Salesperson != filter {
			continue
		}

		result.TotalUpgraded++
		if leader.Ordered {
			result.TotalOrdered++
		}

		if leader.Salesperson == "" {
			continue
		}
		row := &result.Salespeople[addRow(leader.Salesperson)]
		row.UpgradedCount++
		if leader.Ordered {
			row.OrderedCount++
		}
	}

	for i := range result.Salespeople {
		result.Salespeople[i].Progress = a.Progress(result.Salespeople[i].UpgradedCount)
	}

	return result
}

// Progress converts an upgraded count into a percentage of the weekly target, capped at 100
func (a *PerformanceAggregator) Progress(upgraded int) float64 {
	if a.weeklyTarget <= 0 {
		return 0
	}
	return math.Min(float64(upgraded)/float64(a.weeklyTarget)*100, 100)
}

// CohortInsights summarizes conversion per cohort over all time. A lead counts as
// promoted when a leader with its id exists. Results are ordered by lead count,
// largest first, keeping encounter order on ties.
func (a *PerformanceAggregator) CohortInsights(
	leads []models.Lead,
	leaders []models.OnboardedLeader,
) []models.CohortInsight {
	promoted := make(map[string]struct{}, len(leaders))
	for _, leader := range leaders {
		promoted[leader.ID] = struct{}{}
	}

	insights := []models.CohortInsight{}
	index := make(map[string]int)
	for _, lead := range leads {
		name := lead.CohortName()
		idx, ok := index[name]
		if !ok {
			idx = len(insights)
			index[name] = idx
			insights = append(insights, models.CohortInsight{Name: name})
		}

		insights[idx].TotalLeads++
		if _, ok := promoted[lead.ID]; ok {
			insights[idx].PromotedLeads++
		}
	}

	for i := range insights {
		rate := ConversionRate(insights[i].PromotedLeads, insights[i].TotalLeads)
		insights[i].ConversionRate = rate
		insights[i].RateLabel = RateLabel(rate)
		insights[i].Tier = ClassifyTier(rate)
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].TotalLeads > insights[j].TotalLeads
	})

	return insights
}

// ConversionRate returns promoted/total as a percentage; 0 when total is 0
func ConversionRate(promoted, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(promoted) / float64(total) * 100
}

// RateLabel renders a rate with one decimal place
func RateLabel(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 1, 64)
}

// ClassifyTier buckets a conversion rate
func ClassifyTier(rate float64) models.ConversionTier {
	switch {
	case rate > highTierAbove:
		return models.TierHigh
	case rate > mediumTierAbove:
		return models.TierMedium
	default:
		return models.TierLow
	}
}

// NeedsFollowUp reports whether a leader has gone unordered for more than
// afterDays since promotion. An unparseable upgrade date never needs follow-up.
func NeedsFollowUp(leader models.OnboardedLeader, now time.Time, afterDays int) bool {
	if leader.Ordered {
		return false
	}
	upgraded, err := dateutil.ParseDateIn(leader.UpgradeDate, now.Location())
	if err != nil {
		return false
	}
	return upgraded.Before(now.AddDate(0, 0, -afterDays))
}
