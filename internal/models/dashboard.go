package models

import "time"

// SalesPerformance is one salesperson's row on the weekly dashboard
type SalesPerformance struct {
	SalespersonName string  `json:"salesperson_name"`
	UpgradedCount   int     `json:"upgraded_count"`
	OrderedCount    int     `json:"ordered_count"`
	Progress        float64 `json:"progress"` // percent of the weekly target, capped at 100
}

// WeeklyPerformance is the weekly dashboard for one window
type WeeklyPerformance struct {
	WeekStart     time.Time          `json:"week_start"`
	WeekEnd       time.Time          `json:"week_end"`
	WeeklyTarget  int                `json:"weekly_target"`
	TotalUpgraded int                `json:"total_upgraded"`
	TotalOrdered  int                `json:"total_ordered"`
	Salespeople   []SalesPerformance `json:"salespeople"`
}

// ConversionTier buckets a cohort's conversion rate
type ConversionTier string

const (
	TierHigh   ConversionTier = "high"
	TierMedium ConversionTier = "medium"
	TierLow    ConversionTier = "low"
)

// CohortInsight is the all-time conversion summary of one cohort
type CohortInsight struct {
	Name           string         `json:"name"`
	TotalLeads     int            `json:"total_leads"`
	PromotedLeads  int            `json:"promoted_leads"`
	ConversionRate float64        `json:"conversion_rate"`
	RateLabel      string         `json:"rate_label"` // one decimal place, e.g. "50.0"
	Tier           ConversionTier `json:"tier"`
}
