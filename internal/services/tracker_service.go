package services

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chipchip/sgl-tracker/internal/database"
	"github.com/chipchip/sgl-tracker/internal/models"
	"github.com/chipchip/sgl-tracker/pkg/dateutil"
	"github.com/chipchip/sgl-tracker/pkg/validator"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ExportFormat selects the export encoding
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat accepts "csv" (also the default for empty input) or "xlsx"
func ParseExportFormat(value string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FormatCSV):
		return FormatCSV, nil
	case string(FormatXLSX):
		return FormatXLSX, nil
	default:
		return "", &ValidationError{Field: "format", Message: fmt.Sprintf("unsupported export format %q", value)}
	}
}

// ContentType returns the MIME type of the format
func (f ExportFormat) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// EventRecorder receives domain events for metrics
type EventRecorder interface {
	PromotionRecorded()
	CheckInRecorded()
	LeadsImported(count int)
	FollowUpsPending(count int)
}

type noopRecorder struct{}

func (noopRecorder) PromotionRecorded()   {}
func (noopRecorder) CheckInRecorded()     {}
func (noopRecorder) LeadsImported(int)    {}
func (noopRecorder) FollowUpsPending(int) {}

// TrackerOptions holds the tunable business rules
type TrackerOptions struct {
	WeeklyTarget      int
	FollowUpAfterDays int
	RecentWeeks       int
	Location          *time.Location
	Now               func() time.Time // defaults to time.Now
}

// TrackerService runs every read-modify-write against the record store. All
// operations hold one lock, so the check-in and promotion guards cannot race.
type TrackerService struct {
	mu sync.Mutex

	store       database.RecordStore
	phones      *validator.PhoneNormalizer
	promotion   *PromotionEngine
	performance *PerformanceAggregator
	checkIns    *CheckInTracker
	csv         *CSVService
	recorder    EventRecorder
	logger      *logrus.Logger

	followUpAfterDays int
	recentWeeks       int
	loc               *time.Location
	clock             func() time.Time
	newID             func() string
}

// NewTrackerService creates a tracker over store
func NewTrackerService(
	store database.RecordStore,
	phones *validator.PhoneNormalizer,
	recorder EventRecorder,
	logger *logrus.Logger,
	opts TrackerOptions,
) *TrackerService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RecentWeeks <= 0 {
		opts.RecentWeeks = 12
	}

	s := &TrackerService{
		store:             store,
		phones:            phones,
		performance:       NewPerformanceAggregator(opts.WeeklyTarget),
		csv:               NewCSVService(phones, logger),
		recorder:          recorder,
		logger:            logger,
		followUpAfterDays: opts.FollowUpAfterDays,
		recentWeeks:       opts.RecentWeeks,
		loc:               opts.Location,
		clock:             opts.Now,
		newID:             uuid.NewString,
	}
	s.promotion = NewPromotionEngine(s.now)
	s.checkIns = NewCheckInTracker(s.now)
	return s
}

func (s *TrackerService) now() time.Time {
	return s.clock().In(s.loc)
}

// Today returns the current calendar date in the tracker's time zone
func (s *TrackerService) Today() string {
	return dateutil.FormatDate(s.now())
}

// Now returns the current instant in the tracker's time zone
func (s *TrackerService) Now() time.Time {
	return s.now()
}

// requireFields takes name/value pairs and reports the first empty value
func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return &ValidationError{Field: pairs[i], Message: "is required"}
		}
	}
	return nil
}

// ---- Sales team ----

// ListSalespeople returns the whole team
func (s *TrackerService) ListSalespeople() ([]models.Salesperson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return database.Load(s.store, database.KeySalesTeam, []models.Salesperson{})
}

// AddSalesperson validates and appends a team member. A phone that cannot be
// normalized is saved as entered and reported in the returned warnings.
func (s *TrackerService) AddSalesperson(input models.SalespersonInput) (models.Salesperson, []string, error) {
	sp := models.Salesperson{
		Name:       strings.TrimSpace(input.Name),
		Phone:      strings.TrimSpace(input.Phone),
		Region:     strings.TrimSpace(input.Region),
		JoinedDate: strings.TrimSpace(input.JoinedDate),
	}

	if err := requireFields(
		"name", sp.Name, "phone", sp.Phone, "region", sp.Region, "joined_date", sp.JoinedDate,
	); err != nil {
		return models.Salesperson{}, nil, err
	}
	if !dateutil.IsDate(sp.JoinedDate) {
		return models.Salesperson{}, nil, &ValidationError{Field: "joined_date", Message: dateutil.ErrInvalidDate.Error()}
	}

	var warnings []string
	sp.Phone = s.phones.Normalize(sp.Phone)
	if !s.phones.IsNormalized(sp.Phone) {
		warnings = append(warnings, fmt.Sprintf("phone %q could not be normalized and was saved as entered", sp.Phone))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	team, err := database.Load(s.store, database.KeySalesTeam, []models.Salesperson{})
	if err != nil {
		return models.Salesperson{}, nil, err
	}
	for _, existing := range team {
		if strings.EqualFold(existing.Name, sp.Name) {
			return models.Salesperson{}, nil, &DuplicateSalespersonError{Name: sp.Name}
		}
	}

	sp.ID = s.newID()
	team = append(team, sp)
	if err := database.Save(s.store, database.KeySalesTeam, team); err != nil {
		return models.Salesperson{}, nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"salesperson_id": sp.ID,
		"name":           sp.Name,
		"region":         sp.Region,
	}).Info("Salesperson added")

	return sp, warnings, nil
}

// ---- Leads ----

// ListActiveLeads returns the leads that have not been promoted
func (s *TrackerService) ListActiveLeads() ([]models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	leads, err := database.Load(s.store, database.KeyLeads, []models.Lead{})
	if err != nil {
		return nil, err
	}
	return models.ActiveLeads(leads), nil
}

// AddLead validates and appends a lead entered by hand
func (s *TrackerService) AddLead(input models.LeadInput) (models.Lead, []string, error) {
	lead := models.Lead{
		Name:        strings.TrimSpace(input.Name),
		Phone:       strings.TrimSpace(input.Phone),
		Location:    strings.TrimSpace(input.Location),
		Remark:      strings.TrimSpace(input.Remark),
		Appointment: strings.TrimSpace(input.Appointment),
		Salesperson: strings.TrimSpace(input.Salesperson),
		Source:      models.LeadSource(strings.TrimSpace(input.Source)),
		Cohort:      strings.TrimSpace(input.Cohort),
		Status:      models.LeadStatusNotContacted,
	}

	if err := requireFields(
		"name", lead.Name, "phone", lead.Phone, "location", lead.Location, "salesperson", lead.Salesperson,
	); err != nil {
		return models.Lead{}, nil, err
	}

	if strings.TrimSpace(input.Status) != "" {
		status, err := models.ParseLeadStatus(input.Status)
		if err != nil {
			return models.Lead{}, nil, &ValidationError{Field: "status", Message: err.Error()}
		}
		lead.Status = status
	}
	if lead.Appointment != "" && !dateutil.IsDate(lead.Appointment) {
		return models.Lead{}, nil, &ValidationError{Field: "appointment", Message: dateutil.ErrInvalidDate.Error()}
	}
	if lead.Source == "" {
		lead.Source = models.DefaultLeadSource
	}

	var warnings []string
	lead.Phone = s.phones.Normalize(lead.Phone)
	if !s.phones.IsNormalized(lead.Phone) {
		warnings = append(warnings, fmt.Sprintf("phone %q could not be normalized and was saved as entered", lead.Phone))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	leads, err := database.Load(s.store, database.KeyLeads, []models.Lead{})
	if err != nil {
		return models.Lead{}, nil, err
	}

	lead.ID = s.newID()
	leads = append(leads, lead)
	if err := database.Save(s.store, database.KeyLeads, leads); err != nil {
		return models.Lead{}, nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"lead_id":     lead.ID,
		"salesperson": lead.Salesperson,
		"source":      lead.Source,
	}).Info("Lead added")

	return lead, warnings, nil
}

// UpdateLead applies the editable fields in patch. Promoted leads are frozen.
func (s *TrackerService) UpdateLead(id string, patch models.LeadUpdate) (models.Lead, error) {
	var status models.LeadStatus
	if patch.Status != nil {
		parsed, err := models.ParseLeadStatus(*patch.Status)
		if err != nil {
			return models.Lead{}, &ValidationError{Field: "status", Message: err.Error()}
		}
		status = parsed
	}
	if patch.Appointment != nil {
		appointment := strings.TrimSpace(*patch.Appointment)
		if appointment != "" && !dateutil.IsDate(appointment) {
			return models.Lead{}, &ValidationError{Field: "appointment", Message: dateutil.ErrInvalidDate.Error()}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	leads, err := database.Load(s.store, database.KeyLeads, []models.Lead{})
	if err != nil {
		return models.Lead{}, err
	}

	idx := models.FindLead(leads, id)
	if idx < 0 {
		return models.Lead{}, &NotFoundError{Entity: "lead", ID: id}
	}
	if leads[idx].IsPromoted {
		return models.Lead{}, &AlreadyPromotedError{LeadID: id}
	}

	lead := &leads[idx]
	if patch.Status != nil {
		lead.Status = status
	}
	if patch.Remark != nil {
		lead.Remark = strings.TrimSpace(*patch.Remark)
	}
	if patch.Appointment != nil {
		lead.Appointment = strings.TrimSpace(*patch.Appointment)
	}
	if patch.Salesperson != nil {
		lead.Salesperson = strings.TrimSpace(*patch.Salesperson)
	}

	if err := database.Save(s.store, database.KeyLeads, leads); err != nil {
		return models.Lead{}, err
	}
	return *lead, nil
}

// PromoteLead turns the lead into an onboarded leader. Both collections are
// written together; if the leads write fails the leaders write is reverted.
func (s *TrackerService) PromoteLead(id string) (models.OnboardedLeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	leads, err := database.Load(s.store, database.KeyLeads, []models.Lead{})
	if err != nil {
		return models.OnboardedLeader{}, err
	}
	leaders, err := database.Load(s.store, database.KeyOnboardedLeaders, []models.OnboardedLeader{})
	if err != nil {
		return models.OnboardedLeader{}, err
	}

	nextLeads, nextLeaders, leader, err := s.promotion.PromoteByID(leads, leaders, id)
	if err != nil {
		return models.OnboardedLeader{}, err
	}

	// Leaders first: a leader's presence is what blocks a second promotion
	if err := database.Save(s.store, database.KeyOnboardedLeaders, nextLeaders); err != nil {
		return models.OnboardedLeader{}, err
	}
	if err := database.Save(s.store, database.KeyLeads, nextLeads); err != nil {
		if rollbackErr := database.Save(s.store, database.KeyOnboardedLeaders, leaders); rollbackErr != nil {
			s.logger.WithError(rollbackErr).WithField("lead_id", id).
				Error("Failed to revert onboarded leaders after promotion write failure")
		}
		return models.OnboardedLeader{}, err
	}

	s.recorder.PromotionRecorded()
	s.logger.WithFields(logrus.Fields{
		"lead_id":      id,
		"salesperson":  leader.Salesperson,
		"upgrade_date": leader.UpgradeDate,
	}).Info("Lead promoted to onboarded leader")

	return leader, nil
}

// ---- Onboarded leaders ----

// ListLeaders returns every leader with its follow-up flag
func (s *TrackerService) ListLeaders() ([]models.LeaderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	leaders, err := database.Load(s.store, database.KeyOnboardedLeaders, []models.OnboardedLeader{})
	if err != nil {
		return nil, err
	}
	return s.annotate(leaders), nil
}

// FollowUps returns the leaders that need a follow-up call
func (s *TrackerService) FollowUps() ([]models.LeaderView, error) {
	views, err := s.ListLeaders()
	if err != nil {
		return nil, err
	}

	pending := []models.LeaderView{}
	for _, view := range views {
		if view.NeedsFollowUp {
			pending = append(pending, view)
		}
	}
	s.recorder.FollowUpsPending(len(pending))
	return pending, nil
}

func (s *TrackerService) annotate(leaders []models.OnboardedLeader) []models.LeaderView {
	now := s.now()
	views := make([]models.LeaderView, 0, len(leaders))
	for _, leader := range leaders {
		views = append(views, models.LeaderView{
			OnboardedLeader: leader,
			NeedsFollowUp:   NeedsFollowUp(leader, now, s.followUpAfterDays),
		})
	}
	return views
}

// UpdateLeader applies the editable fields in patch. Name and phone never change.
func (s *TrackerService) UpdateLeader(id string, patch models.LeaderUpdate) (models.LeaderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	leaders, err := database.Load(s.store, database.KeyOnboardedLeaders, []models.OnboardedLeader{})
	if err != nil {
		return models.LeaderView{}, err
	}

	idx := models.FindLeader(leaders, id)
	if idx < 0 {
		return models.LeaderView{}, &NotFoundError{Entity: "leader", ID: id}
	}

	leader := &leaders[idx]
	if patch.Ordered != nil {
		leader.Ordered = *patch.Ordered
	}
	if patch.Remark != nil {
		leader.Remark = strings.TrimSpace(*patch.Remark)
	}
	if patch.Salesperson != nil {
		leader.Salesperson = strings.TrimSpace(*patch.Salesperson)
	}

	if err := database.Save(s.store, database.KeyOnboardedLeaders, leaders); err != nil {
		return models.LeaderView{}, err
	}
	return models.LeaderView{
		OnboardedLeader: *leader,
		NeedsFollowUp:   NeedsFollowUp(*leader, s.now(), s.followUpAfterDays),
	}, nil
}

// ---- Check-ins ----

// CheckIn records today's check-in for a team member
func (s *TrackerService) CheckIn(name string) (models.CheckInRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CheckInRecord{}, &ValidationError{Field: "salesperson_name", Message: "is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	team, err := database.Load(s.store, database.KeySalesTeam, []models.Salesperson{})
	if err != nil {
		return models.CheckInRecord{}, err
	}
	if _, ok := models.FindSalesperson(team, name); !ok {
		return models.CheckInRecord{}, &NotFoundError{Entity: "salesperson", ID: name}
	}

	records, err := database.Load(s.store, database.KeyCheckIns, []models.CheckInRecord{})
	if err != nil {
		return models.CheckInRecord{}, err
	}

	record, err := s.checkIns.CheckIn(records, name, s.Today())
	if err != nil {
		return models.CheckInRecord{}, err
	}

	records = append(records, record)
	if err := database.Save(s.store, database.KeyCheckIns, records); err != nil {
		return models.CheckInRecord{}, err
	}

	s.recorder.CheckInRecorded()
	s.logger.WithFields(logrus.Fields{
		"salesperson": name,
		"date":        record.Date,
	}).Info("Salesperson checked in")

	return record, nil
}

// CheckInsForDate lists the check-ins on date (YYYY-MM-DD). Empty means today.
func (s *TrackerService) CheckInsForDate(date string) ([]models.CheckInRecord, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = s.Today()
	}
	if !dateutil.IsDate(date) {
		return nil, &ValidationError{Field: "date", Message: dateutil.ErrInvalidDate.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := database.Load(s.store, database.KeyCheckIns, []models.CheckInRecord{})
	if err != nil {
		return nil, err
	}
	return CheckInsForDate(records, date), nil
}

// ---- Dashboard ----

// RecentWeeks returns the week picker entries. Non-positive count uses the configured default.
func (s *TrackerService) RecentWeeks(count int) []dateutil.WeekOption {
	if count <= 0 {
		count = s.recentWeeks
	}
	return dateutil.RecentWeeks(s.now(), count)
}

// WeeklyPerformance computes the dashboard for the week containing weekValue
// (YYYY-MM-DD, empty means this week) filtered to salesperson when non-empty.
func (s *TrackerService) WeeklyPerformance(weekValue, salesperson string) (models.WeeklyPerformance, error) {
	week := dateutil.WeekRange(s.now())
	if strings.TrimSpace(weekValue) != "" {
		var err error
		week, err = dateutil.WeekOf(weekValue, s.loc)
		if err != nil {
			return models.WeeklyPerformance{}, &ValidationError{Field: "week", Message: err.Error()}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	leaders, err := database.Load(s.store, database.KeyOnboardedLeaders, []models.OnboardedLeader{})
	if err != nil {
		return models.WeeklyPerformance{}, err
	}
	team, err := database.Load(s.store, database.KeySalesTeam, []models.Salesperson{})
	if err != nil {
		return models.WeeklyPerformance{}, err
	}

	return s.performance.WeeklySalesPerformance(leaders, team, week, strings.TrimSpace(salesperson)), nil
}

// CohortInsights computes the all-time cohort conversion summary
func (s *TrackerService) CohortInsights() ([]models.CohortInsight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	leads, err := database.Load(s.store, database.KeyLeads, []models.Lead{})
	if err != nil {
		return nil, err
	}
	leaders, err := database.Load(s.store, database.KeyOnboardedLeaders, []models.OnboardedLeader{})
	if err != nil {
		return nil, err
	}

	return s.performance.CohortInsights(leads, leaders), nil
}

// ---- Import / export ----

// ImportLeads parses r and appends the accepted rows to the leads collection
func (s *TrackerService) ImportLeads(r io.Reader) (*ImportResult, error) {
	result, err := s.csv.ParseLeads(r)
	if err != nil {
		return nil, &ValidationError{Field: "file", Message: err.Error()}
	}
	if len(result.Leads) == 0 {
		return result, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	leads, err := database.Load(s.store, database.KeyLeads, []models.Lead{})
	if err != nil {
		return nil, err
	}
	leads = append(leads, result.Leads...)
	if err := database.Save(s.store, database.KeyLeads, leads); err != nil {
		return nil, err
	}

	s.recorder.LeadsImported(result.Imported)
	return result, nil
}

// ExportLeads writes the active leads and returns the suggested filename
func (s *TrackerService) ExportLeads(w io.Writer, format ExportFormat) (string, error) {
	leads, err := s.ListActiveLeads()
	if err != nil {
		return "", err
	}

	filename := LeadsExportFilename(s.now(), string(format))
	if format == FormatXLSX {
		return filename, s.csv.WriteLeadsXLSX(w, leads)
	}
	return filename, s.csv.WriteLeadsCSV(w, leads)
}

// ExportLeaders writes every onboarded leader and returns the suggested filename
func (s *TrackerService) ExportLeaders(w io.Writer, format ExportFormat) (string, error) {
	s.mu.Lock()
	leaders, err := database.Load(s.store, database.KeyOnboardedLeaders, []models.OnboardedLeader{})
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	filename := LeadersExportFilename(s.now(), string(format))
	if format == FormatXLSX {
		return filename, s.csv.WriteLeadersXLSX(w, leaders)
	}
	return filename, s.csv.WriteLeadersCSV(w, leaders)
}
