package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chipchip/sgl-tracker/internal/database"
	"github.com/chipchip/sgl-tracker/internal/models"
	"github.com/chipchip/sgl-tracker/pkg/validator"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu         sync.Mutex
	promotions int
	checkIns   int
	imported   int
	pending    int
}

func (r *countingRecorder) PromotionRecorded() { r.mu.Lock(); r.promotions++; r.mu.Unlock() }
func (r *countingRecorder) CheckInRecorded()   { r.mu.Lock(); r.checkIns++; r.mu.Unlock() }
func (r *countingRecorder) LeadsImported(n int) {
	r.mu.Lock()
	r.imported += n
	r.mu.Unlock()
}
func (r *countingRecorder) FollowUpsPending(n int) { r.mu.Lock(); r.pending = n; r.mu.Unlock() }

type failingStore struct {
	*database.MemoryRecordStore
	failKey string
}

func (s *failingStore) Put(key string, value []byte) error {
	if key == s.failKey {
		return errors.New("disk full")
	}
	return s.MemoryRecordStore.Put(key, value)
}

func newTestTracker(t *testing.T, store database.RecordStore, now time.Time) (*TrackerService, *countingRecorder) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	recorder := &countingRecorder{}
	tracker := NewTrackerService(store, validator.NewPhoneNormalizer(logger), recorder, logger, TrackerOptions{
		WeeklyTarget:      6,
		FollowUpAfterDays: 3,
		RecentWeeks:       4,
		Location:          time.UTC,
		Now:               fixedClock(now),
	})
	return tracker, recorder
}

func addTestLead(t *testing.T, tracker *TrackerService, name, cohort string) models.Lead {
	t.Helper()
	lead, _, err := tracker.AddLead(models.LeadInput{
		Name:        name,
		Phone:       "0911234567",
		Location:    "Bole",
		Salesperson: "Sara",
		Cohort:      cohort,
	})
	require.NoError(t, err)
	return lead
}

func TestTracker_AddSalesperson(t *testing.T) {
	tracker, _ := newTestTracker(t, database.NewMemoryRecordStore(), may1)

	sp, warnings, err := tracker.AddSalesperson(models.SalespersonInput{
		Name: " Sara ", Phone: "0911234567", Region: "Addis Ababa", JoinedDate: "2024-01-15",
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.NotEmpty(t, sp.ID)
	assert.Equal(t, "Sara", sp.Name)
	assert.Equal(t, "+251911234567", sp.Phone)

	_, warnings, err = tracker.AddSalesperson(models.SalespersonInput{
		Name: "Dawit", Phone: "12345", Region: "Adama", JoinedDate: "2024-02-01",
	})
	require.NoError(t, err)
	assert.Len(t, warnings, 1)

	_, _, err = tracker.AddSalesperson(models.SalespersonInput{
		Name: "sara", Phone: "0911234568", Region: "Addis Ababa", JoinedDate: "2024-01-15",
	})
	assert.True(t, IsConflict(err))

	_, _, err = tracker.AddSalesperson(models.SalespersonInput{Name: "Hana", Phone: "0911234569", Region: "Bahir Dar"})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "joined_date", validation.Field)

	_, _, err = tracker.AddSalesperson(models.SalespersonInput{
		Name: "Hana", Phone: "0911234569", Region: "Bahir Dar", JoinedDate: "15/01/2024",
	})
	assert.True(t, IsValidationError(err))

	team, err := tracker.ListSalespeople()
	require.NoError(t, err)
	assert.Len(t, team, 2)
}

func TestTracker_AddAndUpdateLead(t *testing.T) {
	tracker, _ := newTestTracker(t, database.NewMemoryRecordStore(), may1)

	lead := addTestLead(t, tracker, "Abebe", "")
	assert.Equal(t, models.LeadStatusNotContacted, lead.Status)
	assert.Equal(t, models.DefaultLeadSource, lead.Source)
	assert.Equal(t, "+251911234567", lead.Phone)

	_, _, err := tracker.AddLead(models.LeadInput{Name: "X", Phone: "0911", Location: "Y", Salesperson: "Z", Status: "Maybe"})
	assert.True(t, IsValidationError(err))

	_, _, err = tracker.AddLead(models.LeadInput{Name: "X", Phone: "0911", Location: "Y"})
	assert.True(t, IsValidationError(err))

	status := "appointment set"
	appointment := "2024-05-06"
	remark := "  Wants a demo "
	updated, err := tracker.UpdateLead(lead.ID, models.LeadUpdate{
		Status:      &status,
		Appointment: &appointment,
		Remark:      &remark,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusAppointmentSet, updated.Status)
	assert.Equal(t, "2024-05-06", updated.Appointment)
	assert.Equal(t, "Wants a demo", updated.Remark)
	assert.Equal(t, "Sara", updated.Salesperson)

	bad := "tomorrow"
	_, err = tracker.UpdateLead(lead.ID, models.LeadUpdate{Appointment: &bad})
	assert.True(t, IsValidationError(err))

	_, err = tracker.UpdateLead("missing", models.LeadUpdate{Remark: &remark})
	assert.True(t, IsNotFound(err))
}

func TestTracker_PromoteLead(t *testing.T) {
	tracker, recorder := newTestTracker(t, database.NewMemoryRecordStore(), may1)
	lead := addTestLead(t, tracker, "Abebe", "May")
	other := addTestLead(t, tracker, "Hana", "May")

	leader, err := tracker.PromoteLead(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.ID, leader.ID)
	assert.Equal(t, "2024-05-01", leader.UpgradeDate)
	assert.Equal(t, 1, recorder.promotions)

	active, err := tracker.ListActiveLeads()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, other.ID, active[0].ID)

	leaders, err := tracker.ListLeaders()
	require.NoError(t, err)
	require.Len(t, leaders, 1)

	_, err = tracker.PromoteLead(lead.ID)
	assert.True(t, IsConflict(err))

	_, err = tracker.PromoteLead("missing")
	assert.True(t, IsNotFound(err))

	remark := "edit after promotion"
	_, err = tracker.UpdateLead(lead.ID, models.LeadUpdate{Remark: &remark})
	assert.True(t, IsConflict(err))

	leaders, err = tracker.ListLeaders()
	require.NoError(t, err)
	assert.Len(t, leaders, 1, "rejected promotion must not write")
}

func TestTracker_PromoteLead_ConcurrentCallsCreateOneLeader(t *testing.T) {
	tracker, _ := newTestTracker(t, database.NewMemoryRecordStore(), may1)
	lead := addTestLead(t, tracker, "Abebe", "")

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tracker.PromoteLead(lead.ID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	leaders, err := tracker.ListLeaders()
	require.NoError(t, err)
	assert.Len(t, leaders, 1)
}

func TestTracker_PromoteLead_RevertsLeadersWhenLeadsWriteFails(t *testing.T) {
	store := &failingStore{MemoryRecordStore: database.NewMemoryRecordStore()}
	tracker, _ := newTestTracker(t, store, may1)
	lead := addTestLead(t, tracker, "Abebe", "")

	store.failKey = database.KeyLeads
	_, err := tracker.PromoteLead(lead.ID)
	require.Error(t, err)

	leaders, err := tracker.ListLeaders()
	require.NoError(t, err)
	assert.Empty(t, leaders)

	store.failKey = ""
	_, err = tracker.PromoteLead(lead.ID)
	assert.NoError(t, err)
}

func TestTracker_UpdateLeaderAndFollowUps(t *testing.T) {
	store := database.NewMemoryRecordStore()
	require.NoError(t, database.Save(store, database.KeyOnboardedLeaders, []models.OnboardedLeader{
		{ID: "1", Name: "Abebe", Phone: "+251911234567", UpgradeDate: "2024-04-20"},
		{ID: "2", Name: "Hana", UpgradeDate: "2024-04-30"},
		{ID: "3", Name: "Lulit", UpgradeDate: "2024-04-10", Ordered: true},
	}))
	tracker, recorder := newTestTracker(t, store, may1)

	pending, err := tracker.FollowUps()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "1", pending[0].ID)
	assert.Equal(t, 1, recorder.pending)

	ordered := true
	salesperson := "Dawit"
	view, err := tracker.UpdateLeader("1", models.LeaderUpdate{Ordered: &ordered, Salesperson: &salesperson})
	require.NoError(t, err)
	assert.True(t, view.Ordered)
	assert.False(t, view.NeedsFollowUp)
	assert.Equal(t, "Dawit", view.Salesperson)
	assert.Equal(t, "Abebe", view.Name)
	assert.Equal(t, "+251911234567", view.Phone)

	pending, err = tracker.FollowUps()
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = tracker.UpdateLeader("missing", models.LeaderUpdate{Ordered: &ordered})
	assert.True(t, IsNotFound(err))
}

func TestTracker_CheckIn(t *testing.T) {
	tracker, recorder := newTestTracker(t, database.NewMemoryRecordStore(), may1)
	_, _, err := tracker.AddSalesperson(models.SalespersonInput{
		Name: "Abebe", Phone: "0911234567", Region: "Addis Ababa", JoinedDate: "2024-01-15",
	})
	require.NoError(t, err)

	record, err := tracker.CheckIn("Abebe")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", record.Date)

	_, err = tracker.CheckIn("Abebe")
	var duplicate *DuplicateCheckInError
	assert.ErrorAs(t, err, &duplicate)

	_, err = tracker.CheckIn("Stranger")
	assert.True(t, IsNotFound(err))

	_, err = tracker.CheckIn("")
	assert.True(t, IsValidationError(err))

	today, err := tracker.CheckInsForDate("")
	require.NoError(t, err)
	assert.Len(t, today, 1)

	other, err := tracker.CheckInsForDate("2024-04-30")
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = tracker.CheckInsForDate("yesterday")
	assert.True(t, IsValidationError(err))

	assert.Equal(t, 1, recorder.checkIns)
}

func TestTracker_CheckIn_UsesConfiguredZone(t *testing.T) {
	addis := time.FixedZone("EAT", 3*60*60)
	logger, _ := test.NewNullLogger()
	// 22:30 UTC on Apr 30 is already May 1 in Addis Ababa
	tracker := NewTrackerService(database.NewMemoryRecordStore(), validator.NewPhoneNormalizer(logger), nil, logger,
		TrackerOptions{Location: addis, Now: fixedClock(time.Date(2024, 4, 30, 22, 30, 0, 0, time.UTC))})

	assert.Equal(t, "2024-05-01", tracker.Today())
}

func TestTracker_Dashboard(t *testing.T) {
	store := database.NewMemoryRecordStore()
	require.NoError(t, database.Save(store, database.KeySalesTeam, []models.Salesperson{{Name: "Sara"}, {Name: "Dawit"}}))
	require.NoError(t, database.Save(store, database.KeyLeads, []models.Lead{
		{ID: "1", Cohort: "A", IsPromoted: true},
		{ID: "2", Cohort: "A"},
		{ID: "3", Cohort: "B"},
	}))
	require.NoError(t, database.Save(store, database.KeyOnboardedLeaders, []models.OnboardedLeader{
		{ID: "1", UpgradeDate: "2024-04-29", Salesperson: "Sara", Ordered: true},
		{ID: "x", UpgradeDate: "2024-04-22", Salesperson: "Sara"},
	}))
	tracker, _ := newTestTracker(t, store, may1)

	weeks := tracker.RecentWeeks(0)
	require.Len(t, weeks, 4)
	assert.Equal(t, "2024-04-28", weeks[0].Value)

	current, err := tracker.WeeklyPerformance("", "")
	require.NoError(t, err)
	assert.Equal(t, 1, current.TotalUpgraded)
	assert.Equal(t, 1, current.TotalOrdered)
	require.Len(t, current.Salespeople, 2)

	previous, err := tracker.WeeklyPerformance("2024-04-24", "Sara")
	require.NoError(t, err)
	assert.Equal(t, 1, previous.TotalUpgraded)
	assert.Equal(t, 0, previous.TotalOrdered)
	require.Len(t, previous.Salespeople, 1)

	_, err = tracker.WeeklyPerformance("last week", "")
	assert.True(t, IsValidationError(err))

	insights, err := tracker.CohortInsights()
	require.NoError(t, err)
	require.Len(t, insights, 2)
	assert.Equal(t, "A", insights[0].Name)
	assert.Equal(t, 50.0, insights[0].ConversionRate)
	assert.Equal(t, models.TierMedium, insights[0].Tier)
	assert.Equal(t, models.TierLow, insights[1].Tier)
}

func TestTracker_ImportAndExport(t *testing.T) {
	tracker, recorder := newTestTracker(t, database.NewMemoryRecordStore(), may1)
	existing := addTestLead(t, tracker, "Existing", "")

	input := "name,phone,location,salesperson\nAbebe,0946123456,Bole,Sara\nBroken,,Bole,Sara\n"
	result, err := tracker.ImportLeads(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, recorder.imported)

	_, err = tracker.PromoteLead(existing.ID)
	require.NoError(t, err)

	var leadsBuf bytes.Buffer
	filename, err := tracker.ExportLeads(&leadsBuf, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "leadlist_2024-05-01.csv", filename)
	records, err := csv.NewReader(&leadsBuf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "promoted leads are not exported")
	assert.Equal(t, "Abebe", records[1][0])
	assert.Equal(t, "+251946123456", records[1][1])

	var leadersBuf bytes.Buffer
	filename, err = tracker.ExportLeaders(&leadersBuf, FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "onboarded_list_2024-05-01.xlsx", filename)
	assert.NotZero(t, leadersBuf.Len())

	_, err = tracker.ImportLeads(strings.NewReader(""))
	assert.True(t, IsValidationError(err))
}

func TestTracker_CorruptCollectionIsNotOverwritten(t *testing.T) {
	store := database.NewMemoryRecordStore()
	require.NoError(t, store.Put(database.KeyLeads, []byte(`{"broken"`)))
	tracker, _ := newTestTracker(t, store, may1)

	_, _, err := tracker.AddLead(models.LeadInput{Name: "A", Phone: "0911234567", Location: "B", Salesperson: "C"})
	var corrupt *database.CorruptRecordError
	require.ErrorAs(t, err, &corrupt)

	raw, _, _ := store.Get(database.KeyLeads)
	assert.Equal(t, `{"broken"`, string(raw))
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	format, err = ParseExportFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)
	assert.Contains(t, format.ContentType(), "spreadsheetml")

	_, err = ParseExportFormat("pdf")
	assert.True(t, IsValidationError(err))
}
