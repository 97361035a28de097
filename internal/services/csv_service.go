package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chipchip/sgl-tracker/internal/models"
	"github.com/chipchip/sgl-tracker/pkg/dateutil"
	"github.com/chipchip/sgl-tracker/pkg/validator"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// ErrNoRows is returned when an import file has no data rows
var ErrNoRows = errors.New("CSV file contains no data rows")

// Diagnostic severities
const (
	SeverityError   = "error"   // row rejected
	SeverityWarning = "warning" // row accepted as-is
)

// ImportDiagnostic describes a problem with one CSV row. Row numbers match the
// line numbers a spreadsheet shows, so the first data row is 2.
type ImportDiagnostic struct {
	Row      int    `json:"row"`
	Field    string `json:"field,omitempty"`
	Value    string `json:"value,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// ImportResult holds the outcome of parsing a lead CSV
type ImportResult struct {
	TotalRows   int                `json:"total_rows"`
	Imported    int                `json:"imported"`
	Rejected    int                `json:"rejected"`
	Diagnostics []ImportDiagnostic `json:"diagnostics"`
	Leads       []models.Lead      `json:"leads"`
}

// Columns read by the lead import. Matching ignores case.
var (
	ImportRequiredColumns = []string{"name", "phone", "location", "salesperson"}
	ImportOptionalColumns = []string{"cohort", "remark", "appointment"}
)

// Export column orders
var (
	LeadExportHeader   = []string{"Name", "Phone", "Location", "Status", "Remark", "Appointment", "Salesperson", "Source", "Cohort"}
	LeaderExportHeader = []string{"Name", "Phone", "Location", "Upgrade Date", "Ordered", "Salesperson", "Source", "Cohort", "Remark"}
)

// CSVService parses lead imports and renders exports
type CSVService struct {
	phones *validator.PhoneNormalizer
	logger *logrus.Logger
	newID  func() string
}

// NewCSVService creates a new CSV service
func NewCSVService(phones *validator.PhoneNormalizer, logger *logrus.Logger) *CSVService {
	return &CSVService{
		phones: phones,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// ParseLeads reads a lead CSV. Rows missing a required field are rejected with
// a diagnostic; malformed rows are skipped with a diagnostic. Accepted rows
// become new leads that are not yet contacted.
func (s *CSVService) ParseLeads(r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(headers))
	for i, header := range headers {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}

	result := &ImportResult{
		Diagnostics: []ImportDiagnostic{},
		Leads:       []models.Lead{},
	}

	for index := 0; ; index++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum := index + 2
		result.TotalRows++

		if err != nil {
			result.Rejected++
			result.Diagnostics = append(result.Diagnostics, ImportDiagnostic{
				Row:      rowNum,
				Message:  fmt.Sprintf("could not read row: %v", err),
				Severity: SeverityError,
			})
			continue
		}

		lead, diags, ok := s.parseLeadRow(record, columns, rowNum)
		result.Diagnostics = append(result.Diagnostics, diags...)
		if !ok {
			result.Rejected++
			continue
		}

		result.Imported++
		result.Leads = append(result.Leads, lead)
	}

	if result.TotalRows == 0 {
		return nil, ErrNoRows
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"total_rows": result.TotalRows,
			"imported":   result.Imported,
			"rejected":   result.Rejected,
		}).Info("Parsed lead import")
	}

	return result, nil
}

func (s *CSVService) parseLeadRow(record []string, columns map[string]int, rowNum int) (models.Lead, []ImportDiagnostic, bool) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var missing []string
	for _, name := range ImportRequiredColumns {
		if field(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return models.Lead{}, []ImportDiagnostic{{
			Row:      rowNum,
			Field:    strings.Join(missing, ","),
			Message:  fmt.Sprintf("missing required field(s): %s", strings.Join(missing, ", ")),
			Severity: SeverityError,
		}}, false
	}

	var diags []ImportDiagnostic

	rawPhone := field("phone")
	phone, err := s.phones.TryNormalize(rawPhone)
	switch {
	case err != nil:
		diags = append(diags, ImportDiagnostic{
			Row:      rowNum,
			Field:    "phone",
			Value:    rawPhone,
			Message:  "phone number could not be normalized, kept as entered",
			Severity: SeverityWarning,
		})
	case !s.phones.IsValidMobile(phone):
		diags = append(diags, ImportDiagnostic{
			Row:      rowNum,
			Field:    "phone",
			Value:    phone,
			Message:  "phone number does not look like an Ethiopian mobile number",
			Severity: SeverityWarning,
		})
	}

	appointment := field("appointment")
	if appointment != "" && !dateutil.IsDate(appointment) {
		diags = append(diags, ImportDiagnostic{
			Row:      rowNum,
			Field:    "appointment",
			Value:    appointment,
			Message:  "appointment is not a YYYY-MM-DD date and was dropped",
			Severity: SeverityWarning,
		})
		appointment = ""
	}

	lead := models.Lead{
		ID:          s.newID(),
		Name:        field("name"),
		Phone:       phone,
		Location:    field("location"),
		Status:      models.LeadStatusNotContacted,
		Remark:      field("remark"),
		Appointment: appointment,
		Salesperson: field("salesperson"),
		Source:      models.LeadSourceFromList,
		Cohort:      field("cohort"),
		IsPromoted:  false,
	}
	return lead, diags, true
}

// WriteLeadsCSV writes leads in the fixed export column order
func (s *CSVService) WriteLeadsCSV(w io.Writer, leads []models.Lead) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(LeadExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, lead := range leads {
		if err := writer.Write(leadRow(lead)); err != nil {
			return fmt.Errorf("failed to write lead %s: %w", lead.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteLeadersCSV writes onboarded leaders in the fixed export column order
func (s *CSVService) WriteLeadersCSV(w io.Writer, leaders []models.OnboardedLeader) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(LeaderExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, leader := range leaders {
		if err := writer.Write(leaderRow(leader)); err != nil {
			return fmt.Errorf("failed to write leader %s: %w", leader.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteLeadsXLSX writes leads as a single-sheet workbook
func (s *CSVService) WriteLeadsXLSX(w io.Writer, leads []models.Lead) error {
	rows := make([][]string, 0, len(leads))
	for _, lead := range leads {
		rows = append(rows, leadRow(lead))
	}
	return writeWorkbook(w, "Leads", LeadExportHeader, rows)
}

// WriteLeadersXLSX writes onboarded leaders as a single-sheet workbook
func (s *CSVService) WriteLeadersXLSX(w io.Writer, leaders []models.OnboardedLeader) error {
	rows := make([][]string, 0, len(leaders))
	for _, leader := range leaders {
		rows = append(rows, leaderRow(leader))
	}
	return writeWorkbook(w, "Onboarded Leaders", LeaderExportHeader, rows)
}

// LeadsExportFilename returns leadlist_<YYYY-MM-DD>.<ext>
func LeadsExportFilename(today time.Time, ext string) string {
	return fmt.Sprintf("leadlist_%s.%s", dateutil.FormatDate(today), ext)
}

// LeadersExportFilename returns onboarded_list_<YYYY-MM-DD>.<ext>
func LeadersExportFilename(today time.Time, ext string) string {
	return fmt.Sprintf("onboarded_list_%s.%s", dateutil.FormatDate(today), ext)
}

func leadRow(lead models.Lead) []string {
	return []string{
		lead.Name,
		lead.Phone,
		lead.Location,
		string(lead.Status),
		lead.Remark,
		lead.Appointment,
		lead.Salesperson,
		string(lead.Source),
		lead.Cohort,
	}
}

func leaderRow(leader models.OnboardedLeader) []string {
	ordered := "No"
	if leader.Ordered {
		ordered = "Yes"
	}
	return []string{
		leader.Name,
		leader.Phone,
		leader.Location,
		leader.UpgradeDate,
		ordered,
		leader.Salesperson,
		string(leader.Source),
		leader.Cohort,
		leader.Remark,
	}
}

func writeWorkbook(w io.Writer, sheetName string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := writeSheetRow(f, sheetName, 1, header); err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		if err := writeSheetRow(f, sheetName, i+2, row); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetColWidth(sheetName, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
