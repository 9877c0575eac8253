package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"customer_registry_backend/internal/models"
	"customer_registry_backend/internal/repositories"
)

// --- Custom Service Errors for Import/Export ---
var (
	ErrNoFileProvided = errors.New("no file selected for import")
	ErrFileUnreadable = errors.New("the file could not be read")
)

// exportTimeLayout matches the spreadsheet-friendly format of exported files.
const exportTimeLayout = "2006-01-02 15:04:05"

// ExportHeader is the column header of exported files. Import recognizes it
// case-insensitively and only ever reads the first two columns back.
var ExportHeader = []string{
	"customer_name",
	"customer_number",
	"is_deleted",
	"deleted_at",
	"created_at",
	"updated_at",
}

// ImportReport summarizes one import run: how many rows were inserted, how
// many were skipped, and one line per recorded validation failure keyed by
// its 1-based row number.
type ImportReport struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// Summary renders the report the way the registry presents it: the import
// count first, the skip count when non-zero, then the per-row detail lines.
func (r *ImportReport) Summary() []string {
	lines := []string{fmt.Sprintf("Import finished. %d new records added.", r.Imported)}
	if r.Skipped > 0 {
		lines = append(lines, fmt.Sprintf("Skipped %d rows due to errors or duplicates.", r.Skipped))
	}
	return append(lines, r.Errors...)
}

// --- ImportExportService Interface ---
type ImportExportService interface {
	ImportCustomers(reader io.Reader) (*ImportReport, error)
	ExportCustomers(writer io.Writer) error
}

// --- importExportService Implementation ---
type importExportService struct {
	customerService CustomerService
	customerRepo    repositories.CustomerRepository
}

// NewImportExportService creates a new instance of ImportExportService.
func NewImportExportService(customerService CustomerService, customerRepo repositories.CustomerRepository) ImportExportService {
	return &importExportService{
		customerService: customerService,
		customerRepo:    customerRepo,
	}
}

// ImportCustomers consumes a CSV document row by row. Every valid row is
// inserted immediately as a fresh active customer; rows that fail validation
// are skipped and reported. Import never updates existing records, so a row
// matching an active customer is rejected as a duplicate. The run is not
// atomic: a failure partway through leaves prior rows committed.
func (s *importExportService) ImportCustomers(reader io.Reader) (*ImportReport, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	report := &ImportReport{Errors: []string{}}
	rowNum := 0

	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrFileUnreadable, rowNum+1, err)
		}
		rowNum++

		// An exported file starts with a header row; skip it when present.
		if rowNum == 1 && len(record) > 0 && strings.EqualFold(record[0], "customer_name") {
			continue
		}

		name := strings.TrimSpace(column(record, 0))
		number := strings.TrimSpace(column(record, 1))

		if name == "" && number == "" {
			continue // blank line
		}

		_, err = s.customerService.CreateCustomer(CustomerRequest{Name: name, Number: number})
		if err != nil {
			var verrs ValidationErrors
			if errors.As(err, &verrs) {
				report.Skipped++
				for _, msg := range verrs.Messages() {
					report.Errors = append(report.Errors, fmt.Sprintf("Row %d: %s", rowNum, msg))
				}
				continue
			}
			return nil, fmt.Errorf("import aborted at row %d: %w", rowNum, err)
		}
		report.Imported++
	}

	return report, nil
}

// ExportCustomers writes the full registry, recovery bin included, as a CSV
// backup ordered by name. Deleted rows re-imported from such a file come back
// as active records; the export is a backup, not a state snapshot to restore.
func (s *importExportService) ExportCustomers(writer io.Writer) error {
	customers, err := s.customerRepo.ListCustomers(true, "", "customer_name", "asc")
	if err != nil {
		return fmt.Errorf("failed to load customers for export: %w", err)
	}

	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for i := range customers {
		if err := csvWriter.Write(exportRecord(&customers[i])); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	return nil
}

func exportRecord(c *models.Customer) []string {
	isDeleted := "0"
	if c.IsDeleted {
		isDeleted = "1"
	}
	deletedAt := ""
	if c.DeletedAt != nil {
		deletedAt = c.DeletedAt.Format(exportTimeLayout)
	}
	return []string{
		c.Name,
		c.Number,
		isDeleted,
		deletedAt,
		c.CreatedAt.Format(exportTimeLayout),
		c.UpdatedAt.Format(exportTimeLayout),
	}
}

func column(record []string, index int) string {
	if index < len(record) {
		return record[index]
	}
	return ""
}
