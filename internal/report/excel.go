// Package report renders activity reports as Excel workbooks.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"classtrack-go/internal/model"
)

const (
	headerFill = "1E3A8A"
	titleFill  = "312E81"
)

// ExcelRenderer writes a multi-sheet .xlsx workbook.
type ExcelRenderer struct{}

// NewExcelRenderer creates an ExcelRenderer.
func NewExcelRenderer() *ExcelRenderer {
	return &ExcelRenderer{}
}

// Render writes the workbook to path: a summary sheet with headline numbers
// and the most active students, then one sheet each for modules, students,
// recent submissions and daily activity.
func (r *ExcelRenderer) Render(data *model.ReportData, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{titleFill}},
	})
	if err != nil {
		return fmt.Errorf("creating title style: %w", err)
	}

	if err := r.summarySheet(f, data, headerStyle, titleStyle); err != nil {
		return err
	}
	if err := r.modulesSheet(f, data, headerStyle); err != nil {
		return err
	}
	if err := r.studentsSheet(f, data, headerStyle); err != nil {
		return err
	}
	if err := r.submissionsSheet(f, data, headerStyle); err != nil {
		return err
	}
	if err := r.dailySheet(f, data, headerStyle); err != nil {
		return err
	}

	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func (r *ExcelRenderer) summarySheet(f *excelize.File, data *model.ReportData, headerStyle, titleStyle int) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}

	f.SetCellValue(sheet, "A1", "Submissions report")
	f.MergeCell(sheet, "A1", "B1")
	f.SetCellStyle(sheet, "A1", "B1", titleStyle)

	f.SetCellValue(sheet, "A2", fmt.Sprintf("Generated %s, last %d days",
		data.GeneratedAt.Format("2006-01-02 15:04"), data.PeriodDays))

	rows := []struct {
		label string
		value int
	}{
		{"Modules", data.Summary.TotalModules},
		{"Students", data.Summary.TotalStudents},
		{"Submissions", data.Summary.TotalSubmissions},
		{"Active students in period", data.Summary.ActiveStudents},
	}
	f.SetCellValue(sheet, "A4", "Metric")
	f.SetCellValue(sheet, "B4", "Value")
	f.SetCellStyle(sheet, "A4", "B4", headerStyle)
	for i, row := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", 5+i), row.label)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", 5+i), row.value)
	}

	top := 10
	f.SetCellValue(sheet, fmt.Sprintf("A%d", top), "Most active students")
	f.MergeCell(sheet, fmt.Sprintf("A%d", top), fmt.Sprintf("B%d", top))
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", top), fmt.Sprintf("B%d", top), headerStyle)
	for i, st := range data.TopStudents {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", top+1+i), st.FullName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", top+1+i), st.Submissions)
	}

	f.SetColWidth(sheet, "A", "A", 32)
	f.SetColWidth(sheet, "B", "B", 14)
	return nil
}

func (r *ExcelRenderer) modulesSheet(f *excelize.File, data *model.ReportData, headerStyle int) error {
	const sheet = "Modules"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}

	headers := []string{"Code", "Module", "Students", "Submissions", "Last submission", "Folder"}
	writeHeaders(f, sheet, headers, headerStyle)

	for i, m := range data.Modules {
		row := i + 2
		f.SetCellValue(sheet, cell(0, row), m.Code)
		f.SetCellValue(sheet, cell(1, row), m.Name)
		f.SetCellValue(sheet, cell(2, row), m.Students)
		f.SetCellValue(sheet, cell(3, row), m.Submissions)
		if m.LastSubmission != nil {
			f.SetCellValue(sheet, cell(4, row), m.LastSubmission.Format("2006-01-02 15:04"))
		}
		f.SetCellValue(sheet, cell(5, row), m.DriveFolderURL)
	}

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 36)
	f.SetColWidth(sheet, "C", "D", 12)
	f.SetColWidth(sheet, "E", "E", 18)
	f.SetColWidth(sheet, "F", "F", 50)
	return nil
}

func (r *ExcelRenderer) studentsSheet(f *excelize.File, data *model.ReportData, headerStyle int) error {
	const sheet = "Students"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}

	headers := []string{"Student", "Email", "Modules", "Submissions", "First activity", "Last activity"}
	writeHeaders(f, sheet, headers, headerStyle)

	for i, st := range data.Students {
		row := i + 2
		f.SetCellValue(sheet, cell(0, row), st.FullName)
		f.SetCellValue(sheet, cell(1, row), st.Email)
		f.SetCellValue(sheet, cell(2, row), st.ModulesCompleted)
		f.SetCellValue(sheet, cell(3, row), st.TotalSubmissions)
		if st.FirstActivity != nil {
			f.SetCellValue(sheet, cell(4, row), st.FirstActivity.Format("2006-01-02"))
		}
		if st.LastActivity != nil {
			f.SetCellValue(sheet, cell(5, row), st.LastActivity.Format("2006-01-02"))
		}
	}

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 34)
	f.SetColWidth(sheet, "C", "D", 12)
	f.SetColWidth(sheet, "E", "F", 14)
	return nil
}

func (r *ExcelRenderer) submissionsSheet(f *excelize.File, data *model.ReportData, headerStyle int) error {
	const sheet = "Submissions"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}

	headers := []string{"Student", "Email", "Module", "File", "Type", "Size (MB)", "Detected", "Link"}
	writeHeaders(f, sheet, headers, headerStyle)

	for i, sub := range data.RecentSubmissions {
		row := i + 2
		f.SetCellValue(sheet, cell(0, row), sub.StudentName)
		f.SetCellValue(sheet, cell(1, row), sub.Email)
		f.SetCellValue(sheet, cell(2, row), sub.ModuleName)
		f.SetCellValue(sheet, cell(3, row), sub.Filename)
		f.SetCellValue(sheet, cell(4, row), sub.FileExtension)
		f.SetCellValue(sheet, cell(5, row), sub.SizeMB)
		f.SetCellValue(sheet, cell(6, row), sub.DetectedAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheet, cell(7, row), sub.DriveURL)
	}

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 34)
	f.SetColWidth(sheet, "C", "C", 28)
	f.SetColWidth(sheet, "D", "D", 40)
	f.SetColWidth(sheet, "E", "F", 10)
	f.SetColWidth(sheet, "G", "G", 18)
	f.SetColWidth(sheet, "H", "H", 50)
	return nil
}

func (r *ExcelRenderer) dailySheet(f *excelize.File, data *model.ReportData, headerStyle int) error {
	const sheet = "Daily"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}

	headers := []string{"Date", "Submissions", "Active students"}
	writeHeaders(f, sheet, headers, headerStyle)

	for i, d := range data.Daily {
		row := i + 2
		f.SetCellValue(sheet, cell(0, row), d.Date)
		f.SetCellValue(sheet, cell(1, row), d.Submissions)
		f.SetCellValue(sheet, cell(2, row), d.ActiveStudents)
	}

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "C", 16)
	return nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		f.SetCellValue(sheet, cell(i, 1), h)
	}
	f.SetCellStyle(sheet, cell(0, 1), cell(len(headers)-1, 1), style)
}

// cell converts a zero-based column index and one-based row to A1 notation.
func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
