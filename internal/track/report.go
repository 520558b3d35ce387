package track

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"classtrack-go/internal/model"
)

// ReportRenderer writes a report document for the given data to path.
type ReportRenderer interface {
	Render(data *model.ReportData, path string) error
}

// Mailer delivers a rendered report to the configured recipients.
type Mailer interface {
	SendReport(recipients []string, subject, htmlBody, attachmentPath string) error
}

// Archive stores a copy of a delivered report for later retrieval.
type Archive interface {
	StoreReport(name string, r io.Reader, size int64) error
}

// ReportOptions parameterizes one report cycle.
type ReportOptions struct {
	LookbackDays int
	Recipients   []string
	OutputDir    string
}

// RunReportCycle produces and delivers a periodic report: it records a sync
// run of type automated_report, gathers activity data over the lookback
// window, renders the document, emails it and archives a copy. Any step
// failing marks the run failed and returns the step's error.
func (s *Service) RunReportCycle(opts ReportOptions) (string, error) {
	runID, err := s.database.CreateSyncRun("automated_report", s.clock.Now())
	if err != nil {
		return "", fmt.Errorf("creating sync run: %w", err)
	}

	data, err := s.fetchReportData(opts.LookbackDays)
	if err != nil {
		err = fmt.Errorf("gathering report data: %w", err)
		s.failRun(runID, err)
		return "", err
	}

	name := fmt.Sprintf("classtrack_report_%s.xlsx", data.GeneratedAt.Format("20060102_150405"))
	path := filepath.Join(opts.OutputDir, name)
	if err := s.renderer.Render(data, path); err != nil {
		err = fmt.Errorf("rendering report: %w", err)
		s.failRun(runID, err)
		return "", err
	}
	s.logger.Info("report rendered", "path", path)

	if len(opts.Recipients) > 0 {
		subject := fmt.Sprintf("Submissions report %s", data.GeneratedAt.Format("2006-01-02"))
		if err := s.mailer.SendReport(opts.Recipients, subject, reportEmailBody(data), path); err != nil {
			err = fmt.Errorf("sending report: %w", err)
			s.failRun(runID, err)
			return "", err
		}
		s.logger.Info("report sent", "recipients", strings.Join(opts.Recipients, ","))
	}

	if err := s.archiveReport(name, path); err != nil {
		err = fmt.Errorf("archiving report: %w", err)
		s.failRun(runID, err)
		return "", err
	}

	if err := s.database.FinishSyncRun(runID, model.RunStatusCompleted, data.Summary.TotalSubmissions, 0, "", s.clock.Now()); err != nil {
		return path, fmt.Errorf("finishing sync run: %w", err)
	}
	return path, nil
}

// fetchReportData assembles every section of the report from the repository.
// The lookback window bounds the recent-activity sections; module and
// student overviews are unbounded.
func (s *Service) fetchReportData(lookbackDays int) (*model.ReportData, error) {
	now := s.clock.Now()
	cutoff := now.AddDate(0, 0, -lookbackDays)

	summary, err := s.database.ReportSummary(cutoff)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	modules, err := s.database.ModuleActivity()
	if err != nil {
		return nil, fmt.Errorf("module activity: %w", err)
	}
	students, err := s.database.StudentActivity()
	if err != nil {
		return nil, fmt.Errorf("student activity: %w", err)
	}
	recent, err := s.database.RecentSubmissions(cutoff, 50)
	if err != nil {
		return nil, fmt.Errorf("recent submissions: %w", err)
	}
	daily, err := s.database.DailyActivity(cutoff)
	if err != nil {
		return nil, fmt.Errorf("daily activity: %w", err)
	}
	top, err := s.database.TopStudents(cutoff, 10)
	if err != nil {
		return nil, fmt.Errorf("top students: %w", err)
	}

	return &model.ReportData{
		GeneratedAt:       now,
		PeriodDays:        lookbackDays,
		Summary:           summary,
		Modules:           modules,
		Students:          students,
		RecentSubmissions: recent,
		Daily:             daily,
		TopStudents:       top,
	}, nil
}

func (s *Service) archiveReport(name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return s.archive.StoreReport(name, f, info.Size())
}

// reportEmailBody builds the HTML body summarizing the attached report.
func reportEmailBody(data *model.ReportData) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString("<h2>Submissions report</h2>")
	fmt.Fprintf(&b, "<p>Generated %s, covering the last %d days.</p>",
		data.GeneratedAt.Format("2006-01-02 15:04"), data.PeriodDays)
	b.WriteString("<ul>")
	fmt.Fprintf(&b, "<li>Total submissions: %d</li>", data.Summary.TotalSubmissions)
	fmt.Fprintf(&b, "<li>Active students in period: %d</li>", data.Summary.ActiveStudents)
	fmt.Fprintf(&b, "<li>Total students: %d</li>", data.Summary.TotalStudents)
	fmt.Fprintf(&b, "<li>Modules: %d</li>", data.Summary.TotalModules)
	b.WriteString("</ul>")
	b.WriteString("<p>The full breakdown is attached.</p>")
	b.WriteString("</body></html>")
	return b.String()
}
