package track

import (
	"encoding/json"
	"fmt"

	"classtrack-go/internal/model"
)

// maxErrorSample bounds how many error messages a sync run record keeps.
// The total count is always stored; the sample exists for quick triage.
const maxErrorSample = 3

// ScanResult aggregates the outcome of one full scan.
type ScanResult struct {
	SyncRunID          int64
	Status             string
	TotalModules       int
	ModulesScanned     int
	ModulesCreated     int
	TotalFiles         int
	SubmissionsCreated int
	StudentsCreated    int
	Unidentified       int
	Errors             []string
}

// FullScan drives the end-to-end pass: reconcile remote folders against
// module records, then scan every module's files, resolving identities and
// upserting students and submissions. Per-file and per-module failures are
// collected without aborting the run; only run-level failures (the sync run
// record cannot be created, or the remote listing fails before any module is
// scanned) propagate as errors.
func (s *Service) FullScan() (*ScanResult, error) {
	runID, err := s.database.CreateSyncRun("full_scan", s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("creating sync run: %w", err)
	}

	res := &ScanResult{SyncRunID: runID}

	if err := s.syncModules(res); err != nil {
		s.failRun(runID, err)
		return nil, err
	}

	modules, err := s.database.Modules()
	if err != nil {
		err = fmt.Errorf("listing modules: %w", err)
		s.failRun(runID, err)
		return nil, err
	}
	res.TotalModules = len(modules)

	for i, mod := range modules {
		s.logger.Info("scanning module", "module", mod.Name, "index", i+1, "total", len(modules))
		s.scanModule(mod, res)
	}

	res.Status = model.RunStatusCompleted
	if len(res.Errors) > 0 {
		res.Status = model.RunStatusCompletedWithErrors
	}

	details := errorDetails(res.Errors)
	if err := s.database.FinishSyncRun(runID, res.Status, res.TotalFiles, len(res.Errors), details, s.clock.Now()); err != nil {
		return res, fmt.Errorf("finishing sync run: %w", err)
	}

	s.logger.Info("scan complete",
		"modules", res.ModulesScanned,
		"files", res.TotalFiles,
		"submissions", res.SubmissionsCreated,
		"students", res.StudentsCreated,
		"errors", len(res.Errors),
	)
	return res, nil
}

// syncModules reconciles the remote folder list against module records:
// create-if-absent keyed by folder id, never delete. A listing failure is a
// run-level error; a single module's creation failure is not.
func (s *Service) syncModules(res *ScanResult) error {
	folders, err := s.storage.ListFolders(s.rootFolderID)
	if err != nil {
		return fmt.Errorf("listing module folders: %w", err)
	}

	for _, folder := range folders {
		existing, err := s.database.ModuleByDriveFolder(folder.ID)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("module %s: %v", folder.Name, err))
			continue
		}
		if existing != nil {
			continue
		}

		desc := fmt.Sprintf("Imported from remote folder: %s", folder.Name)
		if _, err := s.database.CreateModule(folder.Name, folder.ID, desc); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("creating module %s: %v", folder.Name, err))
			continue
		}
		res.ModulesCreated++
		s.logger.Info("module created", "module", folder.Name)
	}
	return nil
}

// scanModule processes one module's files. Errors are accumulated per file;
// an unidentified file is counted and skipped, never guessed.
func (s *Service) scanModule(mod model.Module, res *ScanResult) {
	files, err := s.storage.ListFiles(mod.DriveFolderID, s.mimeTypes)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("module %s: listing files: %v", mod.Name, err))
		return
	}

	res.ModulesScanned++
	res.TotalFiles += len(files)

	for _, f := range files {
		identity, ok := s.resolver.Resolve(f)
		if !ok {
			res.Unidentified++
			s.logger.Warn("file not identified", "module", mod.Name, "file", f.Name)
			continue
		}

		existing, err := s.database.StudentByEmail(identity.Email)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("student %s: %v", identity.Email, err))
			continue
		}

		studentID, err := s.database.UpsertStudent(identity.Name, identity.Email)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("student %s: %v", identity.Email, err))
			continue
		}
		if existing == nil {
			res.StudentsCreated++
			s.logger.Info("student created", "name", identity.Name, "email", identity.Email)
		}

		if _, err := s.database.UpsertSubmission(mod.ID, studentID, f, s.clock.Now()); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("submission %s: %v", f.Name, err))
			continue
		}
		res.SubmissionsCreated++
	}
}

// failRun marks a sync run failed. This is best-effort: a failure of the
// status write itself is logged and swallowed so it never masks the
// original error.
func (s *Service) failRun(runID int64, cause error) {
	details := errorDetails([]string{cause.Error()})
	if err := s.database.FinishSyncRun(runID, model.RunStatusFailed, 0, 1, details, s.clock.Now()); err != nil {
		s.logger.Error("marking sync run failed", "run", runID, "error", err)
	}
}

// errorDetails serializes a bounded sample of error messages plus the total
// count. Returns "" when there were no errors.
func errorDetails(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	sample := errs
	if len(sample) > maxErrorSample {
		sample = sample[:maxErrorSample]
	}
	payload := struct {
		Errors []string `json:"errors"`
		Total  int      `json:"total"`
	}{Errors: sample, Total: len(errs)}

	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(`{"total": %d}`, len(errs))
	}
	return string(b)
}
