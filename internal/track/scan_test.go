package track_test

import (
	"strings"
	"testing"

	"classtrack-go/internal/model"
	"classtrack-go/internal/testutil"
	"classtrack-go/internal/track"
)

const rootFolder = "root-folder"

func newScanService(t *testing.T) (*track.Service, *testutil.MemoryStorage, track.Database) {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	storage := testutil.NewMemoryStorage()
	svc := track.NewService(db, storage, track.NewResolver(), nil, nil, nil,
		track.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator(),
		rootFolder, nil)
	return svc, storage, db
}

func addCourse(storage *testutil.MemoryStorage) {
	storage.AddFolder("folder-1", "Módulo 1")
	storage.AddFolder("folder-2", "Módulo 2")
	storage.AddFile("folder-1", track.File{
		ID:                "file-1",
		Name:              "Modulo1_EduardoMoreno_01.jpg",
		MimeType:          "image/jpeg",
		Size:              2 * 1024 * 1024,
		ModifiedTime:      "2024-01-10T09:00:00Z",
		LastModifyingUser: &track.UserRef{EmailAddress: "emoreno@example.com", DisplayName: "Eduardo Moreno"},
	})
	storage.AddFile("folder-1", track.File{
		ID:   "file-2",
		Name: "Modulo1_AnaLopez_02.jpg",
	})
	storage.AddFile("folder-2", track.File{
		ID:     "file-3",
		Name:   "Modulo2_EduardoMoreno_01.jpg",
		Owners: []track.UserRef{{EmailAddress: "emoreno@example.com", DisplayName: "Eduardo Moreno"}},
	})
}

func TestService_FullScan(t *testing.T) {
	t.Parallel()
	svc, storage, db := newScanService(t)
	addCourse(storage)

	res, err := svc.FullScan()
	if err != nil {
		t.Fatalf("FullScan() error = %v", err)
	}

	if res.Status != model.RunStatusCompleted {
		t.Errorf("Status = %q, want %q", res.Status, model.RunStatusCompleted)
	}
	if res.ModulesCreated != 2 {
		t.Errorf("ModulesCreated = %d, want 2", res.ModulesCreated)
	}
	if res.ModulesScanned != 2 {
		t.Errorf("ModulesScanned = %d, want 2", res.ModulesScanned)
	}
	if res.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", res.TotalFiles)
	}
	if res.SubmissionsCreated != 3 {
		t.Errorf("SubmissionsCreated = %d, want 3", res.SubmissionsCreated)
	}
	// emoreno@example.com appears twice; the filename-only file synthesizes
	// a second student.
	if res.StudentsCreated != 2 {
		t.Errorf("StudentsCreated = %d, want 2", res.StudentsCreated)
	}

	modules, err := db.Modules()
	if err != nil {
		t.Fatalf("Modules() error = %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("len(Modules()) = %d, want 2", len(modules))
	}
	if modules[0].Code != "MOD01" {
		t.Errorf("modules[0].Code = %q, want %q", modules[0].Code, "MOD01")
	}
	if modules[1].Code != "MOD02" {
		t.Errorf("modules[1].Code = %q, want %q", modules[1].Code, "MOD02")
	}
	if modules[0].OrderIndex != 1 || modules[1].OrderIndex != 2 {
		t.Errorf("order indexes = %d, %d, want 1, 2", modules[0].OrderIndex, modules[1].OrderIndex)
	}

	runs, err := db.RecentSyncRuns(5)
	if err != nil {
		t.Fatalf("RecentSyncRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(RecentSyncRuns()) = %d, want 1", len(runs))
	}
	run := runs[0]
	if run.SyncType != "full_scan" {
		t.Errorf("SyncType = %q, want %q", run.SyncType, "full_scan")
	}
	if run.Status != model.RunStatusCompleted {
		t.Errorf("run Status = %q, want %q", run.Status, model.RunStatusCompleted)
	}
	if run.FilesProcessed != 3 {
		t.Errorf("FilesProcessed = %d, want 3", run.FilesProcessed)
	}
	if run.CompletedAt == nil {
		t.Error("CompletedAt = nil, want set")
	}
}

func TestService_FullScan_Idempotent(t *testing.T) {
	t.Parallel()
	svc, storage, _ := newScanService(t)
	addCourse(storage)

	if _, err := svc.FullScan(); err != nil {
		t.Fatalf("first FullScan() error = %v", err)
	}

	res, err := svc.FullScan()
	if err != nil {
		t.Fatalf("second FullScan() error = %v", err)
	}
	if res.ModulesCreated != 0 {
		t.Errorf("ModulesCreated = %d, want 0", res.ModulesCreated)
	}
	if res.StudentsCreated != 0 {
		t.Errorf("StudentsCreated = %d, want 0", res.StudentsCreated)
	}

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalSubmissions != 3 {
		t.Errorf("TotalSubmissions = %d, want 3", stats.TotalSubmissions)
	}
	if stats.TotalStudents != 2 {
		t.Errorf("TotalStudents = %d, want 2", stats.TotalStudents)
	}
	if stats.TotalModules != 2 {
		t.Errorf("TotalModules = %d, want 2", stats.TotalModules)
	}
}

func TestService_FullScan_ModuleFailureIsIsolated(t *testing.T) {
	t.Parallel()
	svc, storage, db := newScanService(t)
	addCourse(storage)
	storage.FailFolder("folder-2")

	res, err := svc.FullScan()
	if err != nil {
		t.Fatalf("FullScan() error = %v", err)
	}

	if res.Status != model.RunStatusCompletedWithErrors {
		t.Errorf("Status = %q, want %q", res.Status, model.RunStatusCompletedWithErrors)
	}
	if res.SubmissionsCreated != 2 {
		t.Errorf("SubmissionsCreated = %d, want 2", res.SubmissionsCreated)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("len(Errors) = %d, want 1", len(res.Errors))
	}

	runs, err := db.RecentSyncRuns(1)
	if err != nil {
		t.Fatalf("RecentSyncRuns() error = %v", err)
	}
	if runs[0].Errors != 1 {
		t.Errorf("run Errors = %d, want 1", runs[0].Errors)
	}
	if !strings.Contains(runs[0].ErrorDetails, `"total":1`) {
		t.Errorf("ErrorDetails = %q, want total of 1", runs[0].ErrorDetails)
	}
}

func TestService_FullScan_RootFailureFailsRun(t *testing.T) {
	t.Parallel()
	svc, storage, db := newScanService(t)
	storage.FailFolder(rootFolder)

	if _, err := svc.FullScan(); err == nil {
		t.Fatal("FullScan() error = nil, want error")
	}

	runs, err := db.RecentSyncRuns(1)
	if err != nil {
		t.Fatalf("RecentSyncRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(RecentSyncRuns()) = %d, want 1", len(runs))
	}
	if runs[0].Status != model.RunStatusFailed {
		t.Errorf("run Status = %q, want %q", runs[0].Status, model.RunStatusFailed)
	}
}

func TestService_FullScan_UnidentifiedFilesAreSkipped(t *testing.T) {
	t.Parallel()
	svc, storage, _ := newScanService(t)
	storage.AddFolder("folder-1", "Módulo 1")
	storage.AddFile("folder-1", track.File{ID: "file-x", Name: "Modulo1_01.jpg"})

	res, err := svc.FullScan()
	if err != nil {
		t.Fatalf("FullScan() error = %v", err)
	}

	if res.Unidentified != 1 {
		t.Errorf("Unidentified = %d, want 1", res.Unidentified)
	}
	if res.SubmissionsCreated != 0 {
		t.Errorf("SubmissionsCreated = %d, want 0", res.SubmissionsCreated)
	}
	if res.Status != model.RunStatusCompleted {
		t.Errorf("Status = %q, want %q", res.Status, model.RunStatusCompleted)
	}
}
