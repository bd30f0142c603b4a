package database

import (
	"path/filepath"
	"testing"

	"imagecleaner/types"
)

func TestReportRoundtrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reports.db")

	db, err := InitDatabase(dbPath)
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	defer db.Close()

	scanID, err := BeginScan(db, "/corpus/batch1")
	if err != nil {
		t.Fatalf("BeginScan: %v", err)
	}

	reports := []types.FileReport{
		{
			ScanID:   scanID,
			Path:     "/corpus/batch1/black.png",
			Layout:   "rgba8",
			Width:    100,
			Height:   100,
			Delete:   true,
			Reason:   types.ReasonTargetColorMatch,
			Measured: 100,
		},
		{
			ScanID:   scanID,
			Path:     "/corpus/batch1/broken.jpg",
			Delete:   true,
			Reason:   types.ReasonDecodeFailure,
			MimeType: "text/plain",
		},
		{
			ScanID:   scanID,
			Path:     "/corpus/batch1/good.png",
			Layout:   "rgb8",
			Width:    640,
			Height:   480,
			Measured: 12.5,
		},
	}
	for _, report := range reports {
		if err := StoreFileReport(db, report); err != nil {
			t.Fatalf("StoreFileReport(%s): %v", report.Path, err)
		}
	}

	stats, err := GetScanStats(db, scanID)
	if err != nil {
		t.Fatalf("GetScanStats: %v", err)
	}
	if stats.Total != 3 || stats.Flagged != 2 {
		t.Fatalf("stats = %+v, want total 3 flagged 2", stats)
	}
	if stats.DecodeFailures != 1 || stats.TargetMatches != 1 {
		t.Fatalf("stats = %+v, want one decode failure and one target match", stats)
	}

	if err := FinishScan(db, scanID, stats); err != nil {
		t.Fatalf("FinishScan: %v", err)
	}

	latest, err := LatestScanID(db)
	if err != nil {
		t.Fatalf("LatestScanID: %v", err)
	}
	if latest != scanID {
		t.Fatalf("latest scan = %d, want %d", latest, scanID)
	}

	flagged, err := FlaggedFiles(db, scanID)
	if err != nil {
		t.Fatalf("FlaggedFiles: %v", err)
	}
	if len(flagged) != 2 {
		t.Fatalf("flagged rows = %d, want 2", len(flagged))
	}
	if flagged[0].Path != "/corpus/batch1/black.png" {
		t.Fatalf("first flagged = %s, want black.png row", flagged[0].Path)
	}
	if flagged[1].Reason != types.ReasonDecodeFailure || flagged[1].MimeType != "text/plain" {
		t.Fatalf("second flagged = %+v, want decode failure with mime", flagged[1])
	}
}

func TestStoreFileReportReplacesOnRescan(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reports.db")

	db, err := InitDatabase(dbPath)
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	defer db.Close()

	scanID, err := BeginScan(db, "/corpus")
	if err != nil {
		t.Fatalf("BeginScan: %v", err)
	}

	report := types.FileReport{ScanID: scanID, Path: "/corpus/a.png", Delete: true, Reason: types.ReasonSolidColor}
	if err := StoreFileReport(db, report); err != nil {
		t.Fatalf("first store: %v", err)
	}
	report.Delete = false
	report.Reason = types.ReasonNone
	if err := StoreFileReport(db, report); err != nil {
		t.Fatalf("second store: %v", err)
	}

	stats, err := GetScanStats(db, scanID)
	if err != nil {
		t.Fatalf("GetScanStats: %v", err)
	}
	if stats.Total != 1 || stats.Flagged != 0 {
		t.Fatalf("stats = %+v, want the row replaced", stats)
	}
}

func TestLatestScanIDEmptyDatabase(t *testing.T) {
	db, err := InitDatabase(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	defer db.Close()

	if _, err := LatestScanID(db); err == nil {
		t.Fatal("expected error for empty database")
	}
}
