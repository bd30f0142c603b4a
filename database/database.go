package database

import (
	"database/sql"
	"fmt"
	"time"

	"imagecleaner/types"

	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase opens the report database and creates the schema if needed
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		folder TEXT NOT NULL,
		started_at TEXT,
		finished_at TEXT,
		total INTEGER,
		flagged INTEGER
	);
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL,
		path TEXT NOT NULL,
		layout TEXT,
		width INTEGER,
		height INTEGER,
		flagged INTEGER,
		reason TEXT,
		measured REAL,
		mime_type TEXT,
		camera_model TEXT,
		scanned_at TEXT,
		UNIQUE(scan_id, path)
	);
	CREATE INDEX IF NOT EXISTS idx_files_scan ON files(scan_id);
	CREATE INDEX IF NOT EXISTS idx_files_reason ON files(reason);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		return nil, fmt.Errorf("error creating report schema: %v", err)
	}

	return db, nil
}

// OpenDatabase opens an existing report database
func OpenDatabase(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", dbPath)
}

// BeginScan records the start of a scan run and returns its id
func BeginScan(db *sql.DB, folder string) (int64, error) {
	res, err := db.Exec(
		"INSERT INTO scans (folder, started_at) VALUES (?, ?)",
		folder, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("cannot record scan start for %s: %v", folder, err)
	}
	return res.LastInsertId()
}

// FinishScan stores the aggregate outcome of a completed scan run
func FinishScan(db *sql.DB, scanID int64, stats *types.CleanStats) error {
	_, err := db.Exec(
		"UPDATE scans SET finished_at = ?, total = ?, flagged = ? WHERE id = ?",
		time.Now().Format(time.RFC3339), stats.Total, stats.Flagged, scanID,
	)
	if err != nil {
		return fmt.Errorf("cannot record scan completion: %v", err)
	}
	return nil
}

// StoreFileReport stores the verdict row for one classified file
func StoreFileReport(db *sql.DB, report types.FileReport) error {
	stmt, err := db.Prepare(`
		INSERT OR REPLACE INTO files (
			scan_id, path, layout, width, height, flagged, reason, measured, mime_type, camera_model, scanned_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("cannot prepare statement for %s: %v", report.Path, err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		report.ScanID,
		report.Path,
		report.Layout,
		report.Width,
		report.Height,
		report.Delete,
		string(report.Reason),
		report.Measured,
		report.MimeType,
		report.CameraModel,
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cannot insert report for %s: %v", report.Path, err)
	}

	return nil
}

// LatestScanID returns the id of the most recent scan run
func LatestScanID(db *sql.DB) (int64, error) {
	var id int64
	err := db.QueryRow("SELECT id FROM scans ORDER BY id DESC LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("no scans recorded yet")
	}
	if err != nil {
		return 0, fmt.Errorf("cannot query latest scan: %v", err)
	}
	return id, nil
}

// FlaggedFiles returns the flagged rows of a scan run
func FlaggedFiles(db *sql.DB, scanID int64) ([]types.FileReport, error) {
	rows, err := db.Query(`
		SELECT id, scan_id, path, layout, width, height, flagged, reason, measured, mime_type, camera_model, scanned_at
		FROM files WHERE scan_id = ? AND flagged = 1 ORDER BY path`, scanID)
	if err != nil {
		return nil, fmt.Errorf("cannot query flagged files: %v", err)
	}
	defer rows.Close()

	var reports []types.FileReport
	for rows.Next() {
		var r types.FileReport
		var reason string
		err = rows.Scan(&r.ID, &r.ScanID, &r.Path, &r.Layout, &r.Width, &r.Height,
			&r.Delete, &reason, &r.Measured, &r.MimeType, &r.CameraModel, &r.ScannedAt)
		if err != nil {
			return nil, fmt.Errorf("cannot scan report row: %v", err)
		}
		r.Reason = types.Reason(reason)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// GetScanStats aggregates the stored verdicts of a scan run
func GetScanStats(db *sql.DB, scanID int64) (*types.CleanStats, error) {
	stats := &types.CleanStats{}

	err := db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(flagged), 0),
			COALESCE(SUM(reason = 'decode_failure'), 0),
			COALESCE(SUM(reason = 'unsupported_layout'), 0),
			COALESCE(SUM(reason = 'solid_color'), 0),
			COALESCE(SUM(reason = 'target_color_match'), 0)
		FROM files WHERE scan_id = ?`, scanID).Scan(
		&stats.Total, &stats.Flagged, &stats.DecodeFailures,
		&stats.Unsupported, &stats.SolidColor, &stats.TargetMatches)
	if err != nil {
		return nil, fmt.Errorf("cannot aggregate scan %d: %v", scanID, err)
	}

	return stats, nil
}
