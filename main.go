package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"imagecleaner/classify"
	"imagecleaner/database"
	"imagecleaner/logging"
	"imagecleaner/metadata"
	"imagecleaner/scanner"
	"imagecleaner/signalhandler"
	"imagecleaner/tui"
)

var rootCmd = &cobra.Command{
	Use:   "imagecleaner",
	Short: "imagecleaner - flag degenerate images in a training corpus",
	Long: "imagecleaner scans a folder of images and flags the junk: files that " +
		"cannot be decoded, unsupported channel layouts, and effectively " +
		"solid-color images with no usable content.",
}

var (
	cleanFolder       string
	cleanMode         string
	varianceThreshold float64
	quantityThreshold float64
	dbPath            string
	withMetadata      bool
	maxWorkers        int
	debugMode         bool
	logPath           string
	doDelete          bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Classify every file in a folder and list the ones to delete",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClean()
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the flagged files of the most recent recorded scan",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport()
	},
}

func init() {
	cleanCmd.Flags().StringVar(&cleanFolder, "folder", "", "folder containing the image corpus (required)")
	cleanCmd.Flags().StringVar(&cleanMode, "mode", "targets", "analysis mode: targets or variance")
	cleanCmd.Flags().Float64Var(&varianceThreshold, "variance-threshold", classify.DefaultVarianceThreshold,
		"per-channel variance below which an image counts as flat (variance mode)")
	cleanCmd.Flags().Float64Var(&quantityThreshold, "quantity-threshold", classify.DefaultQuantity,
		"coverage percentage a target color must exceed (targets mode)")
	cleanCmd.Flags().StringVar(&dbPath, "database", "", "record verdicts in this sqlite report database")
	cleanCmd.Flags().BoolVar(&withMetadata, "metadata", false, "enrich flagged report rows via exiftool (needs --database)")
	cleanCmd.Flags().IntVar(&maxWorkers, "workers", 0, "worker pool size (default: 3/4 of the CPUs)")
	cleanCmd.Flags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	cleanCmd.Flags().StringVar(&logPath, "logfile", "imagecleaner.log", "debug log file path")
	cleanCmd.Flags().BoolVar(&doDelete, "delete", false, "remove the flagged files instead of only listing them")
	_ = cleanCmd.MarkFlagRequired("folder")

	reportCmd.Flags().StringVar(&dbPath, "database", "", "sqlite report database to read (required)")
	_ = reportCmd.MarkFlagRequired("database")

	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runClean() error {
	folderInfo, err := os.Stat(cleanFolder)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("folder path does not exist: %s", cleanFolder)
		}
		return fmt.Errorf("cannot access folder path: %s (%v)", cleanFolder, err)
	}
	if !folderInfo.IsDir() {
		return fmt.Errorf("path is not a directory: %s", cleanFolder)
	}

	config, err := buildConfig()
	if err != nil {
		return err
	}

	if debugMode {
		if err := logging.SetupLogger(logPath); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", logPath)
			defer logging.CloseLogger()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signalhandler.SetupHandler(cancel)

	var db *sql.DB
	var scanID int64
	if dbPath != "" {
		db, err = openReportDatabase(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		scanID, err = database.BeginScan(db, cleanFolder)
		if err != nil {
			return err
		}
	}

	var extractor *metadata.Extractor
	if withMetadata && db != nil {
		extractor, err = metadata.NewExtractor()
		if err != nil {
			fmt.Printf("Warning: metadata enrichment disabled: %v\n", err)
		} else {
			defer extractor.Close()
		}
	}

	startTime := time.Now()
	toDelete, stats, err := scanner.CleanFolder(ctx, db, scanner.ScanOptions{
		FolderPath: cleanFolder,
		Config:     config,
		MaxWorkers: maxWorkers,
		DebugMode:  debugMode,
		ScanID:     scanID,
		Metadata:   extractor,
	})
	if err != nil {
		return fmt.Errorf("error cleaning folder: %v", err)
	}

	if db != nil {
		if err := database.FinishScan(db, scanID, stats); err != nil {
			log.Printf("Warning: %v", err)
		}
	}

	fmt.Println(tui.RenderSummary([]tui.SummaryRow{
		{Label: "Files classified", Value: fmt.Sprintf("%d", stats.Total)},
		{Label: "Flagged for deletion", Value: fmt.Sprintf("%d", stats.Flagged), Warn: stats.Flagged > 0},
		{Label: "Decode failures", Value: fmt.Sprintf("%d", stats.DecodeFailures)},
		{Label: "Unsupported layouts", Value: fmt.Sprintf("%d", stats.Unsupported)},
		{Label: "Elapsed", Value: time.Since(startTime).Round(time.Millisecond).String()},
	}))

	for _, path := range toDelete {
		fmt.Println(path)
	}

	if doDelete {
		removed := 0
		for _, path := range toDelete {
			if err := os.Remove(path); err != nil {
				fmt.Fprintf(os.Stderr, "cannot remove %s: %v\n", path, err)
				continue
			}
			removed++
		}
		fmt.Printf("Removed %d/%d flagged files.\n", removed, len(toDelete))
	}

	return nil
}

func runReport() error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("database does not exist: %s. Run clean --database first", dbPath)
	}

	db, err := database.OpenDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("error opening database: %v", err)
	}
	defer db.Close()

	scanID, err := database.LatestScanID(db)
	if err != nil {
		return err
	}

	stats, err := database.GetScanStats(db, scanID)
	if err != nil {
		return err
	}

	flagged, err := database.FlaggedFiles(db, scanID)
	if err != nil {
		return err
	}

	fmt.Println(tui.RenderSummary([]tui.SummaryRow{
		{Label: "Scan", Value: fmt.Sprintf("#%d", scanID)},
		{Label: "Files classified", Value: fmt.Sprintf("%d", stats.Total)},
		{Label: "Flagged for deletion", Value: fmt.Sprintf("%d", stats.Flagged), Warn: stats.Flagged > 0},
		{Label: "Decode failures", Value: fmt.Sprintf("%d", stats.DecodeFailures)},
		{Label: "Unsupported layouts", Value: fmt.Sprintf("%d", stats.Unsupported)},
		{Label: "Solid color", Value: fmt.Sprintf("%d", stats.SolidColor)},
		{Label: "Target color matches", Value: fmt.Sprintf("%d", stats.TargetMatches)},
	}))

	for _, report := range flagged {
		line := fmt.Sprintf("%s  [%s]", report.Path, report.Reason)
		if report.MimeType != "" {
			line += "  " + report.MimeType
		}
		fmt.Println(line)
	}

	return nil
}

func buildConfig() (classify.Config, error) {
	config := classify.DefaultConfig()
	config.VarianceThreshold = varianceThreshold
	config.Workers = maxWorkers

	switch cleanMode {
	case "targets":
		config.Mode = classify.ModeTargetColors
	case "variance":
		config.Mode = classify.ModeVariance
	default:
		return config, fmt.Errorf("unknown mode %q (expected targets or variance)", cleanMode)
	}

	if quantityThreshold < 0 || quantityThreshold > 100 {
		return config, fmt.Errorf("invalid quantity threshold %v, expected 0-100", quantityThreshold)
	}
	for i := range config.Targets {
		config.Targets[i].Quantity = quantityThreshold
	}

	return config, nil
}

// openReportDatabase initializes the report store, retrying briefly since a
// previous run may still hold the sqlite write lock.
func openReportDatabase(path string) (*sql.DB, error) {
	const maxRetries = 3

	var db *sql.DB
	var err error
	for i := 0; i < maxRetries; i++ {
		db, err = database.InitDatabase(path)
		if err == nil {
			return db, nil
		}
		if i < maxRetries-1 {
			log.Printf("Error initializing database (attempt %d/%d): %v - retrying...", i+1, maxRetries, err)
			time.Sleep(time.Second * time.Duration(i+1))
		}
	}
	return nil, fmt.Errorf("error initializing database after %d attempts: %v", maxRetries, err)
}
