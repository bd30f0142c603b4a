package types

// Reason explains why a file was flagged for deletion.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonDecodeFailure     Reason = "decode_failure"
	ReasonUnsupportedLayout Reason = "unsupported_layout"
	ReasonSolidColor        Reason = "solid_color"
	ReasonTargetColorMatch  Reason = "target_color_match"
)

// Verdict is the keep/delete outcome for a single file.
type Verdict struct {
	Delete bool
	Reason Reason
	// Measured is the statistic behind the decision: the matched target's
	// coverage percentage in target-color mode, the largest per-channel
	// variance in variance mode. Zero for files that never decoded.
	Measured float64
}

// FileReport holds the per-file record stored by the report database.
type FileReport struct {
	ID          int64   `json:"id"`
	ScanID      int64   `json:"scan_id"`
	Path        string  `json:"path"`
	Layout      string  `json:"layout"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Delete      bool    `json:"delete"`
	Reason      Reason  `json:"reason"`
	Measured    float64 `json:"measured"`
	MimeType    string  `json:"mime_type"`
	CameraModel string  `json:"camera_model"`
	ScannedAt   string  `json:"scanned_at"`
}

// CleanStats aggregates the outcome of one clean run.
type CleanStats struct {
	Total          int
	Flagged        int
	DecodeFailures int
	Unsupported    int
	SolidColor     int
	TargetMatches  int
}
