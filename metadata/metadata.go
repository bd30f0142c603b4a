// Package metadata enriches report rows with exiftool output.
package metadata

import (
	"fmt"

	exiftool "github.com/barasher/go-exiftool"
)

// Extractor wraps a long-lived exiftool process. It is not safe for
// concurrent use; the scanner calls it only from the collector goroutine.
type Extractor struct {
	et *exiftool.Exiftool
}

// NewExtractor starts the exiftool helper process. Fails when the exiftool
// binary is not installed.
func NewExtractor() (*Extractor, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("cannot start exiftool: %v", err)
	}
	return &Extractor{et: et}, nil
}

// Close shuts the exiftool process down.
func (e *Extractor) Close() error {
	return e.et.Close()
}

// Describe returns the MIME type and camera model of a file. Both are empty
// when exiftool cannot read the file, which is common for the corrupt files
// this tool flags.
func (e *Extractor) Describe(path string) (mime string, model string) {
	metas := e.et.ExtractMetadata(path)
	if len(metas) == 0 || metas[0].Err != nil {
		return "", ""
	}

	if v, err := metas[0].GetString("MIMEType"); err == nil {
		mime = v
	}
	if v, err := metas[0].GetString("Model"); err == nil {
		model = v
	}
	return mime, model
}
