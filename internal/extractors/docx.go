package extractors

import (
	"archive/zip"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"code.sajari.com/docconv"
)

// ErrMissingPart indicates a DOCX container without a required part.
var ErrMissingPart = errors.New("docx part missing")

// requiredDocxParts must be present before the container is handed to docconv.
var requiredDocxParts = []string{"[Content_Types].xml", "word/document.xml"}

// DOCX extracts the body text of a Word document.
type DOCX struct{}

// Extract returns the text of the document body, trimmed of surrounding whitespace.
func (DOCX) Extract(path string) (text string, err error) {
	slog.Debug("Reading DOCX text", "path", path)

	if err := checkDocxParts(path); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	body, _, err := docconv.ConvertDocx(f)
	if err != nil {
		return "", fmt.Errorf("failed to convert docx: %w", err)
	}

	return strings.TrimSpace(body), nil
}

// checkDocxParts verifies the zip container holds every required part.
func checkDocxParts(path string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open docx container: %w", err)
	}
	defer func() { _ = zr.Close() }()

	present := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		present[f.Name] = true
	}

	for _, part := range requiredDocxParts {
		if !present[part] {
			return fmt.Errorf("%w: %s", ErrMissingPart, part)
		}
	}
	return nil
}
