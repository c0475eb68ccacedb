package ingest

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sha1n/docindex/internal/domain"
)

// SniffLen is the number of leading bytes inspected by Classify.
const SniffLen = 512

// MIME identifiers recognized by Classify.
const (
	MIMEDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPDF   = "application/pdf"
	MIMEZip   = "application/zip"
	mimeOctet = "application/octet-stream"
)

// Classify determines the supported document type of a file from its content.
// The extension is only consulted for generic zip containers, where ".docx"
// (case-insensitive) is the sole signal that the archive is a Word document.
func Classify(path string) domain.DetectedType {
	f, err := os.Open(path)
	if err != nil {
		slog.Debug("Could not open file", "path", path, "error", err)
		return domain.Unsupported
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, SniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		slog.Debug("Could not read file", "path", path, "error", err)
		return domain.Unsupported
	}

	return classifyHeader(path, buf[:n])
}

// classifyHeader maps the detected signature of header onto a DetectedType.
func classifyHeader(path string, header []byte) domain.DetectedType {
	mime := mimetype.Detect(header)
	slog.Debug("Detected content type", "path", path, "mime", mime.String(), "extension", filepath.Ext(path))

	switch {
	case mime.Is(mimeOctet):
		slog.Debug("File is of unknown type", "path", path)
		return domain.Unsupported
	case mime.Is(MIMEDocx):
		return domain.DOCX
	case mime.Is(MIMEPDF):
		return domain.PDF
	case mime.Is(MIMEZip):
		if strings.EqualFold(filepath.Ext(path), ".docx") {
			return domain.DOCX
		}
		slog.Debug("File is a zip archive but not a docx", "path", path)
		return domain.Unsupported
	default:
		slog.Debug("Unsupported content type", "path", path, "mime", mime.String())
		return domain.Unsupported
	}
}
