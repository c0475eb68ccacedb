package domain

import "time"

// SearchDocument represents an extracted office document.
// It is the unit submitted to the search index and is upserted by ID.
type SearchDocument struct {
	// ID is the hex MD5 digest of Filename. It depends on the name only,
	// so re-indexing an unchanged file under the same name is an update.
	ID string `json:"id"`

	// Filename is the path as discovered by the directory walk.
	// Example: "docs/reports/q3.pdf"
	Filename string `json:"filename"`

	// URL is a file:// locator for the absolute path, or UnknownURL.
	URL string `json:"url"`

	// Content is the extracted plain text.
	Content string `json:"content"`

	// Created and Modified are nil when the filesystem does not report them.
	Created  *time.Time `json:"created,omitempty"`
	Modified *time.Time `json:"modified,omitempty"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// FileType is the lowercase extension without the leading dot,
	// or UnknownFileType when the file has none.
	FileType string `json:"filetype"`
}

// Bleve field name constants for consistent field references in mappings.
const (
	FieldID       = "id"
	FieldFilename = "filename"
	FieldURL      = "url"
	FieldContent  = "content"
	FieldCreated  = "created"
	FieldModified = "modified"
	FieldSize     = "size"
	FieldFileType = "filetype"
)

const (
	// UnknownURL is used when a path cannot be turned into a file URL.
	UnknownURL = "file:///unknown"

	// UnknownFileType is used for files without an extension.
	UnknownFileType = "unknown"
)

// DetectedType is the content-based classification of a file.
type DetectedType int

const (
	Unsupported DetectedType = iota
	PDF
	DOCX
)

// String returns a short name suitable for logging.
func (t DetectedType) String() string {
	switch t {
	case PDF:
		return "pdf"
	case DOCX:
		return "docx"
	default:
		return "unsupported"
	}
}
