package ingest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/sha1n/docindex/internal/domain"
)

// Candidate is a discovered file with the metadata captured when it was picked up.
type Candidate struct {
	Path     string
	Size     int64
	Created  *time.Time
	Modified *time.Time
}

// NewCandidate stats path and captures its metadata. Timestamps the
// filesystem does not report are left nil.
func NewCandidate(path string) (Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to stat file: %w", err)
	}

	c := Candidate{
		Path: path,
		Size: info.Size(),
	}

	if modified := info.ModTime(); !modified.IsZero() {
		c.Modified = &modified
	}

	// Birth time needs a second stat on most platforms
	if ts, err := times.Stat(path); err == nil && ts.HasBirthTime() {
		created := ts.BirthTime()
		c.Created = &created
	}

	return c, nil
}

// DocumentID returns the identity of a document: the hex MD5 of its filename.
func DocumentID(filename string) string {
	sum := md5.Sum([]byte(filename))
	return hex.EncodeToString(sum[:])
}

// AbsolutePath resolves path against the working directory.
// It returns an empty string when that is not possible.
func AbsolutePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	return abs
}

// FileURL returns the file:// URL of an absolute path, or domain.UnknownURL.
func FileURL(absPath string) string {
	if absPath == "" || !filepath.IsAbs(absPath) {
		return domain.UnknownURL
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath)}
	if !strings.HasPrefix(u.Path, "/") {
		// Windows volume paths
		u.Path = "/" + u.Path
	}
	return u.String()
}

// FileType returns the lowercase extension of path without the dot, or domain.UnknownFileType.
func FileType(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return domain.UnknownFileType
	}
	return strings.ToLower(ext)
}

// Assemble builds the search document for a candidate. It returns false when
// the extraction failed, in which case the candidate contributes nothing.
func Assemble(c Candidate, absPath string, out Outcome) (domain.SearchDocument, bool) {
	if !out.OK() {
		return domain.SearchDocument{}, false
	}

	return domain.SearchDocument{
		ID:       DocumentID(c.Path),
		Filename: c.Path,
		URL:      FileURL(absPath),
		Content:  out.Text,
		Created:  c.Created,
		Modified: c.Modified,
		Size:     c.Size,
		FileType: FileType(c.Path),
	}, true
}
