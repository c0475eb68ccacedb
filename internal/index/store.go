// Package index persists search documents in a local Bleve index.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/sha1n/docindex/internal/domain"
)

const (
	// LockSuffix is appended to the index directory to form the lock file path
	LockSuffix = ".lock"

	// DefaultLockTimeout bounds how long a writer waits for another writer to finish
	DefaultLockTimeout = 30 * time.Second
)

// ErrUnsupportedPrimaryKey is returned when documents are keyed by anything other than their id.
var ErrUnsupportedPrimaryKey = errors.New("unsupported primary key")

// Store is the document index at a fixed directory.
// Writers serialize on a file lock next to the directory.
type Store struct {
	path        string
	lockTimeout time.Duration
}

// NewStore creates a store for the index at path. A non-positive lock timeout
// falls back to DefaultLockTimeout.
func NewStore(path string, lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{
		path:        path,
		lockTimeout: lockTimeout,
	}
}

// Path returns the index directory.
func (s *Store) Path() string {
	return s.path
}

// LockPath returns the path of the writer lock file.
func (s *Store) LockPath() string {
	return s.path + LockSuffix
}

// CreateIndexMapping creates the Bleve index mapping for search documents.
func CreateIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	// Content - analyzed for full-text search
	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = standard.Name
	contentField.Store = true
	contentField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt(domain.FieldContent, contentField)

	for _, name := range []string{domain.FieldFilename, domain.FieldURL, domain.FieldFileType} {
		field := bleve.NewTextFieldMapping()
		field.Analyzer = keyword.Name
		field.Store = true
		docMapping.AddFieldMappingsAt(name, field)
	}

	for _, name := range []string{domain.FieldCreated, domain.FieldModified} {
		docMapping.AddFieldMappingsAt(name, bleve.NewDateTimeFieldMapping())
	}

	docMapping.AddFieldMappingsAt(domain.FieldSize, bleve.NewNumericFieldMapping())

	// ID is the document key; stored for retrieval only
	idField := bleve.NewTextFieldMapping()
	idField.Index = false
	idField.Store = true
	docMapping.AddFieldMappingsAt(domain.FieldID, idField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// Exists reports whether an index has been created at the store path.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// OpenForRead opens the existing index. The caller closes it.
func (s *Store) OpenForRead() (bleve.Index, error) {
	idx, err := bleve.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return idx, nil
}

// openForWrite opens the index, creating it on first use.
func (s *Store) openForWrite() (bleve.Index, error) {
	if s.Exists() {
		return s.OpenForRead()
	}

	idx, err := bleve.New(s.path, CreateIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	return idx, nil
}

// AddDocuments upserts docs by id in a single batch, so either all of them
// are committed or none are. primaryKey must be domain.FieldID.
func (s *Store) AddDocuments(ctx context.Context, docs []domain.SearchDocument, primaryKey string) (err error) {
	if primaryKey != domain.FieldID {
		return fmt.Errorf("%w: %q", ErrUnsupportedPrimaryKey, primaryKey)
	}

	lock := NewFileLock(s.LockPath())
	if err := lock.Lock(ctx, s.lockTimeout); err != nil {
		return fmt.Errorf("failed to lock index %s: %w", s.path, err)
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil {
			slog.Warn("Failed to release index lock", "path", lock.Path(), "error", uerr)
		}
	}()

	idx, err := s.openForWrite()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := idx.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close index: %w", cerr)
		}
	}()

	batch := idx.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("failed to add document %s to batch: %w", doc.Filename, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := idx.Batch(batch); err != nil {
		return fmt.Errorf("batch index failed: %w", err)
	}

	slog.Debug("Indexed batch", "path", s.path, "documents", len(docs))
	return nil
}

// DocCount returns the number of documents in the index.
func (s *Store) DocCount() (count uint64, err error) {
	idx, err := s.OpenForRead()
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := idx.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return idx.DocCount()
}
