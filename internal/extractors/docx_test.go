package extractors

import (
	"archive/zip"
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestDOCX_Extract(t *testing.T) {
	dir := t.TempDir()
	path := WriteFile(t, dir, "hello.docx", DocxBytes(t, "Hello, world!"))

	text, err := DOCX{}.Extract(path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !strings.Contains(text, "Hello, world!") {
		t.Errorf("Expected text to contain 'Hello, world!', got %q", text)
	}
}

func TestDOCX_Extract_MultipleParagraphs(t *testing.T) {
	dir := t.TempDir()
	path := WriteFile(t, dir, "multi.docx", DocxBytes(t, "First", "Second", "Third"))

	text, err := DOCX{}.Extract(path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for _, want := range []string{"First", "Second", "Third"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected text to contain %q, got %q", want, text)
		}
	}
}

func TestDOCX_Extract_MissingDocumentPart(t *testing.T) {
	dir := t.TempDir()
	data := ZipBytes(t,
		ZipEntry{Name: "[Content_Types].xml", Data: docxContentTypes},
		ZipEntry{Name: "word/other.xml", Data: "<xml></xml>"},
	)
	path := WriteFile(t, dir, "missing.docx", data)

	_, err := DOCX{}.Extract(path)
	if !errors.Is(err, ErrMissingPart) {
		t.Errorf("Expected ErrMissingPart, got %v", err)
	}
}

func TestDOCX_Extract_MissingContentTypes(t *testing.T) {
	dir := t.TempDir()
	data := ZipBytes(t, ZipEntry{Name: "word/document.xml", Data: "<w:document/>"})
	path := WriteFile(t, dir, "bare.docx", data)

	_, err := DOCX{}.Extract(path)
	if !errors.Is(err, ErrMissingPart) {
		t.Errorf("Expected ErrMissingPart, got %v", err)
	}
}

func TestDOCX_Extract_NotAZip(t *testing.T) {
	dir := t.TempDir()
	path := WriteFile(t, dir, "broken.docx", []byte("PK\x03\x04 truncated"))

	_, err := DOCX{}.Extract(path)
	if err == nil {
		t.Error("Expected error for a broken container")
	}
}

func TestDOCX_Extract_FileNotFound(t *testing.T) {
	_, err := DOCX{}.Extract(filepath.Join(t.TempDir(), "missing.docx"))
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestZipBytes_KeepsEntryOrder(t *testing.T) {
	data := ZipBytes(t,
		ZipEntry{Name: "b.txt", Data: "b"},
		ZipEntry{Name: "a.txt", Data: "a"},
		ZipEntry{Name: "c/d.txt", Data: "d"},
	)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Failed to read zip: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if got := strings.Join(names, ","); got != "b.txt,a.txt,c/d.txt" {
		t.Errorf("Entry order = %s", got)
	}
}

func TestDocxBytes_Deterministic(t *testing.T) {
	first := DocxBytes(t, "Hello")
	for range 10 {
		if !bytes.Equal(first, DocxBytes(t, "Hello")) {
			t.Fatal("Expected identical bytes for identical documents")
		}
	}
	if !bytes.HasPrefix(first, []byte("PK\x03\x04")) {
		t.Error("Expected zip local file header")
	}
	if !bytes.Contains(first[:64], []byte("word/document.xml")) {
		t.Error("Expected the document part to lead the archive")
	}
}
