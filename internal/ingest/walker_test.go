package ingest

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
)

// createTestFile creates a file under dir, creating parent directories.
func createTestFile(t *testing.T, dir, relPath, content string) string {
	t.Helper()
	fullPath := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	return fullPath
}

// collectRel walks root and returns the yielded paths relative to root, sorted.
func collectRel(t *testing.T, root string) []string {
	t.Helper()
	var paths []string
	for path := range NewWalker(root).Paths() {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			t.Fatalf("Rel failed: %v", err)
		}
		paths = append(paths, filepath.ToSlash(rel))
	}
	slices.Sort(paths)
	return paths
}

func TestIsExcludedDir(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"target", true},
		{".git", true},
		{"Target", false},
		{"targets", false},
		{"my-target", false},
		{".github", false},
		{"git", false},
		{"docs", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExcludedDir(tt.name); got != tt.want {
				t.Errorf("IsExcludedDir(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestWalker_Paths(t *testing.T) {
	root := t.TempDir()
	createTestFile(t, root, "a.pdf", "a")
	createTestFile(t, root, "docs/b.docx", "b")
	createTestFile(t, root, "docs/deep/nested/c.txt", "c")

	got := collectRel(t, root)
	want := []string{"a.pdf", "docs/b.docx", "docs/deep/nested/c.txt"}
	if !slices.Equal(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestWalker_Paths_SkipsExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	createTestFile(t, root, "keep.pdf", "x")
	createTestFile(t, root, "target/d.pdf", "x")
	createTestFile(t, root, ".git/config", "x")
	createTestFile(t, root, "sub/target/deep/e.pdf", "x")
	createTestFile(t, root, "sub/.git/objects/f", "x")
	createTestFile(t, root, "sub/targets/g.pdf", "x")
	createTestFile(t, root, "sub/.github/h.pdf", "x")

	got := collectRel(t, root)
	want := []string{"keep.pdf", "sub/.github/h.pdf", "sub/targets/g.pdf"}
	if !slices.Equal(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestWalker_Paths_ExcludedRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "target")
	createTestFile(t, root, "a.pdf", "x")

	if got := collectRel(t, root); len(got) != 0 {
		t.Errorf("Expected no paths under an excluded root, got %v", got)
	}
}

func TestWalker_Paths_NonExistentRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "missing")

	if got := collectRel(t, root); len(got) != 0 {
		t.Errorf("Expected no paths for missing root, got %v", got)
	}
}

func TestWalker_Paths_LogsUnreadableEntries(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	root := filepath.Join(t.TempDir(), "missing")
	for range NewWalker(root).Paths() {
		t.Error("Expected no paths for missing root")
	}

	out := buf.String()
	if !strings.Contains(out, "Skipping unreadable entry") || !strings.Contains(out, "missing") {
		t.Errorf("Expected the unreadable root to be logged, got %q", out)
	}
}

func TestWalker_Paths_SkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	root := t.TempDir()
	target := createTestFile(t, root, "real.pdf", "x")
	if err := os.Symlink(target, filepath.Join(root, "link.pdf")); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	got := collectRel(t, root)
	want := []string{"real.pdf"}
	if !slices.Equal(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestWalker_Paths_UnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission checks are not enforced")
	}
	root := t.TempDir()
	createTestFile(t, root, "ok/a.pdf", "x")
	createTestFile(t, root, "locked/b.pdf", "x")
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	got := collectRel(t, root)
	want := []string{"ok/a.pdf"}
	if !slices.Equal(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestWalker_Paths_Restartable(t *testing.T) {
	root := t.TempDir()
	createTestFile(t, root, "a.pdf", "x")
	createTestFile(t, root, "b.pdf", "x")

	w := NewWalker(root)
	first := collectRel(t, w.Root())
	second := collectRel(t, w.Root())
	if !slices.Equal(first, second) {
		t.Errorf("Expected identical walks, got %v and %v", first, second)
	}
}

func TestWalker_Paths_StopsEarly(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d"} {
		createTestFile(t, root, name, "x")
	}

	count := 0
	for range NewWalker(root).Paths() {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("Expected to stop after 2 paths, got %d", count)
	}
}

func TestWalker_Paths_RelativeRoot(t *testing.T) {
	root := t.TempDir()
	createTestFile(t, root, "docs/a.pdf", "x")
	t.Chdir(root)

	var got []string
	for path := range NewWalker("docs").Paths() {
		got = append(got, filepath.ToSlash(path))
	}
	want := []string{"docs/a.pdf"}
	if !slices.Equal(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}
