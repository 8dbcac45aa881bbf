package osfilesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystem_WriteAndReadFile(t *testing.T) {
	fs := New()
	testPath := filepath.Join(t.TempDir(), "test.txt")
	testData := []byte("hello world")

	if err := fs.WriteFile(testPath, testData); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(testPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != string(testData) {
		t.Errorf("expected %q, got %q", testData, data)
	}
}

func TestFileSystem_WriteFileCreatesParentDirs(t *testing.T) {
	fs := New()
	testPath := filepath.Join(t.TempDir(), "a", "b", "c", "test.txt")

	if err := fs.WriteFile(testPath, []byte("test")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	exists, err := fs.Exists(testPath)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected file to exist")
	}
}

func TestFileSystem_WriteFileLeavesNoTempFiles(t *testing.T) {
	fs := New()
	dir := t.TempDir()

	if err := fs.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := fs.WriteFile(filepath.Join(dir, "a.jpg"), []byte("y")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}
}

func TestFileSystem_WriteFileIntoFileFails(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := fs.WriteFile(filepath.Join(blocker, "frame.jpg"), []byte("x")); err == nil {
		t.Error("expected error writing beneath a regular file")
	}
}

func TestFileSystem_Exists(t *testing.T) {
	fs := New()
	dir := t.TempDir()

	exists, err := fs.Exists(filepath.Join(dir, "nonexistent.txt"))
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected file to not exist")
	}

	exists, err = fs.Exists(dir)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected directory to exist")
	}
}

func TestFileSystem_Remove(t *testing.T) {
	fs := New()
	testPath := filepath.Join(t.TempDir(), "test.txt")
	if err := fs.WriteFile(testPath, []byte("test")); err != nil {
		t.Fatal(err)
	}

	if err := fs.Remove(testPath); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	exists, _ := fs.Exists(testPath)
	if exists {
		t.Error("expected file to be removed")
	}
}

func TestFileSystem_ListFiles(t *testing.T) {
	fs := New()
	dir := t.TempDir()

	for _, name := range []string{"20240102_000000_000.jpg", "20240101_000000_000.jpg", "notes.txt", ".hidden.jpg", "UPPER.JPG"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.jpg"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := fs.ListFiles(dir, ".jpg")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}

	want := []string{
		filepath.Join(dir, "20240101_000000_000.jpg"),
		filepath.Join(dir, "20240102_000000_000.jpg"),
		filepath.Join(dir, "UPPER.JPG"),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d files, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestFileSystem_ListFilesMissingDir(t *testing.T) {
	fs := New()
	if _, err := fs.ListFiles(filepath.Join(t.TempDir(), "missing"), ".jpg"); err == nil {
		t.Error("expected error for missing directory")
	}
}
