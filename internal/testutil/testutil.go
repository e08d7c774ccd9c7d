// Package testutil provides shared test helpers for setting up databases and fixtures.
package testutil

import (
	"os"
	"testing"

	"github.com/oakmere/arbor/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "arbor-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedFolder creates a folder or fails the test.
func SeedFolder(t *testing.T, db *store.DB, name string, parentID *int64) int64 {
	t.Helper()
	folder, err := db.CreateFolder(name, parentID)
	if err != nil {
		t.Fatalf("seed folder %q: %v", name, err)
	}
	return folder.ID
}

// SeedNote creates a note with content or fails the test.
func SeedNote(t *testing.T, db *store.DB, title, content string, folderID int64) int64 {
	t.Helper()
	note, err := db.CreateNote(title, &folderID)
	if err != nil {
		t.Fatalf("seed note %q: %v", title, err)
	}
	if content != "" {
		if _, err := db.UpdateNote(note.ID, title, content, nil); err != nil {
			t.Fatalf("seed note content %q: %v", title, err)
		}
	}
	return note.ID
}

// ID returns a pointer to the given id, for nullable folder arguments.
func ID(v int64) *int64 { return &v }
