package persist

import (
	"errors"
	"os"
	"testing"

	"github.com/JulianC775/CodeClip/internal/apperr"
)

func tempSQLite(t *testing.T, maxBytes int64) *SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "codeclip-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := OpenSQLite(dbFile.Name(), maxBytes)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteSaveAndLoad(t *testing.T) {
	db := tempSQLite(t, 0)
	if err := db.Save(sampleSnippets()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestSQLiteLoadNotFound(t *testing.T) {
	db := tempSQLite(t, 0)
	if _, err := db.Load(); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteSaveReplaces(t *testing.T) {
	db := tempSQLite(t, 0)
	if err := db.Save(sampleSnippets()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := db.Save(sampleSnippets()[:1]); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("got %v, want just snippet a", got)
	}
}

func TestSQLiteLoadCorrupt(t *testing.T) {
	db := tempSQLite(t, 0)
	_, err := db.conn.Exec(
		`INSERT INTO collections (key, version, payload) VALUES (?, 1, ?)`,
		storeKey, "this is not an envelope")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Load(); !errors.Is(err, apperr.ErrCorrupt) {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}
}

func TestSQLiteQuotaExceeded(t *testing.T) {
	db := tempSQLite(t, 64)
	if err := db.Save(sampleSnippets()); !errors.Is(err, apperr.ErrQuotaExceeded) {
		t.Errorf("err = %v, want ErrQuotaExceeded", err)
	}
}
