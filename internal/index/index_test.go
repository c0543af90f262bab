package index

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "muninn-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM links`).Scan(&count); err != nil {
		t.Fatalf("links table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := NoteRow{
		Path:      "hello.md",
		Title:     "Hello World",
		Checksum:  "abc123",
		Tags:      []string{"go", "test"},
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertNote(row, "This is a hello world note.", []string{"other.md"}); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}
	cs, err := db.GetChecksum("hello.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestGetNote(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{
		Path:      "Movies/Heat.md",
		Title:     "Heat",
		Checksum:  "1",
		Tags:      []string{"film"},
		MediaType: "movie",
		UpdatedAt: time.Now(),
	}, "body", nil)

	n, err := db.GetNote("Movies/Heat.md")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if n == nil {
		t.Fatal("expected note, got nil")
	}
	if n.Title != "Heat" || n.MediaType != "movie" {
		t.Errorf("note = %+v", n)
	}
	if len(n.Tags) != 1 || n.Tags[0] != "film" {
		t.Errorf("tags = %v, want [film]", n.Tags)
	}

	missing, err := db.GetNote("nope.md")
	if err != nil {
		t.Fatalf("GetNote missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing note, got %+v", missing)
	}
}

func TestListNotes(t *testing.T) {
	db := testDB(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	_ = db.UpsertNote(NoteRow{Path: "b.md", Title: "Beta", Checksum: "1", Tags: []string{"go"}, UpdatedAt: base}, "", nil)
	_ = db.UpsertNote(NoteRow{Path: "a.md", Title: "Alpha", Checksum: "2", Tags: []string{}, MediaType: "movie", UpdatedAt: base.Add(time.Hour)}, "", nil)
	_ = db.UpsertNote(NoteRow{Path: "c.md", Title: "Gamma", Checksum: "3", Tags: []string{"go"}, UpdatedAt: base.Add(2 * time.Hour)}, "", nil)

	notes, total, err := db.ListNotes(10, 0, "", "", "")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if total != 3 || len(notes) != 3 {
		t.Fatalf("total = %d, len = %d, want 3", total, len(notes))
	}
	if notes[0].Path != "a.md" {
		t.Errorf("default sort is path asc, first = %q", notes[0].Path)
	}

	notes, _, err = db.ListNotes(10, 0, "", "", "updated")
	if err != nil {
		t.Fatalf("ListNotes updated: %v", err)
	}
	if notes[0].Path != "c.md" {
		t.Errorf("updated sort first = %q, want c.md", notes[0].Path)
	}

	notes, total, err = db.ListNotes(10, 0, "go", "", "")
	if err != nil {
		t.Fatalf("ListNotes tag: %v", err)
	}
	if total != 2 {
		t.Errorf("tag filter total = %d, want 2", total)
	}

	notes, total, err = db.ListNotes(10, 0, "", "movie", "")
	if err != nil {
		t.Fatalf("ListNotes media: %v", err)
	}
	if total != 1 || notes[0].Path != "a.md" {
		t.Errorf("media filter = %+v (total %d)", notes, total)
	}

	notes, total, err = db.ListNotes(1, 1, "", "", "")
	if err != nil {
		t.Fatalf("ListNotes page: %v", err)
	}
	if total != 3 || len(notes) != 1 || notes[0].Path != "b.md" {
		t.Errorf("page = %+v (total %d)", notes, total)
	}
}

func TestBacklinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "a.md", Checksum: "1", Tags: []string{}, UpdatedAt: time.Now()}, "body", []string{"b.md"})
	_ = db.UpsertNote(NoteRow{Path: "c.md", Checksum: "2", Tags: []string{}, UpdatedAt: time.Now()}, "body", []string{"b.md"})

	bl, err := db.Backlinks("b.md")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 2 {
		t.Fatalf("expected 2 backlinks, got %d", len(bl))
	}
}

func TestDeleteNote(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "del.md", Checksum: "x", Tags: []string{}, UpdatedAt: time.Now()}, "body", []string{"target.md"})

	if err := db.DeleteNote("del.md"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted note still has checksum %q", cs)
	}
	bl, _ := db.Backlinks("target.md")
	if len(bl) != 0 {
		t.Errorf("expected 0 backlinks after delete, got %d", len(bl))
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertNote(NoteRow{Path: "up.md", Title: "Old", Checksum: "1", Tags: []string{}, UpdatedAt: now}, "old body", []string{"x.md"})
	_ = db.UpsertNote(NoteRow{Path: "up.md", Title: "New", Checksum: "2", Tags: []string{"new"}, UpdatedAt: now}, "new body", []string{"y.md"})

	cs, _ := db.GetChecksum("up.md")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	bl, _ := db.Backlinks("x.md")
	if len(bl) != 0 {
		t.Error("old link should be removed on upsert")
	}
	bl, _ = db.Backlinks("y.md")
	if len(bl) != 1 {
		t.Error("new link should exist")
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "a.md", Checksum: "1", Tags: []string{}, UpdatedAt: time.Now()}, "", nil)
	_ = db.UpsertNote(NoteRow{Path: "b.md", Checksum: "2", Tags: []string{}, UpdatedAt: time.Now()}, "", nil)

	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(cs) != 2 || cs["a.md"] != "1" || cs["b.md"] != "2" {
		t.Errorf("checksums = %v", cs)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "s.md", Title: "Search Me", Checksum: "1", Tags: []string{}, UpdatedAt: time.Now()}, "uniqueword appears here", nil)

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
}
