package noteservice

import (
	"context"
	"errors"
	"testing"

	"github.com/halvard/muninn/internal/apperr"
	"github.com/halvard/muninn/internal/testutil"
)

func testService(t *testing.T) (*Service, *int) {
	t.Helper()
	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	var staleCalls int
	svc := NewService(store, db, func() { staleCalls++ })
	return svc, &staleCalls
}

func TestCreateGetDelete(t *testing.T) {
	svc, stale := testService(t)
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, "hello.md", []byte("# Hello\nbody"))
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if note.Title != "Hello" {
		t.Errorf("title = %q", note.Title)
	}
	if *stale != 1 {
		t.Errorf("stale calls after create = %d, want 1", *stale)
	}

	got, err := svc.GetNote(ctx, "hello.md")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Content != "# Hello\nbody" {
		t.Errorf("content = %q", got.Content)
	}

	if err := svc.DeleteNote(ctx, "hello.md"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if *stale != 2 {
		t.Errorf("stale calls after delete = %d, want 2", *stale)
	}
	if _, err := svc.GetNote(ctx, "hello.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestCreateDuplicate(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "dup.md", []byte("a")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateNote(ctx, "dup.md", []byte("b")); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate create = %v, want ErrAlreadyExists", err)
	}
}

func TestUpdateChecksumConflict(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, "lock.md", []byte("v1"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.UpdateNote(ctx, "lock.md", []byte("v2"), created.Checksum); err != nil {
		t.Fatalf("update with fresh checksum: %v", err)
	}
	if _, err := svc.UpdateNote(ctx, "lock.md", []byte("v3"), created.Checksum); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("update with stale checksum = %v, want ErrConflict", err)
	}
	// Empty If-Match skips the check entirely.
	if _, err := svc.UpdateNote(ctx, "lock.md", []byte("v4"), ""); err != nil {
		t.Errorf("update without checksum: %v", err)
	}
}

func TestRenameNote(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "a.md", []byte("# A\nlinks [[b]]")); err != nil {
		t.Fatal(err)
	}

	note, err := svc.RenameNote(ctx, "a.md", "moved/a.md")
	if err != nil {
		t.Fatalf("RenameNote: %v", err)
	}
	if note.Path != "moved/a.md" {
		t.Errorf("path = %q", note.Path)
	}

	if _, err := svc.GetNote(ctx, "a.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("old path = %v, want ErrNotFound", err)
	}

	// Backlinks follow the new source path.
	bl, err := svc.Backlinks(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if len(bl) != 1 || bl[0] != "moved/a.md" {
		t.Errorf("backlinks = %v", bl)
	}
}

func TestRenameToExistingPath(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	_, _ = svc.CreateNote(ctx, "a.md", []byte("a"))
	_, _ = svc.CreateNote(ctx, "b.md", []byte("b"))

	if _, err := svc.RenameNote(ctx, "a.md", "b.md"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("rename onto existing = %v, want ErrAlreadyExists", err)
	}
}

func TestListNotesMediaFilter(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	_, _ = svc.CreateNote(ctx, "plain.md", []byte("just text"))
	_, _ = svc.CreateNote(ctx, "Movies/Heat.md", []byte("https://letterboxd.com/film/heat-1995/"))

	items, total, err := svc.ListNotes(ctx, 10, 0, "", "movie", "")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("total = %d, len = %d, want 1", total, len(items))
	}
	if items[0].Path != "Movies/Heat.md" || items[0].MediaType != "movie" {
		t.Errorf("item = %+v", items[0])
	}
}

func TestMediaTypeInDetail(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, "Shows/Severance.md", []byte("https://www.serializd.com/show/severance-123"))
	if err != nil {
		t.Fatal(err)
	}
	if note.MediaType != "tv" {
		t.Errorf("media type = %q, want tv", note.MediaType)
	}
}
