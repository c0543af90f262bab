package vault

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan_BuildsCorpus(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "movies/heat.md", "# Heat\nhttps://letterboxd.com/film/heat/\nGreat film. #movie")
	writeFile(t, root, "daily/groceries.md", "- milk\n- eggs")
	writeFile(t, root, "attachments/pic.png", "notreallyapng")
	writeFile(t, root, ".obsidian/config.md", "hidden")

	s, err := NewScanner(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Scan()
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Notes) != 2 {
		t.Fatalf("len(notes) = %d, want 2 (hidden dirs skipped)", len(res.Notes))
	}
	byPath := make(map[string]int)
	for i, n := range res.Notes {
		byPath[n.Path] = i
	}
	heat, ok := byPath["movies/heat.md"]
	if !ok {
		t.Fatalf("heat note missing, have %v", byPath)
	}
	n := res.Notes[heat]
	if !n.IsMediaNote || n.MediaType != "movie" {
		t.Errorf("heat note media = %+v", n)
	}
	if n.CreatedTime == 0 || n.CreatedTimeReadable == "" {
		t.Errorf("created time not set: %+v", n)
	}
	if n.Name != "heat.md" {
		t.Errorf("name = %q", n.Name)
	}

	if res.MediaFiles["pic.png"] != "attachments/pic.png" {
		t.Errorf("media files = %v", res.MediaFiles)
	}
	want := []string{"attachments", "daily", "movies"}
	if len(res.Folders) != len(want) {
		t.Fatalf("folders = %v, want %v", res.Folders, want)
	}
	for i := range want {
		if res.Folders[i] != want[i] {
			t.Errorf("folders = %v, want %v", res.Folders, want)
			break
		}
	}
}

func TestScan_SortedByCreatedTimeDescending(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "first")
	writeFile(t, root, "b.md", "second")

	s, err := NewScanner(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := s.Scan()
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(res.Notes); i++ {
		if res.Notes[i-1].CreatedTime < res.Notes[i].CreatedTime {
			t.Errorf("corpus not sorted descending at %d", i)
		}
	}
}

func TestSnapshot_RefreshAndStaleness(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "one.md", "alpha note")

	s, err := NewScanner(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	snap := NewSnapshot(s, nil)

	if got := len(snap.Notes()); got != 1 {
		t.Fatalf("initial notes = %d, want 1", got)
	}

	// Nothing changed: cached corpus is reused.
	first := snap.Corpus()
	if snap.Corpus() != first {
		t.Error("expected cached corpus instance")
	}

	writeFile(t, root, "two.md", "beta note")
	// Without MarkStale, the new file is invisible.
	if got := len(snap.Notes()); got != 1 {
		t.Fatalf("notes before MarkStale = %d, want 1", got)
	}
	snap.MarkStale()
	if got := len(snap.Notes()); got != 2 {
		t.Fatalf("notes after MarkStale = %d, want 2", got)
	}

	writeFile(t, root, "three.md", "gamma note")
	if got := len(snap.Refresh().Notes); got != 3 {
		t.Fatalf("notes after Refresh = %d, want 3", got)
	}
}

func TestSnapshot_FailedScanYieldsEmptyCorpus(t *testing.T) {
	root := t.TempDir()

	s, err := NewScanner(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}
	snap := NewSnapshot(s, nil)

	// No scan has ever succeeded: readers get an empty corpus, never nil.
	res := snap.Corpus()
	if res == nil {
		t.Fatal("Corpus() = nil after failed scan")
	}
	if len(res.Notes) != 0 || len(res.MediaFiles) != 0 {
		t.Errorf("empty corpus expected, got %+v", res)
	}
	if got := snap.Refresh(); got == nil {
		t.Fatal("Refresh() = nil after failed scan")
	}

	// The holder stays stale, so a later read retries and sees the vault
	// once it is back.
	writeFile(t, root, "back.md", "restored")
	if got := len(snap.Notes()); got != 1 {
		t.Fatalf("notes after vault restored = %d, want 1", got)
	}
}

func TestSnapshot_FailedRescanKeepsPreviousCorpus(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "one.md", "alpha note")

	s, err := NewScanner(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	snap := NewSnapshot(s, nil)
	if got := len(snap.Notes()); got != 1 {
		t.Fatalf("initial notes = %d, want 1", got)
	}

	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}
	snap.MarkStale()

	res := snap.Corpus()
	if res == nil || len(res.Notes) != 1 {
		t.Fatalf("previous corpus expected after failed rescan, got %+v", res)
	}
}
