// Package vault materializes the in-memory note corpus that retrieval and
// chat operate on. The corpus is an immutable snapshot: consumers share it
// read-only, and a rescan produces a fresh slice rather than mutating the
// old one.
package vault

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/halvard/muninn/internal/checksum"
	"github.com/halvard/muninn/internal/models"
	"github.com/halvard/muninn/internal/parser"
)

const readableTimeLayout = "2006-01-02 15:04:05"

// Scanner walks a vault directory and builds Note records.
type Scanner struct {
	root   string
	logger *slog.Logger
}

// NewScanner creates a Scanner rooted at dir. The directory must exist.
func NewScanner(dir string, logger *slog.Logger) (*Scanner, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault: root is not a directory: %s", abs)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{root: abs, logger: logger}, nil
}

// ScanResult holds everything one pass over the vault produced.
type ScanResult struct {
	Notes      []models.Note
	Folders    []string          // top-level folder names, sorted
	MediaFiles map[string]string // non-markdown filename -> relative path
}

// Scan walks the vault, parses every Markdown file, and returns the corpus
// sorted by CreatedTime descending. Hidden files and directories are
// skipped. Files that fail to read are logged and skipped; a scan never
// fails on a single bad note.
func (s *Scanner) Scan() (*ScanResult, error) {
	res := &ScanResult{MediaFiles: make(map[string]string)}
	folderSet := make(map[string]struct{})

	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && p != s.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(s.root, p)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if !strings.Contains(rel, "/") {
				folderSet[name] = struct{}{}
			}
			return nil
		}

		if !strings.HasSuffix(name, ".md") {
			res.MediaFiles[name] = rel
			return nil
		}

		note, noteErr := s.readNote(p, rel, name)
		if noteErr != nil {
			s.logger.Warn("vault: skipping note", slog.String("path", rel), slog.String("error", noteErr.Error()))
			return nil
		}
		res.Notes = append(res.Notes, *note)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vault: scan: %w", err)
	}

	sort.SliceStable(res.Notes, func(i, j int) bool {
		return res.Notes[i].CreatedTime > res.Notes[j].CreatedTime
	})
	for f := range folderSet {
		res.Folders = append(res.Folders, f)
	}
	sort.Strings(res.Folders)
	return res, nil
}

func (s *Scanner) readNote(abs, rel, name string) (*models.Note, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	parsed, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}

	raw := string(data)
	media := parser.ClassifyMedia(raw, name, parsed.Frontmatter)
	created := birthTime(info)

	note := &models.Note{
		Path:               rel,
		Name:               name,
		Title:              parsed.Title,
		RawContent:         raw,
		ContentWithoutTags: parser.StripMarkdown(parsed.Body),
		Frontmatter:        parsed.Frontmatter,
		Tags:               parsed.Tags,
		Links:              parsed.Links,
		Checksum:           checksum.Sum(data),
		LastModified:       info.ModTime().UnixMilli(),
		MediaType:          media.MediaType,
		TitleSlug:          media.TitleSlug,
		IsMediaNote:        media.IsMediaNote,
		IsAudioNote:        media.IsAudioNote,
		IsBookNote:         media.IsBookNote,
	}
	if !created.IsZero() {
		note.CreatedTime = created.UnixMilli()
		note.CreatedTimeReadable = created.Format(readableTimeLayout)
	}
	return note, nil
}

// Root returns the absolute vault root.
func (s *Scanner) Root() string {
	return s.root
}
