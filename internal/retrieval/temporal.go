package retrieval

import (
	"sort"
	"time"

	"github.com/halvard/muninn/internal/models"
)

// latestBucketSize is how many most-recent notes the "latest" bucket holds.
const latestBucketSize = 5

// Buckets partitions a corpus by creation time relative to a reference
// instant. Notes without a known creation time appear in no bucket.
type Buckets struct {
	Today     []models.Note
	Yesterday []models.Note
	ThisWeek  []models.Note
	ThisMonth []models.Note
	Latest    []models.Note // the latestBucketSize most recent notes overall
}

// ResolveBuckets computes every temporal bucket from the corpus at the given
// instant. Today and Yesterday use calendar-date equality in now's location.
// ThisWeek starts on the Monday of the current week with no upper bound, so
// future-dated notes count as this week. ThisMonth likewise has no upper
// bound past the first of the month.
func ResolveBuckets(corpus []models.Note, now time.Time) Buckets {
	var b Buckets
	loc := now.Location()
	today := dateOf(now)
	yesterday := dateOf(now.AddDate(0, 0, -1))
	weekStart := startOfWeek(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	for _, n := range corpus {
		if n.CreatedTime == 0 {
			continue
		}
		created := time.UnixMilli(n.CreatedTime).In(loc)
		switch dateOf(created) {
		case today:
			b.Today = append(b.Today, n)
		case yesterday:
			b.Yesterday = append(b.Yesterday, n)
		}
		if !created.Before(weekStart) {
			b.ThisWeek = append(b.ThisWeek, n)
		}
		if !created.Before(monthStart) {
			b.ThisMonth = append(b.ThisMonth, n)
		}
	}

	b.Latest = sortByCreated(corpus, false)
	if len(b.Latest) > latestBucketSize {
		b.Latest = b.Latest[:latestBucketSize]
	}
	return b
}

// FilterByDate returns the subset of the corpus matching the date filter.
// With an active filter this subset is the sole candidate pool for ranking:
// a lexically strong note outside the window never comes back. An empty
// result means "no notes for that period" and must be surfaced as such.
func FilterByDate(corpus []models.Note, filter DateFilter, now time.Time) []models.Note {
	if filter == DateFilterNone {
		return corpus
	}
	b := ResolveBuckets(corpus, now)
	switch filter {
	case DateFilterToday:
		return b.Today
	case DateFilterYesterday:
		return b.Yesterday
	case DateFilterThisWeek:
		return b.ThisWeek
	}
	return corpus
}

// sortByCreated returns a new slice of notes with a known creation time,
// ordered by CreatedTime. Ascending when asc is true, descending otherwise.
func sortByCreated(corpus []models.Note, asc bool) []models.Note {
	out := make([]models.Note, 0, len(corpus))
	for _, n := range corpus {
		if n.CreatedTime == 0 {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return out[i].CreatedTime < out[j].CreatedTime
		}
		return out[i].CreatedTime > out[j].CreatedTime
	})
	return out
}

// dateOf truncates an instant to its calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns midnight on the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	return dateOf(t.AddDate(0, 0, -daysSinceMonday))
}
