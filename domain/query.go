package domain

import (
	"sort"
	"strings"
	"time"
)

// Sort directions accepted by the list operations.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// DefaultPageSize bounds list responses when the caller gives no limit.
const DefaultPageSize = 50

// Pagination describes one page of a list response.
type Pagination struct {
	Current int  `json:"current"`
	Pages   int  `json:"pages"`
	Total   int  `json:"total"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

// Paginate slices items down to the requested 1-indexed page and reports the
// page layout over the full result set.
func Paginate[T any](items []T, page, limit int) ([]T, Pagination) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	total := len(items)
	pages := (total + limit - 1) / limit
	p := Pagination{
		Current: page,
		Pages:   pages,
		Total:   total,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
	start := (page - 1) * limit
	if start >= total {
		return []T{}, p
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], p
}

// TaskFilter selects tasks from a user's list. Zero values mean "no
// constraint"; "all" on status or priority is treated the same as empty.
type TaskFilter struct {
	Status   string
	Priority string
	Tag      string
	Search   string
	DueStart *time.Time
	DueEnd   *time.Time
}

// Matches reports whether the task satisfies every set criterion.
func (f TaskFilter) Matches(t Task) bool {
	if f.Status != "" && f.Status != "all" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && f.Priority != "all" && t.Priority != f.Priority {
		return false
	}
	if f.Tag != "" && !containsTag(t.Tags, f.Tag) {
		return false
	}
	if f.Search != "" && !containsFold(t.Title, f.Search) && !containsFold(t.Description, f.Search) {
		return false
	}
	if f.DueStart != nil || f.DueEnd != nil {
		if t.DueDate == nil {
			return false
		}
		if f.DueStart != nil && t.DueDate.Before(*f.DueStart) {
			return false
		}
		if f.DueEnd != nil && t.DueDate.After(*f.DueEnd) {
			return false
		}
	}
	return true
}

// FilterTasks returns the tasks matching f, preserving input order.
func FilterTasks(tasks []Task, f TaskFilter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortTasks orders tasks by the named field with a deterministic tie-break:
// createdAt descending unless createdAt is already the primary key. Unknown
// fields fall back to createdAt.
func SortTasks(tasks []Task, sortBy, sortOrder string) {
	cmp, known := taskComparator(sortBy)
	if !known {
		sortBy = "createdAt"
		cmp, _ = taskComparator(sortBy)
	}
	asc := sortOrder == SortAsc
	sort.SliceStable(tasks, func(i, j int) bool {
		c := cmp(tasks[i], tasks[j])
		if c != 0 {
			if asc {
				return c < 0
			}
			return c > 0
		}
		if sortBy != "createdAt" {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return false
	})
}

func taskComparator(field string) (func(a, b Task) int, bool) {
	switch field {
	case "title":
		return func(a, b Task) int { return strings.Compare(a.Title, b.Title) }, true
	case "status":
		return func(a, b Task) int { return strings.Compare(a.Status, b.Status) }, true
	case "priority":
		return func(a, b Task) int { return strings.Compare(a.Priority, b.Priority) }, true
	case "order":
		return func(a, b Task) int { return a.Order - b.Order }, true
	case "dueDate":
		return func(a, b Task) int { return compareTimePtr(a.DueDate, b.DueDate) }, true
	case "completedAt":
		return func(a, b Task) int { return compareTimePtr(a.CompletedAt, b.CompletedAt) }, true
	case "updatedAt":
		return func(a, b Task) int { return compareTime(a.UpdatedAt, b.UpdatedAt) }, true
	case "createdAt":
		return func(a, b Task) int { return compareTime(a.CreatedAt, b.CreatedAt) }, true
	}
	return nil, false
}

// NoteFilter selects notes from a user's list.
type NoteFilter struct {
	Tag    string
	Color  string
	Pinned *bool
	Search string
}

// Matches reports whether the note satisfies every set criterion.
func (f NoteFilter) Matches(n Note) bool {
	if f.Tag != "" && !containsTag(n.Tags, f.Tag) {
		return false
	}
	if f.Color != "" && f.Color != "all" && n.Color != f.Color {
		return false
	}
	if f.Pinned != nil && n.IsPinned != *f.Pinned {
		return false
	}
	if f.Search != "" && !containsFold(n.Title, f.Search) && !containsFold(n.Content, f.Search) {
		return false
	}
	return true
}

// FilterNotes returns the notes matching f, preserving input order.
func FilterNotes(notes []Note, f NoteFilter) []Note {
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if f.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}

// SortNotes orders notes by the named field, then pinned-first (unless
// isPinned is the primary key), then creation time descending (unless
// createdAt is the primary key).
func SortNotes(notes []Note, sortBy, sortOrder string) {
	cmp, known := noteComparator(sortBy)
	if !known {
		sortBy = "createdAt"
		cmp, _ = noteComparator(sortBy)
	}
	asc := sortOrder == SortAsc
	sort.SliceStable(notes, func(i, j int) bool {
		c := cmp(notes[i], notes[j])
		if c != 0 {
			if asc {
				return c < 0
			}
			return c > 0
		}
		if sortBy != "isPinned" && notes[i].IsPinned != notes[j].IsPinned {
			return notes[i].IsPinned
		}
		if sortBy != "createdAt" {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
		return false
	})
}

// SortNotesForDay orders an exact-date query result: pinned first, then
// newest first.
func SortNotesForDay(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].IsPinned != notes[j].IsPinned {
			return notes[i].IsPinned
		}
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
}

// SortNotesForRange orders a date-range query result: date ascending, then
// pinned first, then newest first.
func SortNotesForRange(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if !notes[i].Date.Equal(notes[j].Date) {
			return notes[i].Date.Before(notes[j].Date)
		}
		if notes[i].IsPinned != notes[j].IsPinned {
			return notes[i].IsPinned
		}
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
}

func noteComparator(field string) (func(a, b Note) int, bool) {
	switch field {
	case "title":
		return func(a, b Note) int { return strings.Compare(a.Title, b.Title) }, true
	case "color":
		return func(a, b Note) int { return strings.Compare(a.Color, b.Color) }, true
	case "date":
		return func(a, b Note) int { return compareTime(a.Date, b.Date) }, true
	case "isPinned":
		return func(a, b Note) int { return compareBool(a.IsPinned, b.IsPinned) }, true
	case "updatedAt":
		return func(a, b Note) int { return compareTime(a.UpdatedAt, b.UpdatedAt) }, true
	case "createdAt":
		return func(a, b Note) int { return compareTime(a.CreatedAt, b.CreatedAt) }, true
	}
	return nil, false
}

// DayBounds expands a date to its inclusive day interval,
// [00:00:00.000, 23:59:59.999] in the date's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return compareTime(*a, *b)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}
