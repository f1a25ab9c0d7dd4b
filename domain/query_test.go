package domain

import (
	"testing"
	"time"
)

func mkTask(id string, order int, created time.Time) Task {
	return Task{ID: id, Title: id, Status: StatusPending, Priority: PriorityMedium, Order: order, CreatedAt: created}
}

func TestTaskFilterMatches(t *testing.T) {
	due := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	task := Task{
		Title:       "Ship release",
		Description: "cut the final Build",
		Status:      StatusInProgress,
		Priority:    PriorityHigh,
		Tags:        []string{"work", "release"},
		DueDate:     &due,
	}

	cases := []struct {
		name   string
		filter TaskFilter
		want   bool
	}{
		{"empty", TaskFilter{}, true},
		{"status all", TaskFilter{Status: "all"}, true},
		{"status match", TaskFilter{Status: StatusInProgress}, true},
		{"status mismatch", TaskFilter{Status: StatusCompleted}, false},
		{"priority mismatch", TaskFilter{Priority: PriorityLow}, false},
		{"tag member", TaskFilter{Tag: "release"}, true},
		{"tag absent", TaskFilter{Tag: "home"}, false},
		{"search title case-insensitive", TaskFilter{Search: "SHIP"}, true},
		{"search description", TaskFilter{Search: "build"}, true},
		{"search miss", TaskFilter{Search: "grocery"}, false},
		{"due range hit", TaskFilter{DueStart: timePtr(due.Add(-time.Hour)), DueEnd: timePtr(due.Add(time.Hour))}, true},
		{"due range miss", TaskFilter{DueEnd: timePtr(due.Add(-time.Hour))}, false},
	}
	for _, tc := range cases {
		if got := tc.filter.Matches(task); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}

	noDue := Task{Title: "x", Status: StatusPending, Priority: PriorityLow}
	if (TaskFilter{DueStart: timePtr(due)}).Matches(noDue) {
		t.Error("date-ranged filter must exclude tasks without a due date")
	}
}

func TestSortTasksSecondaryCreatedAt(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		mkTask("old", 1, base),
		mkTask("new", 1, base.Add(2*time.Hour)),
		mkTask("mid", 0, base.Add(time.Hour)),
	}
	SortTasks(tasks, "order", SortAsc)
	got := []string{tasks[0].ID, tasks[1].ID, tasks[2].ID}
	want := []string{"mid", "new", "old"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSortTasksUnknownFieldFallsBack(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		mkTask("a", 0, base),
		mkTask("b", 1, base.Add(time.Hour)),
	}
	SortTasks(tasks, "nonsense", SortDesc)
	if tasks[0].ID != "b" {
		t.Fatalf("expected createdAt desc fallback, got %s first", tasks[0].ID)
	}
}

func TestPaginate(t *testing.T) {
	items := make([]int, 7)
	for i := range items {
		items[i] = i
	}

	page, p := Paginate(items, 2, 3)
	if len(page) != 3 || page[0] != 3 {
		t.Fatalf("unexpected page: %v", page)
	}
	if p.Current != 2 || p.Pages != 3 || p.Total != 7 || !p.HasNext || !p.HasPrev {
		t.Fatalf("unexpected pagination: %+v", p)
	}

	page, p = Paginate(items, 3, 3)
	if len(page) != 1 || p.HasNext {
		t.Fatalf("last page wrong: %v %+v", page, p)
	}

	page, p = Paginate(items, 9, 3)
	if len(page) != 0 || p.HasNext || !p.HasPrev {
		t.Fatalf("out-of-range page wrong: %v %+v", page, p)
	}

	page, p = Paginate([]int{}, 1, 50)
	if len(page) != 0 || p.Pages != 0 || p.HasNext || p.HasPrev {
		t.Fatalf("empty set wrong: %v %+v", page, p)
	}
}

func mkNote(id string, pinned bool, date, created time.Time) Note {
	return Note{ID: id, Title: id, Content: "c", Color: ColorDefault, IsPinned: pinned, Date: date, CreatedAt: created}
}

func TestSortNotesPinnedSecondary(t *testing.T) {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	notes := []Note{
		mkNote("plain-new", false, base, base.Add(3*time.Hour)),
		mkNote("pinned-old", true, base, base),
		mkNote("pinned-new", true, base, base.Add(time.Hour)),
	}
	// All share the same date, so pinned-first then createdAt desc decides.
	SortNotes(notes, "date", SortAsc)
	got := []string{notes[0].ID, notes[1].ID, notes[2].ID}
	want := []string{"pinned-new", "pinned-old", "plain-new"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSortNotesForDay(t *testing.T) {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	notes := []Note{
		mkNote("old", false, base, base),
		mkNote("new", false, base, base.Add(time.Hour)),
		mkNote("pinned", true, base, base.Add(-time.Hour)),
	}
	SortNotesForDay(notes)
	if notes[0].ID != "pinned" || notes[1].ID != "new" || notes[2].ID != "old" {
		t.Fatalf("unexpected order: %s %s %s", notes[0].ID, notes[1].ID, notes[2].ID)
	}
}

func TestSortNotesForRange(t *testing.T) {
	day1 := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	notes := []Note{
		mkNote("later-day", false, day2, day1),
		mkNote("early-day-pinned", true, day1, day1),
		mkNote("early-day", false, day1, day1.Add(time.Hour)),
	}
	SortNotesForRange(notes)
	got := []string{notes[0].ID, notes[1].ID, notes[2].ID}
	want := []string{"early-day-pinned", "early-day", "later-day"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestNoteFilterMatches(t *testing.T) {
	pinned := true
	note := Note{Title: "Meeting notes", Content: "Discussed Roadmap", Color: ColorBlue, IsPinned: true, Tags: []string{"work"}}

	if !(NoteFilter{Color: "all"}).Matches(note) {
		t.Error("color=all must match")
	}
	if (NoteFilter{Color: ColorRed}).Matches(note) {
		t.Error("color mismatch must not match")
	}
	if !(NoteFilter{Pinned: &pinned}).Matches(note) {
		t.Error("pinned filter must match pinned note")
	}
	if !(NoteFilter{Search: "roadmap"}).Matches(note) {
		t.Error("search must be case-insensitive over content")
	}
	if (NoteFilter{Tag: "home"}).Matches(note) {
		t.Error("absent tag must not match")
	}
}

func TestDayBounds(t *testing.T) {
	day := time.Date(2026, 7, 4, 15, 30, 45, 0, time.UTC)
	start, end := DayBounds(day)
	if !start.Equal(time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %v", start)
	}
	if !end.Equal(time.Date(2026, 7, 4, 23, 59, 59, 999000000, time.UTC)) {
		t.Fatalf("unexpected end: %v", end)
	}
}
