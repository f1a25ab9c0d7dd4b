package domain

import (
	"strings"
	"testing"
	"time"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestDeriveOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	task := Task{Status: StatusPending, DueDate: timePtr(now.Add(-time.Hour))}
	task.Derive(now)
	if !task.IsOverdue {
		t.Fatal("expected past-due pending task to be overdue")
	}

	task = Task{Status: StatusCompleted, DueDate: timePtr(now.Add(-time.Hour))}
	task.Derive(now)
	if task.IsOverdue {
		t.Fatal("completed task must never be overdue")
	}

	task = Task{Status: StatusPending}
	task.Derive(now)
	if task.IsOverdue {
		t.Fatal("task without due date must not be overdue")
	}
}

func TestDeriveDaysUntilDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)

	task := Task{Status: StatusPending}
	task.Derive(now)
	if task.DaysUntilDue != nil {
		t.Fatalf("expected nil daysUntilDue, got %d", *task.DaysUntilDue)
	}

	// 30 minutes ahead but on the next calendar day.
	task = Task{Status: StatusPending, DueDate: timePtr(now.Add(time.Hour))}
	task.Derive(now)
	if task.DaysUntilDue == nil || *task.DaysUntilDue != 1 {
		t.Fatalf("expected daysUntilDue=1, got %v", task.DaysUntilDue)
	}

	task = Task{Status: StatusPending, DueDate: timePtr(now.AddDate(0, 0, -3))}
	task.Derive(now)
	if task.DaysUntilDue == nil || *task.DaysUntilDue != -3 {
		t.Fatalf("expected daysUntilDue=-3, got %v", task.DaysUntilDue)
	}
}

func TestDeriveCompletionPercentage(t *testing.T) {
	now := time.Now()
	cases := []struct {
		total, done, want int
	}{
		{0, 0, 0},
		{1, 0, 0},
		{1, 1, 100},
		{3, 1, 33},
		{3, 2, 67},
		{4, 3, 75},
	}
	for _, tc := range cases {
		task := Task{Status: StatusPending}
		for i := 0; i < tc.total; i++ {
			task.Subtasks = append(task.Subtasks, Subtask{ID: "s", Title: "s", Completed: i < tc.done})
		}
		task.Derive(now)
		if task.CompletionPercentage != tc.want {
			t.Errorf("%d/%d subtasks: expected %d%%, got %d%%", tc.done, tc.total, tc.want, task.CompletionPercentage)
		}
	}
}

func TestRecomputeStatusCompletesTask(t *testing.T) {
	now := time.Now()
	task := Task{
		Status: StatusInProgress,
		Subtasks: []Subtask{
			{ID: "a", Title: "a", Completed: true},
			{ID: "b", Title: "b", Completed: true},
		},
	}
	if !task.RecomputeStatus(now) {
		t.Fatal("expected status change")
	}
	if task.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", task.Status)
	}
	if task.CompletedAt == nil {
		t.Fatal("expected completedAt to be set")
	}
}

func TestRecomputeStatusReopensTask(t *testing.T) {
	now := time.Now()
	task := Task{
		Status:      StatusCompleted,
		CompletedAt: timePtr(now.Add(-time.Hour)),
		Subtasks: []Subtask{
			{ID: "a", Title: "a", Completed: true},
			{ID: "b", Title: "b", Completed: false},
		},
	}
	if !task.RecomputeStatus(now) {
		t.Fatal("expected status change")
	}
	if task.Status != StatusInProgress {
		t.Fatalf("expected in-progress, got %s", task.Status)
	}
	if task.CompletedAt != nil {
		t.Fatal("expected completedAt to be cleared")
	}
}

func TestRecomputeStatusNoSubtasks(t *testing.T) {
	task := Task{Status: StatusPending}
	if task.RecomputeStatus(time.Now()) {
		t.Fatal("task without subtasks must not change status")
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	task := Task{
		Title:    strings.Repeat("x", 101),
		Status:   "bogus",
		Priority: "whenever",
		Tags:     []string{strings.Repeat("y", 21)},
	}
	err := task.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d: %v", len(ve.Messages), ve.Messages)
	}
}

func TestValidateOK(t *testing.T) {
	task := Task{Title: "Buy milk", Status: StatusPending, Priority: PriorityLow}
	if err := task.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNextOrder(t *testing.T) {
	if got := NextOrder(nil); got != 0 {
		t.Fatalf("empty list: expected 0, got %d", got)
	}
	tasks := []Task{{Order: 2}, {Order: 7}, {Order: 0}}
	if got := NextOrder(tasks); got != 8 {
		t.Fatalf("expected 8, got %d", got)
	}
}
