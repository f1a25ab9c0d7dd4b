package domain

import (
	"math"
	"strings"
	"time"
)

// Task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
	maxTagLen         = 20
	maxSubtaskTitle   = 200
)

// Subtask is a checklist entry owned by a task.
type Subtask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Task is a to-do item owned by one user. The derived fields are computed
// from the current time on every read and are never persisted.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Subtasks    []Subtask  `json:"subtasks"`
	Order       int        `json:"order"`
	UserID      string     `json:"user"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	IsOverdue            bool `json:"isOverdue"`
	DaysUntilDue         *int `json:"daysUntilDue"`
	CompletionPercentage int  `json:"completionPercentage"`
}

// Derive fills the computed fields as of now.
func (t *Task) Derive(now time.Time) {
	t.IsOverdue = t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted
	if t.DueDate != nil {
		d := calendarDaysBetween(now, *t.DueDate)
		t.DaysUntilDue = &d
	} else {
		t.DaysUntilDue = nil
	}
	t.CompletionPercentage = completionPercentage(t.Subtasks)
}

// calendarDaysBetween returns the whole-day difference between the calendar
// date of b and the calendar date of a. Negative when b is on an earlier day.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}

func completionPercentage(subtasks []Subtask) int {
	if len(subtasks) == 0 {
		return 0
	}
	done := 0
	for _, s := range subtasks {
		if s.Completed {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(subtasks))))
}

// RecomputeStatus applies the subtask aggregation rule: a task whose subtasks
// are all completed becomes completed, and a completed task with an
// incomplete subtask reverts to in-progress. It returns true when the status
// changed.
func (t *Task) RecomputeStatus(now time.Time) bool {
	if len(t.Subtasks) == 0 {
		return false
	}
	allDone := true
	for _, s := range t.Subtasks {
		if !s.Completed {
			allDone = false
			break
		}
	}
	switch {
	case allDone && t.Status != StatusCompleted:
		t.Status = StatusCompleted
		completed := now
		t.CompletedAt = &completed
		return true
	case !allDone && t.Status == StatusCompleted:
		t.Status = StatusInProgress
		t.CompletedAt = nil
		return true
	}
	return false
}

func validStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

func validPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh || p == PriorityUrgent
}

// Validate checks every field constraint and returns a *ValidationError
// listing all violations, or nil when the task is valid.
func (t *Task) Validate() error {
	var msgs []string
	title := strings.TrimSpace(t.Title)
	if title == "" {
		msgs = append(msgs, "Task title is required")
	} else if len(title) > maxTitleLen {
		msgs = append(msgs, "Task title cannot exceed 100 characters")
	}
	if len(t.Description) > maxDescriptionLen {
		msgs = append(msgs, "Task description cannot exceed 500 characters")
	}
	if !validStatus(t.Status) {
		msgs = append(msgs, "Task status must be one of: pending, in-progress, completed")
	}
	if !validPriority(t.Priority) {
		msgs = append(msgs, "Task priority must be one of: low, medium, high, urgent")
	}
	for _, tag := range t.Tags {
		if len(tag) > maxTagLen {
			msgs = append(msgs, "Tag cannot exceed 20 characters")
			break
		}
	}
	for _, s := range t.Subtasks {
		if strings.TrimSpace(s.Title) == "" {
			msgs = append(msgs, "Subtask title is required")
			break
		}
	}
	for _, s := range t.Subtasks {
		if len(s.Title) > maxSubtaskTitle {
			msgs = append(msgs, "Subtask title cannot exceed 200 characters")
			break
		}
	}
	return newValidationError(msgs)
}

// NextOrder returns the order value for a task appended to the given list.
func NextOrder(tasks []Task) int {
	next := 0
	for _, t := range tasks {
		if t.Order+1 > next {
			next = t.Order + 1
		}
	}
	return next
}
