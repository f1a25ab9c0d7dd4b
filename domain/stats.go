package domain

import "time"

// TaskStats aggregates a user's tasks by status and priority, with overdue
// and due-today counts relative to now.
type TaskStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByPriority map[string]int `json:"byPriority"`
	Overdue    int            `json:"overdue"`
	DueToday   int            `json:"dueToday"`
}

// ComputeTaskStats counts tasks per status and priority. Overdue counts
// incomplete tasks whose due date has passed; dueToday counts incomplete
// tasks due within [start of today, start of tomorrow).
func ComputeTaskStats(tasks []Task, now time.Time) TaskStats {
	stats := TaskStats{
		Total: len(tasks),
		ByStatus: map[string]int{
			StatusPending:    0,
			StatusInProgress: 0,
			StatusCompleted:  0,
		},
		ByPriority: map[string]int{
			PriorityLow:    0,
			PriorityMedium: 0,
			PriorityHigh:   0,
			PriorityUrgent: 0,
		},
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	for _, t := range tasks {
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
		if t.Status == StatusCompleted || t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(now) {
			stats.Overdue++
		}
		if !t.DueDate.Before(today) && t.DueDate.Before(tomorrow) {
			stats.DueToday++
		}
	}
	return stats
}
