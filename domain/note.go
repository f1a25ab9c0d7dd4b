package domain

import (
	"strings"
	"time"
)

// Note colors.
const (
	ColorDefault = "default"
	ColorBlue    = "blue"
	ColorGreen   = "green"
	ColorYellow  = "yellow"
	ColorRed     = "red"
	ColorPurple  = "purple"
	ColorPink    = "pink"
)

const maxContentLen = 2000

// Note is a dated free-text entry owned by one user. Date is the note's
// logical calendar date and is distinct from CreatedAt.
type Note struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Date        time.Time `json:"date"`
	Tags        []string  `json:"tags"`
	Color       string    `json:"color"`
	IsPinned    bool      `json:"isPinned"`
	LinkedTasks []string  `json:"linkedTasks"`
	UserID      string    `json:"user"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func validColor(c string) bool {
	switch c {
	case ColorDefault, ColorBlue, ColorGreen, ColorYellow, ColorRed, ColorPurple, ColorPink:
		return true
	}
	return false
}

// Validate checks every field constraint and returns a *ValidationError
// listing all violations, or nil when the note is valid.
func (n *Note) Validate() error {
	var msgs []string
	title := strings.TrimSpace(n.Title)
	if title == "" {
		msgs = append(msgs, "Note title is required")
	} else if len(title) > maxTitleLen {
		msgs = append(msgs, "Note title cannot exceed 100 characters")
	}
	content := strings.TrimSpace(n.Content)
	if content == "" {
		msgs = append(msgs, "Note content is required")
	} else if len(content) > maxContentLen {
		msgs = append(msgs, "Note content cannot exceed 2000 characters")
	}
	if !validColor(n.Color) {
		msgs = append(msgs, "Note color must be one of: default, blue, green, yellow, red, purple, pink")
	}
	for _, tag := range n.Tags {
		if len(tag) > maxTagLen {
			msgs = append(msgs, "Tag cannot exceed 20 characters")
			break
		}
	}
	return newValidationError(msgs)
}
