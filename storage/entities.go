package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"todo-api/domain"
)

// Azure Tables has no list-valued properties, so tags, subtasks and linked
// task ids are stored as JSON-encoded strings. Timestamps are RFC3339 strings
// (empty means unset) to keep entities free of OData type annotations.

const userPartition = "user"

type taskEntity struct {
	aztables.Entity
	Title       string `json:"Title"`
	Description string `json:"Description,omitempty"`
	Status      string `json:"Status"`
	Priority    string `json:"Priority"`
	Tags        string `json:"Tags,omitempty"`
	DueDate     string `json:"DueDate,omitempty"`
	Subtasks    string `json:"Subtasks,omitempty"`
	Order       int    `json:"Order"`
	CreatedAt   string `json:"CreatedAt"`
	UpdatedAt   string `json:"UpdatedAt"`
	CompletedAt string `json:"CompletedAt,omitempty"`
}

// taskOrderUpdate carries the single-field merge used by reorder operations.
type taskOrderUpdate struct {
	aztables.Entity
	Order     int    `json:"Order"`
	UpdatedAt string `json:"UpdatedAt"`
}

type noteEntity struct {
	aztables.Entity
	Title       string `json:"Title"`
	Content     string `json:"Content"`
	Date        string `json:"Date"`
	Tags        string `json:"Tags,omitempty"`
	Color       string `json:"Color"`
	IsPinned    bool   `json:"IsPinned"`
	LinkedTasks string `json:"LinkedTasks,omitempty"`
	CreatedAt   string `json:"CreatedAt"`
	UpdatedAt   string `json:"UpdatedAt"`
}

type userEntity struct {
	aztables.Entity
	Name         string `json:"Name"`
	Email        string `json:"Email"`
	PasswordHash string `json:"PasswordHash"`
	IsActive     bool   `json:"IsActive"`
	CreatedAt    string `json:"CreatedAt"`
	UpdatedAt    string `json:"UpdatedAt"`
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func encodeTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return encodeTime(*t)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func decodeTimePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := decodeTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeList(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func taskToEntity(t domain.Task) (taskEntity, error) {
	tags, err := encodeList(t.Tags)
	if err != nil {
		return taskEntity{}, err
	}
	subtasks, err := encodeList(t.Subtasks)
	if err != nil {
		return taskEntity{}, err
	}
	return taskEntity{
		Entity:      aztables.Entity{PartitionKey: t.UserID, RowKey: t.ID},
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Tags:        tags,
		DueDate:     encodeTimePtr(t.DueDate),
		Subtasks:    subtasks,
		Order:       t.Order,
		CreatedAt:   encodeTime(t.CreatedAt),
		UpdatedAt:   encodeTime(t.UpdatedAt),
		CompletedAt: encodeTimePtr(t.CompletedAt),
	}, nil
}

func entityToTask(ent taskEntity) (domain.Task, error) {
	t := domain.Task{
		ID:          ent.RowKey,
		UserID:      ent.PartitionKey,
		Title:       ent.Title,
		Description: ent.Description,
		Status:      ent.Status,
		Priority:    ent.Priority,
		Order:       ent.Order,
		Tags:        []string{},
		Subtasks:    []domain.Subtask{},
	}
	if ent.Tags != "" {
		if err := json.Unmarshal([]byte(ent.Tags), &t.Tags); err != nil {
			return domain.Task{}, fmt.Errorf("task %s: decode tags: %w", ent.RowKey, err)
		}
	}
	if ent.Subtasks != "" {
		if err := json.Unmarshal([]byte(ent.Subtasks), &t.Subtasks); err != nil {
			return domain.Task{}, fmt.Errorf("task %s: decode subtasks: %w", ent.RowKey, err)
		}
	}
	var err error
	if t.DueDate, err = decodeTimePtr(ent.DueDate); err != nil {
		return domain.Task{}, fmt.Errorf("task %s: decode due date: %w", ent.RowKey, err)
	}
	if t.CompletedAt, err = decodeTimePtr(ent.CompletedAt); err != nil {
		return domain.Task{}, fmt.Errorf("task %s: decode completed at: %w", ent.RowKey, err)
	}
	if t.CreatedAt, err = decodeTime(ent.CreatedAt); err != nil {
		return domain.Task{}, fmt.Errorf("task %s: decode created at: %w", ent.RowKey, err)
	}
	if t.UpdatedAt, err = decodeTime(ent.UpdatedAt); err != nil {
		return domain.Task{}, fmt.Errorf("task %s: decode updated at: %w", ent.RowKey, err)
	}
	return t, nil
}

func noteToEntity(n domain.Note) (noteEntity, error) {
	tags, err := encodeList(n.Tags)
	if err != nil {
		return noteEntity{}, err
	}
	linked, err := encodeList(n.LinkedTasks)
	if err != nil {
		return noteEntity{}, err
	}
	return noteEntity{
		Entity:      aztables.Entity{PartitionKey: n.UserID, RowKey: n.ID},
		Title:       n.Title,
		Content:     n.Content,
		Date:        encodeTime(n.Date),
		Tags:        tags,
		Color:       n.Color,
		IsPinned:    n.IsPinned,
		LinkedTasks: linked,
		CreatedAt:   encodeTime(n.CreatedAt),
		UpdatedAt:   encodeTime(n.UpdatedAt),
	}, nil
}

func entityToNote(ent noteEntity) (domain.Note, error) {
	n := domain.Note{
		ID:          ent.RowKey,
		UserID:      ent.PartitionKey,
		Title:       ent.Title,
		Content:     ent.Content,
		Color:       ent.Color,
		IsPinned:    ent.IsPinned,
		Tags:        []string{},
		LinkedTasks: []string{},
	}
	if ent.Tags != "" {
		if err := json.Unmarshal([]byte(ent.Tags), &n.Tags); err != nil {
			return domain.Note{}, fmt.Errorf("note %s: decode tags: %w", ent.RowKey, err)
		}
	}
	if ent.LinkedTasks != "" {
		if err := json.Unmarshal([]byte(ent.LinkedTasks), &n.LinkedTasks); err != nil {
			return domain.Note{}, fmt.Errorf("note %s: decode linked tasks: %w", ent.RowKey, err)
		}
	}
	var err error
	if n.Date, err = decodeTime(ent.Date); err != nil {
		return domain.Note{}, fmt.Errorf("note %s: decode date: %w", ent.RowKey, err)
	}
	if n.CreatedAt, err = decodeTime(ent.CreatedAt); err != nil {
		return domain.Note{}, fmt.Errorf("note %s: decode created at: %w", ent.RowKey, err)
	}
	if n.UpdatedAt, err = decodeTime(ent.UpdatedAt); err != nil {
		return domain.Note{}, fmt.Errorf("note %s: decode updated at: %w", ent.RowKey, err)
	}
	return n, nil
}

func userToEntity(u domain.User) userEntity {
	return userEntity{
		Entity:       aztables.Entity{PartitionKey: userPartition, RowKey: u.ID},
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    encodeTime(u.CreatedAt),
		UpdatedAt:    encodeTime(u.UpdatedAt),
	}
}

func entityToUser(ent userEntity) (domain.User, error) {
	u := domain.User{
		ID:           ent.RowKey,
		Name:         ent.Name,
		Email:        ent.Email,
		PasswordHash: ent.PasswordHash,
		IsActive:     ent.IsActive,
	}
	var err error
	if u.CreatedAt, err = decodeTime(ent.CreatedAt); err != nil {
		return domain.User{}, fmt.Errorf("user %s: decode created at: %w", ent.RowKey, err)
	}
	if u.UpdatedAt, err = decodeTime(ent.UpdatedAt); err != nil {
		return domain.User{}, fmt.Errorf("user %s: decode updated at: %w", ent.RowKey, err)
	}
	return u, nil
}
