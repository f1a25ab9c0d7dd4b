package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"todo-api/domain"
)

// Storage provides access to the task, note and user tables. Tasks and notes
// are partitioned by owning user id, so every operation is scoped to one
// partition and cross-user reads are structurally impossible.
//
// Updates are whole-entity replacements with no ETag precondition: concurrent
// writers to the same entity resolve as last-writer-wins.
type Storage struct {
	taskTable *aztables.Client
	noteTable *aztables.Client
	userTable *aztables.Client
}

// New creates a Storage instance from the given connection string.
func New(connStr, tasksTable, notesTable, usersTable string) (*Storage, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &Storage{
		taskTable: svc.NewClient(tasksTable),
		noteTable: svc.NewClient(notesTable),
		userTable: svc.NewClient(usersTable),
	}, nil
}

func is404(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == 404
}

// odataString escapes a value for use inside a single-quoted OData literal.
func odataString(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}

// ListTasks retrieves every task owned by the user.
func (s *Storage) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	filter := "PartitionKey eq '" + odataString(userID) + "'"
	pager := s.taskTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	tasks := []domain.Task{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			var ent taskEntity
			if err := json.Unmarshal(e, &ent); err != nil {
				return nil, err
			}
			task, err := entityToTask(ent)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// GetTask retrieves one task scoped to the user. It returns nil when the
// task does not exist under that user's partition.
func (s *Storage) GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	ent, err := s.taskTable.GetEntity(ctx, userID, taskID, nil)
	if err != nil {
		if is404(err) {
			return nil, nil
		}
		return nil, err
	}
	var raw taskEntity
	if err := json.Unmarshal(ent.Value, &raw); err != nil {
		return nil, err
	}
	task, err := entityToTask(raw)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// InsertTask creates a new task entity.
func (s *Storage) InsertTask(ctx context.Context, t domain.Task) error {
	ent, err := taskToEntity(t)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	_, err = s.taskTable.AddEntity(ctx, payload, nil)
	return err
}

// UpdateTask replaces an existing task entity. It returns domain.ErrNotFound
// when the task does not exist under the owner's partition.
func (s *Storage) UpdateTask(ctx context.Context, t domain.Task) error {
	ent, err := taskToEntity(t)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = s.taskTable.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &et,
		UpdateMode: aztables.UpdateModeReplace,
	})
	if is404(err) {
		return domain.ErrNotFound
	}
	return err
}

// SetTaskOrder merges a new order value into an existing task, leaving every
// other property untouched. It returns domain.ErrNotFound when the task does
// not exist under the owner's partition.
func (s *Storage) SetTaskOrder(ctx context.Context, userID, taskID string, order int) error {
	upd := taskOrderUpdate{
		Entity:    aztables.Entity{PartitionKey: userID, RowKey: taskID},
		Order:     order,
		UpdatedAt: encodeTime(time.Now()),
	}
	payload, err := json.Marshal(upd)
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = s.taskTable.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &et,
		UpdateMode: aztables.UpdateModeMerge,
	})
	if is404(err) {
		return domain.ErrNotFound
	}
	return err
}

// DeleteTask removes a task scoped to the user. It reports whether an entity
// was actually deleted.
func (s *Storage) DeleteTask(ctx context.Context, userID, taskID string) (bool, error) {
	_, err := s.taskTable.DeleteEntity(ctx, userID, taskID, nil)
	if err != nil {
		if is404(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListNotes retrieves every note owned by the user.
func (s *Storage) ListNotes(ctx context.Context, userID string) ([]domain.Note, error) {
	filter := "PartitionKey eq '" + odataString(userID) + "'"
	pager := s.noteTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	notes := []domain.Note{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			var ent noteEntity
			if err := json.Unmarshal(e, &ent); err != nil {
				return nil, err
			}
			note, err := entityToNote(ent)
			if err != nil {
				return nil, err
			}
			notes = append(notes, note)
		}
	}
	return notes, nil
}

// GetNote retrieves one note scoped to the user. It returns nil when the
// note does not exist under that user's partition.
func (s *Storage) GetNote(ctx context.Context, userID, noteID string) (*domain.Note, error) {
	ent, err := s.noteTable.GetEntity(ctx, userID, noteID, nil)
	if err != nil {
		if is404(err) {
			return nil, nil
		}
		return nil, err
	}
	var raw noteEntity
	if err := json.Unmarshal(ent.Value, &raw); err != nil {
		return nil, err
	}
	note, err := entityToNote(raw)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// InsertNote creates a new note entity.
func (s *Storage) InsertNote(ctx context.Context, n domain.Note) error {
	ent, err := noteToEntity(n)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	_, err = s.noteTable.AddEntity(ctx, payload, nil)
	return err
}

// UpdateNote replaces an existing note entity. It returns domain.ErrNotFound
// when the note does not exist under the owner's partition.
func (s *Storage) UpdateNote(ctx context.Context, n domain.Note) error {
	ent, err := noteToEntity(n)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = s.noteTable.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &et,
		UpdateMode: aztables.UpdateModeReplace,
	})
	if is404(err) {
		return domain.ErrNotFound
	}
	return err
}

// DeleteNote removes a note scoped to the user. It reports whether an entity
// was actually deleted.
func (s *Storage) DeleteNote(ctx context.Context, userID, noteID string) (bool, error) {
	_, err := s.noteTable.DeleteEntity(ctx, userID, noteID, nil)
	if err != nil {
		if is404(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetUser retrieves a user by id, or nil when absent.
func (s *Storage) GetUser(ctx context.Context, id string) (*domain.User, error) {
	ent, err := s.userTable.GetEntity(ctx, userPartition, id, nil)
	if err != nil {
		if is404(err) {
			return nil, nil
		}
		return nil, err
	}
	var raw userEntity
	if err := json.Unmarshal(ent.Value, &raw); err != nil {
		return nil, err
	}
	user, err := entityToUser(raw)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, or nil when absent. Emails are
// stored lowercased, so the lookup is case-insensitive by construction.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	filter := "PartitionKey eq '" + userPartition + "' and Email eq '" + odataString(email) + "'"
	pager := s.userTable.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			var raw userEntity
			if err := json.Unmarshal(e, &raw); err != nil {
				return nil, err
			}
			user, err := entityToUser(raw)
			if err != nil {
				return nil, err
			}
			return &user, nil
		}
	}
	return nil, nil
}

// InsertUser creates a new user entity.
func (s *Storage) InsertUser(ctx context.Context, u domain.User) error {
	payload, err := json.Marshal(userToEntity(u))
	if err != nil {
		return err
	}
	_, err = s.userTable.AddEntity(ctx, payload, nil)
	return err
}
