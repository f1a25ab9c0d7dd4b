package api

import (
	"context"

	"todo-api/domain"
)

// Store abstracts persistence for handlers. Get methods return nil without
// error when the entity is absent from the owner's partition; Update methods
// return domain.ErrNotFound in the same situation.
type Store interface {
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)
	GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error)
	InsertTask(ctx context.Context, t domain.Task) error
	UpdateTask(ctx context.Context, t domain.Task) error
	SetTaskOrder(ctx context.Context, userID, taskID string, order int) error
	DeleteTask(ctx context.Context, userID, taskID string) (bool, error)

	ListNotes(ctx context.Context, userID string) ([]domain.Note, error)
	GetNote(ctx context.Context, userID, noteID string) (*domain.Note, error)
	InsertNote(ctx context.Context, n domain.Note) error
	UpdateNote(ctx context.Context, n domain.Note) error
	DeleteNote(ctx context.Context, userID, noteID string) (bool, error)

	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	InsertUser(ctx context.Context, u domain.User) error
}

// Authenticator issues bearer tokens and extracts user IDs from
// Authorization headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
	GenerateToken(userID string) (string, error)
}
