package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Store, auth Authenticator, logger *log.Logger) {
	e.GET("/healthz", healthz())

	g := e.Group("/api")

	g.POST("/auth/register", registerUser(store, auth))
	g.POST("/auth/login", loginUser(store, auth))
	g.GET("/auth/me", currentUser(store, auth))

	g.GET("/tasks", getTasks(store, auth, logger))
	g.GET("/tasks/stats", getTaskStats(store, auth))
	g.GET("/tasks/:id", getTask(store, auth))
	g.POST("/tasks", createTask(store, auth))
	g.PUT("/tasks/bulk/reorder", bulkReorderTasks(store, auth))
	g.PUT("/tasks/:id/order", updateTaskOrder(store, auth))
	g.PUT("/tasks/:id", updateTask(store, auth))
	g.DELETE("/tasks/bulk/delete", bulkDeleteTasks(store, auth))
	g.DELETE("/tasks/:id", deleteTask(store, auth))

	g.GET("/notes", getNotes(store, auth, logger))
	g.GET("/notes/:id", getNote(store, auth))
	g.POST("/notes", createNote(store, auth))
	g.PUT("/notes/:id", updateNote(store, auth))
	g.PATCH("/notes/:id/pin", toggleNotePin(store, auth))
	g.DELETE("/notes/bulk/delete", bulkDeleteNotes(store, auth))
	g.DELETE("/notes/:id", deleteNote(store, auth))
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}
