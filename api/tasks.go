package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"todo-api/domain"
)

const requestBodyMaxSize = 256 * 1024 // 256 KiB

func decodeBody(c echo.Context, dst any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	return sonic.ConfigStd.NewDecoder(lr).Decode(dst)
}

type taskListResponse struct {
	Tasks      []domain.Task     `json:"tasks"`
	Pagination domain.Pagination `json:"pagination"`
}

type taskResponse struct {
	Message string      `json:"message"`
	Task    domain.Task `json:"task"`
}

func getTasks(store Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newListRequestMetrics(ctx, logger, "/api/tasks")
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		user, authErr := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = respondAuthFailure(c, authErr)
			return err
		}

		filter := domain.TaskFilter{
			Status:   c.QueryParam("status"),
			Priority: c.QueryParam("priority"),
			Tag:      c.QueryParam("tag"),
			Search:   c.QueryParam("search"),
		}
		if v := c.QueryParam("dueDate"); v != "" {
			day, parseErr := parseDate(v)
			if parseErr != nil {
				metrics.SetErrorStage("invalid_due_date")
				err = badRequest(c, "Invalid dueDate parameter")
				return err
			}
			start, end := domain.DayBounds(day)
			filter.DueStart, filter.DueEnd = &start, &end
		} else if c.QueryParam("startDate") != "" || c.QueryParam("endDate") != "" {
			if v := c.QueryParam("startDate"); v != "" {
				start, parseErr := parseDate(v)
				if parseErr != nil {
					metrics.SetErrorStage("invalid_date_range")
					err = badRequest(c, "Invalid startDate parameter")
					return err
				}
				filter.DueStart = &start
			}
			if v := c.QueryParam("endDate"); v != "" {
				end, parseErr := parseDate(v)
				if parseErr != nil {
					metrics.SetErrorStage("invalid_date_range")
					err = badRequest(c, "Invalid endDate parameter")
					return err
				}
				filter.DueEnd = &end
			}
		}
		metrics.SetFiltered(filter != domain.TaskFilter{})

		sortBy, sortOrder := sortParams(c)
		page, limit, pageErr := pageParams(c)
		if pageErr != nil {
			metrics.SetErrorStage("invalid_page")
			err = badRequest(c, pageErr.Error())
			return err
		}

		fetchStart := time.Now()
		tasks, fetchErr := store.ListTasks(ctx, user.ID)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			err = internalError(c, fetchErr)
			return err
		}

		tasks = domain.FilterTasks(tasks, filter)
		domain.SortTasks(tasks, sortBy, sortOrder)
		pageItems, pagination := domain.Paginate(tasks, page, limit)

		now := time.Now()
		for i := range pageItems {
			pageItems[i].Derive(now)
		}
		metrics.SetItemsReturned(len(pageItems))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, taskListResponse{Tasks: pageItems, Pagination: pagination})
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func getTaskStats(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return respondAuthFailure(c, err)
		}
		tasks, err := store.ListTasks(ctx, user.ID)
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(http.StatusOK, domain.ComputeTaskStats(tasks, time.Now()))
	}
}

func getTask(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return respondAuthFailure(c, err)
		}
		task, err := store.GetTask(ctx, user.ID, c.Param("id"))
		if err != nil {
			return internalError(c, err)
		}
		if task == nil {
			return notFound(c, "Task not found")
		}
		task.Derive(time.Now())
		return c.JSON(http.StatusOK, task)
	}
}

type subtaskRequest struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type createTaskRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Priority    string           `json:"priority"`
	Tags        []string         `json:"tags"`
	DueDate     *apiTime         `json:"dueDate"`
	Subtasks    []subtaskRequest `json:"subtasks"`
}

// normalizeSubtasks assigns ids to new subtasks and maintains per-subtask
// completion timestamps: a subtask completed in this request gets the current
// time, one completed before keeps its original timestamp, and an
// un-completed one loses it.
func normalizeSubtasks(reqs []subtaskRequest, prev []domain.Subtask, now time.Time) []domain.Subtask {
	prevByID := make(map[string]domain.Subtask, len(prev))
	for _, s := range prev {
		prevByID[s.ID] = s
	}
	out := make([]domain.Subtask, 0, len(reqs))
	for _, r := range reqs {
		s := domain.Subtask{ID: r.ID, Title: strings.TrimSpace(r.Title), Completed: r.Completed}
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if s.Completed {
			if old, ok := prevByID[s.ID]; ok && old.Completed && old.CompletedAt != nil {
				s.CompletedAt = old.CompletedAt
			} else {
				completed := now
				s.CompletedAt = &completed
			}
		}
		out = append(out, s)
	}
	return out
}

func createTask(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return respondAuthFailure(c, err)
		}

		var req createTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if strings.TrimSpace(req.Title) == "" {
			return badRequest(c, "Task title is required")
		}

		// The order value is assigned from the current maximum, so two
		// concurrent creates may collide; ties are broken by the secondary
		// createdAt sort.
		existing, err := store.ListTasks(ctx, user.ID)
		if err != nil {
			return internalError(c, err)
		}

		now := time.Now()
		task := domain.Task{
			ID:          uuid.NewString(),
			Title:       strings.TrimSpace(req.Title),
			Description: strings.TrimSpace(req.Description),
			Status:      domain.StatusPending,
			Priority:    req.Priority,
			Tags:        req.Tags,
			Subtasks:    normalizeSubtasks(req.Subtasks, nil, now),
			Order:       domain.NextOrder(existing),
			UserID:      user.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if task.Priority == "" {
			task.Priority = domain.PriorityMedium
		}
		if task.Tags == nil {
			task.Tags = []string{}
		}
		if req.DueDate != nil {
			due := req.DueDate.Time
			task.DueDate = &due
		}
		task.RecomputeStatus(now)

		if err := task.Validate(); err != nil {
			return respondValidation(c, err)
		}
		if err := store.InsertTask(ctx, task); err != nil {
			return internalError(c, err)
		}

		task.Derive(now)
		return c.JSON(http.StatusCreated, taskResponse{Message: "Task created successfully", Task: task})
	}
}

func updateTask(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return respondAuthFailure(c, err)
		}

		var raw map[string]json.RawMessage
		if err := decodeBody(c, &raw); err != nil {
			return badRequest(c, "Invalid request body")
		}

		task, err := store.GetTask(ctx, user.ID, c.Param("id"))
		if err != nil {
			return internalError(c, err)
		}
		if task == nil {
			return notFound(c, "Task not found")
		}

		now := time.Now()
		// Partial update semantics: absent fields stay untouched, explicit
		// null clears where the field is optional.
		if data, ok := raw["title"]; ok {
			var title string
			if err := sonic.Unmarshal(data, &title); err != nil {
				return badRequest(c, "Invalid request body")
			}
			task.Title = strings.TrimSpace(title)
		}
		if data, ok := raw["description"]; ok {
			var desc *string
			if err := sonic.Unmarshal(data, &desc); err != nil {
				return badRequest(c, "Invalid request body")
			}
			if desc == nil {
				task.Description = ""
			} else {
				task.Description = strings.TrimSpace(*desc)
			}
		}
		if data, ok := raw["status"]; ok {
			var status string
			if err := sonic.Unmarshal(data, &status); err != nil {
				return badRequest(c, "Invalid request body")
			}
			if status != task.Status {
				task.Status = status
				if status == domain.StatusCompleted {
					completed := now
					task.CompletedAt = &completed
				} else {
					task.CompletedAt = nil
				}
			}
		}
		if data, ok := raw["priority"]; ok {
			var priority string
			if err := sonic.Unmarshal(data, &priority); err != nil {
				return badRequest(c, "Invalid request body")
			}
			task.Priority = priority
		}
		if data, ok := raw["tags"]; ok {
			var tags []string
			if err := sonic.Unmarshal(data, &tags); err != nil {
				return badRequest(c, "Invalid request body")
			}
			if tags == nil {
				tags = []string{}
			}
			task.Tags = tags
		}
		if data, ok := raw["dueDate"]; ok {
			var due *apiTime
			if err := sonic.Unmarshal(data, &due); err != nil {
				return badRequest(c, "Invalid request body")
			}
			if due == nil || due.IsZero() {
				task.DueDate = nil
			} else {
				d := due.Time
				task.DueDate = &d
			}
		}
		if data, ok := raw["subtasks"]; ok {
			var reqs []subtaskRequest
			if err := sonic.Unmarshal(data, &reqs); err != nil {
				return badRequest(c, "Invalid request body")
			}
			task.Subtasks = normalizeSubtasks(reqs, task.Subtasks, now)
			// The status aggregation must land in the same write as the
			// subtask change.
			task.RecomputeStatus(now)
		}
		task.UpdatedAt = now

		if err := task.Validate(); err != nil {
			return respondValidation(c, err)
		}
		if err := store.UpdateTask(ctx, *task); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return notFound(c, "Task not found")
			}
			return internalError(c, err)
		}

		task.Derive(now)
		return c.JSON(http.StatusOK, taskResponse{Message: "Task updated successfully", Task: *task})
	}
}

type taskOrderRequest struct {
	NewOrder *int `json:"newOrder"`
}

func updateTaskOrder(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return respondAuthFailure(c, err)
		}

		var req taskOrderRequest
		if err := decodeBody(c, &req); err != nil || req.NewOrder == nil {
			return badRequest(c, "New order must be a number")
		}

		if err := store.SetTaskOrder(ctx, user.ID, c.Param("id"), *req.NewOrder); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return notFound(c, "Task not found")
			}
			return internalError(c, err)
		}

		task, err := store.GetTask(ctx, user.ID, c.Param("id"))
		if err != nil {
			return internalError(c, err)
		}
		if task == nil {
			return notFound(c, "Task not found")
		}
		task.Derive(time.Now())
		return c.JSON(http.StatusOK, taskResponse{Message: "Task order updated successfully", Task: *task})
	}
}

type bulkReorderRequest struct {
	TaskOrders []struct {
		ID string `json:"id"`
	} `json:"taskOrders"`
}

func bulkReorderTasks(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return respondAuthFailure(c, err)
		}

		var req bulkReorderRequest
		if err := decodeBody(c, &req); err != nil || req.TaskOrders == nil {
			return badRequest(c, "Task orders must be an array")
		}

		// One independent write per task: ids not owned by the caller are
		// skipped silently, and a storage failure aborts the remainder while
		// leaving earlier writes applied.
		for i, item := range req.TaskOrders {
			if err := store.SetTaskOrder(ctx, user.ID, item.ID, i); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return internalError(c, err)
			}
		}

		return respondMessage(c, http.StatusOK, "Task orders updated successfully")
	}
}

func deleteTask(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return respondAuthFailure(c, err)
		}
		deleted, err := store.DeleteTask(ctx, user.ID, c.Param("id"))
		if err != nil {
			return internalError(c, err)
		}
		if !deleted {
			return notFound(c, "Task not found")
		}
		return respondMessage(c, http.StatusOK, "Task deleted successfully")
	}
}

type bulkDeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deletedCount"`
}

type bulkDeleteTasksRequest struct {
	TaskIDs []string `json:"taskIds"`
}

func bulkDeleteTasks(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return respondAuthFailure(c, err)
		}

		var req bulkDeleteTasksRequest
		if err := decodeBody(c, &req); err != nil || len(req.TaskIDs) == 0 {
			return badRequest(c, "Task IDs must be a non-empty array")
		}

		deleted := 0
		for _, id := range req.TaskIDs {
			ok, err := store.DeleteTask(ctx, user.ID, id)
			if err != nil {
				return internalError(c, err)
			}
			if ok {
				deleted++
			}
		}

		return c.JSON(http.StatusOK, bulkDeleteResponse{
			Message:      fmt.Sprintf("%d tasks deleted successfully", deleted),
			DeletedCount: deleted,
		})
	}
}
