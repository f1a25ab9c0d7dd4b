package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"todo-api/domain"
)

type noteListResponse struct {
	Notes      []domain.Note      `json:"notes"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
}

type noteResponse struct {
	Message string      `json:"message"`
	Note    domain.Note `json:"note"`
}

func getNotes(store Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newListRequestMetrics(ctx, logger, "/api/notes")
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

		fetchStart := time.Now()
		notes, fetchErr := store.ListNotes(ctx, user.ID)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			err = internalError(c, fetchErr)
			return err
		}

		// Date-scoped queries take priority over the generic filters and
		// return the unpaginated result set.
		if v := c.QueryParam("date"); v != "" {
			day, parseErr := parseDate(v)
			if parseErr != nil {
				metrics.SetErrorStage("invalid_date")
				err = badRequest(c, "Invalid date parameter")
				return err
			}
			start, end := domain.DayBounds(day)
			selected := notesInDateRange(notes, start, end)
			domain.SortNotesForDay(selected)
			metrics.SetItemsReturned(len(selected))
			err = c.JSON(http.StatusOK, noteListResponse{Notes: selected})
			return err
		}
		if c.QueryParam("startDate") != "" && c.QueryParam("endDate") != "" {
			start, startErr := parseDate(c.QueryParam("startDate"))
			end, endErr := parseDate(c.QueryParam("endDate"))
			if startErr != nil || endErr != nil {
				metrics.SetErrorStage("invalid_date_range")
				err = badRequest(c, "Invalid date range parameters")
				return err
			}
			selected := notesInDateRange(notes, start, end)
			domain.SortNotesForRange(selected)
			metrics.SetItemsReturned(len(selected))
			err = c.JSON(http.StatusOK, noteListResponse{Notes: selected})
			return err
		}

		filter := domain.NoteFilter{
			Tag:    c.QueryParam("tag"),
			Color:  c.QueryParam("color"),
			Search: c.QueryParam("search"),
		}
		if v := c.QueryParam("isPinned"); v != "" {
			pinned := v == "true"
			filter.Pinned = &pinned
		}
		metrics.SetFiltered(filter.Tag != "" || filter.Color != "" || filter.Search != "" || filter.Pinned != nil)

		sortBy, sortOrder := sortParams(c)
		page, limit, pageErr := pageParams(c)
		if pageErr != nil {
			metrics.SetErrorStage("invalid_page")
			err = badRequest(c, pageErr.Error())
			return err
		}

		notes = domain.FilterNotes(notes, filter)
		domain.SortNotes(notes, sortBy, sortOrder)
		pageItems, pagination := domain.Paginate(notes, page, limit)
		metrics.SetItemsReturned(len(pageItems))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, noteListResponse{Notes: pageItems, Pagination: &pagination})
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func notesInDateRange(notes []domain.Note, start, end time.Time) []domain.Note {
	out := []domain.Note{}
	for _, n := range notes {
		if n.Date.Before(start) || n.Date.After(end) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func getNote(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return respondAuthFailure(c, err)
		}
		note, err := store.GetNote(ctx, user.ID, c.Param("id"))
		if err != nil {
			return internalError(c, err)
		}
		if note == nil {
			return notFound(c, "Note not found")
		}
		return c.JSON(http.StatusOK, note)
	}
}

type createNoteRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Date        *apiTime `json:"date"`
	Tags        []string `json:"tags"`
	Color       string   `json:"color"`
	IsPinned    bool     `json:"isPinned"`
	LinkedTasks []string `json:"linkedTasks"`
}

func createNote(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return respondAuthFailure(c, err)
		}

		var req createNoteRequest
		if err := decodeBody(c, &req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if strings.TrimSpace(req.Title) == "" {
			return badRequest(c, "Note title is required")
		}
		if strings.TrimSpace(req.Content) == "" {
			return badRequest(c, "Note content is required")
		}

		now := time.Now()
		note := domain.Note{
			ID:          uuid.NewString(),
			Title:       strings.TrimSpace(req.Title),
			Content:     strings.TrimSpace(req.Content),
			Date:        now,
			Tags:        req.Tags,
			Color:       req.Color,
			IsPinned:    req.IsPinned,
			LinkedTasks: req.LinkedTasks,
			UserID:      user.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if req.Date != nil && !req.Date.IsZero() {
			note.Date = req.Date.Time
		}
		if note.Color == "" {
			note.Color = domain.ColorDefault
		}
		if note.Tags == nil {
			note.Tags = []string{}
		}
		// Linked task ids are stored as given; they are not checked against
		// existing tasks or the caller's ownership.
		if note.LinkedTasks == nil {
			note.LinkedTasks = []string{}
		}

		if err := note.Validate(); err != nil {
			return respondValidation(c, err)
		}
		if err := store.InsertNote(ctx, note); err != nil {
			return internalError(c, err)
		}

		return c.JSON(http.StatusCreated, noteResponse{Message: "Note created successfully", Note: note})
	}
}

func updateNote(store Store, auth Authenticator) echo.HandlerFunc {
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

		note, err := store.GetNote(ctx, user.ID, c.Param("id"))
		if err != nil {
			return internalError(c, err)
		}
		if note == nil {
			return notFound(c, "Note not found")
		}

		now := time.Now()
		if data, ok := raw["title"]; ok {
			var title string
			if err := sonic.Unmarshal(data, &title); err != nil {
				return badRequest(c, "Invalid request body")
			}
			note.Title = strings.TrimSpace(title)
		}
		if data, ok := raw["content"]; ok {
			var content string
			if err := sonic.Unmarshal(data, &content); err != nil {
				return badRequest(c, "Invalid request body")
			}
			note.Content = strings.TrimSpace(content)
		}
		if data, ok := raw["date"]; ok {
			var date *apiTime
			if err := sonic.Unmarshal(data, &date); err != nil {
				return badRequest(c, "Invalid request body")
			}
			if date == nil || date.IsZero() {
				note.Date = now
			} else {
				note.Date = date.Time
			}
		}
		if data, ok := raw["tags"]; ok {
			var tags []string
			if err := sonic.Unmarshal(data, &tags); err != nil {
				return badRequest(c, "Invalid request body")
			}
			if tags == nil {
				tags = []string{}
			}
			note.Tags = tags
		}
		if data, ok := raw["color"]; ok {
			var color string
			if err := sonic.Unmarshal(data, &color); err != nil {
				return badRequest(c, "Invalid request body")
			}
			note.Color = color
		}
		if data, ok := raw["isPinned"]; ok {
			var pinned bool
			if err := sonic.Unmarshal(data, &pinned); err != nil {
				return badRequest(c, "Invalid request body")
			}
			note.IsPinned = pinned
		}
		if data, ok := raw["linkedTasks"]; ok {
			var linked []string
			if err := sonic.Unmarshal(data, &linked); err != nil {
				return badRequest(c, "Invalid request body")
			}
			if linked == nil {
				linked = []string{}
			}
			note.LinkedTasks = linked
		}
		note.UpdatedAt = now

		if err := note.Validate(); err != nil {
			return respondValidation(c, err)
		}
		if err := store.UpdateNote(ctx, *note); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return notFound(c, "Note not found")
			}
			return internalError(c, err)
		}

		return c.JSON(http.StatusOK, noteResponse{Message: "Note updated successfully", Note: *note})
	}
}

func toggleNotePin(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return respondAuthFailure(c, err)
		}

		note, err := store.GetNote(ctx, user.ID, c.Param("id"))
		if err != nil {
			return internalError(c, err)
		}
		if note == nil {
			return notFound(c, "Note not found")
		}

		note.IsPinned = !note.IsPinned
		note.UpdatedAt = time.Now()
		if err := store.UpdateNote(ctx, *note); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return notFound(c, "Note not found")
			}
			return internalError(c, err)
		}

		state := "unpinned"
		if note.IsPinned {
			state = "pinned"
		}
		return c.JSON(http.StatusOK, noteResponse{
			Message: fmt.Sprintf("Note %s successfully", state),
			Note:    *note,
		})
	}
}

func deleteNote(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return respondAuthFailure(c, err)
		}
		deleted, err := store.DeleteNote(ctx, user.ID, c.Param("id"))
		if err != nil {
			return internalError(c, err)
		}
		if !deleted {
			return notFound(c, "Note not found")
		}
		return respondMessage(c, http.StatusOK, "Note deleted successfully")
	}
}

type bulkDeleteNotesRequest struct {
	NoteIDs []string `json:"noteIds"`
}

func bulkDeleteNotes(store Store, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := resolveAccount(ctx, store, auth, c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return respondAuthFailure(c, err)
		}

		var req bulkDeleteNotesRequest
		if err := decodeBody(c, &req); err != nil || len(req.NoteIDs) == 0 {
			return badRequest(c, "Note IDs must be a non-empty array")
		}

		deleted := 0
		for _, id := range req.NoteIDs {
			ok, err := store.DeleteNote(ctx, user.ID, id)
			if err != nil {
				return internalError(c, err)
			}
			if ok {
				deleted++
			}
		}

		return c.JSON(http.StatusOK, bulkDeleteResponse{
			Message:      fmt.Sprintf("%d notes deleted successfully", deleted),
			DeletedCount: deleted,
		})
	}
}
