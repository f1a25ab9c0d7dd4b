package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"todo-api/domain"
)

// dateLayouts are the formats accepted for date-valued query parameters and
// request fields, tried in order.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

func parseDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", v)
}

// apiTime accepts RFC3339 timestamps or bare dates in JSON bodies.
type apiTime struct {
	time.Time
}

func (t *apiTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid date %s", data)
	}
	parsed, err := parseDate(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// pageParams extracts the 1-indexed page number and page size, applying the
// defaults when the parameters are absent.
func pageParams(c echo.Context) (page, limit int, err error) {
	page, limit = 1, domain.DefaultPageSize
	if v := c.QueryParam("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("invalid page number")
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 {
			return 0, 0, fmt.Errorf("invalid page size")
		}
	}
	return page, limit, nil
}

func sortParams(c echo.Context) (sortBy, sortOrder string) {
	sortBy = c.QueryParam("sortBy")
	if sortBy == "" {
		sortBy = "createdAt"
	}
	sortOrder = c.QueryParam("sortOrder")
	if sortOrder != domain.SortAsc {
		sortOrder = domain.SortDesc
	}
	return sortBy, sortOrder
}
