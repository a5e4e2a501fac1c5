package handlers

import (
	"strconv"
	"strings"

	"subdesk/internal/common"
	"subdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// listOptions reads limit, offset, sort_by and sort_order from the query.
// Unknown sort columns are left to the repositories' whitelists.
func listOptions(c echo.Context) (repositories.ListOptions, error) {
	verr := &common.ValidationError{}
	limit, ok := queryInt(c, "limit")
	if !ok {
		verr.Add("limit", "limit must be an integer")
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		verr.Add("offset", "offset must be an integer")
	}
	if err := verr.OrNil(); err != nil {
		return repositories.ListOptions{}, err
	}
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return repositories.ListOptions{
		Limit:     limit,
		Offset:    offset,
		SortBy:    strings.TrimSpace(c.QueryParam("sort_by")),
		SortOrder: common.ValidateSortOrder(c.QueryParam("sort_order")),
	}, nil
}

// queryInt parses an optional integer query parameter; absent means zero.
func queryInt(c echo.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

func pathID(c echo.Context) (uuid.UUID, error) {
	return common.ValidateUUID(c.Param("id"), "id")
}

// optionalUUID parses an optional identifier from a body or query value.
func optionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := common.ValidateUUID(*raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func queryUUID(c echo.Context, name string) (*uuid.UUID, error) {
	raw := c.QueryParam(name)
	return optionalUUID(&raw, name)
}

// bindError is the response for a body that is not valid JSON.
func bindError(c echo.Context) error {
	return common.SendValidationError(c, "body", "Invalid request format")
}

// listResponse is the envelope of every list endpoint.
func listResponse[T any](items []T, opts repositories.ListOptions) map[string]any {
	if items == nil {
		items = []T{}
	}
	return map[string]any{
		"items":  items,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	}
}
