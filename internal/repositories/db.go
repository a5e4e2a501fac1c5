package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"subdesk/internal/common"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapError translates driver errors into the shared error kinds.
// field names the input that a constraint violation is reported against.
func mapError(op, resource string, id any, field string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NotFound(resource, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return common.NewValidationError(field, "already exists")
		case pgForeignKeyViolation:
			if strings.Contains(pgErr.Detail, "is still referenced") {
				return common.NewValidationError(field, "is still in use")
			}
			return common.NewValidationError(field, "references a missing record")
		}
	}
	return common.DependencyFailure(op, err)
}

// affected reports NotFound when a write matched no row.
func affected(tag pgconn.CommandTag, resource string, id any) error {
	if tag.RowsAffected() == 0 {
		return common.NotFound(resource, id)
	}
	return nil
}

// ListOptions carries pagination and sorting for list queries.
type ListOptions struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// orderBy builds an ORDER BY clause from a whitelist of sortable columns.
// Unknown columns fall back to def.
func orderBy(opts ListOptions, allowed map[string]string, def string) string {
	col, ok := allowed[opts.SortBy]
	if !ok {
		col = def
	}
	dir := "DESC"
	if strings.EqualFold(opts.SortOrder, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", col, dir)
}

func (o ListOptions) limit() int {
	if o.Limit <= 0 {
		return 50
	}
	return o.Limit
}
