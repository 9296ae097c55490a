package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(context.Context) (pgx.Tx, error)
}

// Repository implements editorial.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

var _ editorial.Repository = (*Repository)(nil)

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

//go:embed schema.sql
var schema string

// Migrate creates the editorial tables and indexes when they do not exist
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply editorial schema: %w", err)
	}
	return nil
}

// InTx runs fn in a transaction. A repository that already runs inside a
// transaction nests through a savepoint.
func (r *Repository) InTx(ctx context.Context, fn func(tx editorial.Repository) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&Repository{db: tx})
	})
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.HasSuffix(pgErr.ConstraintName, "_slug_key") {
				return fmt.Errorf("%s: %w", operation, editorial.ErrSlugTaken)
			}
			return fmt.Errorf("%s: %w (%s)", operation, editorial.ErrDuplicate, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w (%s)", operation, editorial.ErrInvalidReference, pgErr.ConstraintName)
		case "23502": // not_null_violation
			return fmt.Errorf("%s: %w: required field %s is missing", operation, editorial.ErrInvalidInput, pgErr.ColumnName)
		case "23514": // check_violation
			return fmt.Errorf("%s: %w (%s)", operation, editorial.ErrInvalidStatus, pgErr.ConstraintName)
		case "42P01": // undefined_table
			return fmt.Errorf("%s: table does not exist - database migration required: %w", operation, err)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s): %w", operation, pgErr.Message, pgErr.Code, err)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// notFound maps pgx.ErrNoRows to the given sentinel
func (r *Repository) notFound(operation string, err error, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return r.handlePostgresError(operation, err)
}

// where collects the conditions and arguments of a dynamic query
type where struct {
	conds []string
	args  []interface{}
}

// add appends a condition written with a single %d placeholder for the next argument
func (w *where) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page appends LIMIT and OFFSET arguments and returns the clause
func (w *where) page(offset, limit int) (string, []interface{}) {
	args := append(append([]interface{}{}, w.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

// escapeLike escapes the LIKE wildcards of s
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
