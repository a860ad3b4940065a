package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/vbonduro/homeinv/internal/domain"
	"github.com/vbonduro/homeinv/internal/watch"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// exec runs a bulk statement and returns the number of rows it touched.
func exec(ctx context.Context, db execer, what, query string, args ...any) (int64, error) {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", what, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// execOne runs a statement targeting exactly one row and reports
// domain.ErrNotFound when it touched none.
func execOne(ctx context.Context, db execer, what, query string, args ...any) error {
	n, err := exec(ctx, db, what, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("failed to %s: %w", what, domain.ErrNotFound)
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Error("failed to close rows", "error", err)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

// queryList runs query and scans each row with scan.
func queryList[T any](ctx context.Context, db *sql.DB, what string, scan func(scanner) (*T, error), query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	defer closeRows(rows)

	list := []*T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}
	return list, nil
}

// observe emits load's result once on subscription and again after every
// write published on topic. The channel is closed when ctx is done.
func observe[T any](ctx context.Context, hub *watch.Hub, topic watch.Topic, load func(context.Context) ([]*T, error)) <-chan []*T {
	out := make(chan []*T, 1)
	var changes <-chan watch.Topic
	if hub != nil {
		changes = hub.Subscribe(ctx, topic)
	}

	go func() {
		defer close(out)
		emit := func() bool {
			list, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				slog.Error("failed to refresh live view", "topic", topic, "error", err)
				return true
			}
			select {
			case out <- list:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		if changes == nil {
			<-ctx.Done()
			return
		}
		for range changes {
			if !emit() {
				return
			}
		}
	}()

	return out
}
