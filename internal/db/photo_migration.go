package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/homeinv/internal/domain"
)

// UpgradePhotoValue computes the photo_uris value for a row from its legacy
// single photo_uri column and its current photo_uris column. changed is false
// when the row already holds a photo list.
func UpgradePhotoValue(legacy, current sql.NullString) (value string, changed bool) {
	if current.Valid && domain.IsPhotoList(current.String) {
		return current.String, false
	}
	if current.Valid && current.String != "" {
		return domain.EncodePhotoURIs([]string{current.String}), true
	}
	if legacy.Valid && legacy.String != "" {
		return domain.EncodePhotoURIs([]string{legacy.String}), true
	}
	return domain.EncodePhotoURIs(nil), true
}

type photoRow struct {
	id      int64
	legacy  sql.NullString
	current sql.NullString
}

// UpgradePhotoURIs rewrites every item whose photo_uris column is not yet a
// list. Rows already migrated are left untouched, so running it again is a
// no-op. It returns the number of rows rewritten.
func UpgradePhotoURIs(ctx context.Context, db *sql.DB) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin photo migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id, photo_uri, photo_uris FROM items ORDER BY id ASC`)
	if err != nil {
		return 0, fmt.Errorf("failed to read items: %w", err)
	}
	var pending []photoRow
	for rows.Next() {
		var r photoRow
		if err := rows.Scan(&r.id, &r.legacy, &r.current); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("failed to scan item: %w", err)
		}
		pending = append(pending, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, fmt.Errorf("error iterating items: %w", err)
	}
	if err := rows.Close(); err != nil {
		return 0, fmt.Errorf("failed to close item rows: %w", err)
	}

	updated := 0
	for _, r := range pending {
		value, changed := UpgradePhotoValue(r.legacy, r.current)
		if !changed {
			continue
		}
		if _, err := tx.ExecContext(ctx, `UPDATE items SET photo_uris = ? WHERE id = ?`, value, r.id); err != nil {
			return 0, fmt.Errorf("failed to upgrade item %d: %w", r.id, err)
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit photo migration: %w", err)
	}
	return updated, nil
}
