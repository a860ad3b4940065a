package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vbonduro/homeinv/internal/domain"
	"github.com/vbonduro/homeinv/internal/watch"
)

// deleteChunk bounds the number of ids bound to a single DELETE statement.
const deleteChunk = 500

type ItemStore struct {
	db  *sql.DB
	hub *watch.Hub
}

func NewItemStore(db *sql.DB, hub *watch.Hub) *ItemStore {
	return &ItemStore{db: db, hub: hub}
}

const itemColumns = `id, name, room, container, sub_container, third_container, category,
	description, photo_uris, production_date, reminder_days, quantity, timestamp, expiration_date`

// Insert stores item. An ID of 0 creates a new row; a non-zero ID overwrites
// the row with that ID or creates it. A timestamp already held by another
// item is reported as domain.ErrConflict and nothing is written.
func (s *ItemStore) Insert(ctx context.Context, item domain.Item) (*domain.Item, error) {
	var id any
	if item.ID != 0 {
		id = item.ID
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, name, room, container, sub_container, third_container, category,
			description, photo_uris, production_date, reminder_days, quantity, timestamp, expiration_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, room = excluded.room, container = excluded.container,
			sub_container = excluded.sub_container, third_container = excluded.third_container,
			category = excluded.category, description = excluded.description,
			photo_uris = excluded.photo_uris, production_date = excluded.production_date,
			reminder_days = excluded.reminder_days, quantity = excluded.quantity,
			timestamp = excluded.timestamp, expiration_date = excluded.expiration_date
	`, id, item.Name, item.Room, item.Container, item.SubContainer, item.ThirdContainer, item.Category,
		item.Description, domain.EncodePhotoURIs(item.PhotoURIs), item.ProductionDate, item.ReminderDays,
		item.Quantity, item.Timestamp, item.ExpirationDate)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("item timestamp %d already in use: %w", item.Timestamp, domain.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	newID := item.ID
	if newID == 0 {
		if newID, err = result.LastInsertId(); err != nil {
			return nil, fmt.Errorf("failed to get last insert id: %w", err)
		}
	}
	s.hub.Publish(watch.Items)

	return s.GetByID(ctx, newID)
}

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (s *ItemStore) List(ctx context.Context) ([]*domain.Item, error) {
	return queryList(ctx, s.db, "items", scanItem, `
		SELECT `+itemColumns+` FROM items ORDER BY id ASC
	`)
}

func (s *ItemStore) Observe(ctx context.Context) <-chan []*domain.Item {
	return observe(ctx, s.hub, watch.Items, s.List)
}

func (s *ItemStore) ListByRoom(ctx context.Context, room string) ([]*domain.Item, error) {
	return queryList(ctx, s.db, "items", scanItem, `
		SELECT `+itemColumns+` FROM items WHERE room = ? ORDER BY id ASC
	`, room)
}

// ListByLocation returns the items stored exactly at the given path. A nil
// sub or third container matches items not placed at that level.
func (s *ItemStore) ListByLocation(ctx context.Context, room, container string, sub, third *string) ([]*domain.Item, error) {
	return queryList(ctx, s.db, "items", scanItem, `
		SELECT `+itemColumns+` FROM items
		WHERE room = ? AND container = ? AND sub_container IS ? AND third_container IS ?
		ORDER BY id ASC
	`, room, container, sub, third)
}

func (s *ItemStore) ListByCategory(ctx context.Context, category string) ([]*domain.Item, error) {
	return queryList(ctx, s.db, "items", scanItem, `
		SELECT `+itemColumns+` FROM items WHERE category = ? ORDER BY id ASC
	`, category)
}

func (s *ItemStore) Search(ctx context.Context, query string) ([]*domain.Item, error) {
	// Case-insensitive search with wildcards
	pattern := "%" + strings.ToLower(query) + "%"

	return queryList(ctx, s.db, "items", scanItem, `
		SELECT `+itemColumns+` FROM items
		WHERE LOWER(name) LIKE ?
		ORDER BY name ASC
	`, pattern)
}

// ListExpiring returns items whose expiration date is set, still ahead of now
// and within the item's reminder window.
func (s *ItemStore) ListExpiring(ctx context.Context, now time.Time) ([]*domain.Item, error) {
	nowMs := now.UnixMilli()
	return queryList(ctx, s.db, "expiring items", scanItem, `
		SELECT `+itemColumns+` FROM items
		WHERE expiration_date IS NOT NULL
		  AND reminder_days IS NOT NULL
		  AND expiration_date > ?
		  AND expiration_date - reminder_days * 86400000 <= ?
		ORDER BY expiration_date ASC, id ASC
	`, nowMs, nowMs)
}

func (s *ItemStore) Update(ctx context.Context, item domain.Item) error {
	if err := updateItem(ctx, s.db, item); err != nil {
		return err
	}
	s.hub.Publish(watch.Items)
	return nil
}

// UpdateBatch rewrites every item in one transaction. If any item no longer
// exists nothing is written.
func (s *ItemStore) UpdateBatch(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin item batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range items {
		if err := updateItem(ctx, tx, item); err != nil {
			return fmt.Errorf("item %d: %w", item.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item batch: %w", err)
	}
	s.hub.Publish(watch.Items)
	return nil
}

func updateItem(ctx context.Context, db execer, item domain.Item) error {
	err := execOne(ctx, db, "update item", `
		UPDATE items SET name = ?, room = ?, container = ?, sub_container = ?, third_container = ?,
			category = ?, description = ?, photo_uris = ?, production_date = ?, reminder_days = ?,
			quantity = ?, timestamp = ?, expiration_date = ?
		WHERE id = ?
	`, item.Name, item.Room, item.Container, item.SubContainer, item.ThirdContainer,
		item.Category, item.Description, domain.EncodePhotoURIs(item.PhotoURIs), item.ProductionDate,
		item.ReminderDays, item.Quantity, item.Timestamp, item.ExpirationDate, item.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("item timestamp %d already in use: %w", item.Timestamp, domain.ErrConflict)
	}
	return err
}

func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	if err := execOne(ctx, s.db, "delete item", `
		DELETE FROM items WHERE id = ?
	`, id); err != nil {
		return err
	}
	s.hub.Publish(watch.Items)
	return nil
}

// DeleteByIDs removes every listed item in one transaction: either all
// existing ids are removed or none are. Ids that do not exist are ignored.
func (s *ItemStore) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin item delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	for start := 0; start < len(ids); start += deleteChunk {
		end := min(start+deleteChunk, len(ids))
		chunk := ids[start:end]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		n, err := exec(ctx, tx, "delete items", `DELETE FROM items WHERE id IN (`+placeholders+`)`, args...)
		if err != nil {
			return 0, err
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit item delete: %w", err)
	}
	if total > 0 {
		s.hub.Publish(watch.Items)
	}
	return total, nil
}

func (s *ItemStore) DeleteAll(ctx context.Context) (int64, error) {
	return s.bulk(ctx, "delete items", `DELETE FROM items`)
}

func (s *ItemStore) DeleteByRoom(ctx context.Context, room string) (int64, error) {
	return s.bulk(ctx, "delete items", `DELETE FROM items WHERE room = ?`, room)
}

func (s *ItemStore) DeleteByCategory(ctx context.Context, category string) (int64, error) {
	return s.bulk(ctx, "delete items", `DELETE FROM items WHERE category = ?`, category)
}

func (s *ItemStore) RenameRoom(ctx context.Context, oldRoom, newRoom string) (int64, error) {
	return s.bulk(ctx, "rename room of items", `
		UPDATE items SET room = ? WHERE room = ?
	`, newRoom, oldRoom)
}

func (s *ItemStore) RenameContainer(ctx context.Context, room, oldContainer, newContainer string) (int64, error) {
	return s.bulk(ctx, "rename container of items", `
		UPDATE items SET container = ? WHERE room = ? AND container = ?
	`, newContainer, room, oldContainer)
}

func (s *ItemStore) MoveContainer(ctx context.Context, room, container, newRoom string) (int64, error) {
	return s.bulk(ctx, "move items", `
		UPDATE items SET room = ? WHERE room = ? AND container = ?
	`, newRoom, room, container)
}

// ClearContainer unlinks items from a removed container. The items stay in
// their room with an empty container and no sub or third container.
func (s *ItemStore) ClearContainer(ctx context.Context, room, container string) (int64, error) {
	return s.bulk(ctx, "clear container of items", `
		UPDATE items SET container = '', sub_container = NULL, third_container = NULL
		WHERE room = ? AND container = ?
	`, room, container)
}

func (s *ItemStore) RenameSubContainer(ctx context.Context, room, container, oldSub, newSub string) (int64, error) {
	return s.bulk(ctx, "rename sub container of items", `
		UPDATE items SET sub_container = ?
		WHERE room = ? AND container = ? AND sub_container = ?
	`, newSub, room, container, oldSub)
}

func (s *ItemStore) ClearSubContainer(ctx context.Context, room, container, sub string) (int64, error) {
	return s.bulk(ctx, "clear sub container of items", `
		UPDATE items SET sub_container = NULL, third_container = NULL
		WHERE room = ? AND container = ? AND sub_container = ?
	`, room, container, sub)
}

func (s *ItemStore) RenameThirdContainer(ctx context.Context, room, container, sub, oldThird, newThird string) (int64, error) {
	return s.bulk(ctx, "rename third container of items", `
		UPDATE items SET third_container = ?
		WHERE room = ? AND container = ? AND sub_container = ? AND third_container = ?
	`, newThird, room, container, sub, oldThird)
}

func (s *ItemStore) ClearThirdContainer(ctx context.Context, room, container, sub, third string) (int64, error) {
	return s.bulk(ctx, "clear third container of items", `
		UPDATE items SET third_container = NULL
		WHERE room = ? AND container = ? AND sub_container = ? AND third_container = ?
	`, room, container, sub, third)
}

func (s *ItemStore) bulk(ctx context.Context, what, query string, args ...any) (int64, error) {
	n, err := exec(ctx, s.db, what, query, args...)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.hub.Publish(watch.Items)
	}
	return n, nil
}

func scanItem(row scanner) (*domain.Item, error) {
	var (
		item          domain.Item
		sub, third    sql.NullString
		photos        sql.NullString
		production    sql.NullInt64
		reminder, qty sql.NullInt64
		expiration    sql.NullInt64
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Room, &item.Container, &sub, &third, &item.Category,
		&item.Description, &photos, &production, &reminder, &qty, &item.Timestamp, &expiration); err != nil {
		return nil, err
	}
	item.SubContainer = nullableString(sub)
	item.ThirdContainer = nullableString(third)
	item.PhotoURIs = domain.DecodePhotoURIs(photos.String)
	item.ProductionDate = nullableInt64(production)
	item.ReminderDays = nullableInt(reminder)
	item.Quantity = nullableInt(qty)
	item.ExpirationDate = nullableInt64(expiration)
	return &item, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullableInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
