package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/homeinv/internal/domain"
	"github.com/vbonduro/homeinv/internal/watch"
)

type RoomStore struct {
	db  *sql.DB
	hub *watch.Hub
}

func NewRoomStore(db *sql.DB, hub *watch.Hub) *RoomStore {
	return &RoomStore{db: db, hub: hub}
}

// Insert adds a room. A duplicate name is ignored and reported as
// inserted == false.
func (s *RoomStore) Insert(ctx context.Context, name string) (bool, error) {
	n, err := exec(ctx, s.db, "create room", `
		INSERT OR IGNORE INTO rooms (name) VALUES (?)
	`, name)
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.hub.Publish(watch.Rooms)
	}
	return n > 0, nil
}

// Import inserts a room as a new row, replacing any room with the same name.
func (s *RoomStore) Import(ctx context.Context, room domain.Room) error {
	if _, err := exec(ctx, s.db, "import room", `
		INSERT OR REPLACE INTO rooms (name) VALUES (?)
	`, room.Name); err != nil {
		return err
	}
	s.hub.Publish(watch.Rooms)
	return nil
}

func (s *RoomStore) GetByName(ctx context.Context, name string) (*domain.Room, error) {
	room := &domain.Room{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM rooms WHERE name = ?
	`, name).Scan(&room.ID, &room.Name)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

func (s *RoomStore) List(ctx context.Context) ([]*domain.Room, error) {
	return queryList(ctx, s.db, "rooms", scanRoom, `
		SELECT id, name FROM rooms ORDER BY id ASC
	`)
}

// Observe streams the room list after every write to the rooms table.
func (s *RoomStore) Observe(ctx context.Context) <-chan []*domain.Room {
	return observe(ctx, s.hub, watch.Rooms, s.List)
}

func (s *RoomStore) Rename(ctx context.Context, oldName, newName string) error {
	if err := execOne(ctx, s.db, "rename room", `
		UPDATE rooms SET name = ? WHERE name = ?
	`, newName, oldName); err != nil {
		return err
	}
	s.hub.Publish(watch.Rooms)
	return nil
}

func (s *RoomStore) Delete(ctx context.Context, name string) error {
	if err := execOne(ctx, s.db, "delete room", `
		DELETE FROM rooms WHERE name = ?
	`, name); err != nil {
		return err
	}
	s.hub.Publish(watch.Rooms)
	return nil
}

func scanRoom(row scanner) (*domain.Room, error) {
	room := &domain.Room{}
	if err := row.Scan(&room.ID, &room.Name); err != nil {
		return nil, err
	}
	return room, nil
}
