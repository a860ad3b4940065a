package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/homeinv/internal/domain"
	"github.com/vbonduro/homeinv/internal/watch"
)

type ContainerStore struct {
	db  *sql.DB
	hub *watch.Hub
}

func NewContainerStore(db *sql.DB, hub *watch.Hub) *ContainerStore {
	return &ContainerStore{db: db, hub: hub}
}

const containerColumns = `id, room, name, has_sub_container`

func (s *ContainerStore) Insert(ctx context.Context, c domain.Container) (bool, error) {
	n, err := exec(ctx, s.db, "create container", `
		INSERT OR IGNORE INTO containers (room, name, has_sub_container) VALUES (?, ?, ?)
	`, c.Room, c.Name, c.HasSubContainer)
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.hub.Publish(watch.Containers)
	}
	return n > 0, nil
}

func (s *ContainerStore) Import(ctx context.Context, c domain.Container) error {
	if _, err := exec(ctx, s.db, "import container", `
		INSERT OR REPLACE INTO containers (room, name, has_sub_container) VALUES (?, ?, ?)
	`, c.Room, c.Name, c.HasSubContainer); err != nil {
		return err
	}
	s.hub.Publish(watch.Containers)
	return nil
}

func (s *ContainerStore) Get(ctx context.Context, room, name string) (*domain.Container, error) {
	c, err := scanContainer(s.db.QueryRowContext(ctx, `
		SELECT `+containerColumns+` FROM containers WHERE room = ? AND name = ?
	`, room, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get container: %w", err)
	}
	return c, nil
}

func (s *ContainerStore) List(ctx context.Context) ([]*domain.Container, error) {
	return queryList(ctx, s.db, "containers", scanContainer, `
		SELECT `+containerColumns+` FROM containers ORDER BY id ASC
	`)
}

func (s *ContainerStore) ListByRoom(ctx context.Context, room string) ([]*domain.Container, error) {
	return queryList(ctx, s.db, "containers", scanContainer, `
		SELECT `+containerColumns+` FROM containers WHERE room = ? ORDER BY id ASC
	`, room)
}

func (s *ContainerStore) ObserveByRoom(ctx context.Context, room string) <-chan []*domain.Container {
	return observe(ctx, s.hub, watch.Containers, func(ctx context.Context) ([]*domain.Container, error) {
		return s.ListByRoom(ctx, room)
	})
}

func (s *ContainerStore) Rename(ctx context.Context, room, oldName, newName string) error {
	return s.one(ctx, "rename container", `
		UPDATE containers SET name = ? WHERE room = ? AND name = ?
	`, newName, room, oldName)
}

func (s *ContainerStore) MoveToRoom(ctx context.Context, room, name, newRoom string) error {
	return s.one(ctx, "move container", `
		UPDATE containers SET room = ? WHERE room = ? AND name = ?
	`, newRoom, room, name)
}

func (s *ContainerStore) SetHasSubContainer(ctx context.Context, room, name string, has bool) error {
	return s.one(ctx, "update container", `
		UPDATE containers SET has_sub_container = ? WHERE room = ? AND name = ?
	`, has, room, name)
}

func (s *ContainerStore) Delete(ctx context.Context, room, name string) error {
	return s.one(ctx, "delete container", `
		DELETE FROM containers WHERE room = ? AND name = ?
	`, room, name)
}

func (s *ContainerStore) RenameRoom(ctx context.Context, oldRoom, newRoom string) (int64, error) {
	return s.bulk(ctx, "rename room of containers", `
		UPDATE containers SET room = ? WHERE room = ?
	`, newRoom, oldRoom)
}

func (s *ContainerStore) DeleteByRoom(ctx context.Context, room string) (int64, error) {
	return s.bulk(ctx, "delete containers", `
		DELETE FROM containers WHERE room = ?
	`, room)
}

func (s *ContainerStore) one(ctx context.Context, what, query string, args ...any) error {
	if err := execOne(ctx, s.db, what, query, args...); err != nil {
		return err
	}
	s.hub.Publish(watch.Containers)
	return nil
}

func (s *ContainerStore) bulk(ctx context.Context, what, query string, args ...any) (int64, error) {
	n, err := exec(ctx, s.db, what, query, args...)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.hub.Publish(watch.Containers)
	}
	return n, nil
}

func scanContainer(row scanner) (*domain.Container, error) {
	c := &domain.Container{}
	if err := row.Scan(&c.ID, &c.Room, &c.Name, &c.HasSubContainer); err != nil {
		return nil, err
	}
	return c, nil
}
