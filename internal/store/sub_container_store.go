package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/homeinv/internal/domain"
	"github.com/vbonduro/homeinv/internal/watch"
)

type SubContainerStore struct {
	db  *sql.DB
	hub *watch.Hub
}

func NewSubContainerStore(db *sql.DB, hub *watch.Hub) *SubContainerStore {
	return &SubContainerStore{db: db, hub: hub}
}

const subContainerColumns = `id, room, container_name, name, has_third_container`

func (s *SubContainerStore) Insert(ctx context.Context, sc domain.SubContainer) (bool, error) {
	n, err := exec(ctx, s.db, "create sub container", `
		INSERT OR IGNORE INTO sub_containers (room, container_name, name, has_third_container)
		VALUES (?, ?, ?, ?)
	`, sc.Room, sc.ContainerName, sc.Name, sc.HasThirdContainer)
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.hub.Publish(watch.SubContainers)
	}
	return n > 0, nil
}

func (s *SubContainerStore) Import(ctx context.Context, sc domain.SubContainer) error {
	if _, err := exec(ctx, s.db, "import sub container", `
		INSERT OR REPLACE INTO sub_containers (room, container_name, name, has_third_container)
		VALUES (?, ?, ?, ?)
	`, sc.Room, sc.ContainerName, sc.Name, sc.HasThirdContainer); err != nil {
		return err
	}
	s.hub.Publish(watch.SubContainers)
	return nil
}

func (s *SubContainerStore) Get(ctx context.Context, room, container, name string) (*domain.SubContainer, error) {
	sc, err := scanSubContainer(s.db.QueryRowContext(ctx, `
		SELECT `+subContainerColumns+` FROM sub_containers
		WHERE room = ? AND container_name = ? AND name = ?
	`, room, container, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sub container: %w", err)
	}
	return sc, nil
}

func (s *SubContainerStore) List(ctx context.Context) ([]*domain.SubContainer, error) {
	return queryList(ctx, s.db, "sub containers", scanSubContainer, `
		SELECT `+subContainerColumns+` FROM sub_containers ORDER BY id ASC
	`)
}

func (s *SubContainerStore) ListByContainer(ctx context.Context, room, container string) ([]*domain.SubContainer, error) {
	return queryList(ctx, s.db, "sub containers", scanSubContainer, `
		SELECT `+subContainerColumns+` FROM sub_containers
		WHERE room = ? AND container_name = ? ORDER BY id ASC
	`, room, container)
}

func (s *SubContainerStore) ObserveByContainer(ctx context.Context, room, container string) <-chan []*domain.SubContainer {
	return observe(ctx, s.hub, watch.SubContainers, func(ctx context.Context) ([]*domain.SubContainer, error) {
		return s.ListByContainer(ctx, room, container)
	})
}

func (s *SubContainerStore) Rename(ctx context.Context, room, container, oldName, newName string) error {
	return s.one(ctx, "rename sub container", `
		UPDATE sub_containers SET name = ?
		WHERE room = ? AND container_name = ? AND name = ?
	`, newName, room, container, oldName)
}

func (s *SubContainerStore) SetHasThirdContainer(ctx context.Context, room, container, name string, has bool) error {
	return s.one(ctx, "update sub container", `
		UPDATE sub_containers SET has_third_container = ?
		WHERE room = ? AND container_name = ? AND name = ?
	`, has, room, container, name)
}

func (s *SubContainerStore) Delete(ctx context.Context, room, container, name string) error {
	return s.one(ctx, "delete sub container", `
		DELETE FROM sub_containers WHERE room = ? AND container_name = ? AND name = ?
	`, room, container, name)
}

func (s *SubContainerStore) RenameRoom(ctx context.Context, oldRoom, newRoom string) (int64, error) {
	return s.bulk(ctx, "rename room of sub containers", `
		UPDATE sub_containers SET room = ? WHERE room = ?
	`, newRoom, oldRoom)
}

func (s *SubContainerStore) RenameContainer(ctx context.Context, room, oldContainer, newContainer string) (int64, error) {
	return s.bulk(ctx, "rename container of sub containers", `
		UPDATE sub_containers SET container_name = ? WHERE room = ? AND container_name = ?
	`, newContainer, room, oldContainer)
}

func (s *SubContainerStore) MoveContainer(ctx context.Context, room, container, newRoom string) (int64, error) {
	return s.bulk(ctx, "move sub containers", `
		UPDATE sub_containers SET room = ? WHERE room = ? AND container_name = ?
	`, newRoom, room, container)
}

func (s *SubContainerStore) DeleteByContainer(ctx context.Context, room, container string) (int64, error) {
	return s.bulk(ctx, "delete sub containers", `
		DELETE FROM sub_containers WHERE room = ? AND container_name = ?
	`, room, container)
}

func (s *SubContainerStore) DeleteByRoom(ctx context.Context, room string) (int64, error) {
	return s.bulk(ctx, "delete sub containers", `
		DELETE FROM sub_containers WHERE room = ?
	`, room)
}

func (s *SubContainerStore) one(ctx context.Context, what, query string, args ...any) error {
	if err := execOne(ctx, s.db, what, query, args...); err != nil {
		return err
	}
	s.hub.Publish(watch.SubContainers)
	return nil
}

func (s *SubContainerStore) bulk(ctx context.Context, what, query string, args ...any) (int64, error) {
	n, err := exec(ctx, s.db, what, query, args...)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.hub.Publish(watch.SubContainers)
	}
	return n, nil
}

func scanSubContainer(row scanner) (*domain.SubContainer, error) {
	sc := &domain.SubContainer{}
	if err := row.Scan(&sc.ID, &sc.Room, &sc.ContainerName, &sc.Name, &sc.HasThirdContainer); err != nil {
		return nil, err
	}
	return sc, nil
}
