package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/homeinv/internal/domain"
	"github.com/vbonduro/homeinv/internal/watch"
)

type ThirdContainerStore struct {
	db  *sql.DB
	hub *watch.Hub
}

func NewThirdContainerStore(db *sql.DB, hub *watch.Hub) *ThirdContainerStore {
	return &ThirdContainerStore{db: db, hub: hub}
}

const thirdContainerColumns = `id, room, container_name, sub_container_name, name`

func (s *ThirdContainerStore) Insert(ctx context.Context, tc domain.ThirdContainer) (bool, error) {
	n, err := exec(ctx, s.db, "create third container", `
		INSERT OR IGNORE INTO third_containers (room, container_name, sub_container_name, name)
		VALUES (?, ?, ?, ?)
	`, tc.Room, tc.ContainerName, tc.SubContainerName, tc.Name)
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.hub.Publish(watch.ThirdContainers)
	}
	return n > 0, nil
}

func (s *ThirdContainerStore) Import(ctx context.Context, tc domain.ThirdContainer) error {
	if _, err := exec(ctx, s.db, "import third container", `
		INSERT OR REPLACE INTO third_containers (room, container_name, sub_container_name, name)
		VALUES (?, ?, ?, ?)
	`, tc.Room, tc.ContainerName, tc.SubContainerName, tc.Name); err != nil {
		return err
	}
	s.hub.Publish(watch.ThirdContainers)
	return nil
}

func (s *ThirdContainerStore) Get(ctx context.Context, room, container, sub, name string) (*domain.ThirdContainer, error) {
	tc, err := scanThirdContainer(s.db.QueryRowContext(ctx, `
		SELECT `+thirdContainerColumns+` FROM third_containers
		WHERE room = ? AND container_name = ? AND sub_container_name = ? AND name = ?
	`, room, container, sub, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get third container: %w", err)
	}
	return tc, nil
}

func (s *ThirdContainerStore) List(ctx context.Context) ([]*domain.ThirdContainer, error) {
	return queryList(ctx, s.db, "third containers", scanThirdContainer, `
		SELECT `+thirdContainerColumns+` FROM third_containers ORDER BY id ASC
	`)
}

func (s *ThirdContainerStore) ListBySubContainer(ctx context.Context, room, container, sub string) ([]*domain.ThirdContainer, error) {
	return queryList(ctx, s.db, "third containers", scanThirdContainer, `
		SELECT `+thirdContainerColumns+` FROM third_containers
		WHERE room = ? AND container_name = ? AND sub_container_name = ? ORDER BY id ASC
	`, room, container, sub)
}

func (s *ThirdContainerStore) ObserveBySubContainer(ctx context.Context, room, container, sub string) <-chan []*domain.ThirdContainer {
	return observe(ctx, s.hub, watch.ThirdContainers, func(ctx context.Context) ([]*domain.ThirdContainer, error) {
		return s.ListBySubContainer(ctx, room, container, sub)
	})
}

func (s *ThirdContainerStore) Rename(ctx context.Context, room, container, sub, oldName, newName string) error {
	return s.one(ctx, "rename third container", `
		UPDATE third_containers SET name = ?
		WHERE room = ? AND container_name = ? AND sub_container_name = ? AND name = ?
	`, newName, room, container, sub, oldName)
}

func (s *ThirdContainerStore) Delete(ctx context.Context, room, container, sub, name string) error {
	return s.one(ctx, "delete third container", `
		DELETE FROM third_containers
		WHERE room = ? AND container_name = ? AND sub_container_name = ? AND name = ?
	`, room, container, sub, name)
}

func (s *ThirdContainerStore) RenameRoom(ctx context.Context, oldRoom, newRoom string) (int64, error) {
	return s.bulk(ctx, "rename room of third containers", `
		UPDATE third_containers SET room = ? WHERE room = ?
	`, newRoom, oldRoom)
}

func (s *ThirdContainerStore) RenameContainer(ctx context.Context, room, oldContainer, newContainer string) (int64, error) {
	return s.bulk(ctx, "rename container of third containers", `
		UPDATE third_containers SET container_name = ? WHERE room = ? AND container_name = ?
	`, newContainer, room, oldContainer)
}

func (s *ThirdContainerStore) MoveContainer(ctx context.Context, room, container, newRoom string) (int64, error) {
	return s.bulk(ctx, "move third containers", `
		UPDATE third_containers SET room = ? WHERE room = ? AND container_name = ?
	`, newRoom, room, container)
}

func (s *ThirdContainerStore) RenameSubContainer(ctx context.Context, room, container, oldSub, newSub string) (int64, error) {
	return s.bulk(ctx, "rename sub container of third containers", `
		UPDATE third_containers SET sub_container_name = ?
		WHERE room = ? AND container_name = ? AND sub_container_name = ?
	`, newSub, room, container, oldSub)
}

func (s *ThirdContainerStore) DeleteBySubContainer(ctx context.Context, room, container, sub string) (int64, error) {
	return s.bulk(ctx, "delete third containers", `
		DELETE FROM third_containers WHERE room = ? AND container_name = ? AND sub_container_name = ?
	`, room, container, sub)
}

func (s *ThirdContainerStore) DeleteByContainer(ctx context.Context, room, container string) (int64, error) {
	return s.bulk(ctx, "delete third containers", `
		DELETE FROM third_containers WHERE room = ? AND container_name = ?
	`, room, container)
}

func (s *ThirdContainerStore) DeleteByRoom(ctx context.Context, room string) (int64, error) {
	return s.bulk(ctx, "delete third containers", `
		DELETE FROM third_containers WHERE room = ?
	`, room)
}

func (s *ThirdContainerStore) one(ctx context.Context, what, query string, args ...any) error {
	if err := execOne(ctx, s.db, what, query, args...); err != nil {
		return err
	}
	s.hub.Publish(watch.ThirdContainers)
	return nil
}

func (s *ThirdContainerStore) bulk(ctx context.Context, what, query string, args ...any) (int64, error) {
	n, err := exec(ctx, s.db, what, query, args...)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.hub.Publish(watch.ThirdContainers)
	}
	return n, nil
}

func scanThirdContainer(row scanner) (*domain.ThirdContainer, error) {
	tc := &domain.ThirdContainer{}
	if err := row.Scan(&tc.ID, &tc.Room, &tc.ContainerName, &tc.SubContainerName, &tc.Name); err != nil {
		return nil, err
	}
	return tc, nil
}
