package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/homeinv/internal/domain"
)

// roomRepository is the subset of store.RoomStore that LocationService requires.
type roomRepository interface {
	Insert(ctx context.Context, name string) (bool, error)
	GetByName(ctx context.Context, name string) (*domain.Room, error)
	List(ctx context.Context) ([]*domain.Room, error)
	Observe(ctx context.Context) <-chan []*domain.Room
	Rename(ctx context.Context, oldName, newName string) error
	Delete(ctx context.Context, name string) error
}

// containerRepository is the subset of store.ContainerStore that LocationService requires.
type containerRepository interface {
	Insert(ctx context.Context, c domain.Container) (bool, error)
	Get(ctx context.Context, room, name string) (*domain.Container, error)
	List(ctx context.Context) ([]*domain.Container, error)
	ListByRoom(ctx context.Context, room string) ([]*domain.Container, error)
	ObserveByRoom(ctx context.Context, room string) <-chan []*domain.Container
	Rename(ctx context.Context, room, oldName, newName string) error
	MoveToRoom(ctx context.Context, room, name, newRoom string) error
	SetHasSubContainer(ctx context.Context, room, name string, has bool) error
	Delete(ctx context.Context, room, name string) error
	RenameRoom(ctx context.Context, oldRoom, newRoom string) (int64, error)
	DeleteByRoom(ctx context.Context, room string) (int64, error)
}

// subContainerRepository is the subset of store.SubContainerStore that LocationService requires.
type subContainerRepository interface {
	Insert(ctx context.Context, sc domain.SubContainer) (bool, error)
	Get(ctx context.Context, room, container, name string) (*domain.SubContainer, error)
	List(ctx context.Context) ([]*domain.SubContainer, error)
	ListByContainer(ctx context.Context, room, container string) ([]*domain.SubContainer, error)
	ObserveByContainer(ctx context.Context, room, container string) <-chan []*domain.SubContainer
	Rename(ctx context.Context, room, container, oldName, newName string) error
	SetHasThirdContainer(ctx context.Context, room, container, name string, has bool) error
	Delete(ctx context.Context, room, container, name string) error
	RenameRoom(ctx context.Context, oldRoom, newRoom string) (int64, error)
	RenameContainer(ctx context.Context, room, oldContainer, newContainer string) (int64, error)
	MoveContainer(ctx context.Context, room, container, newRoom string) (int64, error)
	DeleteByContainer(ctx context.Context, room, container string) (int64, error)
	DeleteByRoom(ctx context.Context, room string) (int64, error)
}

// thirdContainerRepository is the subset of store.ThirdContainerStore that LocationService requires.
type thirdContainerRepository interface {
	Insert(ctx context.Context, tc domain.ThirdContainer) (bool, error)
	Get(ctx context.Context, room, container, sub, name string) (*domain.ThirdContainer, error)
	List(ctx context.Context) ([]*domain.ThirdContainer, error)
	ListBySubContainer(ctx context.Context, room, container, sub string) ([]*domain.ThirdContainer, error)
	ObserveBySubContainer(ctx context.Context, room, container, sub string) <-chan []*domain.ThirdContainer
	Rename(ctx context.Context, room, container, sub, oldName, newName string) error
	Delete(ctx context.Context, room, container, sub, name string) error
	RenameRoom(ctx context.Context, oldRoom, newRoom string) (int64, error)
	RenameContainer(ctx context.Context, room, oldContainer, newContainer string) (int64, error)
	MoveContainer(ctx context.Context, room, container, newRoom string) (int64, error)
	RenameSubContainer(ctx context.Context, room, container, oldSub, newSub string) (int64, error)
	DeleteBySubContainer(ctx context.Context, room, container, sub string) (int64, error)
	DeleteByContainer(ctx context.Context, room, container string) (int64, error)
	DeleteByRoom(ctx context.Context, room string) (int64, error)
}

// itemPathRepository is the subset of store.ItemStore that rewrites item
// locations.
type itemPathRepository interface {
	DeleteByRoom(ctx context.Context, room string) (int64, error)
	RenameRoom(ctx context.Context, oldRoom, newRoom string) (int64, error)
	RenameContainer(ctx context.Context, room, oldContainer, newContainer string) (int64, error)
	MoveContainer(ctx context.Context, room, container, newRoom string) (int64, error)
	ClearContainer(ctx context.Context, room, container string) (int64, error)
	RenameSubContainer(ctx context.Context, room, container, oldSub, newSub string) (int64, error)
	ClearSubContainer(ctx context.Context, room, container, sub string) (int64, error)
	RenameThirdContainer(ctx context.Context, room, container, sub, oldThird, newThird string) (int64, error)
	ClearThirdContainer(ctx context.Context, room, container, sub, third string) (int64, error)
}

// LocationService keeps the room hierarchy and the items that reference it
// consistent. Every structural change touches the deepest level first and the
// items last.
type LocationService struct {
	rooms      roomRepository
	containers containerRepository
	subs       subContainerRepository
	thirds     thirdContainerRepository
	items      itemPathRepository
	logger     *slog.Logger
}

func NewLocationService(
	rooms roomRepository,
	containers containerRepository,
	subs subContainerRepository,
	thirds thirdContainerRepository,
	items itemPathRepository,
	logger *slog.Logger,
) *LocationService {
	return &LocationService{
		rooms:      rooms,
		containers: containers,
		subs:       subs,
		thirds:     thirds,
		items:      items,
		logger:     logger,
	}
}

// AddRoom creates a room. Adding an existing name is a no-op reported as
// created == false.
func (s *LocationService) AddRoom(ctx context.Context, name string) (bool, error) {
	if err := requireName("room", name); err != nil {
		return false, err
	}
	return s.rooms.Insert(ctx, name)
}

func (s *LocationService) AddContainer(ctx context.Context, c domain.Container) (bool, error) {
	if err := requireName("container", c.Name); err != nil {
		return false, err
	}
	if err := s.requireRoom(ctx, c.Room); err != nil {
		return false, err
	}
	return s.containers.Insert(ctx, c)
}

func (s *LocationService) AddSubContainer(ctx context.Context, sc domain.SubContainer) (bool, error) {
	if err := requireName("sub container", sc.Name); err != nil {
		return false, err
	}
	if err := s.requireContainer(ctx, sc.Room, sc.ContainerName); err != nil {
		return false, err
	}
	return s.subs.Insert(ctx, sc)
}

func (s *LocationService) AddThirdContainer(ctx context.Context, tc domain.ThirdContainer) (bool, error) {
	if err := requireName("third container", tc.Name); err != nil {
		return false, err
	}
	if err := s.requireSubContainer(ctx, tc.Room, tc.ContainerName, tc.SubContainerName); err != nil {
		return false, err
	}
	return s.thirds.Insert(ctx, tc)
}

func (s *LocationService) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	return s.rooms.List(ctx)
}

func (s *LocationService) ObserveRooms(ctx context.Context) <-chan []*domain.Room {
	return s.rooms.Observe(ctx)
}

// ListContainers returns the containers of room, or every container when
// room is empty.
func (s *LocationService) ListContainers(ctx context.Context, room string) ([]*domain.Container, error) {
	if room == "" {
		return s.containers.List(ctx)
	}
	return s.containers.ListByRoom(ctx, room)
}

func (s *LocationService) ObserveContainers(ctx context.Context, room string) <-chan []*domain.Container {
	return s.containers.ObserveByRoom(ctx, room)
}

func (s *LocationService) ListSubContainers(ctx context.Context, room, container string) ([]*domain.SubContainer, error) {
	if room == "" && container == "" {
		return s.subs.List(ctx)
	}
	return s.subs.ListByContainer(ctx, room, container)
}

func (s *LocationService) ObserveSubContainers(ctx context.Context, room, container string) <-chan []*domain.SubContainer {
	return s.subs.ObserveByContainer(ctx, room, container)
}

func (s *LocationService) ListThirdContainers(ctx context.Context, room, container, sub string) ([]*domain.ThirdContainer, error) {
	if room == "" && container == "" && sub == "" {
		return s.thirds.List(ctx)
	}
	return s.thirds.ListBySubContainer(ctx, room, container, sub)
}

func (s *LocationService) ObserveThirdContainers(ctx context.Context, room, container, sub string) <-chan []*domain.ThirdContainer {
	return s.thirds.ObserveBySubContainer(ctx, room, container, sub)
}

// RenameRoom moves every container, sub container, third container and item
// of oldName to newName.
func (s *LocationService) RenameRoom(ctx context.Context, oldName, newName string) error {
	if err := requireName("room", newName); err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	if err := s.requireRoom(ctx, oldName); err != nil {
		return err
	}
	existing, err := s.rooms.GetByName(ctx, newName)
	if err != nil {
		return fmt.Errorf("failed to check room: %w", err)
	}
	if existing != nil {
		return conflict("room", newName)
	}

	return runSteps(ctx, s.logger, "rename room", []any{"room", oldName, "new_room", newName}, []step{
		{"rename third containers", func(ctx context.Context) (int64, error) { return s.thirds.RenameRoom(ctx, oldName, newName) }},
		{"rename sub containers", func(ctx context.Context) (int64, error) { return s.subs.RenameRoom(ctx, oldName, newName) }},
		{"rename containers", func(ctx context.Context) (int64, error) { return s.containers.RenameRoom(ctx, oldName, newName) }},
		single("rename room row", func(ctx context.Context) error { return s.rooms.Rename(ctx, oldName, newName) }),
		{"rewrite items", func(ctx context.Context) (int64, error) { return s.items.RenameRoom(ctx, oldName, newName) }},
	})
}

// DeleteRoom removes the room together with everything stored in it,
// including its items. The room row goes last.
func (s *LocationService) DeleteRoom(ctx context.Context, name string) error {
	if err := s.requireRoom(ctx, name); err != nil {
		return err
	}

	return runSteps(ctx, s.logger, "delete room", []any{"room", name}, []step{
		{"delete third containers", func(ctx context.Context) (int64, error) { return s.thirds.DeleteByRoom(ctx, name) }},
		{"delete sub containers", func(ctx context.Context) (int64, error) { return s.subs.DeleteByRoom(ctx, name) }},
		{"delete containers", func(ctx context.Context) (int64, error) { return s.containers.DeleteByRoom(ctx, name) }},
		{"delete items", func(ctx context.Context) (int64, error) { return s.items.DeleteByRoom(ctx, name) }},
		single("delete room row", func(ctx context.Context) error { return s.rooms.Delete(ctx, name) }),
	})
}

func (s *LocationService) RenameContainer(ctx context.Context, room, oldName, newName string) error {
	if err := requireName("container", newName); err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	if err := s.requireContainer(ctx, room, oldName); err != nil {
		return err
	}
	if err := s.requireNoContainer(ctx, room, newName); err != nil {
		return err
	}

	return runSteps(ctx, s.logger, "rename container", []any{"room", room, "container", oldName, "new_container", newName}, []step{
		{"rename third containers", func(ctx context.Context) (int64, error) {
			return s.thirds.RenameContainer(ctx, room, oldName, newName)
		}},
		{"rename sub containers", func(ctx context.Context) (int64, error) {
			return s.subs.RenameContainer(ctx, room, oldName, newName)
		}},
		single("rename container row", func(ctx context.Context) error {
			return s.containers.Rename(ctx, room, oldName, newName)
		}),
		{"rewrite items", func(ctx context.Context) (int64, error) {
			return s.items.RenameContainer(ctx, room, oldName, newName)
		}},
	})
}

// MoveContainer re-parents a container into newRoom, carrying its sub
// containers, third containers and items with it.
func (s *LocationService) MoveContainer(ctx context.Context, room, name, newRoom string) error {
	if room == newRoom {
		return nil
	}
	if err := s.requireContainer(ctx, room, name); err != nil {
		return err
	}
	if err := s.requireRoom(ctx, newRoom); err != nil {
		return err
	}
	if err := s.requireNoContainer(ctx, newRoom, name); err != nil {
		return err
	}

	return runSteps(ctx, s.logger, "move container", []any{"room", room, "container", name, "new_room", newRoom}, []step{
		{"move third containers", func(ctx context.Context) (int64, error) { return s.thirds.MoveContainer(ctx, room, name, newRoom) }},
		{"move sub containers", func(ctx context.Context) (int64, error) { return s.subs.MoveContainer(ctx, room, name, newRoom) }},
		single("move container row", func(ctx context.Context) error { return s.containers.MoveToRoom(ctx, room, name, newRoom) }),
		{"rewrite items", func(ctx context.Context) (int64, error) { return s.items.MoveContainer(ctx, room, name, newRoom) }},
	})
}

// DeleteContainer removes the container and its sub and third containers.
// Its items stay in the room with their container cleared.
func (s *LocationService) DeleteContainer(ctx context.Context, room, name string) error {
	if err := s.requireContainer(ctx, room, name); err != nil {
		return err
	}

	return runSteps(ctx, s.logger, "delete container", []any{"room", room, "container", name}, []step{
		{"delete third containers", func(ctx context.Context) (int64, error) { return s.thirds.DeleteByContainer(ctx, room, name) }},
		{"delete sub containers", func(ctx context.Context) (int64, error) { return s.subs.DeleteByContainer(ctx, room, name) }},
		single("delete container row", func(ctx context.Context) error { return s.containers.Delete(ctx, room, name) }),
		{"clear items", func(ctx context.Context) (int64, error) { return s.items.ClearContainer(ctx, room, name) }},
	})
}

func (s *LocationService) RenameSubContainer(ctx context.Context, room, container, oldName, newName string) error {
	if err := requireName("sub container", newName); err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	if err := s.requireSubContainer(ctx, room, container, oldName); err != nil {
		return err
	}
	existing, err := s.subs.Get(ctx, room, container, newName)
	if err != nil {
		return fmt.Errorf("failed to check sub container: %w", err)
	}
	if existing != nil {
		return conflict("sub container", newName)
	}

	attrs := []any{"room", room, "container", container, "sub_container", oldName, "new_sub_container", newName}
	return runSteps(ctx, s.logger, "rename sub container", attrs, []step{
		{"rename third containers", func(ctx context.Context) (int64, error) {
			return s.thirds.RenameSubContainer(ctx, room, container, oldName, newName)
		}},
		single("rename sub container row", func(ctx context.Context) error {
			return s.subs.Rename(ctx, room, container, oldName, newName)
		}),
		{"rewrite items", func(ctx context.Context) (int64, error) {
			return s.items.RenameSubContainer(ctx, room, container, oldName, newName)
		}},
	})
}

// DeleteSubContainer removes the sub container and its third containers.
// Items keep their container and lose the sub and third container.
func (s *LocationService) DeleteSubContainer(ctx context.Context, room, container, name string) error {
	if err := s.requireSubContainer(ctx, room, container, name); err != nil {
		return err
	}

	attrs := []any{"room", room, "container", container, "sub_container", name}
	return runSteps(ctx, s.logger, "delete sub container", attrs, []step{
		{"delete third containers", func(ctx context.Context) (int64, error) {
			return s.thirds.DeleteBySubContainer(ctx, room, container, name)
		}},
		single("delete sub container row", func(ctx context.Context) error {
			return s.subs.Delete(ctx, room, container, name)
		}),
		{"clear items", func(ctx context.Context) (int64, error) {
			return s.items.ClearSubContainer(ctx, room, container, name)
		}},
	})
}

func (s *LocationService) RenameThirdContainer(ctx context.Context, room, container, sub, oldName, newName string) error {
	if err := requireName("third container", newName); err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	if err := s.requireThirdContainer(ctx, room, container, sub, oldName); err != nil {
		return err
	}
	existing, err := s.thirds.Get(ctx, room, container, sub, newName)
	if err != nil {
		return fmt.Errorf("failed to check third container: %w", err)
	}
	if existing != nil {
		return conflict("third container", newName)
	}

	attrs := []any{"room", room, "container", container, "sub_container", sub, "third_container", oldName, "new_third_container", newName}
	return runSteps(ctx, s.logger, "rename third container", attrs, []step{
		single("rename third container row", func(ctx context.Context) error {
			return s.thirds.Rename(ctx, room, container, sub, oldName, newName)
		}),
		{"rewrite items", func(ctx context.Context) (int64, error) {
			return s.items.RenameThirdContainer(ctx, room, container, sub, oldName, newName)
		}},
	})
}

func (s *LocationService) DeleteThirdContainer(ctx context.Context, room, container, sub, name string) error {
	if err := s.requireThirdContainer(ctx, room, container, sub, name); err != nil {
		return err
	}

	attrs := []any{"room", room, "container", container, "sub_container", sub, "third_container", name}
	return runSteps(ctx, s.logger, "delete third container", attrs, []step{
		single("delete third container row", func(ctx context.Context) error {
			return s.thirds.Delete(ctx, room, container, sub, name)
		}),
		{"clear items", func(ctx context.Context) (int64, error) {
			return s.items.ClearThirdContainer(ctx, room, container, sub, name)
		}},
	})
}

// SetHasSubContainer only flips the flag. Existing sub containers and item
// references are left alone.
func (s *LocationService) SetHasSubContainer(ctx context.Context, room, name string, has bool) error {
	return s.containers.SetHasSubContainer(ctx, room, name, has)
}

// SetHasThirdContainer only flips the flag.
func (s *LocationService) SetHasThirdContainer(ctx context.Context, room, container, name string, has bool) error {
	return s.subs.SetHasThirdContainer(ctx, room, container, name, has)
}

func (s *LocationService) requireRoom(ctx context.Context, name string) error {
	room, err := s.rooms.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return notFound("room", name)
	}
	return nil
}

func (s *LocationService) requireContainer(ctx context.Context, room, name string) error {
	c, err := s.containers.Get(ctx, room, name)
	if err != nil {
		return fmt.Errorf("failed to get container: %w", err)
	}
	if c == nil {
		return notFound("container", room+"/"+name)
	}
	return nil
}

func (s *LocationService) requireNoContainer(ctx context.Context, room, name string) error {
	c, err := s.containers.Get(ctx, room, name)
	if err != nil {
		return fmt.Errorf("failed to check container: %w", err)
	}
	if c != nil {
		return conflict("container", room+"/"+name)
	}
	return nil
}

func (s *LocationService) requireSubContainer(ctx context.Context, room, container, name string) error {
	sc, err := s.subs.Get(ctx, room, container, name)
	if err != nil {
		return fmt.Errorf("failed to get sub container: %w", err)
	}
	if sc == nil {
		return notFound("sub container", room+"/"+container+"/"+name)
	}
	return nil
}

func (s *LocationService) requireThirdContainer(ctx context.Context, room, container, sub, name string) error {
	tc, err := s.thirds.Get(ctx, room, container, sub, name)
	if err != nil {
		return fmt.Errorf("failed to get third container: %w", err)
	}
	if tc == nil {
		return notFound("third container", room+"/"+container+"/"+sub+"/"+name)
	}
	return nil
}
