package service

import (
	"context"
	"fmt"
	"errors"
	"log/slog"
	"time"

	"github.com/vbonduro/homeinv/internal/domain"
)

// itemRepository is the subset of store.ItemStore that ItemService requires.
type itemRepository interface {
	Insert(ctx context.Context, item domain.Item) (*domain.Item, error)
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	List(ctx context.Context) ([]*domain.Item, error)
	Observe(ctx context.Context) <-chan []*domain.Item
	ListByRoom(ctx context.Context, room string) ([]*domain.Item, error)
	ListByLocation(ctx context.Context, room, container string, sub, third *string) ([]*domain.Item, error)
	ListByCategory(ctx context.Context, category string) ([]*domain.Item, error)
	Search(ctx context.Context, query string) ([]*domain.Item, error)
	ListExpiring(ctx context.Context, now time.Time) ([]*domain.Item, error)
	Update(ctx context.Context, item domain.Item) error
	UpdateBatch(ctx context.Context, items []domain.Item) error
	Delete(ctx context.Context, id int64) error
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type ItemService struct {
	items  itemRepository
	logger *slog.Logger
	now    func() time.Time
	stamps domain.Stamper
}

func NewItemService(items itemRepository, logger *slog.Logger) *ItemService {
	return &ItemService{items: items, logger: logger, now: time.Now}
}

// maxStampAttempts bounds how often AddItem draws a new timestamp when the
// one it generated is already taken.
const maxStampAttempts = 5

// AddItem stores a new item. A zero Timestamp is set to the current time. A
// caller supplied Timestamp that another item already has is rejected with
// domain.ErrConflict; existing items are never replaced.
func (s *ItemService) AddItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}
	item.ID = 0
	generated := item.Timestamp == 0

	var (
		created *domain.Item
		err     error
	)
	for attempt := 0; attempt < maxStampAttempts; attempt++ {
		if generated {
			item.Timestamp = s.nextTimestamp()
		}
		created, err = s.items.Insert(ctx, item)
		if !generated || !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	s.logger.Debug("item added", "item_id", created.ID, "room", created.Room, "container", created.Container)
	return created, nil
}

func (s *ItemService) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	return item, nil
}

func (s *ItemService) UpdateItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return s.items.GetByID(ctx, item.ID)
}

// UpdateItems rewrites all items together or none of them.
func (s *ItemService) UpdateItems(ctx context.Context, items []domain.Item) error {
	for _, item := range items {
		if err := validateItem(item); err != nil {
			return err
		}
	}
	if err := s.items.UpdateBatch(ctx, items); err != nil {
		return fmt.Errorf("failed to update items: %w", err)
	}
	return nil
}

func (s *ItemService) DeleteItem(ctx context.Context, id int64) error {
	return s.items.Delete(ctx, id)
}

// DeleteItems removes the listed items atomically. Ids that do not exist are
// skipped.
func (s *ItemService) DeleteItems(ctx context.Context, ids []int64) (int64, error) {
	n, err := s.items.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.logger.Info("items deleted", "requested", len(ids), "deleted", n)
	return n, nil
}

func (s *ItemService) DeleteAllItems(ctx context.Context) (int64, error) {
	n, err := s.items.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("all items deleted", "deleted", n)
	return n, nil
}

func (s *ItemService) ListItems(ctx context.Context) ([]*domain.Item, error) {
	return s.items.List(ctx)
}

func (s *ItemService) ObserveItems(ctx context.Context) <-chan []*domain.Item {
	return s.items.Observe(ctx)
}

func (s *ItemService) ListItemsInRoom(ctx context.Context, room string) ([]*domain.Item, error) {
	return s.items.ListByRoom(ctx, room)
}

// ListItemsAt returns the items stored at exactly this location. A nil sub or
// third container matches items with none.
func (s *ItemService) ListItemsAt(ctx context.Context, room, container string, sub, third *string) ([]*domain.Item, error) {
	return s.items.ListByLocation(ctx, room, container, sub, third)
}

func (s *ItemService) ListItemsByCategory(ctx context.Context, category string) ([]*domain.Item, error) {
	return s.items.ListByCategory(ctx, category)
}

func (s *ItemService) SearchItems(ctx context.Context, query string) ([]*domain.Item, error) {
	return s.items.Search(ctx, query)
}

// ListExpiring returns the items whose reminder window has opened and whose
// expiration date has not passed yet.
func (s *ItemService) ListExpiring(ctx context.Context) ([]*domain.Item, error) {
	return s.items.ListExpiring(ctx, s.now())
}

// nextTimestamp returns the current time in Unix milliseconds. Timestamps are
// unique per item, so calls within the same millisecond get consecutive values.
func (s *ItemService) nextTimestamp() int64 {
	return s.stamps.Next(s.now())
}

func validateItem(item domain.Item) error {
	if err := requireName("item", item.Name); err != nil {
		return err
	}
	if len(item.PhotoURIs) > domain.MaxPhotos {
		return fmt.Errorf("item has %d photos, at most %d allowed: %w", len(item.PhotoURIs), domain.MaxPhotos, domain.ErrInvalid)
	}
	return nil
}
