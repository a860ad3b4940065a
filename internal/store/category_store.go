package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/homeinv/internal/domain"
	"github.com/vbonduro/homeinv/internal/watch"
)

type CategoryStore struct {
	db  *sql.DB
	hub *watch.Hub
}

func NewCategoryStore(db *sql.DB, hub *watch.Hub) *CategoryStore {
	return &CategoryStore{db: db, hub: hub}
}

const categoryColumns = `id, category_name, need_production_date, need_expiration_date,
	need_reminder, reminder_period_days, need_quantity`

func (s *CategoryStore) Insert(ctx context.Context, c domain.Category) (bool, error) {
	n, err := exec(ctx, s.db, "create category", `
		INSERT OR IGNORE INTO categories (category_name, need_production_date, need_expiration_date,
			need_reminder, reminder_period_days, need_quantity)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.Name, c.NeedProductionDate, c.NeedExpirationDate, c.NeedReminder, c.ReminderPeriodDays, c.NeedQuantity)
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.hub.Publish(watch.Categories)
	}
	return n > 0, nil
}

func (s *CategoryStore) Import(ctx context.Context, c domain.Category) error {
	if _, err := exec(ctx, s.db, "import category", `
		INSERT OR REPLACE INTO categories (category_name, need_production_date, need_expiration_date,
			need_reminder, reminder_period_days, need_quantity)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.Name, c.NeedProductionDate, c.NeedExpirationDate, c.NeedReminder, c.ReminderPeriodDays, c.NeedQuantity); err != nil {
		return err
	}
	s.hub.Publish(watch.Categories)
	return nil
}

func (s *CategoryStore) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+` FROM categories WHERE category_name = ?
	`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (s *CategoryStore) List(ctx context.Context) ([]*domain.Category, error) {
	return queryList(ctx, s.db, "categories", scanCategory, `
		SELECT `+categoryColumns+` FROM categories ORDER BY id ASC
	`)
}

func (s *CategoryStore) Observe(ctx context.Context) <-chan []*domain.Category {
	return observe(ctx, s.hub, watch.Categories, s.List)
}

// Update rewrites the category currently named oldName with c, including its
// name.
func (s *CategoryStore) Update(ctx context.Context, oldName string, c domain.Category) error {
	if err := execOne(ctx, s.db, "update category", `
		UPDATE categories SET category_name = ?, need_production_date = ?, need_expiration_date = ?,
			need_reminder = ?, reminder_period_days = ?, need_quantity = ?
		WHERE category_name = ?
	`, c.Name, c.NeedProductionDate, c.NeedExpirationDate, c.NeedReminder, c.ReminderPeriodDays, c.NeedQuantity, oldName); err != nil {
		return err
	}
	s.hub.Publish(watch.Categories)
	return nil
}

func (s *CategoryStore) Delete(ctx context.Context, name string) error {
	if err := execOne(ctx, s.db, "delete category", `
		DELETE FROM categories WHERE category_name = ?
	`, name); err != nil {
		return err
	}
	s.hub.Publish(watch.Categories)
	return nil
}

func scanCategory(row scanner) (*domain.Category, error) {
	c := &domain.Category{}
	if err := row.Scan(&c.ID, &c.Name, &c.NeedProductionDate, &c.NeedExpirationDate,
		&c.NeedReminder, &c.ReminderPeriodDays, &c.NeedQuantity); err != nil {
		return nil, err
	}
	return c, nil
}
