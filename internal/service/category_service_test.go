package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/homeinv/internal/domain"
)

func TestCategoryServiceUpdate_ClearsDroppedFieldsForItsItemsOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	food := domain.Category{Name: "Food", NeedExpirationDate: true, NeedQuantity: true}
	_, err := env.categories.AddCategory(ctx, food)
	require.NoError(t, err)
	_, err = env.categories.AddCategory(ctx, domain.Category{Name: "Medicine", NeedExpirationDate: true})
	require.NoError(t, err)

	milk, err := env.items.AddItem(ctx, domain.Item{
		Name: "Milk", Room: "Kitchen", Category: "Food",
		ExpirationDate: ptr(int64(1_900_000_000_000)), Quantity: ptr(2),
	})
	require.NoError(t, err)
	aspirin, err := env.items.AddItem(ctx, domain.Item{
		Name: "Aspirin", Room: "Bathroom", Category: "Medicine",
		ExpirationDate: ptr(int64(1_900_000_000_000)),
	})
	require.NoError(t, err)

	updated := food
	updated.NeedExpirationDate = false
	require.NoError(t, env.categories.UpdateCategory(ctx, "Food", updated))

	got, err := env.items.GetItem(ctx, milk.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ExpirationDate)
	assert.Equal(t, ptr(2), got.Quantity)

	other, err := env.items.GetItem(ctx, aspirin.ID)
	require.NoError(t, err)
	assert.Equal(t, ptr(int64(1_900_000_000_000)), other.ExpirationDate)
}

func TestCategoryServiceUpdate_RenameRewritesItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.categories.AddCategory(ctx, domain.Category{Name: "Food"})
	require.NoError(t, err)
	item, err := env.items.AddItem(ctx, domain.Item{Name: "Bread", Room: "Kitchen", Category: "Food"})
	require.NoError(t, err)

	require.NoError(t, env.categories.UpdateCategory(ctx, "Food", domain.Category{
		Name: "Groceries", NeedReminder: true, ReminderPeriodDays: 5,
	}))

	got, err := env.items.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Category)
	assert.Equal(t, ptr(5), got.ReminderDays)

	old, err := env.categories.GetCategory(ctx, "Food")
	require.NoError(t, err)
	assert.Nil(t, old)
}

func TestCategoryServiceUpdate_Conflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"Food", "Tools"} {
		_, err := env.categories.AddCategory(ctx, domain.Category{Name: name})
		require.NoError(t, err)
	}

	err := env.categories.UpdateCategory(ctx, "Food", domain.Category{Name: "Tools"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCategoryServiceUpdate_Missing(t *testing.T) {
	env := newTestEnv(t)

	err := env.categories.UpdateCategory(context.Background(), "Nope", domain.Category{Name: "Other"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryServiceDelete_RemovesItsItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"Food", "Tools"} {
		_, err := env.categories.AddCategory(ctx, domain.Category{Name: name})
		require.NoError(t, err)
	}
	_, err := env.items.AddItem(ctx, domain.Item{Name: "Bread", Room: "Kitchen", Category: "Food"})
	require.NoError(t, err)
	hammer, err := env.items.AddItem(ctx, domain.Item{Name: "Hammer", Room: "Garage", Category: "Tools"})
	require.NoError(t, err)

	require.NoError(t, env.categories.DeleteCategory(ctx, "Food"))

	all, err := env.items.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, hammer.ID, all[0].ID)

	categories, err := env.categories.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Tools", categories[0].Name)
}
