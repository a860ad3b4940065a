package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/homeinv/internal/domain"
)

func TestContainerStoreInsertAndGet(t *testing.T) {
	d := openTestDB(t)
	store := NewContainerStore(d, nil)
	ctx := context.Background()

	inserted, err := store.Insert(ctx, domain.Container{Room: "Bedroom", Name: "Closet", HasSubContainer: true})
	require.NoError(t, err)
	assert.True(t, inserted)

	c, err := store.Get(ctx, "Bedroom", "Closet")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.HasSubContainer)

	// Same name in another room is a different container.
	inserted, err = store.Insert(ctx, domain.Container{Room: "Office", Name: "Closet"})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.Insert(ctx, domain.Container{Room: "Bedroom", Name: "Closet"})
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestContainerStoreListByRoom(t *testing.T) {
	d := openTestDB(t)
	store := NewContainerStore(d, nil)
	ctx := context.Background()

	for _, c := range []domain.Container{
		{Room: "Kitchen", Name: "Drawer"},
		{Room: "Garage", Name: "Shelf"},
		{Room: "Kitchen", Name: "Cabinet"},
	} {
		_, err := store.Insert(ctx, c)
		require.NoError(t, err)
	}

	list, err := store.ListByRoom(ctx, "Kitchen")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Drawer", list[0].Name)
	assert.Equal(t, "Cabinet", list[1].Name)
}

func TestContainerStoreRenameRoomScoped(t *testing.T) {
	d := openTestDB(t)
	store := NewContainerStore(d, nil)
	ctx := context.Background()

	_, err := store.Insert(ctx, domain.Container{Room: "A", Name: "Box"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, domain.Container{Room: "AB", Name: "Box"})
	require.NoError(t, err)

	n, err := store.RenameRoom(ctx, "A", "C")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	untouched, err := store.Get(ctx, "AB", "Box")
	require.NoError(t, err)
	assert.NotNil(t, untouched)
}

func TestContainerStoreSetHasSubContainer(t *testing.T) {
	d := openTestDB(t)
	store := NewContainerStore(d, nil)
	ctx := context.Background()

	_, err := store.Insert(ctx, domain.Container{Room: "Bedroom", Name: "Closet"})
	require.NoError(t, err)

	require.NoError(t, store.SetHasSubContainer(ctx, "Bedroom", "Closet", true))

	c, err := store.Get(ctx, "Bedroom", "Closet")
	require.NoError(t, err)
	assert.True(t, c.HasSubContainer)

	err = store.SetHasSubContainer(ctx, "Bedroom", "Missing", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubContainerStoreScopedOperations(t *testing.T) {
	d := openTestDB(t)
	store := NewSubContainerStore(d, nil)
	ctx := context.Background()

	for _, sc := range []domain.SubContainer{
		{Room: "Bedroom", ContainerName: "Closet", Name: "TopShelf"},
		{Room: "Bedroom", ContainerName: "Closet", Name: "Bottom"},
		{Room: "Bedroom", ContainerName: "Dresser", Name: "TopShelf"},
	} {
		_, err := store.Insert(ctx, sc)
		require.NoError(t, err)
	}

	n, err := store.RenameContainer(ctx, "Bedroom", "Closet", "Wardrobe")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err := store.ListByContainer(ctx, "Bedroom", "Wardrobe")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	n, err = store.DeleteByContainer(ctx, "Bedroom", "Wardrobe")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	remaining, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Dresser", remaining[0].ContainerName)
}

func TestThirdContainerStoreScopedOperations(t *testing.T) {
	d := openTestDB(t)
	store := NewThirdContainerStore(d, nil)
	ctx := context.Background()

	for _, tc := range []domain.ThirdContainer{
		{Room: "Office", ContainerName: "Desk", SubContainerName: "Drawer", Name: "Tray"},
		{Room: "Office", ContainerName: "Desk", SubContainerName: "Drawer", Name: "Box"},
		{Room: "Office", ContainerName: "Desk", SubContainerName: "Shelf", Name: "Tray"},
	} {
		_, err := store.Insert(ctx, tc)
		require.NoError(t, err)
	}

	n, err := store.RenameSubContainer(ctx, "Office", "Desk", "Drawer", "TopDrawer")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	tc, err := store.Get(ctx, "Office", "Desk", "TopDrawer", "Tray")
	require.NoError(t, err)
	assert.NotNil(t, tc)

	require.NoError(t, store.Rename(ctx, "Office", "Desk", "TopDrawer", "Tray", "Organizer"))
	list, err := store.ListBySubContainer(ctx, "Office", "Desk", "TopDrawer")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Organizer", list[0].Name)

	n, err = store.DeleteByContainer(ctx, "Office", "Desk")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCategoryStoreUpdateAndDelete(t *testing.T) {
	d := openTestDB(t)
	store := NewCategoryStore(d, nil)
	ctx := context.Background()

	_, err := store.Insert(ctx, domain.Category{Name: "Food", NeedExpirationDate: true, NeedReminder: true, ReminderPeriodDays: 3})
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, "Food", domain.Category{Name: "Groceries", NeedQuantity: true}))

	old, err := store.GetByName(ctx, "Food")
	require.NoError(t, err)
	assert.Nil(t, old)

	c, err := store.GetByName(ctx, "Groceries")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.False(t, c.NeedExpirationDate)
	assert.True(t, c.NeedQuantity)

	require.NoError(t, store.Delete(ctx, "Groceries"))
	assert.ErrorIs(t, store.Delete(ctx, "Groceries"), domain.ErrNotFound)
}
