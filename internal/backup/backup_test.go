package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/homeinv/internal/db"
	"github.com/vbonduro/homeinv/internal/domain"
	"github.com/vbonduro/homeinv/internal/photostore/local"
	"github.com/vbonduro/homeinv/internal/store"
)

type testInventory struct {
	codec      *Codec
	rooms      *store.RoomStore
	containers *store.ContainerStore
	subs       *store.SubContainerStore
	thirds     *store.ThirdContainerStore
	categories *store.CategoryStore
	items      *store.ItemStore
	photos     *local.LocalPhotoStore
}

func newTestInventory(t *testing.T) *testInventory {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	photos, err := local.NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	inv := &testInventory{
		rooms:      store.NewRoomStore(d, nil),
		containers: store.NewContainerStore(d, nil),
		subs:       store.NewSubContainerStore(d, nil),
		thirds:     store.NewThirdContainerStore(d, nil),
		categories: store.NewCategoryStore(d, nil),
		items:      store.NewItemStore(d, nil),
		photos:     photos,
	}
	inv.codec = NewCodec(inv.rooms, inv.containers, inv.subs, inv.thirds, inv.categories, inv.items, photos, slog.Default())
	return inv
}

func ptr[T any](v T) *T { return &v }

func writePhoto(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0644))
	return p
}

func seed(t *testing.T, inv *testInventory) {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	otherDir := t.TempDir()

	_, err := inv.rooms.Insert(ctx, "Bedroom")
	require.NoError(t, err)
	_, err = inv.rooms.Insert(ctx, "Kitchen")
	require.NoError(t, err)
	_, err = inv.containers.Insert(ctx, domain.Container{Room: "Bedroom", Name: "Closet", HasSubContainer: true})
	require.NoError(t, err)
	_, err = inv.subs.Insert(ctx, domain.SubContainer{Room: "Bedroom", ContainerName: "Closet", Name: "TopShelf", HasThirdContainer: true})
	require.NoError(t, err)
	_, err = inv.thirds.Insert(ctx, domain.ThirdContainer{Room: "Bedroom", ContainerName: "Closet", SubContainerName: "TopShelf", Name: "Box"})
	require.NoError(t, err)
	_, err = inv.categories.Insert(ctx, domain.Category{Name: "Food", NeedExpirationDate: true, NeedReminder: true, ReminderPeriodDays: 3})
	require.NoError(t, err)

	shirt := writePhoto(t, dir, "shirt.jpg", []byte("shirt-bytes"))
	// Same file name in another directory must not collide in the archive.
	shirtBack := writePhoto(t, otherDir, "shirt.jpg", []byte("shirt-back-bytes"))
	milk := writePhoto(t, dir, "milk.png", []byte("milk-bytes"))

	_, err = inv.items.Insert(ctx, domain.Item{
		Name: "Shirt", Room: "Bedroom", Container: "Closet",
		SubContainer: ptr("TopShelf"), ThirdContainer: ptr("Box"),
		Category: "Clothes", Description: "blue", Timestamp: 1,
		PhotoURIs: []string{shirt, "file://" + shirtBack},
	})
	require.NoError(t, err)
	_, err = inv.items.Insert(ctx, domain.Item{
		Name: "Milk", Room: "Kitchen", Category: "Food", Timestamp: 2,
		ExpirationDate: ptr(int64(1_900_000_000_000)), ReminderDays: ptr(3), Quantity: ptr(2),
		PhotoURIs: []string{milk},
	})
	require.NoError(t, err)
}

func readRef(t *testing.T, inv *testInventory, ref string) []byte {
	t.Helper()
	rc, _, err := inv.photos.Get(context.Background(), ref)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestInventory(t)
	seed(t, src)

	var buf bytes.Buffer
	exported, err := src.codec.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, Counts{Rooms: 2, Containers: 1, SubContainers: 1, ThirdContainers: 1, Categories: 1, Items: 2}, exported.Counts)
	assert.Equal(t, 3, exported.Images)
	assert.Zero(t, exported.SkippedImages)

	dst := newTestInventory(t)
	imported, err := dst.codec.Import(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, exported.Counts, imported.Counts)
	assert.Equal(t, 3, imported.Images)
	assert.Zero(t, imported.FailedRows)

	srcItems, err := src.items.List(ctx)
	require.NoError(t, err)
	dstItems, err := dst.items.List(ctx)
	require.NoError(t, err)
	require.Len(t, dstItems, len(srcItems))

	for i := range srcItems {
		want, got := *srcItems[i], *dstItems[i]
		require.Len(t, got.PhotoURIs, len(want.PhotoURIs))
		for j := range want.PhotoURIs {
			assert.Equal(t, readRef(t, src, want.PhotoURIs[j]), readRef(t, dst, got.PhotoURIs[j]))
		}
		want.ID, got.ID = 0, 0
		want.PhotoURIs, got.PhotoURIs = nil, nil
		assert.Equal(t, want, got)
	}

	thirds, err := dst.thirds.List(ctx)
	require.NoError(t, err)
	require.Len(t, thirds, 1)
	assert.Equal(t, "TopShelf", thirds[0].SubContainerName)

	categories, err := dst.categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, 3, categories[0].ReminderPeriodDays)
}

func TestExport_WritesManifestFirst(t *testing.T) {
	src := newTestInventory(t)
	seed(t, src)

	var buf bytes.Buffer
	_, err := src.codec.Export(context.Background(), &buf)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 4)
	assert.Equal(t, "data.json", zr.File[0].Name)

	names := map[string]bool{}
	for _, f := range zr.File[1:] {
		names[f.Name] = true
	}
	assert.True(t, names["images/shirt.jpg"])
	assert.True(t, names["images/milk.png"])
}

func TestExport_SkipsUnreadablePhoto(t *testing.T) {
	ctx := context.Background()
	src := newTestInventory(t)
	kept := writePhoto(t, t.TempDir(), "kept.jpg", []byte("kept"))

	_, err := src.items.Insert(ctx, domain.Item{
		Name: "Lamp", Room: "Office", Timestamp: 1,
		PhotoURIs: []string{filepath.Join(t.TempDir(), "gone.jpg"), kept},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	report, err := src.codec.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Images)
	assert.Equal(t, 1, report.SkippedImages)

	dst := newTestInventory(t)
	_, err = dst.codec.Import(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	items, err := dst.items.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, items[0].PhotoURIs, 1)
	assert.Equal(t, []byte("kept"), readRef(t, dst, items[0].PhotoURIs[0]))
}

func buildArchive(t *testing.T, files map[string]string) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestImport_LegacyPhotoFields(t *testing.T) {
	ctx := context.Background()
	archive := buildArchive(t, map[string]string{
		"data.json": `{
			"rooms": [{"id": 9, "name": "Garage"}],
			"items": [
				{"id": 4, "name": "Saw", "room": "Garage", "container": "", "category": "Tools", "timestamp": 10,
				 "photoUri": "images/saw.jpg"},
				{"id": 5, "name": "Drill", "room": "Garage", "container": "", "category": "Tools", "timestamp": 11,
				 "photoUris": "images/drill.jpg"},
				{"id": 6, "name": "Tape", "room": "Garage", "container": "", "category": "Tools", "timestamp": 12,
				 "photoUris": "[\"images/tape.jpg\",\"images/lost.jpg\"]"}
			]
		}`,
		"images/saw.jpg":   "saw",
		"images/drill.jpg": "drill",
		"images/tape.jpg":  "tape",
	})

	inv := newTestInventory(t)
	report, err := inv.codec.Import(ctx, archive, archive.Size())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rooms)
	assert.Equal(t, 3, report.Items)
	assert.Equal(t, 3, report.Images)
	assert.Equal(t, 1, report.MissingImages)

	items, err := inv.items.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	want := map[string]string{"Saw": "saw", "Drill": "drill", "Tape": "tape"}
	for _, item := range items {
		assert.NotEqual(t, int64(4), item.ID)
		require.Len(t, item.PhotoURIs, 1, item.Name)
		assert.True(t, filepath.IsAbs(item.PhotoURIs[0]))
		assert.Equal(t, []byte(want[item.Name]), readRef(t, inv, item.PhotoURIs[0]))
	}
}

func TestImport_ItemsWithoutTimestampAreAllKept(t *testing.T) {
	ctx := context.Background()
	archive := buildArchive(t, map[string]string{
		"data.json": `{
			"rooms": [{"name": "Garage"}],
			"items": [
				{"name": "A", "room": "Garage", "category": "Tools", "photoUri": ""},
				{"name": "B", "room": "Garage", "category": "Tools", "photoUri": ""},
				{"name": "C", "room": "Garage", "category": "Tools", "photoUri": ""}
			]
		}`,
	})

	inv := newTestInventory(t)
	report, err := inv.codec.Import(ctx, archive, archive.Size())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Items)
	assert.Zero(t, report.FailedRows)

	items, err := inv.items.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	seen := make(map[int64]bool)
	for _, item := range items {
		assert.NotZero(t, item.Timestamp)
		assert.False(t, seen[item.Timestamp], "timestamp %d reused", item.Timestamp)
		seen[item.Timestamp] = true
	}
}

func TestImport_TimestampInUseKeepsBothItems(t *testing.T) {
	ctx := context.Background()
	inv := newTestInventory(t)
	_, err := inv.items.Insert(ctx, domain.Item{Name: "Passport", Room: "Office", Timestamp: 1000})
	require.NoError(t, err)

	archive := buildArchive(t, map[string]string{
		"data.json": `{
			"items": [
				{"name": "Socks", "room": "Bedroom", "timestamp": 1000},
				{"name": "Scarf", "room": "Bedroom", "timestamp": 1000}
			]
		}`,
	})
	report, err := inv.codec.Import(ctx, archive, archive.Size())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Items)

	items, err := inv.items.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
		if item.Name == "Passport" {
			assert.Equal(t, int64(1000), item.Timestamp)
		} else {
			assert.NotEqual(t, int64(1000), item.Timestamp)
		}
	}
	assert.ElementsMatch(t, []string{"Passport", "Socks", "Scarf"}, names)

	// Importing the same archive again adds the items a second time.
	report, err = inv.codec.Import(ctx, archive, archive.Size())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Items)
	items, err = inv.items.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestImport_MalformedItemRowIsSkipped(t *testing.T) {
	ctx := context.Background()
	archive := buildArchive(t, map[string]string{
		"data.json": `{
			"rooms": [{"name": "Garage"}],
			"items": [
				{"name": "Saw", "room": "Garage", "timestamp": 1},
				{"name": "Broken", "room": "Garage", "timestamp": 2, "photoUris": 5},
				{"room": "Garage", "timestamp": 3},
				{"name": "Drill", "room": "Garage", "timestamp": 4}
			]
		}`,
	})

	inv := newTestInventory(t)
	report, err := inv.codec.Import(ctx, archive, archive.Size())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rooms)
	assert.Equal(t, 2, report.Items)
	assert.Equal(t, 2, report.FailedRows)

	items, err := inv.items.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Saw", items[0].Name)
	assert.Equal(t, "Drill", items[1].Name)
}

func TestImport_MissingManifest(t *testing.T) {
	archive := buildArchive(t, map[string]string{"images/a.jpg": "a"})
	inv := newTestInventory(t)

	_, err := inv.codec.Import(context.Background(), archive, archive.Size())
	assert.ErrorIs(t, err, ErrArchiveFormat)
}

func TestImport_UnparsableManifest(t *testing.T) {
	archive := buildArchive(t, map[string]string{"data.json": "{not json"})
	inv := newTestInventory(t)

	_, err := inv.codec.Import(context.Background(), archive, archive.Size())
	assert.ErrorIs(t, err, ErrArchiveFormat)
}

func TestImport_NotAZip(t *testing.T) {
	inv := newTestInventory(t)
	r := bytes.NewReader([]byte("plain text"))

	_, err := inv.codec.Import(context.Background(), r, r.Size())
	assert.ErrorIs(t, err, ErrArchiveFormat)
}

func TestExportToFile_ImportFile(t *testing.T) {
	ctx := context.Background()
	src := newTestInventory(t)
	seed(t, src)
	dst := filepath.Join(t.TempDir(), "inventory.zip")

	_, err := src.codec.ExportToFile(ctx, dst)
	require.NoError(t, err)

	restored := newTestInventory(t)
	report, err := restored.codec.ImportFile(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Items)
}

func TestExportToFile_CancelledLeavesNoArchive(t *testing.T) {
	src := newTestInventory(t)
	seed(t, src)
	dir := t.TempDir()
	dst := filepath.Join(dir, "inventory.zip")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.codec.ExportToFile(ctx, dst)
	require.Error(t, err)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
	leftovers, err := filepath.Glob(filepath.Join(dir, "inventory.zip.*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestImport_CancelledStopsEarly(t *testing.T) {
	src := newTestInventory(t)
	seed(t, src)
	var buf bytes.Buffer
	_, err := src.codec.Export(context.Background(), &buf)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dst := newTestInventory(t)
	_, err = dst.codec.Import(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert.ErrorIs(t, err, context.Canceled)

	rooms, err := dst.rooms.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestEntryName(t *testing.T) {
	taken := map[string]string{"a.jpg": "/x/a.jpg"}

	assert.Equal(t, "b.jpg", entryName("/photos/b.jpg", taken))
	assert.Equal(t, "c.jpg", entryName("file:///photos/c.jpg", taken))

	renamed := entryName("/y/a.jpg", taken)
	assert.NotEqual(t, "a.jpg", renamed)
	assert.Contains(t, renamed, "_a.jpg")
}
