package backup

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const lockRetryInterval = 50 * time.Millisecond

// snapshot is everything read from the stores for one export.
type snapshot struct {
	manifest manifest
	// images maps archive entry name to the photo reference it is read from.
	images map[string]string
	// order keeps image entries in first-seen order.
	order []string
}

// Export writes the archive to w: data.json first, then the images. Photos
// that cannot be read are logged and left out of the archive and of the
// owning item's photo list.
func (c *Codec) Export(ctx context.Context, w io.Writer) (*ExportReport, error) {
	c.logger.Info("export started")
	report := &ExportReport{}

	snap, err := c.snapshot(ctx, report)
	if err != nil {
		return nil, err
	}

	zw := zip.NewWriter(w)
	if err := writeManifest(zw, &snap.manifest); err != nil {
		return nil, err
	}

	for _, name := range snap.order {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("export cancelled: %w", err)
		}
		ok, err := c.writeImage(ctx, zw, name, snap.images[name])
		if err != nil {
			return nil, err
		}
		if ok {
			report.Images++
		} else {
			report.SkippedImages++
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	c.logger.Info("export complete",
		"items", report.Items,
		"rooms", report.Rooms,
		"images", report.Images,
		"skipped_images", report.SkippedImages,
	)
	return report, nil
}

// ExportToFile writes the archive to dst. The archive is built in a temporary
// file next to dst and renamed into place only on success, so a failed or
// cancelled export never leaves a partial archive at dst. Concurrent exports
// to the same path are serialized with a lock file.
func (c *Codec) ExportToFile(ctx context.Context, dst string) (*ExportReport, error) {
	lock := flock.New(dst + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", dst, err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to lock %s", dst)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			c.logger.Error("failed to unlock export", "path", dst, "error", err)
		}
	}()

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary archive: %w", err)
	}
	tmpPath := tmp.Name()
	discard := func() {
		_ = tmp.Close()
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			c.logger.Error("failed to remove temporary archive", "path", tmpPath, "error", err)
		}
	}

	report, err := c.Export(ctx, tmp)
	if err != nil {
		discard()
		return nil, err
	}
	if err := tmp.Sync(); err != nil {
		discard()
		return nil, fmt.Errorf("failed to sync archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		discard()
		return nil, fmt.Errorf("failed to close archive: %w", err)
	}
	if err := ctx.Err(); err != nil {
		discard()
		return nil, fmt.Errorf("export cancelled: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		discard()
		return nil, fmt.Errorf("failed to move archive into place: %w", err)
	}
	return report, nil
}

func (c *Codec) snapshot(ctx context.Context, report *ExportReport) (*snapshot, error) {
	rooms, err := c.rooms.List(ctx)
	if err != nil {
		return nil, err
	}
	containers, err := c.containers.List(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := c.subs.List(ctx)
	if err != nil {
		return nil, err
	}
	thirds, err := c.thirds.List(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := c.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	items, err := c.items.List(ctx)
	if err != nil {
		return nil, err
	}

	snap := &snapshot{images: make(map[string]string)}
	m := &snap.manifest
	m.Rooms = deref(rooms)
	m.Containers = deref(containers)
	m.SubContainers = deref(subs)
	m.ThirdContainers = deref(thirds)
	m.Categories = deref(categories)

	names := make(map[string]string) // photo reference -> entry name
	m.Items = make([]itemRecord, 0, len(items))
	for _, item := range items {
		rec := itemRecord{Item: *item}
		photos := make([]string, 0, len(item.PhotoURIs))
		for _, ref := range item.PhotoURIs {
			name, ok := names[ref]
			if !ok {
				if !c.readable(ctx, ref) {
					c.logger.Warn("skipping unreadable photo", "item_id", item.ID, "photo", ref)
					report.SkippedImages++
					continue
				}
				name = entryName(ref, snap.images)
				names[ref] = name
				snap.images[name] = ref
				snap.order = append(snap.order, name)
			}
			photos = append(photos, imagesDir+name)
		}
		rec.PhotoURIs = photos
		m.Items = append(m.Items, rec)
	}

	report.Counts = Counts{
		Rooms:           len(m.Rooms),
		Containers:      len(m.Containers),
		SubContainers:   len(m.SubContainers),
		ThirdContainers: len(m.ThirdContainers),
		Categories:      len(m.Categories),
		Items:           len(m.Items),
	}
	return snap, nil
}

func (c *Codec) readable(ctx context.Context, ref string) bool {
	rc, _, err := c.photos.Get(ctx, ref)
	if err != nil {
		return false
	}
	_ = rc.Close()
	return true
}

// writeImage copies one photo into the archive. It reports false when the
// photo disappeared after the snapshot was taken.
func (c *Codec) writeImage(ctx context.Context, zw *zip.Writer, name, ref string) (bool, error) {
	rc, _, err := c.photos.Get(ctx, ref)
	if err != nil {
		c.logger.Warn("photo vanished during export", "photo", ref, "error", err)
		return false, nil
	}
	defer rc.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: imagesDir + name, Method: zip.Store})
	if err != nil {
		return false, fmt.Errorf("failed to create image entry: %w", err)
	}
	if _, err := io.Copy(w, rc); err != nil {
		return false, fmt.Errorf("failed to write image %s: %w", name, err)
	}
	return true, nil
}

func writeManifest(zw *zip.Writer, m *manifest) error {
	w, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", manifestName, err)
	}
	if err := json.NewEncoder(w).Encode(m); err != nil {
		return fmt.Errorf("failed to write %s: %w", manifestName, err)
	}
	return nil
}

// entryName derives the archive name for ref from its last path segment. A
// reference without a usable segment gets a random name, and a segment that
// is already taken gets a random prefix.
func entryName(ref string, taken map[string]string) string {
	base := path.Base(strings.TrimPrefix(filepath.ToSlash(ref), "file://"))
	if base == "" || base == "." || base == "/" {
		return uuid.NewString() + ".jpg"
	}
	if _, dup := taken[base]; !dup {
		return base
	}
	return uuid.NewString()[:8] + "_" + base
}

func deref[T any](rows []*T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	return out
}
