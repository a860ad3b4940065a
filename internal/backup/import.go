package backup

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/vbonduro/homeinv/internal/domain"
)

// maxStampAttempts bounds how often an imported item draws a new timestamp
// when the one it has is already taken.
const maxStampAttempts = 16

// Import restores an archive on top of the current inventory. Rows are
// inserted parents first with fresh ids; a row that cannot be decoded or
// fails to insert is logged, counted in FailedRows and skipped. Items are
// always added: an item without a timestamp, or whose timestamp is already
// held by another item, is given a new one. Photos are copied into the photo
// store and items are pointed at the copies. A photo missing from the archive
// is dropped from its item.
//
// Import stops when ctx is cancelled. Rows inserted up to that point are kept.
func (c *Codec) Import(ctx context.Context, r io.ReaderAt, size int64) (*ImportReport, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveFormat, err)
	}

	raw, images, err := readArchive(zr)
	if err != nil {
		return nil, err
	}
	c.logger.Info("import started",
		"rooms", len(raw.Rooms),
		"containers", len(raw.Containers),
		"items", len(raw.Items),
		"images", len(images),
	)

	report := &ImportReport{}
	m := &raw.manifest
	m.Items = c.decodeItems(raw.Items, report)
	restored, err := c.restoreImages(ctx, m, images, report)
	if err != nil {
		return report, err
	}

	for _, room := range m.Rooms {
		if err := c.importRow(ctx, report, &report.Rooms, "room", room.Name, func() error {
			return c.rooms.Import(ctx, domain.Room{Name: room.Name})
		}); err != nil {
			return report, err
		}
	}
	for _, ct := range m.Containers {
		ct.ID = 0
		if err := c.importRow(ctx, report, &report.Containers, "container", ct.Name, func() error {
			return c.containers.Import(ctx, ct)
		}); err != nil {
			return report, err
		}
	}
	for _, sc := range m.SubContainers {
		sc.ID = 0
		if err := c.importRow(ctx, report, &report.SubContainers, "sub container", sc.Name, func() error {
			return c.subs.Import(ctx, sc)
		}); err != nil {
			return report, err
		}
	}
	for _, tc := range m.ThirdContainers {
		tc.ID = 0
		if err := c.importRow(ctx, report, &report.ThirdContainers, "third container", tc.Name, func() error {
			return c.thirds.Import(ctx, tc)
		}); err != nil {
			return report, err
		}
	}
	for _, cat := range m.Categories {
		cat.ID = 0
		if err := c.importRow(ctx, report, &report.Categories, "category", cat.Name, func() error {
			return c.categories.Import(ctx, cat)
		}); err != nil {
			return report, err
		}
	}
	for _, rec := range m.Items {
		item := rec.Item
		item.ID = 0
		item.PhotoURIs = rewritePhotos(item.PhotoURIs, restored)
		if err := c.importRow(ctx, report, &report.Items, "item", item.Name, func() error {
			return c.insertItem(ctx, item)
		}); err != nil {
			return report, err
		}
	}

	c.logger.Info("import complete",
		"rooms", report.Rooms,
		"containers", report.Containers,
		"sub_containers", report.SubContainers,
		"third_containers", report.ThirdContainers,
		"categories", report.Categories,
		"items", report.Items,
		"images", report.Images,
		"missing_images", report.MissingImages,
		"failed_rows", report.FailedRows,
	)
	return report, nil
}

// ImportFile restores the archive at src.
func (c *Codec) ImportFile(ctx context.Context, src string) (*ImportReport, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}
	return c.Import(ctx, f, info.Size())
}

// decodeItems decodes each archived item on its own. Rows that do not decode
// or have no name are counted as failed.
func (c *Codec) decodeItems(raw []json.RawMessage, report *ImportReport) []itemRecord {
	records := make([]itemRecord, 0, len(raw))
	for i, data := range raw {
		var rec itemRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			c.logger.Error("failed to decode item row", "index", i, "error", err)
			report.FailedRows++
			continue
		}
		if strings.TrimSpace(rec.Name) == "" {
			c.logger.Error("item row has no name", "index", i)
			report.FailedRows++
			continue
		}
		records = append(records, rec)
	}
	return records
}

// insertItem adds an archived item as a new row.
func (c *Codec) insertItem(ctx context.Context, item domain.Item) error {
	if item.Timestamp == 0 {
		item.Timestamp = c.stamps.Next(time.Now())
	}
	for attempt := 1; ; attempt++ {
		_, err := c.items.Insert(ctx, item)
		if !errors.Is(err, domain.ErrConflict) || attempt == maxStampAttempts {
			return err
		}
		item.Timestamp = c.stamps.Next(time.Now())
	}
}

// importRow inserts one row, counting it on success and as failed otherwise.
// Only cancellation is returned as an error.
func (c *Codec) importRow(ctx context.Context, report *ImportReport, count *int, kind, name string, insert func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("import cancelled: %w", err)
	}
	if err := insert(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("import cancelled: %w", ctx.Err())
		}
		c.logger.Error("failed to import row", "kind", kind, "name", name, "error", err)
		report.FailedRows++
		return nil
	}
	*count++
	return nil
}

// restoreImages copies every image referenced by an item into the photo
// store and returns the archive path to stored reference mapping.
func (c *Codec) restoreImages(ctx context.Context, m *manifest, images map[string]*zip.File, report *ImportReport) (map[string]string, error) {
	restored := make(map[string]string)
	for _, rec := range m.Items {
		for _, ref := range rec.PhotoURIs {
			if _, done := restored[ref]; done {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("import cancelled: %w", err)
			}
			entry, ok := images[entryKey(ref)]
			if !ok {
				c.logger.Warn("photo missing from archive", "item", rec.Name, "photo", ref)
				report.MissingImages++
				restored[ref] = ""
				continue
			}
			stored, err := c.saveImage(ctx, entry)
			if err != nil {
				c.logger.Warn("failed to restore photo", "item", rec.Name, "photo", ref, "error", err)
				report.MissingImages++
				restored[ref] = ""
				continue
			}
			restored[ref] = stored
			report.Images++
		}
	}
	return restored, nil
}

func (c *Codec) saveImage(ctx context.Context, entry *zip.File) (string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return c.photos.Save(ctx, path.Base(entry.Name), rc)
}

func readArchive(zr *zip.Reader) (*archiveManifest, map[string]*zip.File, error) {
	var data *zip.File
	images := make(map[string]*zip.File)
	for _, f := range zr.File {
		switch {
		case f.Name == manifestName:
			data = f
		case strings.HasPrefix(f.Name, imagesDir) && !f.FileInfo().IsDir():
			images[strings.TrimPrefix(f.Name, imagesDir)] = f
		}
	}
	if data == nil {
		return nil, nil, fmt.Errorf("%w: %s not found", ErrArchiveFormat, manifestName)
	}

	rc, err := data.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrArchiveFormat, err)
	}
	defer rc.Close()

	m := &archiveManifest{}
	if err := json.NewDecoder(rc).Decode(m); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to parse %s: %v", ErrArchiveFormat, manifestName, err)
	}
	return m, images, nil
}

// entryKey maps an item photo reference to the image entry it names.
// References written by other tools may be bare file names.
func entryKey(ref string) string {
	if strings.HasPrefix(ref, imagesDir) {
		return strings.TrimPrefix(ref, imagesDir)
	}
	return path.Base(ref)
}

func rewritePhotos(refs []string, restored map[string]string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if stored := restored[ref]; stored != "" {
			out = append(out, stored)
		}
	}
	return out
}
