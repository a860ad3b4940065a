package web

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vbonduro/homeinv/internal/domain"
)

const maxPhotoSize = 50 * 1024 * 1024 // 50 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniffing table
// (and therefore the stdlib) has no WebP signature. The value is the file
// extension stored photos get.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if _, ok := allowedImageTypes[mime]; ok {
		return mime, true
	}
	return "", false
}

// photoFileName keeps the uploaded base name but always uses the extension of
// the detected format.
func photoFileName(uploaded, mimeType string) string {
	stem := strings.TrimSuffix(filepath.Base(uploaded), filepath.Ext(uploaded))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "photo"
	}
	return stem + allowedImageTypes[mimeType]
}

// handleUploadPhoto stores the multipart "image" field and appends it to the
// item's photo list. The first photo becomes the thumbnail.
func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseID(r)
	if err != nil {
		badRequest(w, "invalid item id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		badRequest(w, "failed to parse form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		badRequest(w, "image file required")
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		badRequest(w, "unsupported image format")
		return
	}

	ctx := r.Context()
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(item.PhotoURIs) >= domain.MaxPhotos {
		badRequest(w, "item already has the maximum number of photos")
		return
	}

	ref, err := s.photoStore.Save(ctx, photoFileName(header.Filename, mimeType), bytes.NewReader(imageData))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	item.PhotoURIs = append(item.PhotoURIs, ref)
	updated, err := s.items.UpdateItem(ctx, *item)
	if err != nil {
		if derr := s.photoStore.Delete(context.WithoutCancel(ctx), ref); derr != nil {
			s.logger.Warn("failed to remove orphaned photo", "item_id", itemID, "photo", ref, "error", derr)
		}
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("photo added", "item_id", itemID, "photo", ref)
	writeJSON(w, http.StatusCreated, updated)
}

// handleGetPhoto serves the item's photo at the given index.
func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(pathParam(r, "index"))
	if err != nil || index < 0 {
		badRequest(w, "invalid photo index")
		return
	}
	s.servePhoto(w, r, func(item *domain.Item) string {
		if index >= len(item.PhotoURIs) {
			return ""
		}
		return item.PhotoURIs[index]
	})
}

// handleGetThumbnail serves the item's first photo.
func (s *Server) handleGetThumbnail(w http.ResponseWriter, r *http.Request) {
	s.servePhoto(w, r, (*domain.Item).Thumbnail)
}

// servePhoto writes the photo pick selects from the item in the path. An
// empty reference is a 404.
func (s *Server) servePhoto(w http.ResponseWriter, r *http.Request, pick func(*domain.Item) string) {
	itemID, err := parseID(r)
	if err != nil {
		badRequest(w, "invalid item id")
		return
	}

	item, err := s.items.GetItem(r.Context(), itemID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ref := pick(item)
	if ref == "" {
		http.NotFound(w, r)
		return
	}

	reader, mimeType, err := s.photoStore.Get(r.Context(), ref)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "item_id", itemID, "error", err)
	}
}
