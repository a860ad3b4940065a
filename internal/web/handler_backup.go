package web

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const maxArchiveSize = 2 << 30 // 2 GB

// handleExport streams a backup archive of the whole inventory.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := fmt.Sprintf("homeinv-%s.zip", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	report, err := s.codec.Export(r.Context(), w)
	if err != nil {
		// Headers are gone by now; the client sees a truncated archive.
		s.logger.Error("export failed", "error", err)
		return
	}
	s.logger.Info("export served",
		"items", report.Items,
		"images", report.Images,
		"skipped_images", report.SkippedImages,
	)
}

// handleImport restores an archive sent as the request body. The body is
// spooled to a temporary file first since the zip reader needs random access.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	tmp, err := os.CreateTemp("", "homeinv-import-*.zip")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer func() {
		closeWithLog(tmp, "import spool", s.logger)
		if err := os.Remove(tmp.Name()); err != nil {
			s.logger.Warn("failed to remove import spool", "path", tmp.Name(), "error", err)
		}
	}()

	size, err := io.Copy(tmp, http.MaxBytesReader(w, r.Body, maxArchiveSize))
	if err != nil {
		badRequest(w, "failed to read archive")
		return
	}

	report, err := s.codec.Import(r.Context(), tmp, size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
