package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/homeinv/internal/domain"
)

const (
	manifestName = "data.json"
	imagesDir    = "images/"
)

// ErrArchiveFormat is returned when an archive has no readable data.json.
var ErrArchiveFormat = errors.New("invalid backup archive")

type manifest struct {
	Items           []itemRecord            `json:"items"`
	Rooms           []domain.Room           `json:"rooms"`
	Containers      []domain.Container      `json:"containers"`
	SubContainers   []domain.SubContainer   `json:"subContainers"`
	ThirdContainers []domain.ThirdContainer `json:"thirdContainers"`
	Categories      []domain.Category       `json:"categories"`
}

// archiveManifest is data.json as read. Items stay raw so that one malformed
// item row is skipped without losing the rest of the archive.
type archiveManifest struct {
	manifest
	Items []json.RawMessage `json:"items"`
}

// itemRecord is an item as written to data.json. On read it also accepts
// archives from before items had several photos: a "photoUri" string, or a
// "photoUris" string holding a single reference or an encoded list.
type itemRecord struct {
	domain.Item
}

func (r *itemRecord) UnmarshalJSON(data []byte) error {
	type plain domain.Item
	var aux struct {
		plain
		PhotoURIs json.RawMessage `json:"photoUris"`
		PhotoURI  *string         `json:"photoUri"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Item = domain.Item(aux.plain)

	photos, err := decodePhotoField(aux.PhotoURIs)
	if err != nil {
		return fmt.Errorf("item %q: %w", aux.Name, err)
	}
	if len(photos) == 0 && aux.PhotoURI != nil && *aux.PhotoURI != "" {
		photos = []string{*aux.PhotoURI}
	}
	r.PhotoURIs = photos
	return nil
}

func decodePhotoField(raw json.RawMessage) ([]string, error) {
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case trimmed == "" || trimmed == "null":
		return []string{}, nil
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return domain.DecodePhotoURIs(s), nil
	default:
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		if list == nil {
			list = []string{}
		}
		return list, nil
	}
}
