package domain

import (
	"encoding/json"
	"strings"
)

// DecodePhotoURIs reads a stored photo column. A JSON array is returned as is,
// an empty value or JSON null yields an empty list and any other value is
// treated as a legacy single photo reference.
func DecodePhotoURIs(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return []string{}
	}
	if uris, ok := parsePhotoList(trimmed); ok {
		return uris
	}
	return []string{raw}
}

// EncodePhotoURIs is the inverse of DecodePhotoURIs. Empty references are
// dropped.
func EncodePhotoURIs(uris []string) string {
	clean := make([]string, 0, len(uris))
	for _, u := range uris {
		if u != "" {
			clean = append(clean, u)
		}
	}
	data, err := json.Marshal(clean)
	if err != nil {
		// A []string always marshals.
		return "[]"
	}
	return string(data)
}

// IsPhotoList reports whether raw already holds the list encoding.
func IsPhotoList(raw string) bool {
	_, ok := parsePhotoList(strings.TrimSpace(raw))
	return ok
}

func parsePhotoList(s string) ([]string, bool) {
	if !strings.HasPrefix(s, "[") {
		return nil, false
	}
	var uris []string
	if err := json.Unmarshal([]byte(s), &uris); err != nil {
		return nil, false
	}
	if uris == nil {
		uris = []string{}
	}
	return uris, true
}
