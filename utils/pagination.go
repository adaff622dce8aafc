package utils

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Cursor is the opaque feed-pagination state. Recency feeds use
// (CreatedUnix, LastID); the trending feed adds Likes so the keyset stays
// stable under the engagement ordering. Callers must treat the encoded token
// as opaque and pass it back unmodified.
type Cursor struct {
	Likes       int64 `json:"likes,omitempty"`
	CreatedUnix int64 `json:"created_unix"`
	LastID      uint  `json:"last_id"`
}

// EncodeCursor converts a Cursor into a Base64 token.
func EncodeCursor(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// DecodeCursor parses a Base64 token. Empty token means first page.
func DecodeCursor(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}
	return c, nil
}
