// Package cursor tracks "starting after" pagination tokens. The payment
// provider only pages forward, so going back requires replaying a
// client-held history of previously seen cursors.
package cursor

import (
	"encoding/base64"
	"encoding/json"
)

// History is an ordered stack of opaque page cursors. The zero value is the
// first page (no cursor).
type History struct {
	Cursors []string `json:"cursors"`
}

// Push records the cursor used to fetch the next page.
func (h *History) Push(cursor string) {
	h.Cursors = append(h.Cursors, cursor)
}

// Pop removes and returns the most recent cursor. Returns empty string when
// the history is exhausted, which maps back to the first page.
func (h *History) Pop() string {
	if len(h.Cursors) == 0 {
		return ""
	}
	last := h.Cursors[len(h.Cursors)-1]
	h.Cursors = h.Cursors[:len(h.Cursors)-1]
	return last
}

// Current returns the cursor for the page the client is on without
// modifying the history.
func (h *History) Current() string {
	if len(h.Cursors) == 0 {
		return ""
	}
	return h.Cursors[len(h.Cursors)-1]
}

// Encode serializes the history into an opaque URL-safe token.
func (h *History) Encode() (string, error) {
	raw, err := json.Marshal(h)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode restores a history from a token produced by Encode. An empty token
// yields an empty history.
func Decode(token string) (*History, error) {
	h := &History{}
	if token == "" {
		return h, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, h); err != nil {
		return nil, err
	}
	return h, nil
}
