package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
)

// DefaultLimit is the page size when none is specified.
const DefaultLimit = 100

// MaxLimit is the maximum allowed page size.
const MaxLimit = 1000

// PageRequest holds the windowing parameters for a list operation.
type PageRequest struct {
	Limit  int
	Offset int
}

// EffectiveLimit returns the page size, defaulted and clamped to [1, MaxLimit].
func (p PageRequest) EffectiveLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}
	if p.Limit > MaxLimit {
		return MaxLimit
	}
	return p.Limit
}

// PageCursor is the state carried by an opaque page token. A token replays
// the filters and sort key of the request that produced it, so callers may
// not combine it with any of their own.
type PageCursor struct {
	Resource string     `json:"r"`
	Params   url.Values `json:"p,omitempty"`
	Offset   int        `json:"o"`
}

// EncodePageToken creates an opaque page token from a cursor.
func EncodePageToken(c PageCursor) string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodePageToken parses a token produced by EncodePageToken.
func DecodePageToken(token string) (PageCursor, error) {
	var c PageCursor
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return c, ErrValidation("malformed pageToken")
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, ErrValidation("malformed pageToken")
	}
	if c.Offset < 0 {
		return c, ErrValidation("malformed pageToken")
	}
	return c, nil
}

// NextPageToken returns the token for the page after [offset, offset+limit),
// or the empty string when the window reached the end of the result.
func NextPageToken(resource string, params url.Values, offset, limit int, total int64) string {
	next := offset + limit
	if int64(next) >= total {
		return ""
	}
	return EncodePageToken(PageCursor{Resource: resource, Params: params, Offset: next})
}

// String is used in log lines.
func (c PageCursor) String() string {
	return fmt.Sprintf("%s@%d", c.Resource, c.Offset)
}
