package client

import (
	"context"
	"net/http"
	"net/url"
)

// ListResponse is one page of a list operation.
type ListResponse struct {
	Data      []map[string]any `json:"data"`
	PageToken string           `json:"pageToken,omitempty"`
	Meta      struct {
		TotalCount int64 `json:"totalCount"`
		Limit      int   `json:"limit"`
		Offset     int   `json:"offset"`
	} `json:"meta"`
}

// tokenCompatible are the parameters the server accepts next to a page token.
// The token replays filters and sort key but not these.
var tokenCompatible = []string{"limit", "expand", "expandReferenceNames"}

// FetchAllPages lists path and follows pageToken until the last page. The
// server rejects a token combined with filters, so follow-up requests carry
// only the token, the page size and the expansion options.
func FetchAllPages(ctx context.Context, c *Client, path string, query url.Values) ([]map[string]any, error) {
	var items []map[string]any
	q := query
	for {
		var page ListResponse
		if err := c.DoJSON(ctx, http.MethodGet, path, q, nil, &page); err != nil {
			return nil, err
		}
		items = append(items, page.Data...)
		if page.PageToken == "" {
			return items, nil
		}
		q = url.Values{"pageToken": {page.PageToken}}
		for _, name := range tokenCompatible {
			if vals := query[name]; len(vals) > 0 {
				q[name] = vals
			}
		}
	}
}
