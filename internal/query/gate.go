package query

import (
	"sort"
	"strings"

	"ss12000-mock/internal/domain"
)

// SortKeyParam is the sort parameter name; page tokens carry it alongside
// the filters.
const SortKeyParam = "sortkey"

// Window is the validated query shape of a list request.
type Window struct {
	Params  Values
	SortKey string
	Offset  int
	Limit   int
}

// Gate enforces that a page token is never combined with filters, meta
// filters, a sort key or an offset, then resolves the effective window.
// With a token, filters and sort key are replayed from the token.
func Gate(resource string, params Values, sortKey, pageToken string, limit, offset int) (Window, error) {
	if limit < 0 {
		return Window{}, domain.ErrValidation("limit must be non-negative")
	}
	page := domain.PageRequest{Limit: limit}

	if pageToken == "" {
		if offset < 0 {
			return Window{}, domain.ErrValidation("offset must be non-negative")
		}
		return Window{Params: params, SortKey: sortKey, Offset: offset, Limit: page.EffectiveLimit()}, nil
	}

	var conflicting []string
	for name := range params {
		conflicting = append(conflicting, name)
	}
	if sortKey != "" {
		conflicting = append(conflicting, SortKeyParam)
	}
	if offset != 0 {
		conflicting = append(conflicting, "offset")
	}
	if len(conflicting) > 0 {
		sort.Strings(conflicting)
		return Window{}, domain.ErrValidation("pageToken cannot be combined with %s", strings.Join(conflicting, ", "))
	}

	cursor, err := domain.DecodePageToken(pageToken)
	if err != nil {
		return Window{}, err
	}
	if cursor.Resource != resource {
		return Window{}, domain.ErrValidation("pageToken was issued for %s, not %s", cursor.Resource, resource)
	}
	replayed := Values{}
	for k, v := range cursor.Params {
		if k != SortKeyParam {
			replayed[k] = v
		}
	}
	return Window{
		Params:  replayed,
		SortKey: cursor.Params.Get(SortKeyParam),
		Offset:  cursor.Offset,
		Limit:   page.EffectiveLimit(),
	}, nil
}

// NextToken returns the token for the page following w, or "" at the end.
func (w Window) NextToken(resource string, total int64) string {
	params := w.Params.URLValues()
	if w.SortKey != "" {
		params.Set(SortKeyParam, w.SortKey)
	}
	return domain.NextPageToken(resource, params, w.Offset, w.Limit, total)
}
