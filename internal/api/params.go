package api

import (
	"net/url"
	"slices"
	"strings"

	"github.com/oapi-codegen/runtime"

	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/service/endpoint"
	"ss12000-mock/internal/service/expand"
)

// listParams are the query parameters every list operation shares. Filter
// parameters stay in the raw query and are picked up per resource.
type listParams struct {
	Limit                *int
	Offset               *int
	SortKey              *string
	PageToken            *string
	Expand               *[]string
	ExpandReferenceNames *bool
}

func bindListParams(q url.Values) (*listParams, error) {
	var p listParams
	if err := bind("limit", q, &p.Limit); err != nil {
		return nil, err
	}
	if err := bind("offset", q, &p.Offset); err != nil {
		return nil, err
	}
	if err := bind("sortkey", q, &p.SortKey); err != nil {
		return nil, err
	}
	if err := bind("pageToken", q, &p.PageToken); err != nil {
		return nil, err
	}
	if err := bind("expand", q, &p.Expand); err != nil {
		return nil, err
	}
	if err := bind("expandReferenceNames", q, &p.ExpandReferenceNames); err != nil {
		return nil, err
	}
	return &p, nil
}

func bind(name string, q url.Values, dest interface{}) error {
	if err := runtime.BindQueryParameter("form", true, false, name, q, dest); err != nil {
		return domain.ErrValidation("invalid format for parameter %s: %v", name, err)
	}
	return nil
}

func (p *listParams) listRequest(q url.Values) endpoint.ListRequest {
	req := endpoint.ListRequest{Params: q, Expand: p.expandOptions()}
	if p.Limit != nil {
		req.Limit = *p.Limit
	}
	if p.Offset != nil {
		req.Offset = *p.Offset
	}
	if p.SortKey != nil {
		req.SortKey = *p.SortKey
	}
	if p.PageToken != nil {
		req.PageToken = *p.PageToken
	}
	return req
}

// expandOptions accepts expand both repeated and comma separated.
func (p *listParams) expandOptions() expand.Options {
	var opts expand.Options
	if p.Expand != nil {
		for _, v := range *p.Expand {
			for _, name := range strings.Split(v, ",") {
				if name = strings.TrimSpace(name); name != "" && !slices.Contains(opts.Relations, name) {
					opts.Relations = append(opts.Relations, name)
				}
			}
		}
	}
	if p.ExpandReferenceNames != nil {
		opts.ReferenceNames = *p.ExpandReferenceNames
	}
	return opts
}
