// Package listpage holds the presentation state of a resource list page:
// search and filter bar, page strip and table view.
package listpage

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/emanuel-malungo/jomorais/internal/client"
	"github.com/emanuel-malungo/jomorais/internal/model"
)

// StatusAll disables the status filter.
const StatusAll = "all"

const maxPageSize = 100

// Filter is the search/filter/page state owned by a list page. Changing the
// search term or any filter goes back to page 1.
type Filter struct {
	Search   string
	Status   string
	Page     int
	PageSize int
	Extra    map[string]string
}

// ParseFilter reads ?search=&status=&page=&limit= plus the given extra keys.
func ParseFilter(q url.Values, defaultPageSize int, extraKeys ...string) Filter {
	f := Filter{
		Search:   strings.TrimSpace(q.Get("search")),
		Status:   q.Get("status"),
		Page:     atoiOr(q.Get("page"), 1),
		PageSize: atoiOr(q.Get("limit"), defaultPageSize),
	}
	switch f.Status {
	case string(model.StatusActivo), string(model.StatusInactivo):
	default:
		f.Status = StatusAll
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	for _, k := range extraKeys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if f.Extra == nil {
				f.Extra = make(map[string]string)
			}
			f.Extra[k] = v
		}
	}
	return f
}

// FilterFromParams is the inverse of Params.
func FilterFromParams(p client.ListParams) Filter {
	f := Filter{
		Search:   p.Search,
		Status:   p.Status,
		Page:     max(p.Page, 1),
		PageSize: p.PageSize,
	}
	if f.Status == "" {
		f.Status = StatusAll
	}
	if len(p.Filters) > 0 {
		f.Extra = make(map[string]string, len(p.Filters))
		for k, v := range p.Filters {
			f.Extra[k] = v
		}
	}
	return f
}

// WithSearch returns f with a new search term, back on page 1.
func (f Filter) WithSearch(term string) Filter {
	out := f.clone()
	out.Search = strings.TrimSpace(term)
	out.Page = 1
	return out
}

// WithStatus returns f filtered by status, back on page 1.
func (f Filter) WithStatus(status string) Filter {
	out := f.clone()
	out.Status = status
	out.Page = 1
	return out
}

// WithExtra returns f with one extra filter set ("" removes it), back on page 1.
func (f Filter) WithExtra(key, value string) Filter {
	out := f.clone()
	if value == "" {
		delete(out.Extra, key)
	} else {
		if out.Extra == nil {
			out.Extra = make(map[string]string)
		}
		out.Extra[key] = value
	}
	out.Page = 1
	return out
}

// WithPage returns f on page n. Filters are kept.
func (f Filter) WithPage(n int) Filter {
	out := f.clone()
	out.Page = max(n, 1)
	return out
}

// Params converts f into a client query.
func (f Filter) Params() client.ListParams {
	p := client.ListParams{
		Page:     f.Page,
		PageSize: f.PageSize,
		Search:   f.Search,
	}
	if f.Status != StatusAll {
		p.Status = f.Status
	}
	if len(f.Extra) > 0 {
		p.Filters = make(map[string]string, len(f.Extra))
		for k, v := range f.Extra {
			p.Filters[k] = v
		}
	}
	return p
}

// Query encodes f for links; defaults are omitted.
func (f Filter) Query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" && f.Status != StatusAll {
		q.Set("status", f.Status)
	}
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("limit", strconv.Itoa(f.PageSize))
	}
	keys := make([]string, 0, len(f.Extra))
	for k := range f.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, f.Extra[k])
	}
	return q
}

// PageURL links base to page n under the current filters.
func (f Filter) PageURL(base string, n int) string {
	q := f.WithPage(n).Query()
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

func (f Filter) clone() Filter {
	out := f
	if f.Extra != nil {
		out.Extra = make(map[string]string, len(f.Extra))
		for k, v := range f.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
