package client

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/emanuel-malungo/jomorais/internal/model"
)

// ListParams is one list query. Zero Page/PageSize are left to the server defaults.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
	Status   string
	Filters  map[string]string
}

// Clone copies p including its filter map.
func (p ListParams) Clone() ListParams {
	out := p
	if p.Filters != nil {
		out.Filters = make(map[string]string, len(p.Filters))
		for k, v := range p.Filters {
			out.Filters[k] = v
		}
	}
	return out
}

// Query encodes p the way the list endpoints expect it.
func (p ListParams) Query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("limit", strconv.Itoa(p.PageSize))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := p.Filters[k]; v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// Page is one page of a list.
type Page[E any] struct {
	Items      []E
	Pagination Pagination
}

// DeleteResult is the server's cascade report; displayed, never computed.
type DeleteResult = model.DeleteReport

// Resource is the typed CRUD surface of one REST resource.
type Resource[E any] struct {
	c    *Client
	path string
}

// NewResource binds E to a resource path such as "/api/academico/cursos".
func NewResource[E any](c *Client, path string) *Resource[E] {
	return &Resource[E]{c: c, path: path}
}

// Path returns the resource path.
func (r *Resource[E]) Path() string { return r.path }

// List fetches one page.
func (r *Resource[E]) List(ctx context.Context, p ListParams) (*Page[E], error) {
	var items []E
	pg, err := r.c.do(ctx, http.MethodGet, r.path, p.Query(), nil, &items)
	if err != nil {
		return nil, err
	}

	out := &Page[E]{Items: items}
	if out.Items == nil {
		out.Items = []E{}
	}
	if pg != nil {
		out.Pagination = *pg
	} else {
		out.Pagination = Pagination{
			CurrentPage:  max(p.Page, 1),
			TotalItems:   int64(len(items)),
			ItemsPerPage: len(items),
			TotalPages:   min(len(items), 1),
		}
	}
	return out, nil
}

// Get returns nil, nil when the record does not exist, whether the API says
// so with a 404 or with a null data field.
func (r *Resource[E]) Get(ctx context.Context, id int64) (*E, error) {
	var out *E
	if _, err := r.c.do(ctx, http.MethodGet, r.itemPath(id), nil, nil, &out); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// Create posts a new record and returns it as stored.
func (r *Resource[E]) Create(ctx context.Context, in *E) (*E, error) {
	var out E
	if _, err := r.c.do(ctx, http.MethodPost, r.path, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the record's mutable fields.
func (r *Resource[E]) Update(ctx context.Context, id int64, in *E) (*E, error) {
	var out E
	if _, err := r.c.do(ctx, http.MethodPut, r.itemPath(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the record and returns the server's cascade report.
func (r *Resource[E]) Delete(ctx context.Context, id int64) (*DeleteResult, error) {
	var out DeleteResult
	if _, err := r.c.do(ctx, http.MethodDelete, r.itemPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[E]) itemPath(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}
