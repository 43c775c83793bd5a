package resources

import (
	"net/url"
	"strconv"
	"strings"
)

// Filter is the operator's current status filter, keyword and page for one section
type Filter struct {
	Status string
	Search string
	Page   int
}

// ParseFilter reads a filter from console query parameters
func ParseFilter(q url.Values) Filter {
	f := Filter{
		Status: strings.TrimSpace(q.Get("status")),
		Search: strings.TrimSpace(q.Get("search")),
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		f.Page = p
	}
	return f
}

// Query builds the backend list query for r
func (f Filter) Query(r *Resource, size int) url.Values {
	q := url.Values{}
	page := f.Page
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))
	if r.SizeParam != "" && size > 0 {
		q.Set(r.SizeParam, strconv.Itoa(size))
	}
	if f.Status != "" && r.StatusParam != "" {
		q.Set(r.StatusParam, f.Status)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

// Link is the console URL showing section at page with the same filter
func (f Filter) Link(section string, page int) string {
	q := url.Values{}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	u := "/sections/" + url.PathEscape(section)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}
