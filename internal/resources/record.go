// Package resources describes the marketplace collections the console manages:
// how records decode, which columns they show and how status codes map to badges.
package resources

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one backend object. Numbers stay json.Number so ids never lose precision.
type Record map[string]any

// Get returns the value under key when it is present and not null
func (r Record) Get(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// First returns the first present value among keys
func (r Record) First(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r.Get(k); ok {
			return v, true
		}
	}
	return nil, false
}

// String renders a scalar field as text; missing fields give ""
func (r Record) String(key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	return scalarText(v)
}

func (r Record) Int(key string) (int64, bool) {
	v, ok := r.Get(key)
	if !ok {
		return 0, false
	}
	return toInt(v)
}

func (r Record) Float(key string) (float64, bool) {
	v, ok := r.Get(key)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func (r Record) Bool(key string) bool {
	v, ok := r.Get(key)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	default:
		n, ok := toInt(v)
		return ok && n != 0
	}
}

// List returns the array under key as records, skipping non-object items
func (r Record) List(key string) []Record {
	v, ok := r.Get(key)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// Object returns the nested object under key
func (r Record) Object(key string) Record {
	v, ok := r.Get(key)
	if !ok {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return Record(m)
	}
	return nil
}

// Page is the paging block most list endpoints return next to their items
type Page struct {
	Total int64
	Page  int64
	Size  int64
	Pages int64
}

// PageOf reads paging fields; ok is false when the response carries none
func PageOf(r Record) (Page, bool) {
	total, ok := r.Int("total")
	if !ok {
		return Page{}, false
	}
	p := Page{Total: total, Page: 1}
	if v, ok := r.Int("page"); ok && v > 0 {
		p.Page = v
	}
	if v, ok := r.Int("size"); ok {
		p.Size = v
	} else if v, ok := r.Int("page_size"); ok {
		p.Size = v
	}
	if v, ok := r.Int("total_pages"); ok {
		p.Pages = v
	} else if p.Size > 0 {
		p.Pages = (p.Total + p.Size - 1) / p.Size
	}
	return p, true
}

func (p Page) HasPrev() bool { return p.Page > 1 }

func (p Page) HasNext() bool { return p.Pages > 0 && p.Page < p.Pages }

func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

func toInt(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		if f, err := t.Float64(); err == nil && f == float64(int64(f)) {
			return int64(f), true
		}
		return 0, false
	case float64:
		if t != float64(int64(t)) {
			return 0, false
		}
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
