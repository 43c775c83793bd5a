package ui

import (
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/net/html"

	"github.com/aethra/marketconsole/internal/resources"
	"github.com/aethra/marketconsole/internal/view"
)

// Badge renders a status badge
func Badge(b resources.Badge) *html.Node {
	return view.El("span", view.Class("status-badge", b.Class), view.Content(b.Text))
}

// Rows renders one table row per record
func Rows(r *resources.Resource, recs []resources.Record, f resources.Format) []*html.Node {
	if len(recs) == 0 {
		cols := len(r.Columns) + 1
		if len(r.Batch) > 0 {
			cols++
		}
		return []*html.Node{view.El("tr", view.Kids(
			view.El("td", view.Class("empty"), view.Attr("colspan", strconv.Itoa(cols)), view.Content("No records")),
		))}
	}
	rows := make([]*html.Node, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, Row(r, rec, f))
	}
	return rows
}

// Row renders one record with its row actions
func Row(r *resources.Resource, rec resources.Record, f resources.Format) *html.Node {
	id := r.ID(rec)
	tr := view.El("tr", view.Attr("data-id", id))

	if len(r.Batch) > 0 {
		tr.AppendChild(view.El("td", view.Kids(view.El("input",
			view.Attr("type", "checkbox"),
			view.Attr("name", "ids"),
			view.Attr("value", id),
			view.Attr("form", BatchFormID(r)),
		))))
	}
	for _, col := range r.Columns {
		if col.Kind == resources.KindStatus {
			tr.AppendChild(view.El("td", view.Kids(Badge(r.Status(rec)))))
			continue
		}
		tr.AppendChild(view.El("td", view.Content(r.Cell(rec, col, f))))
	}

	actions := view.El("td", view.Class("actions"))
	for _, a := range r.Actions {
		actions.AppendChild(actionControl(r, a, id))
	}
	tr.AppendChild(actions)
	return tr
}

func actionControl(r *resources.Resource, a resources.Action, id string) *html.Node {
	class := "btn btn-sm " + a.Style
	escaped := url.PathEscape(id)
	switch {
	case a.Modal == "view":
		return view.El("a",
			view.Attr("class", class),
			view.Attr("href", "/modals/view/"+escaped+"?resource="+url.QueryEscape(r.Name)),
			view.Content(a.Label),
		)
	case a.Modal != "":
		return view.El("a",
			view.Attr("class", class),
			view.Attr("href", "/modals/"+a.Modal+"/"+escaped),
			view.Content(a.Label),
		)
	case a.Name == "delete":
		return postButton("/records/"+r.Name+"/"+escaped+"/delete", a.Label, class)
	default:
		return postButton("/records/"+r.Name+"/"+escaped+"/action/"+a.Name, a.Label, class)
	}
}

// Pagination renders the footer under a resource table
func Pagination(section string, p resources.Page, f resources.Filter) []*html.Node {
	info := fmt.Sprintf("Total %d", p.Total)
	if p.Pages > 0 {
		info = fmt.Sprintf("Total %d, page %d of %d", p.Total, p.Page, p.Pages)
	}
	nodes := []*html.Node{view.El("span", view.Class("page-info"), view.Content(info))}
	if p.HasPrev() {
		nodes = append(nodes, view.El("a",
			view.Class("btn", "btn-sm"),
			view.Attr("rel", "prev"),
			view.Attr("href", f.Link(section, int(p.Page-1))),
			view.Content("Previous"),
		))
	}
	if p.HasNext() {
		nodes = append(nodes, view.El("a",
			view.Class("btn", "btn-sm"),
			view.Attr("rel", "next"),
			view.Attr("href", f.Link(section, int(p.Page+1))),
			view.Content("Next"),
		))
	}
	return nodes
}

// TrendPoint is one day of dashboard activity
type TrendPoint struct {
	Date    string
	Users   any
	Orders  any
	Revenue any
}

// TrendRows renders the dashboard activity table
func TrendRows(points []TrendPoint, f resources.Format) []*html.Node {
	rows := make([]*html.Node, 0, len(points))
	for _, p := range points {
		rows = append(rows, view.El("tr", view.Kids(
			view.El("td", view.Content(p.Date)),
			view.El("td", view.Content(f.Count(p.Users))),
			view.El("td", view.Content(f.Count(p.Orders))),
			view.El("td", view.Content(f.Money(p.Revenue))),
		)))
	}
	return rows
}
