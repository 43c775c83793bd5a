// Package ui builds the console's page structure, tables, dialogs and toasts
// as view node trees.
package ui

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/aethra/marketconsole/internal/config"
	"github.com/aethra/marketconsole/internal/resources"
	"github.com/aethra/marketconsole/internal/view"
)

// Element ids shared with the console package
const (
	PageTitleID      = "page-title"
	ToastContainerID = "toast-container"
	AdminNameID      = "admin-name"
	TrendTableID     = "trendTable"
	SettingsFormID   = "settings-form"
)

// StatCard is one dashboard number
type StatCard struct {
	ID    string
	Label string
}

// StatCards are the dashboard cards in display order
var StatCards = []StatCard{
	{ID: "total-users", Label: "Total users"},
	{ID: "total-products", Label: "Total products"},
	{ID: "today-orders", Label: "Orders today"},
	{ID: "today-revenue", Label: "Revenue today"},
	{ID: "month-new-users", Label: "New users this month"},
	{ID: "month-revenue", Label: "Revenue this month"},
}

// NewPage builds the full console page: sidebar, header, one hidden panel per
// section and the toast container. No panel is active yet.
func NewPage(brand string) *view.Document {
	doc := view.NewDocument(brand)
	doc.Head.AppendChild(view.El("style", view.Content(stylesheet)))

	nav := view.El("ul", view.Class("nav"))
	content := view.El("div", view.Class("content"))
	for _, s := range resources.Sections() {
		nav.AppendChild(view.El("li", view.Kids(
			view.El("a",
				view.Class("nav-item"),
				view.Attr("href", "#"+s.Name),
				view.Attr("data-section", s.Name),
				view.Kids(
					view.El("span", view.Class("nav-icon", "bi", "bi-"+s.Icon)),
					view.Text(s.Title),
				),
			),
		)))
		content.AppendChild(panel(s))
	}

	sidebar := view.El("aside", view.Class("sidebar"), view.Kids(
		view.El("div", view.Class("sidebar-header"), view.Kids(
			view.El("div", view.Class("logo"), view.Content(brand)),
		)),
		view.El("nav", view.Kids(nav)),
	))

	header := view.El("header", view.Class("header"), view.Kids(
		view.El("h1", view.ID(PageTitleID), view.Class("page-title")),
		view.El("div", view.Class("header-actions"), view.Kids(
			view.El("span", view.ID(AdminNameID), view.Class("user-name")),
			postButton("/logout", "Log out", "btn btn-sm"),
		)),
	))

	doc.Append(view.El("div", view.Class("app"), view.Kids(
		sidebar,
		view.El("main", view.Class("main"), view.Kids(header, content)),
	)))
	doc.Append(view.El("div", view.ID(ToastContainerID), view.Attr("aria-live", "polite")))
	doc.Append(view.El("script", view.Content(navScript)))
	return doc
}

func panel(s resources.Section) *html.Node {
	p := view.El("section",
		view.ID(s.Name),
		view.Class("content-section"),
		view.Attr("hidden", ""),
	)
	switch {
	case s.Name == resources.SectionDashboard:
		view.Kids(dashboardPanel()...)(p)
	case s.Name == resources.SectionSettings:
		view.Kids(settingsPanel())(p)
	case s.Resource != nil:
		view.Kids(resourcePanel(s.Resource)...)(p)
	}
	return p
}

func dashboardPanel() []*html.Node {
	grid := view.El("div", view.Class("stats-grid"))
	for _, c := range StatCards {
		grid.AppendChild(view.El("div", view.Class("stat-card"), view.Kids(
			view.El("div", view.ID(c.ID), view.Class("stat-value"), view.Content("0")),
			view.El("div", view.Class("stat-label"), view.Content(c.Label)),
		)))
	}
	trend := table(TrendTableID, []string{"Date", "New users", "Orders", "Revenue"})
	return []*html.Node{
		grid,
		view.El("h2", view.Class("section-title"), view.Content("Last days")),
		view.El("div", view.Class("table-container"), view.Kids(trend)),
	}
}

func resourcePanel(r *resources.Resource) []*html.Node {
	toolbar := view.El("div", view.Class("toolbar"))

	filter := view.El("form",
		view.ID(r.Name+"-filter"),
		view.Attr("method", "get"),
		view.Attr("action", "/sections/"+r.Name),
	)
	if r.StatusParam != "" {
		sel := view.El("select", view.Attr("name", "status"), view.Kids(
			view.El("option", view.Attr("value", ""), view.Content("All statuses")),
		))
		for _, code := range r.Statuses.Codes() {
			sel.AppendChild(view.El("option",
				view.Attr("value", strconv.FormatInt(code, 10)),
				view.Content(r.Statuses[code].Text),
			))
		}
		filter.AppendChild(sel)
	}
	view.Kids(
		view.El("input", view.Attr("type", "search"), view.Attr("name", "search"), view.Attr("placeholder", "Search")),
		view.El("button", view.Attr("type", "submit"), view.Class("btn", "btn-sm"), view.Content("Filter")),
	)(filter)
	toolbar.AppendChild(filter)

	if r.CreateModal != "" {
		if f, ok := resources.LookupForm(r.CreateModal); ok {
			toolbar.AppendChild(view.El("a",
				view.Class("btn", "btn-primary", "btn-sm"),
				view.Attr("href", "/modals/"+r.CreateModal+"/new"),
				view.Content("New "+f.Title),
			))
		}
	}
	if r.Exportable {
		toolbar.AppendChild(view.El("a",
			view.Class("btn", "btn-sm"),
			view.Attr("href", "/export"),
			view.Content("Export CSV"),
		))
	}

	var batch *html.Node
	if len(r.Batch) > 0 {
		batch = view.El("form",
			view.ID(BatchFormID(r)),
			view.Class("toolbar"),
			view.Attr("method", "post"),
			view.Attr("action", "/batch/"+r.Batch[0]),
		)
		for _, action := range r.Batch {
			batch.AppendChild(view.El("button",
				view.Attr("type", "submit"),
				view.Attr("formaction", "/batch/"+action),
				view.Class("btn", "btn-sm"),
				view.Content("Batch "+action),
			))
		}
	}

	titles := make([]string, 0, len(r.Columns)+2)
	if len(r.Batch) > 0 {
		titles = append(titles, "")
	}
	for _, c := range r.Columns {
		titles = append(titles, c.Title)
	}
	titles = append(titles, "Actions")

	return []*html.Node{
		toolbar,
		batch,
		view.El("div", view.Class("table-container"), view.Kids(table(r.TableID, titles))),
		view.El("div", view.ID(PaginationID(r)), view.Class("pagination")),
	}
}

func settingsPanel() *html.Node {
	field := func(key, label, kind string) *html.Node {
		return view.El("label", view.Kids(
			view.Text(label),
			view.El("input",
				view.ID("setting-"+key),
				view.Attr("type", kind),
				view.Attr("name", key),
			),
		))
	}
	return view.El("form",
		view.ID(SettingsFormID),
		view.Class("modal-body"),
		view.Attr("method", "post"),
		view.Attr("action", "/settings"),
		view.Kids(
			field(config.KeyPageSize, "Rows per page", "number"),
			field(config.KeyCurrency, "Currency symbol", "text"),
			field(config.KeyTimeLayout, "Time layout", "text"),
			field(config.KeyTimeZone, "Time zone", "text"),
			view.El("div", view.Kids(
				view.El("button", view.Attr("type", "submit"), view.Class("btn", "btn-primary"), view.Content("Save settings")),
			)),
		),
	)
}

// FillSettings copies the effective display settings into the settings form
func FillSettings(doc *view.Document, d config.DisplayConfig) {
	values := map[string]string{
		config.KeyPageSize:   strconv.Itoa(d.PageSize),
		config.KeyCurrency:   d.Currency,
		config.KeyTimeLayout: d.TimeLayout,
		config.KeyTimeZone:   d.TimeZone,
	}
	for key, v := range values {
		if n := doc.ByID("setting-" + key); n != nil {
			view.SetAttr(n, "value", v)
		}
	}
}

// SetFilter reflects f in the section's filter form
func SetFilter(doc *view.Document, r *resources.Resource, f resources.Filter) {
	form := doc.ByID(r.Name + "-filter")
	if form == nil {
		return
	}
	if in := view.Find(form, func(n *html.Node) bool { return isNamed(n, "search") }); in != nil {
		view.SetAttr(in, "value", f.Search)
	}
	if sel := view.Find(form, func(n *html.Node) bool { return isNamed(n, "status") }); sel != nil {
		for _, opt := range view.FindAll(sel, view.IsElement("option")) {
			v, _ := view.GetAttr(opt, "value")
			if v == f.Status {
				view.SetAttr(opt, "selected", "")
			} else {
				view.RemoveAttr(opt, "selected")
			}
		}
	}
}

func isNamed(n *html.Node, name string) bool {
	v, ok := view.GetAttr(n, "name")
	return n.Type == html.ElementNode && ok && v == name
}

// BatchFormID is the id of the form row checkboxes submit with
func BatchFormID(r *resources.Resource) string {
	return r.Name + "-batch"
}

// PaginationID is the id of the pagination footer under the resource table
func PaginationID(r *resources.Resource) string {
	return r.Name + "-pagination"
}

func table(id string, titles []string) *html.Node {
	head := view.El("tr")
	for _, t := range titles {
		head.AppendChild(view.El("th", view.Content(t)))
	}
	return view.El("table", view.ID(id), view.Kids(
		view.El("thead", view.Kids(head)),
		view.El("tbody"),
	))
}

// TableBody returns the tbody of the table with id
func TableBody(doc *view.Document, id string) *html.Node {
	t := doc.ByID(id)
	if t == nil {
		return nil
	}
	return view.Find(t, view.IsElement("tbody"))
}

func postButton(action, label, class string) *html.Node {
	return view.El("form",
		view.Class("inline-form"),
		view.Attr("method", "post"),
		view.Attr("action", action),
		view.Kids(view.El("button", view.Attr("type", "submit"), view.Attr("class", class), view.Content(label))),
	)
}
