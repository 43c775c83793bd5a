package ui

import (
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/aethra/marketconsole/internal/resources"
	"github.com/aethra/marketconsole/internal/view"
)

// Dialog kinds and ids that have no form template
const (
	KindView          = "view"
	KindConfirmDelete = "confirm-delete"

	LoginModalID   = "adminLoginModal"
	ViewModalID    = "viewModal"
	ConfirmModalID = "confirmDeleteModal"
)

// IDField carries the record id through a modal form
const IDField = "_id"

// ModalID maps a modal kind to the element id of its dialog
func ModalID(kind string) (string, bool) {
	switch kind {
	case KindView:
		return ViewModalID, true
	case KindConfirmDelete:
		return ConfirmModalID, true
	}
	if f, ok := resources.LookupForm(kind); ok {
		return f.ModalID, true
	}
	return "", false
}

// FormError marks the invalid field of a rejected draft
type FormError struct {
	Field   string
	Message string
}

func dialog(id, title, kind string, body ...*html.Node) *html.Node {
	header := view.El("div", view.Class("modal-header"), view.Kids(
		view.El("h3", view.Class("modal-title"), view.Content(title)),
	))
	if kind != "" {
		header.AppendChild(view.El("form",
			view.Class("inline-form"),
			view.Attr("method", "post"),
			view.Attr("action", "/modals/"+kind+"/close"),
			view.Kids(view.El("button",
				view.Attr("type", "submit"),
				view.Class("modal-close"),
				view.Attr("aria-label", "Close"),
				view.Content("×"),
			)),
		))
	}
	if kind == "" {
		return view.El("dialog",
			view.ID(id),
			view.Class("modal"),
			view.Attr("open", ""),
			view.Kids(header),
			view.Kids(body...),
		)
	}

	// the layer carries the id so removing the dialog takes its backdrop along
	return view.El("div",
		view.ID(id),
		view.Class("modal-layer"),
		view.Attr("data-kind", kind),
		view.Kids(
			backdrop(kind),
			view.El("dialog",
				view.Class("modal"),
				view.Attr("open", ""),
				view.Kids(header),
				view.Kids(body...),
			),
		),
	)
}

// backdrop covers the page behind a dialog; clicking it posts the close
func backdrop(kind string) *html.Node {
	return view.El("form",
		view.Class("modal-backdrop"),
		view.Attr("method", "post"),
		view.Attr("action", "/modals/"+kind+"/close"),
		view.Kids(view.El("button",
			view.Attr("type", "submit"),
			view.Class("modal-backdrop-dismiss"),
			view.Attr("aria-label", "Close dialog"),
			view.Attr("tabindex", "-1"),
		)),
	)
}

func errorBox(msg string) *html.Node {
	if msg == "" {
		return nil
	}
	return view.El("div", view.Class("modal-error"), view.Attr("role", "alert"), view.Content(msg))
}

// FormModal renders a create or edit dialog. id is empty when creating.
func FormModal(f *resources.Form, id string, d resources.Draft, fe *FormError) *html.Node {
	title := f.Title
	switch {
	case id == "":
		title = "New " + strings.ToLower(f.Title)
	case f.Creatable() || f.SaveLabel == "":
		title = "Edit " + strings.ToLower(f.Title)
	}
	save := f.SaveLabel
	if save == "" {
		save = "Save"
	}

	body := view.El("div", view.Class("modal-body"))
	if fe != nil && fe.Message != "" {
		body.AppendChild(errorBox(fe.Message))
	}
	for _, field := range f.Fields {
		invalid := fe != nil && fe.Field == field.Name
		body.AppendChild(fieldControl(f.ModalID, field, d[field.Name], invalid))
	}

	form := view.El("form",
		view.Attr("method", "post"),
		view.Attr("action", "/modals/"+f.Kind+"/save"),
		view.Kids(
			view.El("input", view.Attr("type", "hidden"), view.Attr("name", IDField), view.Attr("value", id)),
			body,
			view.El("div", view.Class("modal-footer"), view.Kids(
				view.El("button",
					view.Attr("type", "submit"),
					view.Attr("formaction", "/modals/"+f.Kind+"/close"),
					view.Attr("formnovalidate", ""),
					view.Class("btn"),
					view.Content("Cancel"),
				),
				view.El("button", view.Attr("type", "submit"), view.Class("btn", "btn-primary"), view.Content(save)),
			)),
		),
	)
	return dialog(f.ModalID, title, f.Kind, form)
}

func fieldControl(modalID string, field resources.Field, value string, invalid bool) *html.Node {
	inputID := modalID + "-" + field.Name
	label := field.Label
	if field.Required {
		label += " *"
	}
	common := []view.Option{
		view.ID(inputID),
		view.Attr("name", field.Name),
		view.If(invalid, view.Class("is-invalid")),
	}

	var control *html.Node
	switch field.Kind {
	case resources.FieldTextarea:
		control = view.El("textarea", append(common, view.Attr("rows", "4"), view.Content(value))...)
	case resources.FieldSelect:
		control = view.El("select", common...)
		for _, c := range field.Choices {
			control.AppendChild(view.El("option",
				view.Attr("value", c.Value),
				view.If(c.Value == value, view.Attr("selected", "")),
				view.Content(c.Label),
			))
		}
	case resources.FieldCheckbox:
		control = view.El("input", append(common,
			view.Attr("type", "checkbox"),
			view.Attr("value", "true"),
			view.If(value == "true", view.Attr("checked", "")),
		)...)
	default:
		kind := "text"
		switch field.Kind {
		case resources.FieldNumber:
			kind = "number"
		case resources.FieldDateTime:
			kind = "datetime-local"
		}
		control = view.El("input", append(common,
			view.Attr("type", kind),
			view.Attr("value", value),
			view.If(kind == "number", view.Attr("step", "any")),
		)...)
	}

	wrap := view.El("label", view.Attr("for", inputID), view.Kids(view.Text(label), control))
	if field.Hint != "" {
		wrap.AppendChild(view.El("span", view.Class("hint"), view.Content(field.Hint)))
	}
	return wrap
}

// LoginModal renders the blocking administrator login dialog
func LoginModal(username, errMsg string) *html.Node {
	form := view.El("form",
		view.Attr("method", "post"),
		view.Attr("action", "/login"),
		view.Kids(
			view.El("div", view.Class("modal-body"), view.Kids(
				errorBox(errMsg),
				view.El("label", view.Kids(
					view.Text("Username"),
					view.El("input",
						view.ID("login-username"),
						view.Attr("name", "username"),
						view.Attr("autocomplete", "username"),
						view.Attr("value", username),
						view.Attr("required", ""),
					),
				)),
				view.El("label", view.Kids(
					view.Text("Password"),
					view.El("input",
						view.ID("login-password"),
						view.Attr("type", "password"),
						view.Attr("name", "password"),
						view.Attr("autocomplete", "current-password"),
						view.Attr("required", ""),
					),
				)),
			)),
			view.El("div", view.Class("modal-footer"), view.Kids(
				view.El("button", view.Attr("type", "submit"), view.Class("btn", "btn-primary"), view.Content("Log in")),
			)),
		),
	)
	return dialog(LoginModalID, "Administrator login", "", form)
}

// ViewModal renders a read-only record. Columns come first, then any remaining
// fields in key order. extra is appended below the details.
func ViewModal(r *resources.Resource, title string, rec resources.Record, f resources.Format, extra ...*html.Node) *html.Node {
	dl := view.El("dl", view.Class("details"))
	seen := map[string]bool{}
	for _, col := range r.Columns {
		for _, k := range col.Keys {
			seen[k] = true
		}
		var value *html.Node
		if col.Kind == resources.KindStatus {
			value = Badge(r.Status(rec))
		} else {
			value = view.Text(r.Cell(rec, col, f))
		}
		dl.AppendChild(view.El("dt", view.Content(col.Title)))
		dl.AppendChild(view.El("dd", view.Kids(value)))
	}

	keys := make([]string, 0, len(rec))
	for k := range rec {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch rec[k].(type) {
		case map[string]any, []any:
			continue
		}
		v := rec.String(k)
		if v == "" {
			continue
		}
		if strings.HasSuffix(k, "_at") || strings.HasSuffix(k, "_time") {
			v = f.Time(v)
		}
		dl.AppendChild(view.El("dt", view.Content(humanize(k))))
		dl.AppendChild(view.El("dd", view.Content(v)))
	}

	body := view.El("div", view.Class("modal-body"), view.Kids(dl), view.Kids(extra...))
	footer := view.El("form",
		view.Class("modal-footer"),
		view.Attr("method", "post"),
		view.Attr("action", "/modals/"+KindView+"/close"),
		view.Kids(view.El("button", view.Attr("type", "submit"), view.Class("btn"), view.Content("Close"))),
	)
	return dialog(ViewModalID, title, KindView, body, footer)
}

// EventProducts lists the products attached to an event
func EventProducts(products []resources.Record, f resources.Format) *html.Node {
	t := table("eventProductsTable", []string{"ID", "Title", "Current price"})
	body := view.Find(t, view.IsElement("tbody"))
	for _, p := range products {
		body.AppendChild(view.El("tr", view.Kids(
			view.El("td", view.Content(p.String("id"))),
			view.El("td", view.Content(p.String("title"))),
			view.El("td", view.Content(f.Money(p["current_price"]))),
		)))
	}
	if len(products) == 0 {
		body.AppendChild(view.El("tr", view.Kids(
			view.El("td", view.Class("empty"), view.Attr("colspan", "3"), view.Content("No products in this event")),
		)))
	}
	return view.El("div", view.Kids(
		view.El("h4", view.Content("Products")),
		t,
	))
}

// ConfirmModal asks before deleting a record
func ConfirmModal(r *resources.Resource, id, label string) *html.Node {
	escaped := url.PathEscape(id)
	body := view.El("div", view.Class("modal-body"), view.Kids(
		view.El("p", view.Content("Delete "+label+"? This cannot be undone.")),
	))
	footer := view.El("div", view.Class("modal-footer"), view.Kids(
		postButton("/modals/"+KindConfirmDelete+"/close", "Cancel", "btn"),
		postButton("/records/"+r.Name+"/"+escaped+"/delete/confirm", "Delete", "btn btn-danger"),
	))
	return dialog(ConfirmModalID, "Confirm delete", KindConfirmDelete, body, footer)
}

func humanize(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
