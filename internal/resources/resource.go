package resources

import (
	"net/url"
	"strings"
)

// ColumnKind selects how a cell value is formatted
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindTime
	KindMoney
	KindCount
	KindStatus
	KindMessageType
)

// Column is one table column. Keys are tried in order, which absorbs field
// names that drifted between backend revisions.
type Column struct {
	Title    string
	Keys     []string
	Kind     ColumnKind
	Fallback string
}

// Action is a per-row control. Modal actions open a dialog; Path actions POST
// straight to the backend.
type Action struct {
	Name  string
	Label string
	Style string
	Modal string
	Path  string
}

// Resource is the single definition every loader, renderer and modal reads
type Resource struct {
	Name        string
	Endpoint    string
	ListKey     string
	TableID     string
	IDField     string
	StatusField string
	StatusParam string
	SizeParam   string
	Statuses    StatusTable
	Columns     []Column
	Actions     []Action
	CreateModal string
	EditModal   string
	Batch       []string
	Exportable  bool
}

func text(title string, keys ...string) Column {
	return Column{Title: title, Keys: keys, Kind: KindText}
}

func orDefault(c Column, fallback string) Column {
	c.Fallback = fallback
	return c
}

func timeCol(title, key string) Column {
	return Column{Title: title, Keys: []string{key}, Kind: KindTime}
}

func statusCol(key string) Column {
	return Column{Title: "Status", Keys: []string{key}, Kind: KindStatus}
}

var (
	viewAction   = Action{Name: "view", Label: "View", Style: "btn-primary", Modal: "view"}
	deleteAction = Action{Name: "delete", Label: "Delete", Style: "btn-danger"}
)

func editAction(modal string) Action {
	return Action{Name: "edit", Label: "Edit", Style: "btn-warning", Modal: modal}
}

var all = []*Resource{
	{
		Name:        "users",
		Endpoint:    "/admin/users",
		ListKey:     "users",
		TableID:     "usersTable",
		IDField:     "id",
		StatusField: "status",
		StatusParam: "status",
		SizeParam:   "size",
		Statuses:    UserStatuses,
		Columns: []Column{
			text("ID", "id"),
			text("Username", "username"),
			text("Phone", "phone"),
			orDefault(text("Email", "email"), "Not set"),
			statusCol("status"),
			timeCol("Registered", "created_at"),
		},
		Actions:    []Action{viewAction, editAction("user"), deleteAction},
		EditModal:  "user",
		Batch:      []string{"enable", "disable"},
		Exportable: true,
	},
	{
		Name:        "products",
		Endpoint:    "/admin/products",
		ListKey:     "products",
		TableID:     "productsTable",
		IDField:     "id",
		StatusField: "status",
		StatusParam: "status",
		SizeParam:   "size",
		Statuses:    ProductStatuses,
		Columns: []Column{
			text("ID", "id"),
			text("Title", "title"),
			orDefault(text("Category", "category_name"), "Uncategorized"),
			text("Seller", "seller_name"),
			{Title: "Current price", Keys: []string{"current_price"}, Kind: KindMoney},
			statusCol("status"),
			timeCol("Listed", "created_at"),
		},
		Actions:    []Action{viewAction, editAction("product"), deleteAction},
		EditModal:  "product",
		Batch:      []string{"approve", "withdraw", "delete"},
		Exportable: true,
	},
	{
		Name:        "categories",
		Endpoint:    "/admin/categories",
		ListKey:     "categories",
		TableID:     "categoriesTable",
		IDField:     "id",
		StatusField: "is_active",
		Statuses:    CategoryStatuses,
		Columns: []Column{
			text("ID", "id"),
			text("Name", "name"),
			orDefault(text("Parent", "parent_name"), "Top level"),
			{Title: "Products", Keys: []string{"product_count"}, Kind: KindCount},
			text("Sort order", "sort_order"),
			statusCol("is_active"),
		},
		Actions:     []Action{editAction("category"), deleteAction},
		CreateModal: "category",
		EditModal:   "category",
	},
	{
		Name:        "orders",
		Endpoint:    "/admin/orders",
		ListKey:     "orders",
		TableID:     "ordersTable",
		IDField:     "order_no",
		StatusField: "order_status",
		StatusParam: "status",
		SizeParam:   "size",
		Statuses:    OrderStatuses,
		Columns: []Column{
			text("Order no", "order_no"),
			text("Buyer", "buyer_name"),
			text("Product", "product_title"),
			{Title: "Amount", Keys: []string{"total_amount"}, Kind: KindMoney},
			statusCol("order_status"),
			timeCol("Placed", "created_at"),
		},
		Actions: []Action{
			viewAction,
			{Name: "status", Label: "Update status", Style: "btn-warning", Modal: "order"},
		},
		EditModal:  "order",
		Batch:      []string{"cancel"},
		Exportable: true,
	},
	{
		Name:        "shops",
		Endpoint:    "/admin/shops",
		ListKey:     "shops",
		TableID:     "shopsTable",
		IDField:     "id",
		StatusField: "status",
		StatusParam: "status",
		SizeParam:   "size",
		Statuses:    ShopStatuses,
		Columns: []Column{
			text("ID", "id"),
			text("Shop", "name", "shop_name"),
			text("Owner", "owner_name"),
			text("Phone", "phone", "contact_phone"),
			{Title: "Sales", Keys: []string{"total_sales"}, Kind: KindCount},
			statusCol("status"),
			timeCol("Opened", "created_at"),
		},
		Actions: []Action{
			viewAction,
			editAction("shop"),
			{Name: "verify", Label: "Verify", Style: "btn-success", Path: "/stores/{id}/verify"},
			deleteAction,
		},
		EditModal:  "shop",
		Exportable: true,
	},
	{
		Name:        "events",
		Endpoint:    "/admin/events",
		ListKey:     "events",
		TableID:     "eventsTable",
		IDField:     "id",
		StatusField: "is_active",
		StatusParam: "is_active",
		SizeParam:   "size",
		Statuses:    EventStatuses,
		Columns: []Column{
			text("ID", "id"),
			text("Title", "title"),
			timeCol("Starts", "start_time"),
			timeCol("Ends", "end_time"),
			{Title: "Products", Keys: []string{"product_count"}, Kind: KindCount},
			statusCol("is_active"),
		},
		Actions:     []Action{viewAction, editAction("event"), deleteAction},
		CreateModal: "event",
		EditModal:   "event",
	},
	{
		Name:        "messages",
		Endpoint:    "/admin/messages",
		ListKey:     "messages",
		TableID:     "messagesTable",
		IDField:     "id",
		StatusField: "is_read",
		SizeParam:   "size",
		Statuses:    MessageStatuses,
		Columns: []Column{
			text("ID", "id"),
			orDefault(text("Title", "title"), "Untitled"),
			{Title: "Type", Keys: []string{"message_type"}, Kind: KindMessageType},
			orDefault(text("Sender", "sender_name"), "System"),
			text("Receiver", "receiver_name"),
			statusCol("is_read"),
			timeCol("Sent", "created_at"),
		},
		Actions:     []Action{viewAction, deleteAction},
		CreateModal: "system-message",
	},
	{
		Name:        "store-applications",
		Endpoint:    "/store-applications",
		ListKey:     "items",
		TableID:     "storeApplicationsTable",
		IDField:     "id",
		StatusField: "status",
		StatusParam: "status",
		SizeParam:   "page_size",
		Statuses:    ApplicationStatuses,
		Columns: []Column{
			text("ID", "id"),
			text("Store", "store_name"),
			text("Type", "store_type"),
			text("Applicant", "real_name"),
			text("Phone", "consignee_phone"),
			statusCol("status"),
			timeCol("Submitted", "created_at"),
		},
		Actions: []Action{
			viewAction,
			{Name: "review", Label: "Review", Style: "btn-warning", Modal: "store-application"},
			{Name: "create-store", Label: "Create store", Style: "btn-success", Path: "/store-applications/{id}/create-store"},
		},
		EditModal: "store-application",
	},
}

// All returns every resource in navigation order
func All() []*Resource {
	return all
}

// Lookup finds a resource by its section name
func Lookup(name string) (*Resource, bool) {
	for _, r := range all {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// ValidID reports whether id can name a record: letters, digits, '-' and '_'
func ValidID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// ItemPath is the backend path of one record
func (r *Resource) ItemPath(id string) string {
	return r.Endpoint + "/" + url.PathEscape(id)
}

// ActionPath expands an action's path template for id
func (a Action) ActionPath(id string) string {
	return strings.ReplaceAll(a.Path, "{id}", url.PathEscape(id))
}

// FindAction returns the row action called name
func (r *Resource) FindAction(name string) (Action, bool) {
	for _, a := range r.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// CanDelete reports whether rows offer a delete action
func (r *Resource) CanDelete() bool {
	_, ok := r.FindAction("delete")
	return ok
}

// AllowsBatch reports whether action is one of the resource's batch actions
func (r *Resource) AllowsBatch(action string) bool {
	for _, a := range r.Batch {
		if a == action {
			return true
		}
	}
	return false
}

// ID extracts the record's identifier as path text
func (r *Resource) ID(rec Record) string {
	return rec.String(r.IDField)
}

// Status maps the record's status field through the resource's table
func (r *Resource) Status(rec Record) Badge {
	v, _ := rec.Get(r.StatusField)
	return r.Statuses.Lookup(v)
}

// Cell formats one column of rec
func (r *Resource) Cell(rec Record, col Column, f Format) string {
	v, ok := rec.First(col.Keys...)
	switch col.Kind {
	case KindTime:
		return f.Time(v)
	case KindMoney:
		return f.Money(v)
	case KindCount:
		return f.Count(v)
	case KindStatus:
		return r.Statuses.Lookup(v).Text
	case KindMessageType:
		return MessageTypeText(v)
	}
	if !ok || scalarText(v) == "" {
		if col.Fallback != "" {
			return col.Fallback
		}
		return "-"
	}
	return scalarText(v)
}
