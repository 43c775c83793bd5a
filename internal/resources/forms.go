package resources

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aethra/marketconsole/internal/errors"
)

// FieldKind selects the input control and how its value is encoded
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldTextarea
	FieldNumber
	FieldDateTime
	FieldSelect
	FieldCheckbox
	FieldIDList
)

// DateTimeInput is the layout of an HTML datetime-local value
const DateTimeInput = "2006-01-02T15:04"

// Choice is one option of a select field
type Choice struct {
	Value string
	Label string
}

// Field is one input of a modal form
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	Numeric  bool
	Choices  []Choice
	Hint     string
}

// Draft holds the raw, unvalidated input of an open modal
type Draft map[string]string

// Form is the template of a create or edit modal
type Form struct {
	Kind     string
	ModalID  string
	Title    string
	Resource string
	Fields   []Field
	// Create is the POST path; empty when the form only edits
	Create string
	// Update is the path template for saving an existing record
	Update       string
	UpdateMethod string
	SaveLabel    string
	Check        func(Draft) error
}

func choices(t StatusTable, order ...int64) []Choice {
	out := make([]Choice, 0, len(order))
	for _, code := range order {
		out = append(out, Choice{Value: strconv.FormatInt(code, 10), Label: t[code].Text})
	}
	return out
}

var forms = map[string]*Form{
	"category": {
		Kind:     "category",
		ModalID:  "categoryModal",
		Title:    "Category",
		Resource: "categories",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: FieldText, Required: true},
			{Name: "parent_id", Label: "Parent category ID", Kind: FieldNumber, Hint: "0 for a top level category"},
			{Name: "icon_url", Label: "Icon URL", Kind: FieldText},
			{Name: "sort_order", Label: "Sort order", Kind: FieldNumber},
			{Name: "is_active", Label: "Enabled", Kind: FieldCheckbox},
		},
		Create:       "/admin/categories",
		Update:       "/admin/categories/{id}",
		UpdateMethod: "PUT",
	},
	"event": {
		Kind:     "event",
		ModalID:  "eventModal",
		Title:    "Event",
		Resource: "events",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: FieldText, Required: true},
			{Name: "description", Label: "Description", Kind: FieldTextarea},
			{Name: "banner_image", Label: "Banner image URL", Kind: FieldText},
			{Name: "start_time", Label: "Start time", Kind: FieldDateTime, Required: true},
			{Name: "end_time", Label: "End time", Kind: FieldDateTime, Required: true},
			{Name: "is_active", Label: "Active", Kind: FieldCheckbox},
		},
		Create:       "/admin/events",
		Update:       "/admin/events/{id}",
		UpdateMethod: "PUT",
		Check:        checkEventWindow,
	},
	"user": {
		Kind:     "user",
		ModalID:  "userModal",
		Title:    "User",
		Resource: "users",
		Fields: []Field{
			{Name: "nickname", Label: "Nickname", Kind: FieldText},
			{Name: "email", Label: "Email", Kind: FieldText},
			{Name: "phone", Label: "Phone", Kind: FieldText, Required: true},
			{Name: "credit_score", Label: "Credit score", Kind: FieldNumber},
			{Name: "status", Label: "Status", Kind: FieldSelect, Numeric: true, Required: true, Choices: choices(UserStatuses, 1, 2, 3)},
		},
		Update:       "/admin/users/{id}",
		UpdateMethod: "PUT",
	},
	"product": {
		Kind:     "product",
		ModalID:  "productModal",
		Title:    "Product",
		Resource: "products",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: FieldText, Required: true},
			{Name: "description", Label: "Description", Kind: FieldTextarea},
			{Name: "status", Label: "Status", Kind: FieldSelect, Numeric: true, Required: true, Choices: choices(ProductStatuses, 1, 2, 3, 4)},
			{Name: "is_featured", Label: "Featured", Kind: FieldCheckbox},
		},
		Update:       "/admin/products/{id}",
		UpdateMethod: "PUT",
	},
	"shop": {
		Kind:     "shop",
		ModalID:  "shopModal",
		Title:    "Shop",
		Resource: "shops",
		Fields: []Field{
			{Name: "name", Label: "Shop name", Kind: FieldText, Required: true},
			{Name: "phone", Label: "Contact phone", Kind: FieldText},
			{Name: "location", Label: "Location", Kind: FieldText},
			{Name: "status", Label: "Status", Kind: FieldSelect, Numeric: true, Required: true, Choices: choices(ShopStatuses, 1, 2, 3)},
			{Name: "is_open", Label: "Open for business", Kind: FieldCheckbox},
		},
		Update:       "/admin/shops/{id}",
		UpdateMethod: "PUT",
	},
	"order": {
		Kind:     "order",
		ModalID:  "orderStatusModal",
		Title:    "Order status",
		Resource: "orders",
		Fields: []Field{
			{Name: "order_status", Label: "Status", Kind: FieldSelect, Numeric: true, Required: true, Choices: choices(OrderStatuses, 1, 2, 3, 4, 5, 6)},
			{Name: "tracking_number", Label: "Tracking number", Kind: FieldText},
		},
		Update:       "/admin/orders/{id}/status",
		UpdateMethod: "PUT",
	},
	"system-message": {
		Kind:     "system-message",
		ModalID:  "systemMessageModal",
		Title:    "System message",
		Resource: "messages",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: FieldText, Required: true},
			{Name: "content", Label: "Content", Kind: FieldTextarea, Required: true},
			{Name: "receiver_type", Label: "Recipients", Kind: FieldSelect, Required: true, Choices: []Choice{
				{Value: "all", Label: "All users"},
				{Value: "user", Label: "Specific users"},
			}},
			{Name: "receiver_ids", Label: "User IDs", Kind: FieldIDList, Hint: "comma separated"},
		},
		Create:    "/admin/messages/system",
		SaveLabel: "Send",
		Check:     checkReceivers,
	},
	"store-application": {
		Kind:     "store-application",
		ModalID:  "storeApplicationModal",
		Title:    "Review store application",
		Resource: "store-applications",
		Fields: []Field{
			{Name: "status", Label: "Decision", Kind: FieldSelect, Numeric: true, Required: true, Choices: []Choice{
				{Value: "1", Label: "Approve"},
				{Value: "2", Label: "Reject"},
			}},
			{Name: "reject_reason", Label: "Rejection reason", Kind: FieldTextarea},
		},
		Update:       "/store-applications/{id}/review",
		UpdateMethod: "POST",
		SaveLabel:    "Submit review",
		Check:        checkReview,
	},
}

// LookupForm returns the form template for a modal kind
func LookupForm(kind string) (*Form, bool) {
	f, ok := forms[kind]
	return f, ok
}

// Creatable reports whether the form can make new records
func (f *Form) Creatable() bool {
	return f.Create != ""
}

// SaveRequest resolves the method and backend path used to save; id is empty for create
func (f *Form) SaveRequest(id string) (method, path string) {
	if id == "" {
		return "POST", f.Create
	}
	method = f.UpdateMethod
	if method == "" {
		method = "PUT"
	}
	return method, strings.ReplaceAll(f.Update, "{id}", url.PathEscape(id))
}

// Blank returns the draft a create modal starts with
func (f *Form) Blank() Draft {
	d := Draft{}
	for _, field := range f.Fields {
		switch {
		case field.Kind == FieldCheckbox:
			d[field.Name] = "true"
		case field.Kind == FieldSelect && len(field.Choices) > 0:
			d[field.Name] = field.Choices[0].Value
		default:
			d[field.Name] = ""
		}
	}
	return d
}

// DraftFrom copies a fetched record into a draft
func (f *Form) DraftFrom(rec Record, loc *time.Location) Draft {
	d := Draft{}
	for _, field := range f.Fields {
		switch field.Kind {
		case FieldCheckbox:
			d[field.Name] = strconv.FormatBool(rec.Bool(field.Name))
		case FieldDateTime:
			if t, ok := ParseTime(rec.String(field.Name), loc); ok {
				d[field.Name] = t.In(loc).Format(DateTimeInput)
			} else {
				d[field.Name] = ""
			}
		case FieldIDList:
			d[field.Name] = joinIDs(rec[field.Name])
		default:
			d[field.Name] = rec.String(field.Name)
		}
	}
	return d
}

// Validate runs the required-field checks, then the form's cross-field check
func (f *Form) Validate(d Draft) error {
	for _, field := range f.Fields {
		if field.Required && strings.TrimSpace(d[field.Name]) == "" {
			return errors.NewValidationError(field.Name, field.Label+" is required")
		}
	}
	if f.Check != nil {
		return f.Check(d)
	}
	return nil
}

// Payload converts a validated draft into the JSON body the backend expects.
// Empty optional inputs are left out.
func (f *Form) Payload(d Draft, loc *time.Location) (map[string]any, error) {
	out := make(map[string]any, len(f.Fields))
	for _, field := range f.Fields {
		raw := strings.TrimSpace(d[field.Name])
		if field.Kind == FieldCheckbox {
			out[field.Name] = isChecked(raw)
			continue
		}
		if raw == "" {
			continue
		}
		switch {
		case field.Kind == FieldNumber || field.Numeric:
			if _, err := strconv.ParseFloat(raw, 64); err != nil {
				return nil, errors.NewValidationError(field.Name, field.Label+" must be a number")
			}
			out[field.Name] = json.Number(raw)
		case field.Kind == FieldDateTime:
			t, ok := ParseTime(raw, loc)
			if !ok {
				return nil, errors.NewValidationError(field.Name, field.Label+" is not a valid time")
			}
			out[field.Name] = t.Format("2006-01-02T15:04:05")
		case field.Kind == FieldIDList:
			ids, err := ParseIDs(raw)
			if err != nil {
				return nil, errors.NewValidationError(field.Name, field.Label+" must be a comma separated list of numbers")
			}
			out[field.Name] = ids
		default:
			out[field.Name] = raw
		}
	}
	return out, nil
}

// ParseIDs reads a comma separated id list, ignoring blanks
func ParseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func joinIDs(v any) string {
	items, ok := v.([]any)
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, scalarText(item))
	}
	return strings.Join(parts, ", ")
}

func isChecked(raw string) bool {
	switch strings.ToLower(raw) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func checkEventWindow(d Draft) error {
	start, ok := ParseTime(d["start_time"], time.UTC)
	if !ok {
		return errors.NewValidationError("start_time", "Start time is not a valid time")
	}
	end, ok := ParseTime(d["end_time"], time.UTC)
	if !ok {
		return errors.NewValidationError("end_time", "End time is not a valid time")
	}
	if !end.After(start) {
		return errors.NewValidationError("end_time", "End time must be after start time")
	}
	return nil
}

func checkReceivers(d Draft) error {
	if d["receiver_type"] != "user" {
		return nil
	}
	ids, err := ParseIDs(d["receiver_ids"])
	if err != nil {
		return errors.NewValidationError("receiver_ids", "User IDs must be a comma separated list of numbers")
	}
	if len(ids) == 0 {
		return errors.NewValidationError("receiver_ids", "User IDs are required when sending to specific users")
	}
	return nil
}

func checkReview(d Draft) error {
	if strings.TrimSpace(d["status"]) == "2" && strings.TrimSpace(d["reject_reason"]) == "" {
		return errors.NewValidationError("reject_reason", "A rejection reason is required")
	}
	return nil
}
