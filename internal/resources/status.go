package resources

import "sort"

// Badge is the text and CSS class shown for a status code
type Badge struct {
	Text  string
	Class string
}

// UnknownBadge is shown for any code outside a resource's table
var UnknownBadge = Badge{Text: "Unknown", Class: "status-inactive"}

// StatusTable maps a status code to its badge. Boolean flags map true to 1.
type StatusTable map[int64]Badge

// Lookup never fails: unrecognised or missing values give UnknownBadge
func (t StatusTable) Lookup(v any) Badge {
	if v == nil {
		return UnknownBadge
	}
	code, ok := toInt(v)
	if !ok {
		return UnknownBadge
	}
	if b, ok := t[code]; ok {
		return b
	}
	return UnknownBadge
}

// Codes lists the table's codes in ascending order
func (t StatusTable) Codes() []int64 {
	codes := make([]int64, 0, len(t))
	for c := range t {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

var (
	UserStatuses = StatusTable{
		1: {"Active", "status-active"},
		2: {"Frozen", "status-inactive"},
		3: {"Banned", "status-banned"},
	}

	ProductStatuses = StatusTable{
		1: {"Pending review", "status-pending"},
		2: {"On auction", "status-active"},
		3: {"Ended", "status-inactive"},
		4: {"Withdrawn", "status-banned"},
	}

	OrderStatuses = StatusTable{
		1: {"Awaiting payment", "status-pending"},
		2: {"Awaiting shipment", "status-warning"},
		3: {"Shipped", "status-info"},
		4: {"Received", "status-success"},
		5: {"Completed", "status-active"},
		6: {"Cancelled", "status-banned"},
	}

	ShopStatuses = StatusTable{
		1: {"Open", "status-active"},
		2: {"Suspended", "status-warning"},
		3: {"Closed", "status-banned"},
	}

	CategoryStatuses = StatusTable{
		1: {"Enabled", "status-active"},
		0: {"Disabled", "status-inactive"},
	}

	EventStatuses = StatusTable{
		1: {"Running", "status-active"},
		0: {"Ended", "status-inactive"},
	}

	MessageStatuses = StatusTable{
		1: {"Read", "status-active"},
		0: {"Unread", "status-pending"},
	}

	ApplicationStatuses = StatusTable{
		0: {"Pending", "status-pending"},
		1: {"Approved", "status-active"},
		2: {"Rejected", "status-banned"},
		3: {"Store opened", "status-success"},
	}
)

// MessageTypes labels the message_type column
var MessageTypes = map[int64]string{
	1: "System",
	2: "Private",
	3: "Auction notice",
	4: "Order notice",
}

// MessageTypeText labels a message type, falling back to "Unknown"
func MessageTypeText(v any) string {
	if v == nil {
		return UnknownBadge.Text
	}
	if code, ok := toInt(v); ok {
		if s, ok := MessageTypes[code]; ok {
			return s
		}
	}
	return UnknownBadge.Text
}
