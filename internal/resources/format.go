package resources

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is rendered for timestamps that are missing or unparseable
const Placeholder = "Unknown"

// Backends emit several ISO-like shapes; naive ones are read in the display zone.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Format holds the display preferences applied while rendering rows
type Format struct {
	TimeLayout string
	Location   *time.Location
	Currency   string
	Language   language.Tag
}

// DefaultFormat matches the console's out-of-the-box settings
func DefaultFormat() Format {
	return Format{
		TimeLayout: "2006-01-02 15:04",
		Location:   time.Local,
		Currency:   "¥",
		Language:   language.English,
	}
}

func (f Format) location() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

// ParseTime accepts the timestamp shapes the backend produces
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Time formats a raw timestamp value; it never fails
func (f Format) Time(v any) string {
	s, ok := v.(string)
	if !ok {
		return Placeholder
	}
	t, ok := ParseTime(s, f.location())
	if !ok {
		return Placeholder
	}
	layout := f.TimeLayout
	if layout == "" {
		layout = DefaultFormat().TimeLayout
	}
	return t.In(f.location()).Format(layout)
}

func (f Format) printer() *message.Printer {
	tag := f.Language
	if tag == language.Und {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// Money renders an amount with the currency symbol, grouping and two decimals
func (f Format) Money(v any) string {
	amount, ok := toFloat(v)
	if !ok {
		if v != nil {
			return "-"
		}
		amount = 0
	}
	return f.Currency + f.printer().Sprintf("%.2f", amount)
}

// Count renders an integer with locale grouping
func (f Format) Count(v any) string {
	if n, ok := toInt(v); ok {
		return f.printer().Sprintf("%d", n)
	}
	if x, ok := toFloat(v); ok {
		return f.printer().Sprintf("%.0f", x)
	}
	return "0"
}
