package resources

// Section is a top-level console panel. Its name doubles as the panel's element id.
type Section struct {
	Name     string
	Title    string
	Icon     string
	Resource *Resource
}

const (
	SectionDashboard = "dashboard"
	SectionSettings  = "settings"
)

var sections = []Section{
	{Name: SectionDashboard, Title: "Dashboard", Icon: "speedometer"},
	{Name: "users", Title: "User management", Icon: "people"},
	{Name: "products", Title: "Product management", Icon: "box"},
	{Name: "categories", Title: "Category management", Icon: "tags"},
	{Name: "orders", Title: "Order management", Icon: "receipt"},
	{Name: "shops", Title: "Shop management", Icon: "shop"},
	{Name: "events", Title: "Event management", Icon: "calendar-event"},
	{Name: "messages", Title: "Message management", Icon: "chat"},
	{Name: "store-applications", Title: "Store applications", Icon: "clipboard-check"},
	{Name: SectionSettings, Title: "System settings", Icon: "gear"},
}

func init() {
	for i := range sections {
		if r, ok := Lookup(sections[i].Name); ok {
			sections[i].Resource = r
		}
	}
}

// Sections returns every section in navigation order
func Sections() []Section {
	return sections
}

// LookupSection finds a section by name
func LookupSection(name string) (Section, bool) {
	for _, s := range sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}
