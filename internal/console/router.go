package console

import (
	"context"
	"net/url"

	"github.com/aethra/marketconsole/internal/errors"
	"github.com/aethra/marketconsole/internal/resources"
	"github.com/aethra/marketconsole/internal/ui"
	"github.com/aethra/marketconsole/internal/view"
)

// Activate shows the named section and runs its loader. An unknown name
// changes nothing and returns a NotFoundError.
func (c *Console) Activate(ctx context.Context, st *State, name string) error {
	sec, ok := resources.LookupSection(name)
	if !ok {
		return errors.NewNotFoundError("section " + name)
	}

	st.mu.Lock()
	if _, err := st.tokenLocked(); err != nil {
		st.mu.Unlock()
		return err
	}
	showSectionLocked(st, sec)
	st.mu.Unlock()

	switch {
	case sec.Name == resources.SectionDashboard:
		return c.LoadDashboard(ctx, st)
	case sec.Name == resources.SectionSettings:
		return c.LoadSettings(ctx, st)
	case sec.Resource != nil:
		return c.Load(ctx, st, sec.Name)
	}
	return nil
}

// Navigate applies the filter carried by q to a resource section, then activates it
func (c *Console) Navigate(ctx context.Context, st *State, name string, q url.Values) error {
	if _, ok := resources.Lookup(name); ok {
		st.mu.Lock()
		st.filters[name] = resources.ParseFilter(q)
		st.mu.Unlock()
	}
	return c.Activate(ctx, st, name)
}

func showSectionLocked(st *State, sec resources.Section) {
	for _, s := range resources.Sections() {
		panel := st.doc.ByID(s.Name)
		if panel == nil {
			continue
		}
		if s.Name == sec.Name {
			view.Show(panel)
		} else {
			view.Hide(panel)
		}
	}
	for _, link := range view.FindAll(st.doc.Root, view.WithClass("nav-item")) {
		if href, _ := view.GetAttr(link, "href"); href == "#"+sec.Name {
			view.AddClass(link, "active")
		} else {
			view.RemoveClass(link, "active")
		}
	}
	if title := st.doc.ByID(ui.PageTitleID); title != nil {
		view.SetText(title, sec.Title)
	}
	st.current = sec.Name
}
