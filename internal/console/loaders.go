package console

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aethra/marketconsole/internal/errors"
	"github.com/aethra/marketconsole/internal/resources"
	"github.com/aethra/marketconsole/internal/ui"
	"github.com/aethra/marketconsole/internal/view"
)

// trendDays is how many days of activity the dashboard lists
const trendDays = 6

// Load fetches one page of a resource and replaces its table rows.
// A failed load keeps the previous rows and shows an error notice; a result
// overtaken by navigation or a newer load is dropped.
func (c *Console) Load(ctx context.Context, st *State, name string) error {
	res, ok := resources.Lookup(name)
	if !ok {
		return errors.NewNotFoundError("resource " + name)
	}
	display := c.display(ctx)
	format := formatFor(display)

	st.mu.Lock()
	token, err := st.tokenLocked()
	if err != nil {
		st.mu.Unlock()
		return err
	}
	tag := st.beginLoad(name)
	filter := st.filters[name]
	st.mu.Unlock()

	var body resources.Record
	err = c.backend(token).Get(ctx, res.Endpoint, filter.Query(res, display.PageSize), &body)
	if err != nil {
		return c.failLoad(ctx, st, tag, err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.isCurrent(tag) {
		c.logger.Debug("discarding stale load", zap.String("session", st.ID), zap.String("section", name))
		return nil
	}

	recs := body.List(res.ListKey)
	st.rows[name] = recs
	if tbody := ui.TableBody(st.doc, res.TableID); tbody != nil {
		view.Replace(tbody, ui.Rows(res, recs, format)...)
	}
	if pager := st.doc.ByID(ui.PaginationID(res)); pager != nil {
		page, ok := resources.PageOf(body)
		if !ok {
			page = resources.Page{Total: int64(len(recs))}
		}
		view.Replace(pager, ui.Pagination(name, page, filter)...)
	}
	ui.SetFilter(st.doc, res, filter)
	return nil
}

// LoadDashboard fills the stat cards and the activity table. Both backend
// calls run concurrently; either failing fails the load.
func (c *Console) LoadDashboard(ctx context.Context, st *State) error {
	format := formatFor(c.display(ctx))

	st.mu.Lock()
	token, err := st.tokenLocked()
	if err != nil {
		st.mu.Unlock()
		return err
	}
	tag := st.beginLoad(resources.SectionDashboard)
	st.mu.Unlock()

	var stats, overview resources.Record
	cl := c.backend(token)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cl.Get(gctx, "/admin/dashboard/stats", nil, &stats)
	})
	g.Go(func() error {
		return cl.Get(gctx, "/admin/statistics/overview", url.Values{"days": {fmt.Sprint(trendDays)}}, &overview)
	})
	if err := g.Wait(); err != nil {
		return c.failLoad(ctx, st, tag, err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.isCurrent(tag) {
		return nil
	}

	values := map[string]string{
		"total-users":     format.Count(stats["total_users"]),
		"total-products":  format.Count(stats["total_products"]),
		"today-orders":    format.Count(stats["today_orders"]),
		"today-revenue":   format.Money(stats["today_revenue"]),
		"month-new-users": format.Count(stats["month_new_users"]),
		"month-revenue":   format.Money(stats["month_revenue"]),
	}
	for id, v := range values {
		if n := st.doc.ByID(id); n != nil {
			view.SetText(n, v)
		}
	}
	if tbody := ui.TableBody(st.doc, ui.TrendTableID); tbody != nil {
		view.Replace(tbody, ui.TrendRows(trend(overview, trendDays), format)...)
	}
	return nil
}

// trend merges the overview series by date and keeps the last n days
func trend(overview resources.Record, n int) []ui.TrendPoint {
	byDate := map[string]*ui.TrendPoint{}
	point := func(date string) *ui.TrendPoint {
		p, ok := byDate[date]
		if !ok {
			p = &ui.TrendPoint{Date: date}
			byDate[date] = p
		}
		return p
	}
	for _, r := range overview.List("daily_users") {
		point(r.String("date")).Users = r["count"]
	}
	for _, r := range overview.List("daily_orders") {
		point(r.String("date")).Orders = r["count"]
	}
	for _, r := range overview.List("daily_revenue") {
		point(r.String("date")).Revenue = r["amount"]
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		if d != "" {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	if len(dates) > n {
		dates = dates[len(dates)-n:]
	}
	out := make([]ui.TrendPoint, 0, len(dates))
	for _, d := range dates {
		out = append(out, *byDate[d])
	}
	return out
}

// LoadSettings shows the effective display settings
func (c *Console) LoadSettings(ctx context.Context, st *State) error {
	display := c.display(ctx)

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, err := st.tokenLocked(); err != nil {
		return err
	}
	ui.FillSettings(st.doc, display)
	return nil
}

// failLoad applies the failure policy for a load: 401 logs the session out,
// anything else becomes a notice while the table keeps its rows.
func (c *Console) failLoad(ctx context.Context, st *State, tag loadTag, err error) error {
	if errors.IsAuth(err) {
		c.expire(ctx, st)
		return reported{err}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.isCurrent(tag) {
		return nil
	}
	c.notifyLocked(st, "Failed to load "+tag.section+": "+errors.UserMessage(err), ui.LevelError)
	return reported{err}
}
