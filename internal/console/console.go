// Package console runs the admin console's operations against one browser
// session's State: session gating, section routing, loaders, dialogs and notices.
package console

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/aethra/marketconsole/internal/apiclient"
	"github.com/aethra/marketconsole/internal/audit"
	"github.com/aethra/marketconsole/internal/config"
	"github.com/aethra/marketconsole/internal/errors"
	"github.com/aethra/marketconsole/internal/resources"
	"github.com/aethra/marketconsole/internal/session"
	"github.com/aethra/marketconsole/internal/ui"
	"github.com/aethra/marketconsole/internal/view"
)

// Console is shared by every session; per-session data lives in State
type Console struct {
	client   *apiclient.Client
	guard    *session.Guard
	settings *config.SettingsService
	audit    audit.Recorder
	registry *Registry
	logger   *zap.Logger
}

// Options wires a Console
type Options struct {
	Client   *apiclient.Client
	Guard    *session.Guard
	Settings *config.SettingsService
	Audit    audit.Recorder
	Registry *Registry
	Logger   *zap.Logger
}

func New(opts Options) *Console {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rec := opts.Audit
	if rec == nil {
		rec = audit.Nop{}
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry("Market Console", 2*time.Hour, logger)
	}
	return &Console{
		client:   opts.Client,
		guard:    opts.Guard,
		settings: opts.Settings,
		audit:    rec,
		registry: reg,
		logger:   logger.Named("console"),
	}
}

// Registry exposes the session registry, mainly for its sweeper
func (c *Console) Registry() *Registry {
	return c.registry
}

// Session returns the started state of sid. The first call for a session
// checks the stored token and either mounts the login dialog or opens the dashboard.
func (c *Console) Session(ctx context.Context, sid string) *State {
	st := c.registry.Acquire(sid, ui.NewPage)
	// the check outlives a client that goes away mid-request
	st.startOnce.Do(func() { c.start(context.WithoutCancel(ctx), st) })
	return st
}

func (c *Console) start(ctx context.Context, st *State) {
	status := c.guard.Check(ctx, st.ID)

	st.mu.Lock()
	if !status.Authenticated {
		c.mountLoginLocked(st, "", "")
		if status.Unreachable {
			c.notifyLocked(st, "Could not reach the server to verify your session", ui.LevelError)
		}
		st.mu.Unlock()
		return
	}
	c.signInLocked(st, status.Token, status.Admin)
	st.mu.Unlock()

	if err := c.Activate(ctx, st, resources.SectionDashboard); err != nil {
		c.logger.Debug("initial dashboard load failed", zap.String("session", st.ID), zap.Error(err))
	}
}

// Render serialises the document and drains the toasts it showed
func (c *Console) Render(st *State) (string, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	out, err := st.doc.HTML()
	if err != nil {
		return "", errors.NewInternalError(err)
	}
	if box := st.doc.ByID(ui.ToastContainerID); box != nil {
		view.Clear(box)
	}
	return out, nil
}

// expire forgets a token the backend rejected and asks for a new login.
// Open dialogs are torn down; tables keep their rows.
func (c *Console) expire(ctx context.Context, st *State) {
	c.guard.Invalidate(ctx, st.ID)

	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.authenticated {
		return
	}
	st.authenticated = false
	st.token = ""
	st.admin = nil
	for id := range st.modals {
		c.closeModalLocked(st, id)
	}
	c.mountLoginLocked(st, "", "")
	c.notifyLocked(st, "Your session has expired, please log in again", ui.LevelError)
}

// tokenLocked returns the bearer token or an AuthError when signed out
func (st *State) tokenLocked() (string, error) {
	if !st.authenticated {
		return "", errors.NewAuthError("login required")
	}
	return st.token, nil
}

func (c *Console) backend(token string) *apiclient.Client {
	return c.client.WithToken(token)
}

func (c *Console) display(ctx context.Context) config.DisplayConfig {
	if c.settings == nil {
		return config.Default().Display
	}
	d, err := c.settings.Display(ctx)
	if err != nil {
		c.logger.Warn("display settings unavailable, using defaults", zap.Error(err))
	}
	return d
}

// formatFor turns display settings into a row formatter
func formatFor(d config.DisplayConfig) resources.Format {
	f := resources.DefaultFormat()
	if d.TimeLayout != "" {
		f.TimeLayout = d.TimeLayout
	}
	if d.Currency != "" {
		f.Currency = d.Currency
	}
	if loc, err := time.LoadLocation(d.TimeZone); err == nil && d.TimeZone != "" {
		f.Location = loc
	}
	if tag, err := language.Parse(d.Language); err == nil {
		f.Language = tag
	}
	return f
}

func (c *Console) record(ctx context.Context, st *State, e audit.Entry) {
	e.SessionID = st.ID
	st.mu.Lock()
	if st.admin != nil {
		e.Actor = st.admin.Username
	}
	st.mu.Unlock()
	c.audit.Record(ctx, e)
}
