package console

import (
	"context"

	"go.uber.org/zap"

	"github.com/aethra/marketconsole/internal/errors"
	"github.com/aethra/marketconsole/internal/resources"
	"github.com/aethra/marketconsole/internal/session"
	"github.com/aethra/marketconsole/internal/ui"
	"github.com/aethra/marketconsole/internal/view"
)

// Login exchanges credentials for a token. On success the login dialog goes
// away and the dashboard opens; on failure the dialog stays with the reason.
func (c *Console) Login(ctx context.Context, st *State, clientIP, username, password string) error {
	admin, err := c.guard.Login(ctx, st.ID, clientIP, username, password)
	if err != nil {
		msg := errors.UserMessage(err)
		st.mu.Lock()
		c.mountLoginLocked(st, username, msg)
		c.notifyLocked(st, "Login failed: "+msg, ui.LevelError)
		st.mu.Unlock()
		return err
	}

	token, ok := c.guard.Token(ctx, st.ID)
	if !ok {
		return errors.NewInternalError(errors.NewAuthError("token was not stored"))
	}

	st.mu.Lock()
	c.signInLocked(st, token, admin)
	st.doc.RemoveID(ui.LoginModalID)
	c.notifyLocked(st, "Welcome, "+admin.Username, ui.LevelSuccess)
	st.mu.Unlock()

	c.logger.Info("console login", zap.String("session", st.ID), zap.String("username", admin.Username))
	return c.Activate(ctx, st, resources.SectionDashboard)
}

// Logout forgets the token, resets the page and shows the login dialog
func (c *Console) Logout(ctx context.Context, st *State) error {
	err := c.guard.Logout(ctx, st.ID)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.reset(ui.NewPage(c.registry.brand))
	c.mountLoginLocked(st, "", "")
	c.notifyLocked(st, "You have been logged out", ui.LevelInfo)
	return err
}

func (c *Console) signInLocked(st *State, token string, admin *session.AdminInfo) {
	st.authenticated = true
	st.token = token
	st.admin = admin
	if n := st.doc.ByID(ui.AdminNameID); n != nil && admin != nil {
		view.SetText(n, admin.Username)
	}
}

// mountLoginLocked replaces any login dialog with a fresh one
func (c *Console) mountLoginLocked(st *State, username, errMsg string) {
	st.doc.RemoveID(ui.LoginModalID)
	st.doc.Append(ui.LoginModal(username, errMsg))
}
