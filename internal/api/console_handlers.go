package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aethra/marketconsole/internal/config"
	"github.com/aethra/marketconsole/internal/errors"
	"github.com/aethra/marketconsole/internal/resources"
	"github.com/aethra/marketconsole/internal/ui"
)

// =============================================================================
// SESSION
// =============================================================================

// Login exchanges the submitted credentials for a backend token
// POST /login
func (h *Handler) Login(c *gin.Context) {
	st := stateOf(c)
	// a failure is already shown in the login dialog
	if err := h.console.Login(c.Request.Context(), st, c.ClientIP(), c.PostForm("username"), c.PostForm("password")); err != nil {
		h.logger.Info("console login rejected", zap.String("client_ip", c.ClientIP()), zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout forgets the session's token
// POST /logout
func (h *Handler) Logout(c *gin.Context) {
	st := stateOf(c)
	h.done(c, st, h.console.Logout(c.Request.Context(), st))
}

// =============================================================================
// SECTIONS
// =============================================================================

// Section activates a section, applying list filters from the query
// GET /sections/:name
func (h *Handler) Section(c *gin.Context) {
	st := stateOf(c)
	err := h.console.Navigate(c.Request.Context(), st, c.Param("name"), c.Request.URL.Query())
	h.show(c, st, err)
}

// Export downloads the current table as CSV
// GET /export
func (h *Handler) Export(c *gin.Context) {
	st := stateOf(c)
	name, data, err := h.console.Export(c.Request.Context(), st)
	if err != nil {
		h.done(c, st, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// Settings stores display settings
// POST /settings
func (h *Handler) Settings(c *gin.Context) {
	st := stateOf(c)
	values := map[string]string{}
	for _, key := range []string{config.KeyPageSize, config.KeyCurrency, config.KeyTimeLayout, config.KeyTimeZone} {
		if v, ok := c.GetPostForm(key); ok {
			values[key] = v
		}
	}
	h.done(c, st, h.console.SaveSettings(c.Request.Context(), st, values))
}

// =============================================================================
// MODALS
// =============================================================================

// OpenModal opens a dialog: "new" gives an empty create dialog, any other id
// the view or edit dialog of that record
// GET /modals/:kind/:id
func (h *Handler) OpenModal(c *gin.Context) {
	st := stateOf(c)
	ctx := c.Request.Context()
	kind, id := c.Param("kind"), c.Param("id")

	var err error
	switch {
	case id == "new":
		err = h.console.OpenCreate(ctx, st, kind)
	case kind == ui.KindView:
		err = h.console.OpenView(ctx, st, c.Query("resource"), id)
	default:
		err = h.console.OpenEdit(ctx, st, kind, id)
	}
	h.show(c, st, err)
}

// SaveRecord submits the open dialog of kind
// POST /modals/:kind/save
func (h *Handler) SaveRecord(c *gin.Context) {
	st := stateOf(c)
	if err := c.Request.ParseForm(); err != nil {
		h.done(c, st, errors.NewBadRequestError("invalid form"))
		return
	}
	h.done(c, st, h.console.Save(c.Request.Context(), st, c.Param("kind"), draftFrom(c)))
}

// CloseModal tears down the dialog of kind
// POST /modals/:kind/close
func (h *Handler) CloseModal(c *gin.Context) {
	st := stateOf(c)
	h.done(c, st, h.console.Close(st, c.Param("kind")))
}

// draftFrom collects the posted form fields. Unchecked checkboxes are absent.
func draftFrom(c *gin.Context) resources.Draft {
	d := resources.Draft{}
	for key, vals := range c.Request.PostForm {
		if key == ui.IDField || len(vals) == 0 {
			continue
		}
		d[key] = strings.Join(vals, ",")
	}
	return d
}

// =============================================================================
// RECORD ACTIONS
// =============================================================================

// RequestDelete asks for confirmation before deleting
// POST /records/:resource/:id/delete
func (h *Handler) RequestDelete(c *gin.Context) {
	st := stateOf(c)
	h.done(c, st, h.console.RequestDelete(c.Request.Context(), st, c.Param("resource"), c.Param("id")))
}

// ConfirmDelete deletes the record the confirmation was opened for
// POST /records/:resource/:id/delete/confirm
func (h *Handler) ConfirmDelete(c *gin.Context) {
	st := stateOf(c)
	h.done(c, st, h.console.ConfirmDelete(c.Request.Context(), st, c.Param("resource"), c.Param("id")))
}

// RunAction posts a row action
// POST /records/:resource/:id/action/:action
func (h *Handler) RunAction(c *gin.Context) {
	st := stateOf(c)
	h.done(c, st, h.console.RunAction(c.Request.Context(), st, c.Param("resource"), c.Param("id"), c.Param("action")))
}

// Batch applies an action to the selected rows
// POST /batch/:action
func (h *Handler) Batch(c *gin.Context) {
	st := stateOf(c)
	h.done(c, st, h.console.Batch(c.Request.Context(), st, c.Param("action"), c.PostFormArray("ids")))
}
