// Package api contains the HTTP surface of the console
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aethra/marketconsole/internal/console"
	"github.com/aethra/marketconsole/internal/errors"
)

// Handler contains all console handlers
type Handler struct {
	console *console.Console
	logger  *zap.Logger
	version string
	started time.Time
}

// NewHandler creates a new console handler
func NewHandler(c *console.Console, logger *zap.Logger, version string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		console: c,
		logger:  logger.Named("http"),
		version: version,
		started: time.Now(),
	}
}

// =============================================================================
// PAGE
// =============================================================================

// Page renders the console for the caller's session
// GET /
func (h *Handler) Page(c *gin.Context) {
	h.render(c, stateOf(c))
}

// render writes the session's document. Pending notices go out with it.
func (h *Handler) render(c *gin.Context, st *console.State) {
	out, err := h.console.Render(st)
	if err != nil {
		h.logger.Error("render failed", zap.String("session", st.ID), zap.Error(err))
		status, body := errors.ToHTTPError(err)
		c.JSON(status, body)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out))
}

// done finishes a form post: failures become notices, then the browser is
// sent back to the page
func (h *Handler) done(c *gin.Context, st *console.State, err error) {
	if err != nil {
		h.logger.Debug("console operation failed",
			zap.String("session", st.ID),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		h.console.Report(c.Request.Context(), st, err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// show finishes a GET that changed what the page displays
func (h *Handler) show(c *gin.Context, st *console.State, err error) {
	if err != nil {
		h.console.Report(c.Request.Context(), st, err)
	}
	h.render(c, st)
}

// =============================================================================
// JSON ENDPOINTS
// =============================================================================

// Health returns the health status
// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "market-console",
		"version":  h.version,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"sessions": h.console.Registry().Len(),
	})
}

// SessionInfo reports whether the caller's console session is signed in
// GET /api/session
func (h *Handler) SessionInfo(c *gin.Context) {
	st := stateOf(c)
	c.JSON(http.StatusOK, gin.H{
		"authenticated": st.Authenticated(),
		"section":       st.Current(),
	})
}
