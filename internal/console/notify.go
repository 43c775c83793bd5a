package console

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/aethra/marketconsole/internal/errors"
	"github.com/aethra/marketconsole/internal/ui"
)

// Notify shows a toast and logs the message
func (c *Console) Notify(st *State, message string, level ui.Level) {
	st.mu.Lock()
	defer st.mu.Unlock()
	c.notifyLocked(st, message, level)
}

func (c *Console) notifyLocked(st *State, message string, level ui.Level) {
	if box := st.doc.ByID(ui.ToastContainerID); box != nil {
		box.AppendChild(ui.Toast(message, level))
	}
	fields := []zap.Field{zap.String("session", st.ID), zap.String("level", string(level))}
	if level == ui.LevelError {
		c.logger.Warn(message, fields...)
		return
	}
	c.logger.Info(message, fields...)
}

// reported wraps an error whose notice the operation already showed
type reported struct {
	error
}

func (r reported) Unwrap() error {
	return r.error
}

// Report turns err into a notice, taking the auth path for a rejected token.
// Errors the operation already surfaced are skipped.
func (c *Console) Report(ctx context.Context, st *State, err error) {
	if err == nil {
		return
	}
	var done reported
	if stderrors.As(err, &done) {
		return
	}
	if errors.IsAuth(err) {
		c.expire(ctx, st)
		return
	}
	c.Notify(st, errors.UserMessage(err), ui.LevelError)
}
