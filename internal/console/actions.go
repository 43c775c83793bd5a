package console

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aethra/marketconsole/internal/audit"
	"github.com/aethra/marketconsole/internal/errors"
	"github.com/aethra/marketconsole/internal/resources"
	"github.com/aethra/marketconsole/internal/ui"
)

// RequestDelete opens the confirmation dialog; nothing is deleted yet
func (c *Console) RequestDelete(ctx context.Context, st *State, resource, id string) error {
	if !resources.ValidID(id) {
		return errors.NewValidationError("id", "invalid record id")
	}
	res, ok := resources.Lookup(resource)
	if !ok {
		return errors.NewNotFoundError("resource " + resource)
	}
	if !res.CanDelete() {
		return errors.NewBadRequestError(singular(res) + " records cannot be deleted")
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, err := st.tokenLocked(); err != nil {
		return err
	}
	label := fmt.Sprintf("%s #%s", singular(res), id)
	st.beginModal(ui.ConfirmModalID)
	c.mountModalLocked(st, ui.ConfirmModalID, ui.ConfirmModal(res, id, label),
		&openModal{kind: ui.KindConfirmDelete, resource: res.Name, recordID: id})
	return nil
}

// ConfirmDelete deletes the record the confirmation dialog was opened for
func (c *Console) ConfirmDelete(ctx context.Context, st *State, resource, id string) error {
	if !resources.ValidID(id) {
		return errors.NewValidationError("id", "invalid record id")
	}
	res, ok := resources.Lookup(resource)
	if !ok {
		return errors.NewNotFoundError("resource " + resource)
	}

	st.mu.Lock()
	token, err := st.tokenLocked()
	if err != nil {
		st.mu.Unlock()
		return err
	}
	open := st.modals[ui.ConfirmModalID]
	if open == nil || open.resource != res.Name || open.recordID != id {
		st.mu.Unlock()
		return errors.NewBadRequestError("delete was not confirmed")
	}
	c.closeModalLocked(st, ui.ConfirmModalID)
	st.mu.Unlock()

	path := res.ItemPath(id)
	if err := c.backend(token).Delete(ctx, path, nil); err != nil {
		return err
	}
	c.record(ctx, st, audit.Entry{
		Action:    "delete",
		Resource:  res.Name,
		RecordIDs: []string{id},
		Method:    "DELETE",
		Path:      path,
	})
	return c.afterMutation(ctx, st, res.Name, singular(res)+" deleted")
}

// RunAction posts a row action such as shop verification
func (c *Console) RunAction(ctx context.Context, st *State, resource, id, action string) error {
	if !resources.ValidID(id) {
		return errors.NewValidationError("id", "invalid record id")
	}
	res, ok := resources.Lookup(resource)
	if !ok {
		return errors.NewNotFoundError("resource " + resource)
	}
	a, ok := res.FindAction(action)
	if !ok || a.Path == "" {
		return errors.NewNotFoundError("action " + action)
	}

	st.mu.Lock()
	token, err := st.tokenLocked()
	st.mu.Unlock()
	if err != nil {
		return err
	}

	path := a.ActionPath(id)
	if err := c.backend(token).Post(ctx, path, nil, nil); err != nil {
		return err
	}
	c.record(ctx, st, audit.Entry{
		Action:    a.Name,
		Resource:  res.Name,
		RecordIDs: []string{id},
		Method:    "POST",
		Path:      path,
	})
	return c.afterMutation(ctx, st, res.Name, a.Label+": done")
}

type batchResult struct {
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	Messages     []string `json:"messages"`
}

// Batch applies action to the selected records of the current section
func (c *Console) Batch(ctx context.Context, st *State, action string, ids []string) error {
	st.mu.Lock()
	token, err := st.tokenLocked()
	if err != nil {
		st.mu.Unlock()
		return err
	}
	section := st.current
	st.mu.Unlock()

	res, ok := resources.Lookup(section)
	if !ok || !res.AllowsBatch(action) {
		return errors.NewBadRequestError("batch " + action + " is not available here")
	}
	selected := nonEmpty(ids...)
	if len(selected) == 0 {
		return errors.NewValidationError("ids", "Select at least one record")
	}

	path := "/admin/batch/" + action
	body := map[string]any{"ids": batchIDs(selected)}
	var result batchResult
	if err := c.backend(token).Post(ctx, path, body, &result); err != nil {
		return err
	}
	c.record(ctx, st, audit.Entry{
		Action:    "batch:" + action,
		Resource:  res.Name,
		RecordIDs: selected,
		Method:    "POST",
		Path:      path,
		Payload:   body,
	})

	msg := fmt.Sprintf("Batch %s: %d succeeded, %d failed", action, result.SuccessCount, result.FailureCount)
	level := ui.LevelSuccess
	if result.FailureCount > 0 {
		level = ui.LevelInfo
	}
	c.Notify(st, msg, level)
	return c.reloadIfCurrent(ctx, st, res.Name)
}

// batchIDs sends numeric ids as numbers and anything else, like order numbers, as text
func batchIDs(ids []string) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		if _, err := strconv.ParseInt(id, 10, 64); err == nil {
			out = append(out, json.Number(id))
			continue
		}
		out = append(out, id)
	}
	return out
}

// Export renders the rows loaded for the current section as CSV
func (c *Console) Export(ctx context.Context, st *State) (string, []byte, error) {
	format := formatFor(c.display(ctx))

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, err := st.tokenLocked(); err != nil {
		return "", nil, err
	}
	res, ok := resources.Lookup(st.current)
	if !ok || !res.Exportable {
		return "", nil, errors.NewBadRequestError("export is not supported for this section")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := make([]string, 0, len(res.Columns))
	for _, col := range res.Columns {
		header = append(header, col.Title)
	}
	if err := w.Write(header); err != nil {
		return "", nil, errors.NewInternalError(err)
	}
	for _, rec := range st.rows[res.Name] {
		line := make([]string, 0, len(res.Columns))
		for _, col := range res.Columns {
			line = append(line, res.Cell(rec, col, format))
		}
		if err := w.Write(line); err != nil {
			return "", nil, errors.NewInternalError(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, errors.NewInternalError(err)
	}

	name := fmt.Sprintf("%s-%s.csv", res.Name, time.Now().In(format.Location).Format("20060102-150405"))
	return name, buf.Bytes(), nil
}

// SaveSettings stores new display settings and redraws the current section with them
func (c *Console) SaveSettings(ctx context.Context, st *State, values map[string]string) error {
	st.mu.Lock()
	_, err := st.tokenLocked()
	st.mu.Unlock()
	if err != nil {
		return err
	}
	if c.settings == nil {
		return errors.NewBadRequestError("settings are read-only")
	}

	d, err := c.settings.UpdateDisplay(ctx, values)
	if err != nil {
		return err
	}
	payload := make(map[string]any, len(values))
	for k, v := range values {
		payload[k] = v
	}
	c.record(ctx, st, audit.Entry{Action: "settings", Resource: "settings", Payload: payload})

	st.mu.Lock()
	ui.FillSettings(st.doc, d)
	c.notifyLocked(st, "Settings saved", ui.LevelSuccess)
	st.mu.Unlock()
	return nil
}

func (c *Console) afterMutation(ctx context.Context, st *State, resource, message string) error {
	c.Notify(st, message, ui.LevelSuccess)
	return c.reloadIfCurrent(ctx, st, resource)
}

func (c *Console) reloadIfCurrent(ctx context.Context, st *State, resource string) error {
	if st.Current() != resource {
		return nil
	}
	return c.Load(ctx, st, resource)
}
