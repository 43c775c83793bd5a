package console

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/aethra/marketconsole/internal/apiclient"
	"github.com/aethra/marketconsole/internal/audit"
	"github.com/aethra/marketconsole/internal/errors"
	"github.com/aethra/marketconsole/internal/resources"
	"github.com/aethra/marketconsole/internal/ui"
)

// OpenCreate shows an empty create dialog of kind
func (c *Console) OpenCreate(ctx context.Context, st *State, kind string) error {
	form, ok := resources.LookupForm(kind)
	if !ok {
		return errors.NewNotFoundError("dialog " + kind)
	}
	if !form.Creatable() {
		return errors.NewBadRequestError("records of this kind cannot be created here")
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, err := st.tokenLocked(); err != nil {
		return err
	}
	st.beginModal(form.ModalID)
	c.mountModalLocked(st, form.ModalID, ui.FormModal(form, "", form.Blank(), nil),
		&openModal{kind: kind, resource: form.Resource})
	return nil
}

// OpenEdit fetches the record and shows it in the kind's dialog. A fetch
// that completes after the dialog was closed or reopened is dropped.
func (c *Console) OpenEdit(ctx context.Context, st *State, kind, id string) error {
	if !resources.ValidID(id) {
		return errors.NewValidationError("id", "invalid record id")
	}
	form, ok := resources.LookupForm(kind)
	if !ok {
		return errors.NewNotFoundError("dialog " + kind)
	}
	res, ok := resources.Lookup(form.Resource)
	if !ok {
		return errors.NewNotFoundError("resource " + form.Resource)
	}
	loc := formatFor(c.display(ctx)).Location

	st.mu.Lock()
	token, err := st.tokenLocked()
	if err != nil {
		st.mu.Unlock()
		return err
	}
	c.closeModalLocked(st, form.ModalID)
	seq := st.beginModal(form.ModalID)
	st.mu.Unlock()

	var rec resources.Record
	if err := c.backend(token).Get(ctx, res.ItemPath(id), nil, &rec); err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.modalSeq[form.ModalID] != seq || !st.authenticated {
		c.logger.Debug("discarding stale dialog fetch", zap.String("session", st.ID), zap.String("modal", form.ModalID))
		return nil
	}
	c.mountModalLocked(st, form.ModalID, ui.FormModal(form, id, form.DraftFrom(rec, loc), nil),
		&openModal{kind: kind, resource: form.Resource, recordID: id})
	return nil
}

// OpenView shows a read-only record. Events also list their products.
func (c *Console) OpenView(ctx context.Context, st *State, resource, id string) error {
	if !resources.ValidID(id) {
		return errors.NewValidationError("id", "invalid record id")
	}
	res, ok := resources.Lookup(resource)
	if !ok {
		return errors.NewNotFoundError("resource " + resource)
	}
	format := formatFor(c.display(ctx))

	st.mu.Lock()
	token, err := st.tokenLocked()
	if err != nil {
		st.mu.Unlock()
		return err
	}
	c.closeModalLocked(st, ui.ViewModalID)
	seq := st.beginModal(ui.ViewModalID)
	st.mu.Unlock()

	var rec, products resources.Record
	cl := c.backend(token)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cl.Get(gctx, res.ItemPath(id), nil, &rec)
	})
	if res.Name == "events" {
		g.Go(func() error {
			return cl.Get(gctx, res.ItemPath(id)+"/products", nil, &products)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var extra []*html.Node
	if res.Name == "events" {
		extra = append(extra, ui.EventProducts(products.List("products"), format))
	}
	title := singular(res) + " details"

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.modalSeq[ui.ViewModalID] != seq || !st.authenticated {
		return nil
	}
	c.mountModalLocked(st, ui.ViewModalID, ui.ViewModal(res, title, rec, format, extra...),
		&openModal{kind: ui.KindView, resource: res.Name, recordID: id})
	return nil
}

// Close tears down the dialog of kind. Closing an absent dialog is a no-op.
func (c *Console) Close(st *State, kind string) error {
	modalID, ok := ui.ModalID(kind)
	if !ok {
		return errors.NewNotFoundError("dialog " + kind)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	c.closeModalLocked(st, modalID)
	return nil
}

// Save validates the open dialog's draft and submits it. Invalid drafts never
// reach the backend; a failed submit leaves the dialog open with its values.
func (c *Console) Save(ctx context.Context, st *State, kind string, draft resources.Draft) error {
	form, ok := resources.LookupForm(kind)
	if !ok {
		return errors.NewNotFoundError("dialog " + kind)
	}
	loc := formatFor(c.display(ctx)).Location

	st.mu.Lock()
	token, err := st.tokenLocked()
	if err != nil {
		st.mu.Unlock()
		return err
	}
	open := st.modals[form.ModalID]
	if open == nil {
		st.mu.Unlock()
		return errors.NewBadRequestError("this dialog is no longer open")
	}
	recordID := open.recordID

	payload, err := c.validate(form, draft, loc)
	if err != nil {
		c.rejectDraftLocked(st, form, recordID, draft, err)
		st.mu.Unlock()
		return reported{err}
	}
	seq := st.modalSeq[form.ModalID]
	st.mu.Unlock()

	method, path := form.SaveRequest(recordID)
	err = c.backend(token).Request(ctx, path, apiclient.RequestOptions{Method: method, Body: payload}, nil)
	if err != nil {
		if errors.IsAuth(err) {
			c.expire(ctx, st)
			return reported{err}
		}
		st.mu.Lock()
		defer st.mu.Unlock()
		if st.modalSeq[form.ModalID] != seq {
			return err
		}
		c.rejectDraftLocked(st, form, recordID, draft, err)
		return reported{err}
	}

	action := "update"
	if recordID == "" {
		action = "create"
	}
	c.record(ctx, st, audit.Entry{
		Action:    action,
		Resource:  form.Resource,
		RecordIDs: nonEmpty(recordID),
		Method:    method,
		Path:      path,
		Payload:   payload,
	})

	st.mu.Lock()
	c.closeModalLocked(st, form.ModalID)
	st.mu.Unlock()
	return c.afterMutation(ctx, st, form.Resource, form.Title+" saved")
}

func (c *Console) validate(form *resources.Form, draft resources.Draft, loc *time.Location) (map[string]any, error) {
	if err := form.Validate(draft); err != nil {
		return nil, err
	}
	return form.Payload(draft, loc)
}

// rejectDraftLocked redraws the dialog with the operator's values and the reason
func (c *Console) rejectDraftLocked(st *State, form *resources.Form, recordID string, draft resources.Draft, err error) {
	fe := &ui.FormError{Message: errors.UserMessage(err)}
	var ve *errors.ValidationError
	if stderrors.As(err, &ve) {
		fe.Field = ve.Field
	}
	st.doc.RemoveID(form.ModalID)
	st.doc.Append(ui.FormModal(form, recordID, draft, fe))
	c.notifyLocked(st, fe.Message, ui.LevelError)
}

// mountModalLocked keeps at most one node per dialog id
func (c *Console) mountModalLocked(st *State, modalID string, node *html.Node, open *openModal) {
	st.doc.RemoveID(modalID)
	st.doc.Append(node)
	st.modals[modalID] = open
}

// closeModalLocked removes the dialog node and invalidates fetches in flight for it
func (c *Console) closeModalLocked(st *State, modalID string) {
	st.doc.RemoveID(modalID)
	delete(st.modals, modalID)
	st.beginModal(modalID)
}

func singular(r *resources.Resource) string {
	name := r.Name
	if strings.HasSuffix(name, "ies") {
		name = strings.TrimSuffix(name, "ies") + "y"
	} else {
		name = strings.TrimSuffix(name, "s")
	}
	name = strings.ReplaceAll(name, "-", " ")
	return strings.ToUpper(name[:1]) + name[1:]
}

func nonEmpty(ids ...string) []string {
	var out []string
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
