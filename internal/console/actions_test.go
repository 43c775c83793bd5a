package console

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aethra/marketconsole/internal/errors"
	"github.com/aethra/marketconsole/internal/ui"
)

func TestDeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.signedIn(t, "s1")
	require.NoError(t, h.console.Activate(ctx, st, "users"))

	err := h.console.ConfirmDelete(ctx, st, "users", "1")
	var br *errors.BadRequestError
	require.True(t, stderrors.As(err, &br))
	assert.Equal(t, 0, h.backend.count("DELETE /admin/users/1"))

	require.NoError(t, h.console.RequestDelete(ctx, st, "users", "1"))
	assert.Equal(t, 1, countID(st, ui.ConfirmModalID))
	assert.Contains(t, textOf(st, ui.ConfirmModalID), "User #1")
	assert.Equal(t, 0, h.backend.count("DELETE /admin/users/1"))

	// the confirmation belongs to record 1 only
	err = h.console.ConfirmDelete(ctx, st, "users", "2")
	require.True(t, stderrors.As(err, &br))
	assert.Equal(t, 0, h.backend.count("DELETE /admin/users/2"))

	require.NoError(t, h.console.ConfirmDelete(ctx, st, "users", "1"))
	assert.Equal(t, 1, h.backend.count("DELETE /admin/users/1"))
	assert.Equal(t, 0, countID(st, ui.ConfirmModalID))
	assert.Equal(t, 2, h.backend.count("GET /admin/users"))
	assert.Contains(t, toasts(st), "User deleted")

	entries := h.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "delete", entries[0].Action)
	assert.Equal(t, []string{"1"}, entries[0].RecordIDs)
}

func TestCancelledDeleteSendsNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.signedIn(t, "s1")

	require.NoError(t, h.console.RequestDelete(ctx, st, "products", "10"))
	require.NoError(t, h.console.Close(st, ui.KindConfirmDelete))

	err := h.console.ConfirmDelete(ctx, st, "products", "10")
	require.Error(t, err)
	assert.Equal(t, 0, h.backend.count("DELETE /admin/products/10"))
}

func TestDeleteNotOffered(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.signedIn(t, "s1")

	var br *errors.BadRequestError
	require.True(t, stderrors.As(h.console.RequestDelete(ctx, st, "orders", "A1"), &br))
	assert.Equal(t, 0, countID(st, ui.ConfirmModalID))
}

func TestBatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.signedIn(t, "s1")
	require.NoError(t, h.console.Activate(ctx, st, "users"))

	require.NoError(t, h.console.Batch(ctx, st, "disable", []string{"1", "", "2"}))

	assert.Equal(t, map[string]any{"ids": []any{1.0, 2.0}}, h.backend.lastBody("POST /admin/batch/disable"))
	assert.Contains(t, toasts(st), "Batch disable: 2 succeeded, 0 failed")
	assert.Equal(t, 2, h.backend.count("GET /admin/users"))

	entries := h.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "batch:disable", entries[0].Action)
	assert.Equal(t, []string{"1", "2"}, entries[0].RecordIDs)
}

func TestBatchPartialFailure(t *testing.T) {
	h := newHarness(t)
	h.backend.set("POST /admin/batch/cancel", http.StatusOK, gin.H{
		"success_count": 1, "failure_count": 1, "messages": []string{"order A2 already shipped"},
	})
	ctx := context.Background()
	st := h.signedIn(t, "s1")
	require.NoError(t, h.console.Activate(ctx, st, "orders"))

	require.NoError(t, h.console.Batch(ctx, st, "cancel", []string{"A1", "A2"}))
	assert.Equal(t, map[string]any{"ids": []any{"A1", "A2"}}, h.backend.lastBody("POST /admin/batch/cancel"))
	assert.Contains(t, toasts(st), "Batch cancel: 1 succeeded, 1 failed")
}

func TestBatchRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.signedIn(t, "s1")
	require.NoError(t, h.console.Activate(ctx, st, "users"))

	var ve *errors.ValidationError
	require.True(t, stderrors.As(h.console.Batch(ctx, st, "disable", []string{"", ""}), &ve))
	assert.Equal(t, "ids", ve.Field)

	var br *errors.BadRequestError
	require.True(t, stderrors.As(h.console.Batch(ctx, st, "approve", []string{"1"}), &br))

	require.NoError(t, h.console.Activate(ctx, st, "categories"))
	require.True(t, stderrors.As(h.console.Batch(ctx, st, "disable", []string{"1"}), &br))

	assert.Equal(t, 0, h.backend.count("POST /admin/batch/disable"))
	assert.Equal(t, 0, h.backend.count("POST /admin/batch/approve"))
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.signedIn(t, "s1")
	require.NoError(t, h.console.Activate(ctx, st, "products"))

	name, data, err := h.console.Export(ctx, st)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "products-"))
	assert.True(t, strings.HasSuffix(name, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Title,Category,Seller,Current price,Status,Listed", lines[0])
	assert.Contains(t, lines[1], "Koi,Uncategorized")
	assert.Contains(t, lines[1], "¥12.50")
	assert.Contains(t, lines[1], "Unknown")
}

func TestExportUnsupported(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.signedIn(t, "s1")
	require.NoError(t, h.console.Activate(ctx, st, "categories"))

	_, _, err := h.console.Export(ctx, st)
	var br *errors.BadRequestError
	require.True(t, stderrors.As(err, &br))
}

func TestRunAction(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.signedIn(t, "s1")
	require.NoError(t, h.console.Activate(ctx, st, "shops"))

	require.NoError(t, h.console.RunAction(ctx, st, "shops", "7", "verify"))
	assert.Equal(t, 1, h.backend.count("POST /stores/7/verify"))
	assert.Contains(t, toasts(st), "Verify: done")
	assert.Equal(t, 2, h.backend.count("GET /admin/shops"))

	var nf *errors.NotFoundError
	require.True(t, stderrors.As(h.console.RunAction(ctx, st, "shops", "7", "edit"), &nf))
	require.True(t, stderrors.As(h.console.RunAction(ctx, st, "shops", "7", "launch"), &nf))
}

func TestRunActionFailureIsReported(t *testing.T) {
	h := newHarness(t)
	h.backend.set("POST /stores/7/verify", http.StatusConflict, gin.H{"detail": "Shop already verified"})
	ctx := context.Background()
	st := h.signedIn(t, "s1")

	err := h.console.RunAction(ctx, st, "shops", "7", "verify")
	require.Error(t, err)
	h.console.Report(ctx, st, err)
	assert.Contains(t, toasts(st), "Shop already verified")
	assert.True(t, st.Authenticated())
	assert.Empty(t, h.audit.Entries())
}

func TestSaveSettingsChangesPageSize(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.signedIn(t, "s1")

	require.NoError(t, h.console.SaveSettings(ctx, st, map[string]string{"page_size": "50"}))
	assert.Contains(t, toasts(st), "Settings saved")

	require.NoError(t, h.console.Activate(ctx, st, "users"))
	assert.Equal(t, "50", h.backend.lastQuery("GET /admin/users").Get("size"))

	err := h.console.SaveSettings(ctx, st, map[string]string{"page_size": "0"})
	var ve *errors.ValidationError
	require.True(t, stderrors.As(err, &ve))
	assert.Equal(t, "page_size", ve.Field)
}

func TestBatchIDs(t *testing.T) {
	ids := batchIDs([]string{"12", "ORD-7"})
	require.Len(t, ids, 2)
	assert.Equal(t, "12", ids[0].(interface{ String() string }).String())
	assert.Equal(t, "ORD-7", ids[1])
}
