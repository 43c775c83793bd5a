package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/aethra/marketconsole/internal/apiclient"
	"github.com/aethra/marketconsole/internal/audit"
	"github.com/aethra/marketconsole/internal/config"
	"github.com/aethra/marketconsole/internal/session"
	"github.com/aethra/marketconsole/internal/ui"
	"github.com/aethra/marketconsole/internal/view"
)

type reply struct {
	status int
	body   any
}

// fakeBackend answers every route from a table keyed by "METHOD /path" and
// counts the calls it sees
type fakeBackend struct {
	srv *httptest.Server

	mu      sync.Mutex
	replies map[string]reply
	hits    map[string]int
	bodies  map[string][]map[string]any
	queries map[string]url.Values
	gates   map[string]chan struct{}
	arrived map[string]chan struct{}
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fb := &fakeBackend{
		replies: defaultReplies(),
		hits:    make(map[string]int),
		bodies:  make(map[string][]map[string]any),
		queries: make(map[string]url.Values),
		gates:   make(map[string]chan struct{}),
		arrived: make(map[string]chan struct{}),
	}

	r := gin.New()
	r.NoRoute(func(c *gin.Context) {
		key := c.Request.Method + " " + c.Request.URL.Path

		var body map[string]any
		if c.Request.ContentLength > 0 {
			_ = json.NewDecoder(c.Request.Body).Decode(&body)
		}

		fb.mu.Lock()
		fb.hits[key]++
		fb.bodies[key] = append(fb.bodies[key], body)
		fb.queries[key] = c.Request.URL.Query()
		rep, ok := fb.replies[key]
		gate := fb.gates[key]
		arrived := fb.arrived[key]
		fb.mu.Unlock()

		if arrived != nil {
			close(arrived)
		}
		if gate != nil {
			<-gate
		}
		if !ok {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		c.JSON(rep.status, rep.body)
	})

	fb.srv = httptest.NewServer(r)
	t.Cleanup(fb.srv.Close)
	return fb
}

// total counts every call the backend saw
func (fb *fakeBackend) total() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	n := 0
	for _, c := range fb.hits {
		n += c
	}
	return n
}

func defaultReplies() map[string]reply {
	ok := func(body any) reply { return reply{status: http.StatusOK, body: body} }
	return map[string]reply{
		"GET /admin/verify": ok(gin.H{"valid": true, "admin_info": gin.H{"id": 1, "username": "admin"}}),
		"POST /admin/login": ok(gin.H{
			"access_token": "tok",
			"token_type":   "bearer",
			"admin_info":   gin.H{"id": 1, "username": "admin", "email": "admin@example.com"},
		}),
		"GET /admin/dashboard/stats": ok(gin.H{
			"total_users": 1200, "total_products": 340, "today_orders": 12,
			"today_revenue": 1999.5, "month_new_users": 88, "month_revenue": 45000,
		}),
		"GET /admin/statistics/overview": ok(gin.H{
			"daily_users":   []gin.H{{"date": "2024-05-01", "count": 3}, {"date": "2024-05-02", "count": 5}},
			"daily_orders":  []gin.H{{"date": "2024-05-02", "count": 7}},
			"daily_revenue": []gin.H{{"date": "2024-05-02", "amount": 120.5}},
		}),
		"GET /admin/users": ok(gin.H{
			"users": []gin.H{
				{"id": 1, "username": "alice", "status": 1, "created_at": "2024-01-02T03:04:05"},
				{"id": 2, "username": "bob", "status": 2, "created_at": nil},
				{"id": 3, "username": "carol", "status": 3},
			},
			"total": 3, "page": 1, "size": 20,
		}),
		"GET /admin/products": ok(gin.H{
			"products": []gin.H{
				{"id": 10, "title": "Koi", "status": 2, "current_price": 12.5},
				{"id": 11, "title": "Tetra", "status": 1, "current_price": 3},
			},
			"total": 2, "page": 1, "size": 20,
		}),
		"GET /admin/categories": ok(gin.H{"categories": []gin.H{{"id": 1, "name": "Fish", "is_active": true}}, "total": 1}),
		"GET /admin/shops":      ok(gin.H{"shops": []gin.H{{"id": 7, "name": "Pets & Co", "status": 1}}, "total": 1}),
		"GET /admin/users/5":    ok(gin.H{"id": 5, "nickname": "eve", "phone": "555", "status": 2}),
		"POST /admin/batch/disable": ok(gin.H{"success_count": 2, "failure_count": 0, "messages": []string{}}),
	}
}

func (fb *fakeBackend) set(key string, status int, body any) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.replies[key] = reply{status: status, body: body}
}

func (fb *fakeBackend) count(key string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.hits[key]
}

func (fb *fakeBackend) lastBody(key string) map[string]any {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	b := fb.bodies[key]
	if len(b) == 0 {
		return nil
	}
	return b[len(b)-1]
}

func (fb *fakeBackend) lastQuery(key string) url.Values {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.queries[key]
}

func (fb *fakeBackend) reset() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.hits = make(map[string]int)
	fb.bodies = make(map[string][]map[string]any)
	fb.queries = make(map[string]url.Values)
}

// hold makes key block until the returned release is called; arrived closes
// once the request reaches the backend
func (fb *fakeBackend) hold(key string) (arrived <-chan struct{}, release func()) {
	gate := make(chan struct{})
	in := make(chan struct{})
	fb.mu.Lock()
	fb.gates[key] = gate
	fb.arrived[key] = in
	fb.mu.Unlock()
	var once sync.Once
	return in, func() {
		once.Do(func() {
			fb.mu.Lock()
			delete(fb.gates, key)
			delete(fb.arrived, key)
			fb.mu.Unlock()
			close(gate)
		})
	}
}

type harness struct {
	console *Console
	backend *fakeBackend
	tokens  *session.MemoryStore
	audit   *audit.MemoryRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fb := newFakeBackend(t)
	client := apiclient.New(fb.srv.URL)
	tokens := session.NewMemoryStore()
	rec := audit.NewMemoryRecorder(0)

	display := config.Default().Display
	display.TimeZone = "UTC"

	c := New(Options{
		Client:   client,
		Guard:    session.NewGuard(tokens, client, nil, zap.NewNop()),
		Settings: config.NewSettingsService(config.NewMemorySettings(), display, zap.NewNop()),
		Audit:    rec,
		Registry: NewRegistry("Test Console", time.Hour, zap.NewNop()),
		Logger:   zap.NewNop(),
	})
	return &harness{console: c, backend: fb, tokens: tokens, audit: rec}
}

// signedIn starts a session that already holds a valid token
func (h *harness) signedIn(t *testing.T, sid string) *State {
	t.Helper()
	require.NoError(t, h.tokens.Put(context.Background(), sid, "tok"))
	st := h.console.Session(context.Background(), sid)
	require.True(t, st.Authenticated())
	h.backend.reset()
	return st
}

func countID(st *State, id string) int {
	var n int
	st.Inspect(func(doc *view.Document) { n = doc.CountID(id) })
	return n
}

func textOf(st *State, id string) string {
	var s string
	st.Inspect(func(doc *view.Document) {
		if n := doc.ByID(id); n != nil {
			s = view.TextContent(n)
		}
	})
	return s
}

func hidden(st *State, id string) bool {
	var h bool
	st.Inspect(func(doc *view.Document) { h = view.IsHidden(doc.ByID(id)) })
	return h
}

func rowCount(st *State, tableID string) int {
	var n int
	st.Inspect(func(doc *view.Document) {
		body := ui.TableBody(doc, tableID)
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "tr" {
				n++
			}
		}
	})
	return n
}

func toasts(st *State) string {
	return textOf(st, ui.ToastContainerID)
}

func toastCount(st *State) int {
	var n int
	st.Inspect(func(doc *view.Document) {
		if box := doc.ByID(ui.ToastContainerID); box != nil {
			n = len(view.FindAll(box, view.WithClass("toast")))
		}
	})
	return n
}
