package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/aethra/marketconsole/internal/apiclient"
	"github.com/aethra/marketconsole/internal/audit"
	"github.com/aethra/marketconsole/internal/config"
	"github.com/aethra/marketconsole/internal/console"
	"github.com/aethra/marketconsole/internal/session"
	"github.com/aethra/marketconsole/internal/view"
)

const cookieName = "console_session"

// setupBackend fakes the marketplace API with just enough routes for a session
func setupBackend(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	usersLoads := &atomic.Int32{}

	r := gin.New()
	r.GET("/admin/verify", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer tok" {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid": true, "admin_info": gin.H{"id": 1, "username": "admin"}})
	})
	r.POST("/admin/login", func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = c.ShouldBindJSON(&req)
		if req.Username != "admin" || req.Password != "admin123" {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect username or password"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"access_token": "tok", "admin_info": gin.H{"id": 1, "username": "admin"}})
	})
	r.GET("/admin/dashboard/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"total_users": 7})
	})
	r.GET("/admin/statistics/overview", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	r.GET("/admin/users", func(c *gin.Context) {
		usersLoads.Add(1)
		c.JSON(http.StatusOK, gin.H{
			"users": []gin.H{{"id": 1, "username": "alice", "status": 1}},
			"total": 1, "page": 1, "size": 20,
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, usersLoads
}

func setupTestRouter(t *testing.T) (*gin.Engine, *atomic.Int32) {
	t.Helper()
	srv, usersLoads := setupBackend(t)

	client := apiclient.New(srv.URL)
	display := config.Default().Display
	display.TimeZone = "UTC"
	c := console.New(console.Options{
		Client:   client,
		Guard:    session.NewGuard(session.NewMemoryStore(), client, nil, zap.NewNop()),
		Settings: config.NewSettingsService(config.NewMemorySettings(), display, zap.NewNop()),
		Audit:    audit.NewMemoryRecorder(0),
		Registry: console.NewRegistry("Test Console", time.Hour, zap.NewNop()),
	})

	sessionCfg := config.Default().Session
	sessionCfg.CookieName = cookieName
	r := SetupRouter(NewHandler(c, zap.NewNop(), "test"), RouterOptions{
		Session: sessionCfg,
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	})
	return r, usersLoads
}

func do(r *gin.Engine, method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req, _ = http.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == cookieName {
			return ck
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestHealth(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "GET", "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestFirstVisitShowsLogin(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(r, "GET", "/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `id="adminLoginModal"`)

	ck := sessionCookie(t, w)
	assert.True(t, ck.HttpOnly)
	assert.Len(t, ck.Value, 36)
}

func TestProtectedRoutesRedirectWhenSignedOut(t *testing.T) {
	r, usersLoads := setupTestRouter(t)
	ck := sessionCookie(t, do(r, "GET", "/", nil, nil))

	for _, tc := range []struct{ method, path string }{
		{"GET", "/sections/users"},
		{"GET", "/export"},
		{"POST", "/batch/disable"},
		{"POST", "/records/users/1/delete"},
	} {
		w := do(r, tc.method, tc.path, url.Values{}, ck)
		assert.Equal(t, http.StatusSeeOther, w.Code, tc.path)
		assert.Equal(t, "/", w.Header().Get("Location"), tc.path)
	}
	assert.Equal(t, int32(0), usersLoads.Load())
}

func TestLoginThenNavigate(t *testing.T) {
	r, usersLoads := setupTestRouter(t)
	ck := sessionCookie(t, do(r, "GET", "/", nil, nil))

	w := do(r, "POST", "/login", url.Values{"username": {"admin"}, "password": {"admin123"}}, ck)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = do(r, "GET", "/", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	page := w.Body.String()
	assert.NotContains(t, page, `id="adminLoginModal"`)
	assert.Contains(t, page, "Welcome, admin")

	// notices are shown once
	w = do(r, "GET", "/", nil, ck)
	assert.NotContains(t, w.Body.String(), "Welcome, admin")

	w = do(r, "GET", "/sections/users?search=al", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
	assert.Equal(t, int32(1), usersLoads.Load())

	w = do(r, "GET", "/api/session", nil, ck)
	var info map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, true, info["authenticated"])
	assert.Equal(t, "users", info["section"])
}

func TestLoginFailureStaysOnDialog(t *testing.T) {
	r, _ := setupTestRouter(t)
	ck := sessionCookie(t, do(r, "GET", "/", nil, nil))

	w := do(r, "POST", "/login", url.Values{"username": {"admin"}, "password": {"nope"}}, ck)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = do(r, "GET", "/", nil, ck)
	page := w.Body.String()
	assert.Contains(t, page, `id="adminLoginModal"`)
	assert.Contains(t, page, "Incorrect username or password")
}

func TestModalRoundTrip(t *testing.T) {
	r, _ := setupTestRouter(t)
	ck := sessionCookie(t, do(r, "GET", "/", nil, nil))
	do(r, "POST", "/login", url.Values{"username": {"admin"}, "password": {"admin123"}}, ck)

	w := do(r, "GET", "/modals/category/new", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, strings.Count(w.Body.String(), `id="categoryModal"`))

	// missing name is rejected without leaving the dialog
	w = do(r, "POST", "/modals/category/save", url.Values{"name": {""}, "_id": {""}}, ck)
	require.Equal(t, http.StatusSeeOther, w.Code)
	w = do(r, "GET", "/", nil, ck)
	assert.Contains(t, w.Body.String(), "Name is required")
	assert.Contains(t, w.Body.String(), `id="categoryModal"`)

	w = do(r, "POST", "/modals/category/close", url.Values{}, ck)
	require.Equal(t, http.StatusSeeOther, w.Code)
	w = do(r, "GET", "/", nil, ck)
	assert.NotContains(t, w.Body.String(), `id="categoryModal"`)
}

func TestExportDownloadsCSV(t *testing.T) {
	r, _ := setupTestRouter(t)
	ck := sessionCookie(t, do(r, "GET", "/", nil, nil))
	do(r, "POST", "/login", url.Values{"username": {"admin"}, "password": {"admin123"}}, ck)
	do(r, "GET", "/sections/users", nil, ck)

	w := do(r, "GET", "/export", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "users-")
	assert.Contains(t, w.Body.String(), "alice")
}

func TestDraftFromSkipsRecordID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	form := url.Values{"_id": {"5"}, "title": {"Koi"}, "is_active": {"true"}}
	c.Request, _ = http.NewRequest("POST", "/modals/event/save", strings.NewReader(form.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, c.Request.ParseForm())

	d := draftFrom(c)
	assert.Equal(t, "Koi", d["title"])
	assert.Equal(t, "true", d["is_active"])
	_, ok := d["_id"]
	assert.False(t, ok)
}

func signIn(t *testing.T, r *gin.Engine) *http.Cookie {
	t.Helper()
	ck := sessionCookie(t, do(r, "GET", "/", nil, nil))
	w := do(r, "POST", "/login", url.Values{"username": {"admin"}, "password": {"admin123"}}, ck)
	require.Equal(t, http.StatusSeeOther, w.Code)
	// drain the welcome notice
	do(r, "GET", "/", nil, ck)
	return ck
}

func TestFailureShowsOneNotice(t *testing.T) {
	r, _ := setupTestRouter(t)
	ck := signIn(t, r)

	// the fake backend has no products route
	w := do(r, "GET", "/sections/products", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, strings.Count(w.Body.String(), `class="toast `))

	do(r, "GET", "/modals/category/new", nil, ck)
	w = do(r, "POST", "/modals/category/save", url.Values{"name": {""}}, ck)
	require.Equal(t, http.StatusSeeOther, w.Code)
	page := do(r, "GET", "/", nil, ck).Body.String()
	assert.Equal(t, 1, strings.Count(page, `class="toast `))
	assert.Equal(t, 2, strings.Count(page, "Name is required"), "inline error and one notice")
}

func TestBackdropDismissClosesDialog(t *testing.T) {
	r, _ := setupTestRouter(t)
	ck := signIn(t, r)

	w := do(r, "GET", "/modals/category/new", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	doc, err := html.Parse(strings.NewReader(w.Body.String()))
	require.NoError(t, err)

	modal := view.Find(doc, view.HasID("categoryModal"))
	require.NotNil(t, modal)
	backdrop := view.Find(modal, view.WithClass("modal-backdrop"))
	require.NotNil(t, backdrop)
	action, _ := view.GetAttr(backdrop, "action")

	w = do(r, "POST", action, url.Values{}, ck)
	require.Equal(t, http.StatusSeeOther, w.Code)
	page := do(r, "GET", "/", nil, ck).Body.String()
	assert.NotContains(t, page, `id="categoryModal"`)
	assert.NotContains(t, page, `class="modal-backdrop"`)
}

func TestUnsafeRecordIDRejected(t *testing.T) {
	r, _ := setupTestRouter(t)
	ck := signIn(t, r)

	w := do(r, "GET", "/modals/user/1%3Fstatus=3", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `id="userModal"`)
	assert.Contains(t, w.Body.String(), "invalid record id")
}
