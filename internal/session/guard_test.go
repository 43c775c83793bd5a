package session

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aethra/marketconsole/internal/apiclient"
	"github.com/aethra/marketconsole/internal/auth"
	"github.com/aethra/marketconsole/internal/errors"
)

type fakeBackend struct {
	srv         *httptest.Server
	verifyCalls atomic.Int32
	loginCalls  atomic.Int32
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fb := &fakeBackend{}
	r := gin.New()

	r.GET("/admin/verify", func(c *gin.Context) {
		fb.verifyCalls.Add(1)
		switch c.GetHeader("Authorization") {
		case "Bearer good":
			c.JSON(http.StatusOK, gin.H{"valid": true, "admin_info": gin.H{"id": 1, "username": "admin"}})
		case "Bearer revoked":
			c.JSON(http.StatusOK, gin.H{"valid": false})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
		}
	})
	r.POST("/admin/login", func(c *gin.Context) {
		fb.loginCalls.Add(1)
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = c.ShouldBindJSON(&req)
		if req.Username == "admin" && req.Password == "admin123" {
			c.JSON(http.StatusOK, gin.H{
				"access_token": "good",
				"token_type":   "bearer",
				"admin_info":   gin.H{"id": 1, "username": "admin", "email": "admin@example.com"},
			})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect username or password"})
	})

	fb.srv = httptest.NewServer(r)
	t.Cleanup(fb.srv.Close)
	return fb
}

func newGuard(fb *fakeBackend) (*Guard, *MemoryStore) {
	store := NewMemoryStore()
	return NewGuard(store, apiclient.New(fb.srv.URL), auth.NewLoginRateLimiter(), zap.NewNop()), store
}

func expiredJWT(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	s, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func TestCheckWithoutToken(t *testing.T) {
	fb := newFakeBackend(t)
	g, _ := newGuard(fb)

	st := g.Check(context.Background(), "sid")
	assert.False(t, st.Authenticated)
	assert.Equal(t, int32(0), fb.verifyCalls.Load())
}

func TestCheckValidToken(t *testing.T) {
	fb := newFakeBackend(t)
	g, store := newGuard(fb)
	require.NoError(t, store.Put(context.Background(), "sid", "good"))

	st := g.Check(context.Background(), "sid")
	assert.True(t, st.Authenticated)
	assert.Equal(t, "good", st.Token)
	require.NotNil(t, st.Admin)
	assert.Equal(t, "admin", st.Admin.Username)
}

func TestCheckExpiredTokenSkipsNetwork(t *testing.T) {
	fb := newFakeBackend(t)
	g, store := newGuard(fb)
	require.NoError(t, store.Put(context.Background(), "sid", expiredJWT(t)))

	assert.False(t, g.Check(context.Background(), "sid").Authenticated)
	assert.Equal(t, int32(0), fb.verifyCalls.Load())
	_, ok, _ := store.Get(context.Background(), "sid")
	assert.False(t, ok)
}

func TestCheckRejectedTokensAreDropped(t *testing.T) {
	for _, tok := range []string{"stale", "revoked"} {
		t.Run(tok, func(t *testing.T) {
			fb := newFakeBackend(t)
			g, store := newGuard(fb)
			require.NoError(t, store.Put(context.Background(), "sid", tok))

			assert.False(t, g.Check(context.Background(), "sid").Authenticated)
			_, ok, _ := store.Get(context.Background(), "sid")
			assert.False(t, ok)
		})
	}
}

func TestCheckNetworkFailureFailsClosed(t *testing.T) {
	fb := newFakeBackend(t)
	g, store := newGuard(fb)
	require.NoError(t, store.Put(context.Background(), "sid", "good"))
	fb.srv.Close()

	status := g.Check(context.Background(), "sid")
	assert.False(t, status.Authenticated)
	assert.True(t, status.Unreachable)
	tok, ok, _ := store.Get(context.Background(), "sid")
	assert.True(t, ok, "token survives a network failure")
	assert.Equal(t, "good", tok)
}

func TestLogin(t *testing.T) {
	fb := newFakeBackend(t)
	g, store := newGuard(fb)

	admin, err := g.Login(context.Background(), "sid", "10.0.0.1", "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", admin.Email)

	tok, ok, _ := store.Get(context.Background(), "sid")
	assert.True(t, ok)
	assert.Equal(t, "good", tok)
}

func TestLoginFailureCarriesServerMessage(t *testing.T) {
	fb := newFakeBackend(t)
	g, store := newGuard(fb)

	_, err := g.Login(context.Background(), "sid", "10.0.0.1", "admin", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Incorrect username or password", errors.UserMessage(err))
	_, ok, _ := store.Get(context.Background(), "sid")
	assert.False(t, ok)
}

func TestLoginValidationAndThrottle(t *testing.T) {
	fb := newFakeBackend(t)
	g, _ := newGuard(fb)

	_, err := g.Login(context.Background(), "sid", "10.0.0.1", " ", "x")
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, int32(0), fb.loginCalls.Load())

	for i := 0; i < 5; i++ {
		_, err = g.Login(context.Background(), "sid", "10.0.0.1", "admin", "wrong")
		require.Error(t, err)
	}
	_, err = g.Login(context.Background(), "sid", "10.0.0.1", "admin", "admin123")
	var rl *errors.RateLimitError
	require.True(t, stderrors.As(err, &rl))
	assert.Equal(t, int32(5), fb.loginCalls.Load(), "throttled attempts never reach the backend")
}

func TestLogout(t *testing.T) {
	g, store := newGuard(newFakeBackend(t))
	require.NoError(t, store.Put(context.Background(), "sid", "good"))
	require.NoError(t, g.Logout(context.Background(), "sid"))
	_, ok := g.Token(context.Background(), "sid")
	assert.False(t, ok)
}
