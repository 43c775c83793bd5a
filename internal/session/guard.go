package session

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aethra/marketconsole/internal/apiclient"
	"github.com/aethra/marketconsole/internal/auth"
	"github.com/aethra/marketconsole/internal/errors"
)

// AdminInfo identifies the logged-in administrator
type AdminInfo struct {
	ID       any    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

type loginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	AdminInfo   *AdminInfo `json:"admin_info"`
	Message     string     `json:"message"`
}

type verifyResponse struct {
	Valid     bool       `json:"valid"`
	AdminInfo *AdminInfo `json:"admin_info"`
}

// Status is the outcome of a session check
type Status struct {
	Authenticated bool
	Token         string
	Admin         *AdminInfo
	// Unreachable is set when a stored token could not be checked
	Unreachable bool
}

// Guard decides whether a console session holds a usable admin token.
// It verifies remotely and fails closed: any doubt means unauthenticated.
type Guard struct {
	store   TokenStore
	client  *apiclient.Client
	limiter *auth.LoginRateLimiter
	logger  *zap.Logger
	now     func() time.Time
}

func NewGuard(store TokenStore, client *apiclient.Client, limiter *auth.LoginRateLimiter, logger *zap.Logger) *Guard {
	if limiter == nil {
		limiter = auth.NewLoginRateLimiter()
	}
	return &Guard{
		store:   store,
		client:  client,
		limiter: limiter,
		logger:  logger.Named("guard"),
		now:     time.Now,
	}
}

// Check reads the stored token and asks the backend whether it is still valid.
// Expired JWTs are dropped without a network call. A 401/403 or an explicit
// "valid": false drops the token too; a network failure keeps it but still
// reports unauthenticated.
func (g *Guard) Check(ctx context.Context, sid string) Status {
	token, ok, err := g.store.Get(ctx, sid)
	if err != nil {
		g.logger.Warn("token store read failed", zap.String("session", sid), zap.Error(err))
		return Status{}
	}
	if !ok || token == "" {
		return Status{}
	}

	if info, err := auth.Inspect(token); err == nil && info.Expired(g.now()) {
		g.logger.Info("stored token expired", zap.String("session", sid), zap.Time("expired_at", info.ExpiresAt))
		g.drop(ctx, sid)
		return Status{}
	}

	var resp verifyResponse
	err = g.client.WithToken(token).Get(ctx, "/admin/verify", nil, &resp)
	if err != nil {
		var re *errors.RequestError
		if stderrors.As(err, &re) && (re.Status == http.StatusUnauthorized || re.Status == http.StatusForbidden) {
			g.drop(ctx, sid)
		}
		g.logger.Info("token verification failed", zap.String("session", sid), zap.Error(err))
		var ne *errors.NetworkError
		return Status{Unreachable: stderrors.As(err, &ne)}
	}
	if !resp.Valid {
		g.drop(ctx, sid)
		return Status{}
	}
	return Status{Authenticated: true, Token: token, Admin: resp.AdminInfo}
}

// Login exchanges credentials for a token and stores it for sid.
// Throttling is keyed by client address and username.
func (g *Guard) Login(ctx context.Context, sid, clientIP, username, password string) (*AdminInfo, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.NewValidationError("username", "Username is required")
	}
	if password == "" {
		return nil, errors.NewValidationError("password", "Password is required")
	}

	key := clientIP + "|" + strings.ToLower(username)
	allowed, _, retryAfter := g.limiter.Allow(key)
	if !allowed {
		g.logger.Warn("login throttled", zap.String("client_ip", clientIP), zap.String("username", username))
		return nil, errors.NewRateLimitError(retryAfter)
	}

	var resp loginResponse
	body := map[string]string{"username": username, "password": password}
	if err := g.client.Post(ctx, "/admin/login", body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		msg := resp.Message
		if msg == "" {
			msg = "login failed"
		}
		return nil, errors.NewAuthError(msg)
	}

	if err := g.store.Put(ctx, sid, resp.AccessToken); err != nil {
		return nil, errors.NewInternalError(err)
	}
	g.limiter.Reset(key)

	admin := resp.AdminInfo
	if admin == nil {
		admin = &AdminInfo{Username: username}
	}
	g.logger.Info("admin logged in", zap.String("session", sid), zap.String("username", admin.Username))
	return admin, nil
}

// Logout forgets the token of sid
func (g *Guard) Logout(ctx context.Context, sid string) error {
	return g.store.Delete(ctx, sid)
}

// Invalidate forgets the token after the backend rejected it
func (g *Guard) Invalidate(ctx context.Context, sid string) {
	g.drop(ctx, sid)
}

// Token returns the stored token without verifying it
func (g *Guard) Token(ctx context.Context, sid string) (string, bool) {
	tok, ok, err := g.store.Get(ctx, sid)
	if err != nil || !ok {
		return "", false
	}
	return tok, true
}

func (g *Guard) drop(ctx context.Context, sid string) {
	if err := g.store.Delete(ctx, sid); err != nil {
		g.logger.Warn("token delete failed", zap.String("session", sid), zap.Error(err))
	}
}
