// Package users owns the authentication session: it wraps the
// upstream user API and caches the issued token and profile in local
// storage, so the session survives restarts the way a browser session
// survives reloads. The cart is deliberately untouched by login and
// logout; it is scoped to the device, not the account.
package users

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cura-service/internal/upstream"
	"cura-service/pkg/logkey"
)

// Storage keys for the cached session.
const (
	tokenKey = "token"
	userKey  = "user"
)

// Storage is the durable key-value store the session is cached in.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

type Conf struct {
	client  *upstream.Client
	storage Storage

	mu    sync.Mutex
	token string
	user  *User
}

// NewConf restores any cached session from storage. A corrupt cache is
// cleared and the session starts logged out; construction never fails
// for cache trouble.
func NewConf(client *upstream.Client, storage Storage) (*Conf, error) {
	if client == nil {
		return nil, fmt.Errorf("upstream client is nil")
	}
	if storage == nil {
		return nil, fmt.Errorf("storage is nil")
	}
	c := &Conf{client: client, storage: storage}
	c.restore()
	return c, nil
}

func (c *Conf) restore() {
	token, err := c.storage.Get(tokenKey)
	if err != nil {
		return
	}
	userData, err := c.storage.Get(userKey)
	if err != nil {
		return
	}
	var user User
	if err := json.Unmarshal(userData, &user); err != nil {
		slog.Warn("discarding unreadable session cache", slog.String(logkey.ERROR, err.Error()))
		c.clearSession()
		return
	}
	c.token = string(token)
	c.user = &user
}

// Login authenticates against the upstream. Accounts with OTP enabled
// get {RequiresOTP: true} on the first call; the caller retries with
// the code. On success the token and profile are cached.
func (c *Conf) Login(ctx context.Context, email, password, otp string) (LoginResult, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		OTP      string `json:"otp,omitempty"`
	}{email, password, otp}

	var resp struct {
		Success     bool   `json:"success"`
		Token       string `json:"token"`
		RequiresOTP bool   `json:"requiresOTP"`
		Message     string `json:"message"`
	}
	if err := c.client.Post(ctx, "/users/me", body, &resp); err != nil {
		return LoginResult{}, fmt.Errorf("login request failed: %w", err)
	}
	if !resp.Success || resp.Token == "" {
		return LoginResult{Success: false, RequiresOTP: resp.RequiresOTP, Message: resp.Message}, nil
	}

	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()

	// Fetch the profile so CurrentUser works offline afterwards. A
	// failure here leaves the token usable; the profile fills in on
	// the next GetProfile.
	if user, err := c.GetProfile(ctx); err != nil {
		slog.Warn("failed to fetch profile after login", slog.String(logkey.ERROR, err.Error()))
	} else {
		c.mu.Lock()
		c.user = user
		c.mu.Unlock()
	}
	c.saveSession()
	return LoginResult{Success: true}, nil
}

func (c *Conf) Register(ctx context.Context, newUser NewUser) (RegisterResult, error) {
	var resp struct {
		Success bool   `json:"success"`
		User    *User  `json:"User"`
		Message string `json:"message"`
	}
	if err := c.client.Post(ctx, "/users/register", newUser, &resp); err != nil {
		return RegisterResult{}, fmt.Errorf("registration request failed: %w", err)
	}
	return RegisterResult{Success: resp.Success, User: resp.User, Message: resp.Message}, nil
}

func (c *Conf) VerifyOTP(ctx context.Context, userID, otp string) error {
	body := struct {
		UserID string `json:"userId"`
		OTP    string `json:"otp"`
	}{userID, otp}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.client.Post(ctx, "/users/verify-email-otp", body, &resp); err != nil {
		return fmt.Errorf("otp verification request failed: %w", err)
	}
	if !resp.Success {
		return upstream.Failure("otp verification failed", resp.Message)
	}
	return nil
}

func (c *Conf) GetProfile(ctx context.Context) (*User, error) {
	var resp struct {
		Success bool   `json:"success"`
		User    User   `json:"user"`
		Message string `json:"message"`
	}
	if err := c.client.Get(ctx, "/users/profile", &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if !resp.Success {
		return nil, upstream.Failure("failed to fetch profile", resp.Message)
	}

	c.mu.Lock()
	c.user = &resp.User
	c.mu.Unlock()
	c.saveSession()
	return &resp.User, nil
}

func (c *Conf) UpdateProfile(ctx context.Context, updates map[string]any) (*User, error) {
	var resp struct {
		Success bool   `json:"success"`
		User    User   `json:"user"`
		Message string `json:"message"`
	}
	if err := c.client.Put(ctx, "/users/profile", updates, &resp); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if !resp.Success {
		return nil, upstream.Failure("failed to update profile", resp.Message)
	}

	c.mu.Lock()
	c.user = &resp.User
	c.mu.Unlock()
	c.saveSession()
	return &resp.User, nil
}

// Logout drops the session locally. There is no upstream call; the
// token is simply forgotten. The cart is not cleared.
func (c *Conf) Logout() {
	c.mu.Lock()
	c.token = ""
	c.user = nil
	c.mu.Unlock()
	c.clearSession()
}

// CurrentUser returns the signed-in user, or nil when there is no
// session or the cached token has expired. Expiry is read from the
// token's registered claims; the signature belongs to the upstream and
// is not verified here.
func (c *Conf) CurrentUser() *User {
	c.mu.Lock()
	token, user := c.token, c.user
	c.mu.Unlock()

	if token == "" || user == nil {
		return nil
	}
	if tokenExpired(token) {
		slog.Info("cached session token expired, logging out")
		c.Logout()
		return nil
	}
	return user
}

// Token returns the bearer token for upstream requests, empty when
// logged out.
func (c *Conf) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func tokenExpired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		// An unparseable token is useless; treat it as expired.
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}

func (c *Conf) saveSession() {
	c.mu.Lock()
	token, user := c.token, c.user
	c.mu.Unlock()

	if token == "" || user == nil {
		return
	}
	userData, err := json.Marshal(user)
	if err != nil {
		slog.Error("failed to serialize session", slog.String(logkey.ERROR, err.Error()))
		return
	}
	if err := c.storage.Set(tokenKey, []byte(token)); err != nil {
		slog.Error("failed to persist session token", slog.String(logkey.ERROR, err.Error()))
		return
	}
	if err := c.storage.Set(userKey, userData); err != nil {
		slog.Error("failed to persist session user", slog.String(logkey.ERROR, err.Error()))
	}
}

func (c *Conf) clearSession() {
	for _, key := range []string{tokenKey, userKey} {
		if err := c.storage.Delete(key); err != nil {
			slog.Error("failed to clear session cache", slog.String(logkey.ERROR, err.Error()))
		}
	}
}
