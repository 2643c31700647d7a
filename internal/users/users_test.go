package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cura-service/internal/upstream"
)

type memStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{data: map[string][]byte{}}
}

func (m *memStorage) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return nil, errors.New("key not found")
	}
	return value, nil
}

func (m *memStorage) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return token
}

func upstreamStub(t *testing.T, token string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/me":
			var body struct {
				Email    string `json:"email"`
				Password string `json:"password"`
				OTP      string `json:"otp"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body.Password != "hunter22aa" {
				json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Invalid credentials"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "token": token})
		case "/users/profile":
			require.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"user":    map[string]any{"_id": "u1", "name": "Ada", "email": "ada@example.com", "role": RoleCustomer},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
}

func newTestConf(t *testing.T, handler http.Handler, storage Storage) *Conf {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var conf *Conf
	client, err := upstream.NewClient(srv.URL, func() string {
		if conf == nil {
			return ""
		}
		return conf.Token()
	})
	require.NoError(t, err)
	conf, err = NewConf(client, storage)
	require.NoError(t, err)
	return conf
}

func TestLoginCachesSession(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	storage := newMemStorage()
	conf := newTestConf(t, upstreamStub(t, token), storage)

	result, err := conf.Login(context.Background(), "ada@example.com", "hunter22aa", "")
	require.NoError(t, err)
	require.True(t, result.Success)

	user := conf.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, token, conf.Token())

	// Session is written through to storage.
	cached, err := storage.Get("token")
	require.NoError(t, err)
	assert.Equal(t, token, string(cached))
}

func TestLoginRejection(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	conf := newTestConf(t, upstreamStub(t, token), newMemStorage())

	result, err := conf.Login(context.Background(), "ada@example.com", "wrong-password", "")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid credentials", result.Message)
	assert.Nil(t, conf.CurrentUser())
}

func TestSessionRestoredAcrossRestart(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	storage := newMemStorage()

	first := newTestConf(t, upstreamStub(t, token), storage)
	_, err := first.Login(context.Background(), "ada@example.com", "hunter22aa", "")
	require.NoError(t, err)

	second := newTestConf(t, upstreamStub(t, token), storage)
	user := second.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
}

func TestLogoutClearsSessionButNotStorageOfOthers(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	storage := newMemStorage()
	require.NoError(t, storage.Set("cura-cart", []byte("[]")))

	conf := newTestConf(t, upstreamStub(t, token), storage)
	_, err := conf.Login(context.Background(), "ada@example.com", "hunter22aa", "")
	require.NoError(t, err)

	conf.Logout()
	assert.Nil(t, conf.CurrentUser())
	assert.Empty(t, conf.Token())

	_, err = storage.Get("token")
	assert.Error(t, err)
	// Cart state under the same storage is untouched by logout.
	cartData, err := storage.Get("cura-cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(cartData))
}

func TestExpiredTokenTreatedAsLoggedOut(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Minute))
	storage := newMemStorage()
	require.NoError(t, storage.Set("token", []byte(expired)))
	require.NoError(t, storage.Set("user", []byte(`{"_id":"u1","name":"Ada"}`)))

	conf := newTestConf(t, upstreamStub(t, expired), storage)
	assert.Nil(t, conf.CurrentUser())
	assert.Empty(t, conf.Token())
}

func TestCorruptUserCacheDiscarded(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	storage := newMemStorage()
	require.NoError(t, storage.Set("token", []byte(token)))
	require.NoError(t, storage.Set("user", []byte("{broken")))

	conf := newTestConf(t, upstreamStub(t, token), storage)
	assert.Nil(t, conf.CurrentUser())
}

func TestGarbageTokenTreatedAsExpired(t *testing.T) {
	assert.True(t, tokenExpired("not-a-jwt"))
	assert.False(t, tokenExpired(signedToken(t, time.Now().Add(time.Hour))))
}
