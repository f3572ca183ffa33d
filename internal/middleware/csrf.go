// internal/middleware/csrf.go
package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const DefaultCSRFTokenTTL = 30 * time.Minute

// CSRFTokenStore hands out one-shot tokens for the booking form and the
// inventory tick.
type CSRFTokenStore struct {
	tokens map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
	mutex  sync.RWMutex
}

func NewCSRFTokenStore(ttl time.Duration) *CSRFTokenStore {
	if ttl <= 0 {
		ttl = DefaultCSRFTokenTTL
	}
	return &CSRFTokenStore{
		tokens: make(map[string]time.Time),
		ttl:    ttl,
		now:    time.Now,
	}
}

// RunCleanup drops expired tokens every interval until ctx is done.
func (store *CSRFTokenStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.purge(); n > 0 {
				slog.Debug("expired csrf tokens removed", "count", n)
			}
		}
	}
}

func (store *CSRFTokenStore) purge() int {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	now := store.now()
	removed := 0
	for token, expiry := range store.tokens {
		if now.After(expiry) {
			delete(store.tokens, token)
			removed++
		}
	}
	return removed
}

func (store *CSRFTokenStore) GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(bytes)

	store.mutex.Lock()
	store.tokens[token] = store.now().Add(store.ttl)
	store.mutex.Unlock()

	return token, nil
}

// ConsumeToken validates token and removes it; a token works once.
func (store *CSRFTokenStore) ConsumeToken(token string) bool {
	if token == "" {
		return false
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()

	expiry, exists := store.tokens[token]
	if !exists {
		return false
	}
	delete(store.tokens, token)

	return !store.now().After(expiry)
}

func (store *CSRFTokenStore) Len() int {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	return len(store.tokens)
}

func CSRFMiddleware(store *CSRFTokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get("X-CSRF-Token")
			if token == "" {
				token = r.FormValue("csrf_token")
			}

			if !store.ConsumeToken(token) {
				slog.Debug("csrf check failed", "method", r.Method, "path", r.URL.Path)
				http.Error(w, "Invalid or missing CSRF token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func CSRFTokenHandler(store *CSRFTokenStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := store.GenerateToken()
		if err != nil {
			http.Error(w, "Failed to generate token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		json.NewEncoder(w).Encode(map[string]string{"csrf_token": token})
	}
}
