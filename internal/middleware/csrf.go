package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type contextKey string

const CSRFTokenKey contextKey = "csrf_token"

const (
	csrfCookie = "csrf_token"
	csrfField  = "csrf_token"
	csrfHeader = "X-CSRF-Token"
)

// tokenSource is swapped in tests.
var tokenSource io.Reader = rand.Reader

func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(tokenSource, b); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// CSRFToken returns the token injected by CSRF, or "" outside it.
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFTokenKey).(string)
	return token
}

// CSRF issues a per-browser token cookie and rejects unsafe requests that do
// not echo it in the csrf_token field or the X-CSRF-Token header. Paths under
// any of the exempt prefixes (the JSON API) are not checked.
func CSRF(exempt ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range exempt {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			// 1. Get or Create Token
			cookie, err := r.Cookie(csrfCookie)
			token := ""
			if err != nil || cookie.Value == "" {
				token, err = GenerateToken()
				if err != nil {
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookie,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			} else {
				token = cookie.Value
			}

			// 2. Validate on unsafe methods
			if !safeMethod(r.Method) {
				reqToken := r.Header.Get(csrfHeader)
				if reqToken == "" {
					reqToken = r.FormValue(csrfField)
				}
				if reqToken != token {
					http.Error(w, "Invalid CSRF Token", http.StatusForbidden)
					return
				}
			}

			// 3. Inject into Context for Templates
			ctx := context.WithValue(r.Context(), CSRFTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
