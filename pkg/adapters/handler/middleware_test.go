package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/config"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/logging"
)

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{
		JWTSecret: "testservlet",
	}
	mw := NewMiddleware(cfg, logging.NewNop())

	tests := []struct {
		name           string
		path           string
		cookieName     string
		cookieValue    string
		expectedStatus int
		expectedOwner  string
	}{
		{
			name:           "No Cookie - API",
			path:           "/api/v1/links",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "No Cookie - Browser",
			path:           "/dashboard",
			expectedStatus: http.StatusTemporaryRedirect,
		},
		{
			name:           "Invalid Cookie - API",
			path:           "/api/v1/links",
			cookieName:     "auth_token",
			cookieValue:    "invalid",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Secret - API",
			path:           "/api/v1/links",
			cookieName:     "auth_token",
			cookieValue:    generateTestToken(t, "other", "owner-1", time.Minute),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired - API",
			path:           "/api/v1/links",
			cookieName:     "auth_token",
			cookieValue:    generateTestToken(t, cfg.JWTSecret, "owner-1", -time.Minute),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Empty Subject - API",
			path:           "/api/v1/links",
			cookieName:     "auth_token",
			cookieValue:    generateTestToken(t, cfg.JWTSecret, "", time.Minute),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Valid Cookie - API",
			path:           "/api/v1/links",
			cookieName:     "auth_token",
			cookieValue:    generateTestToken(t, cfg.JWTSecret, "owner-1", 5*time.Minute),
			expectedStatus: http.StatusOK,
			expectedOwner:  "owner-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.cookieName != "" {
				req.AddCookie(&http.Cookie{Name: tt.cookieName, Value: tt.cookieValue})
			}

			var gotOwner string
			rr := httptest.NewRecorder()
			handler := mw.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotOwner, _ = OwnerIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedOwner, gotOwner)
		})
	}
}

func TestRequestLogger_RecordsStatus(t *testing.T) {
	mw := NewMiddleware(&config.Config{}, logging.NewNop())
	h := mw.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/x", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func generateTestToken(t *testing.T, secret, subject string, ttl time.Duration) string {
	t.Helper()
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return tokenString
}
