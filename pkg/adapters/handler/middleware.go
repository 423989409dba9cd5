package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/config"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/logging"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/metrics"
)

const authCookie = "auth_token"

type ctxKey int

const ownerIDKey ctxKey = iota

// OwnerIDFromContext returns the authenticated owner id set by AuthMiddleware.
func OwnerIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ownerIDKey).(string)
	return id, ok && id != ""
}

func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

type Middleware struct {
	jwtSecret []byte
	logger    logging.Logger
}

func NewMiddleware(cfg *config.Config, logger logging.Logger) *Middleware {
	return &Middleware{
		jwtSecret: []byte(cfg.JWTSecret),
		logger:    logger,
	}
}

// AuthMiddleware verifies the JWT token from the cookie and puts its subject,
// the owner id, on the request context.
func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookie)
		if err != nil {
			m.unauthorized(w, r)
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
			return m.jwtSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || !token.Valid || claims.Subject == "" {
			m.logger.Debug(r.Context(), "rejected session token", "path", r.URL.Path, "error", err)
			m.unauthorized(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithOwnerID(r.Context(), claims.Subject)))
	})
}

func (m *Middleware) unauthorized(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "sign in required"})
		return
	}
	http.Redirect(w, r, "/auth/google/login", http.StatusTemporaryRedirect)
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs every request and records its latency.
func (m *Middleware) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		metrics.HTTPDuration.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Observe(elapsed.Seconds())
		m.logger.Info(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}
