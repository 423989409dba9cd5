package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/config"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/logging"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	stateCookie     = "oauthstate"
	googleUserInfo  = "https://www.googleapis.com/oauth2/v2/userinfo"
	sessionDuration = 24 * time.Hour
)

type AuthHandler struct {
	oauthConfig   *oauth2.Config
	userInfoURL   string
	jwtSecret     []byte
	frontendURL   string
	allowedEmails []string
	isProduction  bool
	logger        logging.Logger
}

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func NewAuthHandler(cfg *config.Config, logger logging.Logger) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL:   googleUserInfo,
		jwtSecret:     []byte(cfg.JWTSecret),
		frontendURL:   cfg.FrontendURL,
		allowedEmails: cfg.AllowedEmails,
		isProduction:  cfg.IsProduction(),
		logger:        logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := h.generateStateOauthCookie(w)
	url := h.oauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Callback finishes the Google login and issues the session cookie. The JWT
// subject is the stable Google account id, which becomes the owner id.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	oauthState, err := r.Cookie(stateCookie)
	if err != nil {
		h.logger.Warn(ctx, "oauth callback without state cookie", "error", err)
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}
	if r.FormValue("state") != oauthState.Value {
		h.logger.Warn(ctx, "oauth callback state mismatch")
		http.Error(w, "invalid oauth google state", http.StatusBadRequest)
		return
	}

	googleUser, err := h.fetchUser(ctx, r.FormValue("code"))
	if err != nil {
		h.logger.Error(ctx, "oauth callback failed", "error", err)
		http.Error(w, "login failed", http.StatusBadGateway)
		return
	}

	if !h.emailAllowed(googleUser.Email) {
		h.logger.Warn(ctx, "login rejected by allowlist", "email", googleUser.Email)
		http.Error(w, "Access denied: your email is not in the allowlist", http.StatusForbidden)
		return
	}

	tokenString, expiresAt, err := h.issueSession(googleUser.ID)
	if err != nil {
		h.logger.Error(ctx, "failed signing session", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    tokenString,
		Expires:  expiresAt,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info(ctx, "login successful", "owner_id", googleUser.ID)
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) fetchUser(ctx context.Context, code string) (*GoogleUser, error) {
	token, err := h.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	resp, err := h.oauthConfig.Client(ctx, token).Get(h.userInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, errMissingSubject
	}
	return &user, nil
}

var errMissingSubject = errors.New("userinfo response has no account id")

func (h *AuthHandler) emailAllowed(email string) bool {
	if len(h.allowedEmails) == 0 {
		return true
	}
	return slices.ContainsFunc(h.allowedEmails, func(allowed string) bool {
		return strings.EqualFold(strings.TrimSpace(allowed), email)
	})
}

func (h *AuthHandler) issueSession(ownerID string) (string, time.Time, error) {
	expiresAt := time.Now().Add(sessionDuration)
	claims := &jwt.RegisteredClaims{
		Subject:   ownerID,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
	return token, expiresAt, err
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.frontendURL+"/login", http.StatusTemporaryRedirect)
}

func (h *AuthHandler) generateStateOauthCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Expires:  time.Now().Add(20 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return state
}
