package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/bloomhaus/petalboard-backend/api/middleware"
	"github.com/bloomhaus/petalboard-backend/api/responses"
	"github.com/bloomhaus/petalboard-backend/api/validators"
	"github.com/bloomhaus/petalboard-backend/internal/auth"
	"github.com/bloomhaus/petalboard-backend/pkg/config"
	pkgerrors "github.com/bloomhaus/petalboard-backend/pkg/errors"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
)

// Login verifies credentials and returns a token pair. The access token is
// also set as a cookie so the browser pages share the session.
func Login(svc *auth.Service, jwtCfg config.JWTConfig, appCfg config.AppConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Login(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, resp.AccessToken, jwtCfg, appCfg)
		responses.WriteSuccess(w, resp)
	}
}

// Register creates a new account.
func Register(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// Refresh rotates the refresh session and mints a new token pair.
func Refresh(svc *auth.Service, jwtCfg config.JWTConfig, appCfg config.AppConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Refresh(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, resp.AccessToken, jwtCfg, appCfg)
		responses.WriteSuccess(w, resp)
	}
}

// Logout revokes the session behind the presented token and clears the
// browser cookie.
func Logout(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerOrCookieToken(r)
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		if err := svc.Logout(r.Context(), token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clearSessionCookie(w)
		responses.WriteSuccess(w, map[string]string{"status": "signed out"})
	}
}

func setSessionCookie(w http.ResponseWriter, token string, jwtCfg config.JWTConfig, appCfg config.AppConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   jwtCfg.ExpirationMinutes * 60,
		Expires:  time.Now().Add(time.Duration(jwtCfg.ExpirationMinutes) * time.Minute),
		HttpOnly: true,
		Secure:   appCfg.IsProd(),
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func bearerOrCookieToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw != "" {
		if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			return strings.TrimSpace(raw[7:])
		}
		return raw
	}
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
