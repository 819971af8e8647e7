// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/danielhkuo/pollhall/auth"
	"github.com/danielhkuo/pollhall/models"
)

type contextKey int

const accountKey contextKey = iota

// WithAccount resolves the session cookie to an account and stores it in
// the request context. Requests without a valid session pass through
// anonymously; a cookie for a deleted account is cleared.
func WithAccount(db *sql.DB, secret string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil || cookie.Value == "" {
				next(w, r)
				return
			}

			session, err := auth.ParseSessionToken(cookie.Value, secret)
			if err != nil {
				ClearSessionCookie(w)
				next(w, r)
				return
			}

			var account models.Account
			err = db.QueryRowContext(r.Context(), `
				SELECT id, email, password_hash, is_staff, joined_at
				FROM account
				WHERE id = $1
			`, session.AccountID).Scan(&account.ID, &account.Email, &account.PasswordHash, &account.IsStaff, &account.JoinedAt)

			if errors.Is(err, sql.ErrNoRows) {
				ClearSessionCookie(w)
				next(w, r)
				return
			}
			if err != nil {
				slog.Error("failed to load session account", "error", err, "account_id", session.AccountID)
				next(w, r)
				return
			}

			next(w, r.WithContext(WithAccountContext(r.Context(), &account)))
		}
	}
}

// WithAccountContext returns ctx carrying account
func WithAccountContext(ctx context.Context, account *models.Account) context.Context {
	return context.WithValue(ctx, accountKey, account)
}

// AccountFromContext returns the signed-in account, or nil
func AccountFromContext(ctx context.Context) *models.Account {
	account, _ := ctx.Value(accountKey).(*models.Account)
	return account
}

// RequireLogin redirects anonymous requests to the login page
func RequireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if AccountFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next(w, r)
	}
}

// RequireStaff rejects signed-in accounts without the staff flag
func RequireStaff(next http.HandlerFunc) http.HandlerFunc {
	return RequireLogin(func(w http.ResponseWriter, r *http.Request) {
		if !AccountFromContext(r.Context()).IsStaff {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	})
}

// SetSessionCookie stores a signed session token in the browser
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
