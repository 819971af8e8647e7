// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/pollhall/auth"
	"github.com/danielhkuo/pollhall/models"
	"github.com/danielhkuo/pollhall/testutil"
)

// captureAccount returns a handler that records the context account
func captureAccount(got **models.Account) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*got = AccountFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}
}

func TestWithAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	account := testutil.CreateTestAccount(t, db, "alice@example.com", false)
	withAccount := WithAccount(db, cfg.SessionSecret)

	t.Run("valid session loads account", func(t *testing.T) {
		var got *models.Account
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(testutil.SessionCookie(t, cfg, account))
		w := httptest.NewRecorder()

		withAccount(captureAccount(&got))(w, req)

		if got == nil {
			t.Fatal("Expected account in context")
		}
		if got.ID != account.ID || got.Email != "alice@example.com" {
			t.Errorf("Unexpected account: %+v", got)
		}
	})

	t.Run("no cookie is anonymous", func(t *testing.T) {
		var got *models.Account
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()

		withAccount(captureAccount(&got))(w, req)

		if got != nil {
			t.Errorf("Expected anonymous request, got %+v", got)
		}
		if c := testutil.ResponseCookie(w, auth.SessionCookie); c != nil {
			t.Error("Expected no session cookie to be written")
		}
	})

	t.Run("tampered token clears cookie", func(t *testing.T) {
		var got *models.Account
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "not-a-token"})
		w := httptest.NewRecorder()

		withAccount(captureAccount(&got))(w, req)

		if got != nil {
			t.Error("Expected anonymous request for invalid token")
		}
		c := testutil.ResponseCookie(w, auth.SessionCookie)
		if c == nil || c.MaxAge >= 0 {
			t.Error("Expected session cookie to be cleared")
		}
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		var got *models.Account
		token, err := auth.IssueSessionToken(account.ID, account.Email, "other-secret", time.Hour)
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
		w := httptest.NewRecorder()

		withAccount(captureAccount(&got))(w, req)

		if got != nil {
			t.Error("Expected foreign token to be rejected")
		}
	})

	t.Run("deleted account clears cookie", func(t *testing.T) {
		gone := testutil.CreateTestAccount(t, db, "gone@example.com", false)
		cookie := testutil.SessionCookie(t, cfg, gone)
		if _, err := db.Exec(`DELETE FROM profile WHERE account_id = $1`, gone.ID); err != nil {
			t.Fatalf("Failed to delete profile: %v", err)
		}
		if _, err := db.Exec(`DELETE FROM account WHERE id = $1`, gone.ID); err != nil {
			t.Fatalf("Failed to delete account: %v", err)
		}

		var got *models.Account
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()

		withAccount(captureAccount(&got))(w, req)

		if got != nil {
			t.Error("Expected deleted account to be anonymous")
		}
		c := testutil.ResponseCookie(w, auth.SessionCookie)
		if c == nil || c.MaxAge >= 0 {
			t.Error("Expected session cookie to be cleared")
		}
	})
}

func TestRequireLogin(t *testing.T) {
	called := false
	handler := RequireLogin(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous redirects to login", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/vote/abc?x=1", nil)
		w := httptest.NewRecorder()

		handler(w, req)

		if called {
			t.Error("Expected handler not to be called")
		}
		testutil.AssertRedirect(t, w, "/login?next=%2Fvote%2Fabc%3Fx%3D1")
	})

	t.Run("signed in passes through", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/vote/abc", nil)
		req = req.WithContext(WithAccountContext(req.Context(), &models.Account{ID: "a1"}))
		w := httptest.NewRecorder()

		handler(w, req)

		if !called {
			t.Error("Expected handler to be called")
		}
		testutil.AssertStatus(t, w, http.StatusOK)
	})
}

func TestRequireStaff(t *testing.T) {
	handler := RequireStaff(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	testCases := []struct {
		name     string
		account  *models.Account
		expected int
	}{
		{"anonymous", nil, http.StatusFound},
		{"regular account", &models.Account{ID: "a1"}, http.StatusForbidden},
		{"staff account", &models.Account{ID: "a2", IsStaff: true}, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/staff/questions", nil)
			if tc.account != nil {
				req = req.WithContext(WithAccountContext(req.Context(), tc.account))
			}
			w := httptest.NewRecorder()

			handler(w, req)

			testutil.AssertStatus(t, w, tc.expected)
		})
	}
}

func TestSessionCookieAttributes(t *testing.T) {
	w := httptest.NewRecorder()
	SetSessionCookie(w, "token", 2*time.Hour, true)

	c := testutil.ResponseCookie(w, auth.SessionCookie)
	if c == nil {
		t.Fatal("Expected session cookie")
	}
	if !c.HttpOnly || !c.Secure {
		t.Error("Expected HttpOnly and Secure session cookie")
	}
	if c.MaxAge != 7200 {
		t.Errorf("Expected MaxAge 7200, got %d", c.MaxAge)
	}
	if c.Path != "/" {
		t.Errorf("Expected path '/', got '%s'", c.Path)
	}
}
