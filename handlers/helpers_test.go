// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/pollhall/middleware"
	"github.com/danielhkuo/pollhall/models"
	"github.com/danielhkuo/pollhall/views"
)

func newTestView(t *testing.T) *views.Renderer {
	t.Helper()
	view, err := views.New()
	if err != nil {
		t.Fatalf("Failed to parse templates: %v", err)
	}
	return view
}

// asAccount attaches a signed-in account, as middleware.WithAccount would
func asAccount(req *http.Request, account models.Account) *http.Request {
	return req.WithContext(middleware.WithAccountContext(req.Context(), &account))
}

// flashesFrom replays the response's flash cookie and returns its messages
func flashesFrom(t *testing.T, w *httptest.ResponseRecorder) []models.Flash {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.FlashCookie {
			req.AddCookie(c)
		}
	}
	return middleware.PopFlashes(httptest.NewRecorder(), req)
}

func assertFlash(t *testing.T, w *httptest.ResponseRecorder, level, message string) {
	t.Helper()
	flashes := flashesFrom(t, w)
	if len(flashes) != 1 {
		t.Fatalf("Expected 1 flash, got %d: %+v", len(flashes), flashes)
	}
	if flashes[0].Level != level || flashes[0].Message != message {
		t.Errorf("Expected flash %s %q, got %s %q", level, message, flashes[0].Level, flashes[0].Message)
	}
}
