// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# Sessions

WithAccount reads the session cookie, verifies the token and loads the
account into the request context:

	withAccount := middleware.WithAccount(db, cfg.SessionSecret)
	mux.HandleFunc("GET /", middleware.WithLogging(withAccount(handler)))

	account := middleware.AccountFromContext(r.Context()) // nil when anonymous

RequireLogin redirects anonymous requests to /login?next=<path>.
RequireStaff additionally answers 403 to accounts without the staff flag.

# Flash Messages

One-shot messages survive a redirect in a cookie:

	middleware.AddFlash(w, r, models.FlashSuccess, "Your vote has been counted.")
	flashes := middleware.PopFlashes(w, r)

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusNotFound, "message")

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
