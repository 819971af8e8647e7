// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for Poll Hall.

# Route Registration

NewRouter creates a configured http.ServeMux with all pages:

	view, err := views.New()
	mux := router.NewRouter(db, cfg, view)

Every route except /health is wrapped in middleware.WithLogging and
middleware.WithAccount. Routes marked "login" additionally pass through
middleware.RequireLogin, which redirects to /login?next=<path>.

# Pages

Public:

	GET  /                 - Question listing
	GET  /question/{id}    - Question detail (inactive ones redirect home unless staff)
	GET  /register         - Registration form
	POST /register
	GET  /login            - Login form
	POST /login
	POST /logout

Login:

	GET  /question/create  - New question form
	POST /question/create
	POST /question/{id}    - Vote from the detail page
	GET  /vote/{id}        - Vote form
	POST /vote/{id}
	GET  /results/{id}     - Results
	GET  /question/{id}/results
	GET  /profile/edit
	POST /profile/edit
	GET  /profile/delete   - Confirmation page
	POST /profile/delete

Staff:

	GET /staff/questions   - Every question with totals and recent votes

# JSON

	GET /api/questions/{id}/results
	GET /health

# Media

With cfg.Debug set, uploads under cfg.MediaRoot are served at /media/.
*/
package router
