// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Poll Hall server.

Poll Hall is a small server-rendered polling site. Registered users create
questions with a handful of options, vote once per question and see the
results as percentages. Every question has a lifetime; once it has passed,
the question stops accepting votes.

# Starting the Server

The server reads a .env file if present, then environment variables or
CLI flags:

	DATABASE_URL=file:pollhall.db SESSION_SECRET=... go run .

Or with flags:

	go run . -t postgres -d "postgres://..." -session-secret ...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file URL or PostgreSQL connection string
  - SESSION_SECRET (-session-secret): HMAC key for session tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - MEDIA_ROOT (-media): Upload directory (default: media)
  - DEBUG (-debug): Serve /media/, non-secure cookies, debug logging
  - SESSION_TTL (-session-ttl): Session lifetime (default: 336h)
  - DEFAULT_LIFETIME (-lifetime): Question lifetime when the form leaves it blank (default: 168h)
  - STAFF_EMAILS (-staff): Comma separated emails that register as staff

# Architecture

  - handlers: HTTP handlers plus vote casting and result tallies
  - router: Route definitions using Go 1.22+ routing
  - middleware: Logging, sessions, flash messages, JSON helpers
  - views: Embedded html/template pages
  - models: Form and domain types, expiration and percentages
  - media: Avatar and question image uploads
  - auth: Passwords, session tokens, IDs
  - db: Connections and embedded migrations
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
