// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and keeps its schema current.

# Connecting

Open accepts the configured database type and URL:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

PostgreSQL goes through lib/pq. SQLite goes through modernc.org/sqlite with
foreign keys enabled and a single open connection.

# Migrations

Migrate applies the SQL files embedded from migrations/ with golang-migrate:

	if err := db.Migrate(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

The same files run on both databases, so they stick to portable types
(TEXT, INTEGER, BIGINT, BOOLEAN, TIMESTAMP) and never use server-side
defaults for timestamps.

# Tables

  - account: login identity, unique email, bcrypt hash, staff flag
  - profile: avatar, nickname, bio, contact email (1:1 with account)
  - question: title, description, image, lifetime and expiration
  - option: choice text and running vote counter
  - vote: one row per (account, question)

# Relationships

	account 1──1 profile
	account 1──* question (author, SET NULL on delete)
	question 1──* option
	account 1──* vote *──1 option

Profiles and votes cascade with their account. Options and votes cascade
with their question.

# Constraint Errors

IsUniqueViolation recognises duplicate-key errors from both drivers so
callers can turn races into user-facing messages.
*/
package db
