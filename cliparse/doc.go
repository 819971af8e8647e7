// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

LoadDotEnv reads an optional .env file into the environment, then
ParseFlags returns a Config struct with all settings:

	cliparse.LoadDotEnv(".env")
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type (sqlite or postgres)
	-media           Media root
	-debug           Development mode
	-session-ttl     Session lifetime
	-lifetime        Default question lifetime
	-staff           Staff emails (comma separated)
	-session-secret  Session signing secret

# Environment Variables

Flags fall back to environment variables:

	PORT             → -p
	DATABASE_URL     → -d
	DATABASE_TYPE    → -t
	MEDIA_ROOT       → -media
	DEBUG            → -debug
	SESSION_TTL      → -session-ttl
	DEFAULT_LIFETIME → -lifetime
	STAFF_EMAILS     → -staff
	SESSION_SECRET   → -session-secret

CLI flags take precedence over environment variables, and variables
already set take precedence over .env entries.

# Validation

ParseFlags returns an error if DATABASE_URL or SESSION_SECRET is missing,
if DATABASE_TYPE is not sqlite or postgres, or if a numeric, boolean or
duration value does not parse.
*/
package cliparse
