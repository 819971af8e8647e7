// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, session tokens and ID generation.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, password) // ErrInvalidCredentials on mismatch

# Session Tokens

A signed-in browser holds an HS256 JWT in a cookie:

	token, err := auth.IssueSessionToken(accountID, email, secret, ttl)
	session, err := auth.ParseSessionToken(token, secret)

Claims are uid, email and exp. Any signature, algorithm or expiry problem
yields ErrInvalidToken.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
