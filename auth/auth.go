// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookie names the cookie holding the session token
const SessionCookie = "pollhall_session"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid session token")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares password against a stored bcrypt hash
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Session is the identity carried by a session token
type Session struct {
	AccountID string
	Email     string
	ExpiresAt time.Time
}

// IssueSessionToken signs an HS256 token for the account valid for ttl
func IssueSessionToken(accountID, email, secret string, ttl time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)

	claims["uid"] = accountID
	claims["email"] = email
	claims["exp"] = time.Now().Add(ttl).Unix()

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates the signature and expiry of a session token
func ParseSessionToken(tokenString, secret string) (Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidToken
	}

	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return Session{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	session := Session{AccountID: uid, Email: email}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = exp.Time
	}
	return session, nil
}
