// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/pollhall/auth"
	"github.com/danielhkuo/pollhall/cliparse"
	"github.com/danielhkuo/pollhall/db"
	"github.com/danielhkuo/pollhall/models"
)

// TestPassword is the password of every account made by CreateTestAccount
const TestPassword = "correct-horse-battery"

// SetupTestDB creates a fresh SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := "file:" + filepath.Join(t.TempDir(), "pollhall_test.db")
	conn, err := db.Open(cliparse.DatabaseSQLite, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Migrate(conn, cliparse.DatabaseSQLite); err != nil {
		conn.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration with a private media root
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     "file:test.db",
		DatabaseType:    cliparse.DatabaseSQLite,
		SessionSecret:   "test-session-secret",
		MediaRoot:       t.TempDir(),
		Debug:           true,
		SessionTTL:      time.Hour,
		DefaultLifetime: 7 * 24 * time.Hour,
		StaffEmails:     []string{"staff@example.com"},
	}
}

// CreateTestAccount inserts an account with a profile and returns it
func CreateTestAccount(t *testing.T, conn *sql.DB, email string, isStaff bool) models.Account {
	t.Helper()

	id, _ := auth.GenerateID(16)
	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	account := models.Account{
		ID:           id,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		IsStaff:      isStaff,
		JoinedAt:     time.Now().UTC(),
	}

	_, err = conn.Exec(`
		INSERT INTO account (id, email, password_hash, is_staff, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`, account.ID, account.Email, account.PasswordHash, account.IsStaff, account.JoinedAt)
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO profile (account_id, avatar, nickname, bio, email)
		VALUES ($1, $2, $3, '', $4)
	`, account.ID, models.DefaultAvatar, "tester", account.Email)
	if err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}

	return account
}

// SessionCookie returns a valid session cookie for the account
func SessionCookie(t *testing.T, cfg cliparse.Config, account models.Account) *http.Cookie {
	t.Helper()

	token, err := auth.IssueSessionToken(account.ID, account.Email, cfg.SessionSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue session token: %v", err)
	}
	return &http.Cookie{Name: auth.SessionCookie, Value: token}
}

// CreateTestQuestion inserts a question created at createdAt and returns its ID
func CreateTestQuestion(t *testing.T, conn *sql.DB, authorID, title string, createdAt time.Time, lifetime time.Duration) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	q, err := models.NewQuestion(id, models.QuestionDraft{
		Title:       title,
		Description: "A test question",
		AuthorID:    authorID,
		Lifetime:    lifetime,
	}, createdAt)
	if err != nil {
		t.Fatalf("Failed to build test question: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO question (id, title, full_description, image, created_at, lifetime_seconds, expires_at, author_id)
		VALUES ($1, $2, $3, NULL, $4, $5, $6, $7)
	`, q.ID, q.Title, q.Description, q.CreatedAt, int64(q.Lifetime/time.Second), q.ExpiresAt, q.AuthorID)
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}

	return id
}

// AddTestOption adds an option with a starting vote count and returns its ID
func AddTestOption(t *testing.T, conn *sql.DB, questionID, text string, votes int) string {
	t.Helper()

	optionID, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO option (id, question_id, text, votes, position)
		VALUES ($1, $2, $3, $4, (SELECT COUNT(*) FROM option WHERE question_id = $2))
	`, optionID, questionID, text, votes)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// CreateTestVote records a vote and bumps the option counter
func CreateTestVote(t *testing.T, conn *sql.DB, accountID, questionID, optionID string) string {
	t.Helper()

	voteID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO vote (id, account_id, question_id, option_id, voted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, voteID, accountID, questionID, optionID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	if _, err := conn.Exec(`UPDATE option SET votes = votes + 1 WHERE id = $1`, optionID); err != nil {
		t.Fatalf("Failed to bump option votes: %v", err)
	}

	return voteID
}

// OptionVotes returns the stored counter of an option
func OptionVotes(t *testing.T, conn *sql.DB, optionID string) int {
	t.Helper()

	var votes int
	if err := conn.QueryRow(`SELECT votes FROM option WHERE id = $1`, optionID).Scan(&votes); err != nil {
		t.Fatalf("Failed to query option votes: %v", err)
	}
	return votes
}

// CountRows runs a COUNT(*) query
func CountRows(t *testing.T, conn *sql.DB, query string, args ...interface{}) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates a url-encoded form request carrying the given cookies
func MakeFormRequest(method, path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// MakeMultipartRequest creates a multipart form request with one file field
func MakeMultipartRequest(t *testing.T, method, path string, form url.Values, fileField, fileName string, content []byte, cookies ...*http.Cookie) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, values := range form {
		for _, v := range values {
			if err := mw.WriteField(key, v); err != nil {
				t.Fatalf("Failed to write field: %v", err)
			}
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		fw.Write(content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// PNGBytes encodes a solid width x height PNG
func PNGBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect checks for a redirect to location
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code < 300 || w.Code >= 400 {
		t.Errorf("Expected redirect, got %d. Body: %s", w.Code, w.Body.String())
		return
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %s, got %s", location, got)
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// ResponseCookie finds a cookie set by the response
func ResponseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
