// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

const DefaultAvatar = "avatars/default.png"

// Flash levels
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashError   = "error"
)

// Form types

type RegisterForm struct {
	Nickname  string `form:"nickname" validate:"max=30"`
	Email     string `form:"email" validate:"required,email,max=100"`
	Password1 string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type ProfileForm struct {
	Nickname string `form:"nickname" validate:"required,max=100"`
	Email    string `form:"email" validate:"required,email,max=100"`
	Bio      string `form:"bio" validate:"max=2000"`
}

// Options holds the non-blank option texts; blank inputs are dropped before validation.
type QuestionForm struct {
	Title       string   `form:"title" validate:"required,max=255"`
	Description string   `form:"full_description" validate:"required"`
	Lifetime    string   `form:"lifetime"`
	Options     []string `form:"option" validate:"min=2,max=10,dive,max=255"`
}

type VoteForm struct {
	OptionID string `form:"option" validate:"required"`
}

// Domain types

type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"is_staff"`
	JoinedAt     time.Time `json:"joined_at"`
}

type Profile struct {
	AccountID string `json:"account_id"`
	Avatar    string `json:"avatar"`
	Nickname  string `json:"nickname"`
	Bio       string `json:"bio"`
	Email     string `json:"email"`
}

type Question struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"full_description"`
	Image       *string       `json:"image,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	Lifetime    time.Duration `json:"lifetime"`
	ExpiresAt   time.Time     `json:"expires_at"`
	AuthorID    *string       `json:"author_id,omitempty"`
}

type Option struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	Votes      int    `json:"votes"`
	Position   int    `json:"-"`
}

type Vote struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"account_id"`
	QuestionID string    `json:"question_id"`
	OptionID   string    `json:"option_id"`
	VotedAt    time.Time `json:"voted_at"`
}

type QuestionWithOptions struct {
	Question Question `json:"question"`
	Options  []Option `json:"options"`
}

// Result types

type OptionResult struct {
	Option
	Percentage float64 `json:"percentage"`
}

type Results struct {
	Question   Question       `json:"question"`
	Options    []OptionResult `json:"options"`
	TotalVotes int            `json:"total_votes"`
	Active     bool           `json:"active"`
}

type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
