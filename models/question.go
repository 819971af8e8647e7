// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"time"
)

var ErrNegativeLifetime = errors.New("lifetime must not be negative")

// QuestionDraft carries the user-supplied fields of a new question.
type QuestionDraft struct {
	Title       string
	Description string
	Image       *string
	AuthorID    string
	Lifetime    time.Duration
	ExpiresAt   *time.Time // explicit expiration, overrides Lifetime
}

// NewQuestion builds a question created at now. Expiration is fixed here
// and never recomputed: ExpiresAt when given, otherwise now + Lifetime.
func NewQuestion(id string, d QuestionDraft, now time.Time) (Question, error) {
	if d.Lifetime < 0 {
		return Question{}, ErrNegativeLifetime
	}

	now = now.UTC()
	expires := now.Add(d.Lifetime)
	if d.ExpiresAt != nil {
		expires = d.ExpiresAt.UTC()
	}

	q := Question{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		CreatedAt:   now,
		Lifetime:    d.Lifetime,
		ExpiresAt:   expires,
	}
	if d.AuthorID != "" {
		author := d.AuthorID
		q.AuthorID = &author
	}
	return q, nil
}

// IsActive reports whether votes are accepted at now.
func (q Question) IsActive(now time.Time) bool {
	return !now.After(q.ExpiresAt)
}

// Tally sums the option counters and annotates each option with its share
// of the total. Every percentage is 0 when nobody has voted.
func Tally(options []Option) ([]OptionResult, int) {
	total := 0
	for _, opt := range options {
		total += opt.Votes
	}

	results := make([]OptionResult, len(options))
	for i, opt := range options {
		results[i] = OptionResult{Option: opt}
		if total > 0 {
			results[i].Percentage = float64(opt.Votes) / float64(total) * 100
		}
	}
	return results, total
}
