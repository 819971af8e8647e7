// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines form and domain types for Poll Hall.

# Form Types

Posted forms, tagged for go-playground/validator:

  - RegisterForm, LoginForm, ProfileForm
  - QuestionForm: title, description, lifetime, 2 to 10 options
  - VoteForm: selected option

# Domain Types

  - Account, Profile
  - Question: created_at, lifetime and expires_at
  - Option: text and running vote count
  - Vote: one per account and question
  - Results, OptionResult: tallied percentages

# Expiration

NewQuestion fixes ExpiresAt once, at creation:

	q, err := models.NewQuestion(id, models.QuestionDraft{Lifetime: 72 * time.Hour}, time.Now())

A question is active while now <= ExpiresAt.

# Percentages

Tally returns each option's share of the total, or 0 when nobody voted.
*/
package models
