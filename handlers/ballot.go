// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/pollhall/auth"
	"github.com/danielhkuo/pollhall/db"
	"github.com/danielhkuo/pollhall/models"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrQuestionInactive = errors.New("voting on this question is closed")
	ErrInvalidOption    = errors.New("option does not belong to this question")
	ErrAlreadyVoted     = errors.New("account already voted on this question")
	ErrVoteConflict     = errors.New("vote lost a race with another submission")
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func getQuestion(ctx context.Context, q queryer, questionID string) (models.Question, error) {
	var question models.Question
	var lifetime int64

	err := q.QueryRowContext(ctx, `
		SELECT id, title, full_description, image, created_at, lifetime_seconds, expires_at, author_id
		FROM question
		WHERE id = $1
	`, questionID).Scan(
		&question.ID, &question.Title, &question.Description, &question.Image,
		&question.CreatedAt, &lifetime, &question.ExpiresAt, &question.AuthorID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Question{}, ErrQuestionNotFound
	}
	if err != nil {
		return models.Question{}, fmt.Errorf("failed to query question: %w", err)
	}

	question.Lifetime = time.Duration(lifetime) * time.Second
	return question, nil
}

func listOptions(ctx context.Context, q queryer, questionID string) ([]models.Option, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, question_id, text, votes, position
		FROM option
		WHERE question_id = $1
		ORDER BY position, id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.QuestionID, &opt.Text, &opt.Votes, &opt.Position); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

func hasVoted(ctx context.Context, q queryer, accountID, questionID string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote
			WHERE account_id = $1 AND question_id = $2
		)
	`, accountID, questionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return exists, nil
}

// CastVote records accountID's choice of optionID on questionID and bumps the
// option counter in one transaction. The explicit existence check and the
// UNIQUE (account_id, question_id) constraint both guard against a second
// vote; losing the constraint race yields ErrVoteConflict.
func CastVote(ctx context.Context, conn *sql.DB, accountID, questionID, optionID string, now time.Time) (models.Vote, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	question, err := getQuestion(ctx, tx, questionID)
	if err != nil {
		return models.Vote{}, err
	}
	if !question.IsActive(now) {
		return models.Vote{}, ErrQuestionInactive
	}

	voted, err := hasVoted(ctx, tx, accountID, questionID)
	if err != nil {
		return models.Vote{}, err
	}
	if voted {
		return models.Vote{}, ErrAlreadyVoted
	}

	var validOption bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM option
			WHERE id = $1 AND question_id = $2
		)
	`, optionID, questionID).Scan(&validOption)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to check option: %w", err)
	}
	if !validOption {
		return models.Vote{}, ErrInvalidOption
	}

	voteID, err := auth.GenerateID(16)
	if err != nil {
		return models.Vote{}, err
	}
	vote := models.Vote{
		ID:         voteID,
		AccountID:  accountID,
		QuestionID: questionID,
		OptionID:   optionID,
		VotedAt:    now.UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (id, account_id, question_id, option_id, voted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, vote.ID, vote.AccountID, vote.QuestionID, vote.OptionID, vote.VotedAt)
	if db.IsUniqueViolation(err) {
		return models.Vote{}, ErrVoteConflict
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to insert vote: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE option SET votes = votes + 1
		WHERE id = $1 AND question_id = $2
	`, optionID, questionID)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to increment option votes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if db.IsUniqueViolation(err) {
			return models.Vote{}, ErrVoteConflict
		}
		return models.Vote{}, fmt.Errorf("failed to commit vote: %w", err)
	}

	return vote, nil
}
