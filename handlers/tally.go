// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"time"

	"github.com/danielhkuo/pollhall/models"
)

// ComputeResults loads a question with its options and annotates each
// option with its percentage of the total vote.
func ComputeResults(ctx context.Context, conn *sql.DB, questionID string, now time.Time) (models.Results, error) {
	question, err := getQuestion(ctx, conn, questionID)
	if err != nil {
		return models.Results{}, err
	}

	options, err := listOptions(ctx, conn, questionID)
	if err != nil {
		return models.Results{}, err
	}

	annotated, total := models.Tally(options)

	return models.Results{
		Question:   question,
		Options:    annotated,
		TotalVotes: total,
		Active:     question.IsActive(now),
	}, nil
}
