// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for Poll Hall.

# Handler Types

Each handler is a struct with database, config and view dependencies:

  - QuestionHandler: Listing, detail, creation and the staff overview
  - VotingHandler: Vote form and vote submission
  - ResultsHandler: Results page and JSON results
  - AccountHandler: Registration, login, logout, profile edit and deletion

Handlers are created via constructor functions:

	questionHandler := handlers.NewQuestionHandler(db, cfg, view)

# Voting

CastVote runs the whole vote in one transaction: the question must exist
and be active, the option must belong to it, and the account must not
have voted on it yet. The vote row is inserted and the option counter
incremented together.

	vote, err := handlers.CastVote(ctx, db, accountID, questionID, optionID, time.Now())

Callers branch on the sentinel errors ErrQuestionNotFound,
ErrQuestionInactive, ErrInvalidOption, ErrAlreadyVoted and
ErrVoteConflict. The last one means the (account_id, question_id) unique
constraint caught a concurrent duplicate.

# Results

ComputeResults loads a question's options and applies models.Tally:

	results, err := handlers.ComputeResults(ctx, db, questionID, time.Now())

# Forms

Form posts are decoded into models form types and checked with
go-playground/validator. Invalid input re-renders the page with status
400 and one message per field. Successful posts redirect with 303 and
leave a flash message.
*/
package handlers
