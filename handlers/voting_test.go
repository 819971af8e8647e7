// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/pollhall/models"
	"github.com/danielhkuo/pollhall/testutil"
)

func TestSubmitVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewVotingHandler(db, cfg, newTestView(t))

	now := time.Now()
	author := testutil.CreateTestAccount(t, db, "author@example.com", false)
	voter := testutil.CreateTestAccount(t, db, "voter@example.com", false)

	questionID := testutil.CreateTestQuestion(t, db, author.ID, "Tabs or spaces?", now, 24*time.Hour)
	tabs := testutil.AddTestOption(t, db, questionID, "Tabs", 0)
	spaces := testutil.AddTestOption(t, db, questionID, "Spaces", 0)

	expiredID := testutil.CreateTestQuestion(t, db, author.ID, "Old news", now.Add(-48*time.Hour), 24*time.Hour)
	expiredOpt := testutil.AddTestOption(t, db, expiredID, "Whatever", 0)

	otherID := testutil.CreateTestQuestion(t, db, author.ID, "Other", now, 24*time.Hour)
	otherOpt := testutil.AddTestOption(t, db, otherID, "Elsewhere", 0)

	tests := []struct {
		name           string
		questionID     string
		form           url.Values
		expectedStatus int
		checkResponse  func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:           "valid vote",
			questionID:     questionID,
			form:           url.Values{"option": {tabs}},
			expectedStatus: http.StatusSeeOther,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				testutil.AssertRedirect(t, w, "/results/"+questionID)
				assertFlash(t, w, models.FlashSuccess, "Your vote has been counted.")
				if got := testutil.OptionVotes(t, db, tabs); got != 1 {
					t.Errorf("Expected 1 vote for tabs, got %d", got)
				}
			},
		},
		{
			name:           "duplicate vote",
			questionID:     questionID,
			form:           url.Values{"option": {spaces}},
			expectedStatus: http.StatusSeeOther,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				testutil.AssertRedirect(t, w, "/results/"+questionID)
				assertFlash(t, w, models.FlashWarning, "You have already voted on this question.")
				if got := testutil.OptionVotes(t, db, tabs); got != 1 {
					t.Errorf("Expected tabs to stay at 1 vote, got %d", got)
				}
				if got := testutil.OptionVotes(t, db, spaces); got != 0 {
					t.Errorf("Expected spaces to stay at 0 votes, got %d", got)
				}
			},
		},
		{
			name:           "expired question",
			questionID:     expiredID,
			form:           url.Values{"option": {expiredOpt}},
			expectedStatus: http.StatusSeeOther,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				testutil.AssertRedirect(t, w, "/results/"+expiredID)
				assertFlash(t, w, models.FlashError, "Voting on this question is closed.")
				if got := testutil.OptionVotes(t, db, expiredOpt); got != 0 {
					t.Errorf("Expected no votes on expired question, got %d", got)
				}
			},
		},
		{
			name:           "missing option",
			questionID:     otherID,
			form:           url.Values{},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				if !strings.Contains(w.Body.String(), "Select an option.") {
					t.Error("Expected field error in body")
				}
			},
		},
		{
			name:           "option from another question",
			questionID:     otherID,
			form:           url.Values{"option": {tabs}},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				if !strings.Contains(w.Body.String(), "Select a valid choice.") {
					t.Error("Expected invalid choice error in body")
				}
				if got := testutil.OptionVotes(t, db, otherOpt); got != 0 {
					t.Errorf("Expected no votes, got %d", got)
				}
			},
		},
		{
			name:           "unknown question",
			questionID:     "nonexistent",
			form:           url.Values{"option": {tabs}},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeFormRequest("POST", "/vote/"+tt.questionID, tt.form)
			req.SetPathValue("id", tt.questionID)
			req = asAccount(req, voter)
			w := httptest.NewRecorder()

			handler.SubmitVote(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestVoteForm(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewVotingHandler(db, cfg, newTestView(t))

	now := time.Now()
	author := testutil.CreateTestAccount(t, db, "author@example.com", false)

	activeID := testutil.CreateTestQuestion(t, db, author.ID, "Lunch?", now, time.Hour)
	testutil.AddTestOption(t, db, activeID, "Pizza", 0)
	testutil.AddTestOption(t, db, activeID, "Sushi", 0)

	closedID := testutil.CreateTestQuestion(t, db, author.ID, "Breakfast?", now.Add(-2*time.Hour), time.Hour)

	t.Run("active question shows options", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/vote/"+activeID, nil)
		req.SetPathValue("id", activeID)
		req = asAccount(req, author)
		w := httptest.NewRecorder()

		handler.VoteForm(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		body := w.Body.String()
		if !strings.Contains(body, "Pizza") || !strings.Contains(body, "Sushi") {
			t.Error("Expected options in vote form")
		}
	})

	t.Run("closed question redirects to results", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/vote/"+closedID, nil)
		req.SetPathValue("id", closedID)
		req = asAccount(req, author)
		w := httptest.NewRecorder()

		handler.VoteForm(w, req)

		testutil.AssertRedirect(t, w, "/results/"+closedID)
		assertFlash(t, w, models.FlashError, "Voting on this question is closed.")
	})

	t.Run("unknown question", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/vote/missing", nil)
		req.SetPathValue("id", "missing")
		req = asAccount(req, author)
		w := httptest.NewRecorder()

		handler.VoteForm(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestSubmitVote_Conflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewVotingHandler(db, cfg, newTestView(t))

	author := testutil.CreateTestAccount(t, db, "author@example.com", false)
	voter := testutil.CreateTestAccount(t, db, "voter@example.com", false)
	questionID := testutil.CreateTestQuestion(t, db, author.ID, "Contested", time.Now(), time.Hour)
	optionID := testutil.AddTestOption(t, db, questionID, "Mine", 0)

	armVoteRace(t, db)

	req := testutil.MakeFormRequest("POST", "/vote/"+questionID, url.Values{"option": {optionID}})
	req.SetPathValue("id", questionID)
	req = asAccount(req, voter)
	w := httptest.NewRecorder()

	handler.SubmitVote(w, req)

	testutil.AssertStatus(t, w, http.StatusSeeOther)
	testutil.AssertRedirect(t, w, "/results/"+questionID)
	assertFlash(t, w, models.FlashError, "Something went wrong. Please try again.")

	if n := testutil.CountRows(t, db, `SELECT COUNT(*) FROM vote WHERE account_id = $1`, voter.ID); n != 0 {
		t.Errorf("Expected no vote records, got %d", n)
	}
	if got := testutil.OptionVotes(t, db, optionID); got != 0 {
		t.Errorf("Expected counter unchanged, got %d", got)
	}
}
