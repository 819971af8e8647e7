// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/pollhall/cliparse"
	"github.com/danielhkuo/pollhall/middleware"
	"github.com/danielhkuo/pollhall/models"
	"github.com/danielhkuo/pollhall/views"
)

type VotingHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	view *views.Renderer
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config, view *views.Renderer) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg, view: view}
}

type voteView struct {
	Question models.Question
	Options  []models.Option
	Active   bool
	HasVoted bool
}

func resultsURL(questionID string) string {
	return "/results/" + questionID
}

// loadVoteView fetches what the vote and detail pages show
func loadVoteView(r *http.Request, conn *sql.DB, questionID string, now time.Time) (voteView, error) {
	question, err := getQuestion(r.Context(), conn, questionID)
	if err != nil {
		return voteView{}, err
	}

	options, err := listOptions(r.Context(), conn, questionID)
	if err != nil {
		return voteView{}, err
	}

	data := voteView{Question: question, Options: options, Active: question.IsActive(now)}
	if account := middleware.AccountFromContext(r.Context()); account != nil {
		data.HasVoted, err = hasVoted(r.Context(), conn, account.ID, questionID)
		if err != nil {
			return voteView{}, err
		}
	}
	return data, nil
}

// VoteForm handles GET /vote/{id}
func (h *VotingHandler) VoteForm(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")

	data, err := loadVoteView(r, h.db, questionID, time.Now())
	if errors.Is(err, ErrQuestionNotFound) {
		renderError(h.view, w, r, http.StatusNotFound, "Question not found.")
		return
	}
	if err != nil {
		slog.Error("failed to load question", "error", err, "question_id", questionID)
		renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
		return
	}

	if !data.Active {
		middleware.AddFlash(w, r, models.FlashError, "Voting on this question is closed.")
		seeOther(w, r, resultsURL(questionID))
		return
	}

	render(h.view, w, r, http.StatusOK, "vote", views.Page{
		Title: data.Question.Title,
		Form:  models.VoteForm{},
		Data:  data,
	})
}

// SubmitVote handles POST /vote/{id} and POST /question/{id}
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	account := middleware.AccountFromContext(r.Context())
	if account == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	now := time.Now()
	question, err := getQuestion(r.Context(), h.db, questionID)
	if errors.Is(err, ErrQuestionNotFound) {
		renderError(h.view, w, r, http.StatusNotFound, "Question not found.")
		return
	}
	if err != nil {
		slog.Error("failed to query question", "error", err, "question_id", questionID)
		renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
		return
	}

	if !question.IsActive(now) {
		middleware.AddFlash(w, r, models.FlashError, "Voting on this question is closed.")
		seeOther(w, r, resultsURL(questionID))
		return
	}

	if err := parseForm(w, r); err != nil {
		renderError(h.view, w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	form := models.VoteForm{OptionID: r.PostFormValue("option")}
	if errs := validateForm(form); errs != nil {
		h.renderVoteForm(w, r, questionID, form, map[string]string{"option": "Select an option."})
		return
	}

	vote, err := CastVote(r.Context(), h.db, account.ID, questionID, form.OptionID, now)
	switch {
	case err == nil:
		slog.Info("vote cast", "question_id", questionID, "vote_id", vote.ID, "account_id", account.ID)
		middleware.AddFlash(w, r, models.FlashSuccess, "Your vote has been counted.")
	case errors.Is(err, ErrAlreadyVoted):
		middleware.AddFlash(w, r, models.FlashWarning, "You have already voted on this question.")
	case errors.Is(err, ErrQuestionInactive):
		middleware.AddFlash(w, r, models.FlashError, "Voting on this question is closed.")
	case errors.Is(err, ErrVoteConflict):
		slog.Warn("vote conflict", "question_id", questionID, "account_id", account.ID)
		middleware.AddFlash(w, r, models.FlashError, "Something went wrong. Please try again.")
	case errors.Is(err, ErrInvalidOption):
		h.renderVoteForm(w, r, questionID, form, map[string]string{"option": "Select a valid choice."})
		return
	case errors.Is(err, ErrQuestionNotFound):
		renderError(h.view, w, r, http.StatusNotFound, "Question not found.")
		return
	default:
		slog.Error("failed to cast vote", "error", err, "question_id", questionID)
		renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
		return
	}

	seeOther(w, r, resultsURL(questionID))
}

func (h *VotingHandler) renderVoteForm(w http.ResponseWriter, r *http.Request, questionID string, form models.VoteForm, errs map[string]string) {
	data, err := loadVoteView(r, h.db, questionID, time.Now())
	if err != nil {
		slog.Error("failed to load question", "error", err, "question_id", questionID)
		renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
		return
	}

	render(h.view, w, r, http.StatusBadRequest, "vote", views.Page{
		Title:  data.Question.Title,
		Form:   form,
		Errors: errs,
		Data:   data,
	})
}
