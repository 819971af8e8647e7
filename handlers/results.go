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
	"github.com/danielhkuo/pollhall/views"
)

type ResultsHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	view *views.Renderer
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config, view *views.Renderer) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg, view: view}
}

// GetResults handles GET /results/{id} and GET /question/{id}/results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")

	results, err := ComputeResults(r.Context(), h.db, questionID, time.Now())
	if errors.Is(err, ErrQuestionNotFound) {
		renderError(h.view, w, r, http.StatusNotFound, "Question not found.")
		return
	}
	if err != nil {
		slog.Error("failed to compute results", "error", err, "question_id", questionID)
		renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
		return
	}

	render(h.view, w, r, http.StatusOK, "results", views.Page{
		Title: results.Question.Title,
		Data:  results,
	})
}

// GetResultsJSON handles GET /api/questions/{id}/results
func (h *ResultsHandler) GetResultsJSON(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	if questionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	results, err := ComputeResults(r.Context(), h.db, questionID, time.Now())
	if errors.Is(err, ErrQuestionNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to compute results", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}
