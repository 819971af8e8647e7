// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/pollhall/cliparse"
	"github.com/danielhkuo/pollhall/handlers"
	"github.com/danielhkuo/pollhall/middleware"
	"github.com/danielhkuo/pollhall/views"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, view *views.Renderer) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	questionHandler := handlers.NewQuestionHandler(db, cfg, view)
	votingHandler := handlers.NewVotingHandler(db, cfg, view)
	resultsHandler := handlers.NewResultsHandler(db, cfg, view)
	accountHandler := handlers.NewAccountHandler(db, cfg, view)

	withAccount := middleware.WithAccount(db, cfg.SessionSecret)
	public := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(withAccount(h))
	}
	private := func(h http.HandlerFunc) http.HandlerFunc {
		return public(middleware.RequireLogin(h))
	}
	staff := func(h http.HandlerFunc) http.HandlerFunc {
		return public(middleware.RequireStaff(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Questions
	mux.HandleFunc("GET /{$}", public(questionHandler.Home))
	mux.HandleFunc("GET /question/create", private(questionHandler.CreateQuestionForm))
	mux.HandleFunc("POST /question/create", private(questionHandler.CreateQuestion))
	mux.HandleFunc("GET /question/{id}", public(questionHandler.QuestionDetail))
	mux.HandleFunc("GET /staff/questions", staff(questionHandler.StaffQuestions))

	// Voting
	mux.HandleFunc("POST /question/{id}", private(votingHandler.SubmitVote))
	mux.HandleFunc("GET /vote/{id}", private(votingHandler.VoteForm))
	mux.HandleFunc("POST /vote/{id}", private(votingHandler.SubmitVote))

	// Results
	mux.HandleFunc("GET /results/{id}", private(resultsHandler.GetResults))
	mux.HandleFunc("GET /question/{id}/results", private(resultsHandler.GetResults))
	mux.HandleFunc("GET /api/questions/{id}/results", middleware.WithLogging(resultsHandler.GetResultsJSON))

	// Accounts
	mux.HandleFunc("GET /register", public(accountHandler.RegisterForm))
	mux.HandleFunc("POST /register", public(accountHandler.Register))
	mux.HandleFunc("GET /login", public(accountHandler.LoginForm))
	mux.HandleFunc("POST /login", public(accountHandler.Login))
	mux.HandleFunc("POST /logout", public(accountHandler.Logout))
	mux.HandleFunc("GET /profile/edit", private(accountHandler.EditProfileForm))
	mux.HandleFunc("POST /profile/edit", private(accountHandler.EditProfile))
	mux.HandleFunc("GET /profile/delete", private(accountHandler.DeleteProfileForm))
	mux.HandleFunc("POST /profile/delete", private(accountHandler.DeleteProfile))

	// Uploaded media are served by the front proxy outside debug mode
	if cfg.Debug {
		mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaRoot))))
	}

	return mux
}
