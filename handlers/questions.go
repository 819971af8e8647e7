// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/pollhall/auth"
	"github.com/danielhkuo/pollhall/cliparse"
	"github.com/danielhkuo/pollhall/media"
	"github.com/danielhkuo/pollhall/middleware"
	"github.com/danielhkuo/pollhall/models"
	"github.com/danielhkuo/pollhall/views"
)

type QuestionHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	view  *views.Renderer
	media *media.Store
}

func NewQuestionHandler(db *sql.DB, cfg cliparse.Config, view *views.Renderer) *QuestionHandler {
	return &QuestionHandler{db: db, cfg: cfg, view: view, media: media.NewStore(cfg.MediaRoot)}
}

type questionRow struct {
	Question    models.Question
	TotalVotes  int
	AuthorEmail string
}

type staffVoteRow struct {
	AccountEmail  string
	QuestionTitle string
	OptionText    string
	VotedAt       time.Time
}

type staffView struct {
	Questions []questionRow
	Votes     []staffVoteRow
}

// listQuestions returns every question, newest first, with vote totals
func (h *QuestionHandler) listQuestions(r *http.Request) ([]questionRow, error) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT q.id, q.title, q.full_description, q.image, q.created_at,
		       q.lifetime_seconds, q.expires_at, q.author_id,
		       a.email, COALESCE(SUM(o.votes), 0)
		FROM question q
		LEFT JOIN option o ON o.question_id = q.id
		LEFT JOIN account a ON a.id = q.author_id
		GROUP BY q.id, q.title, q.full_description, q.image, q.created_at,
		         q.lifetime_seconds, q.expires_at, q.author_id, a.email
		ORDER BY q.created_at DESC, q.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	questions := []questionRow{}
	for rows.Next() {
		var row questionRow
		var lifetime int64
		var authorEmail sql.NullString
		q := &row.Question
		if err := rows.Scan(&q.ID, &q.Title, &q.Description, &q.Image, &q.CreatedAt,
			&lifetime, &q.ExpiresAt, &q.AuthorID, &authorEmail, &row.TotalVotes); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		q.Lifetime = time.Duration(lifetime) * time.Second
		row.AuthorEmail = authorEmail.String
		questions = append(questions, row)
	}
	return questions, rows.Err()
}

// Home handles GET /
func (h *QuestionHandler) Home(w http.ResponseWriter, r *http.Request) {
	questions, err := h.listQuestions(r)
	if err != nil {
		slog.Error("failed to list questions", "error", err)
		renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
		return
	}

	render(h.view, w, r, http.StatusOK, "home", views.Page{Data: questions})
}

// QuestionDetail handles GET /question/{id}
// Inactive questions are only shown to staff; everyone else goes home.
func (h *QuestionHandler) QuestionDetail(w http.ResponseWriter, r *http.Request) {
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

	account := middleware.AccountFromContext(r.Context())
	if !data.Active && (account == nil || !account.IsStaff) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	render(h.view, w, r, http.StatusOK, "question_detail", views.Page{
		Title: data.Question.Title,
		Data:  data,
	})
}

// CreateQuestionForm handles GET /question/create
func (h *QuestionHandler) CreateQuestionForm(w http.ResponseWriter, r *http.Request) {
	render(h.view, w, r, http.StatusOK, "create_question", views.Page{
		Title: "New question",
		Form:  models.QuestionForm{Lifetime: h.cfg.DefaultLifetime.String()},
	})
}

// parseLifetime accepts a Go duration ("72h") or whole seconds; empty means fallback
func parseLifetime(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}

	var d time.Duration
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		d = time.Duration(secs) * time.Second
	} else {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, errors.New("Enter a duration such as 72h30m or a number of seconds.")
		}
		d = parsed
	}

	if d < 0 {
		return 0, errors.New("Lifetime must not be negative.")
	}
	return d, nil
}

// CreateQuestion handles POST /question/create
func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())

	if err := parseForm(w, r); err != nil {
		renderError(h.view, w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	form := models.QuestionForm{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: strings.TrimSpace(r.PostFormValue("full_description")),
		Lifetime:    strings.TrimSpace(r.PostFormValue("lifetime")),
	}
	for _, text := range r.PostForm["option"] {
		if text = strings.TrimSpace(text); text != "" {
			form.Options = append(form.Options, text)
		}
	}

	errs := validateForm(form)
	if errs == nil {
		errs = make(map[string]string)
	}

	lifetime, err := parseLifetime(form.Lifetime, h.cfg.DefaultLifetime)
	if err != nil {
		errs["lifetime"] = err.Error()
	}

	file, header, err := uploadedFile(r, "image")
	if err != nil {
		errs["image"] = "Could not read the uploaded file."
	}
	if file != nil {
		defer file.Close()
		if err := media.QuestionImage.ValidateExtension(header.Filename); err != nil {
			errs["image"] = "File extension not allowed. Allowed extensions are: jpg, jpeg, png, gif."
		}
	}

	if len(errs) > 0 {
		render(h.view, w, r, http.StatusBadRequest, "create_question", views.Page{
			Title:  "New question",
			Form:   form,
			Errors: errs,
		})
		return
	}

	var image *string
	if file != nil {
		rel, err := h.media.Save(media.QuestionImage, header.Filename, file)
		if errors.Is(err, media.ErrBadImage) {
			errs["image"] = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
			render(h.view, w, r, http.StatusBadRequest, "create_question", views.Page{
				Title:  "New question",
				Form:   form,
				Errors: errs,
			})
			return
		}
		if err != nil {
			slog.Error("failed to save question image", "error", err)
			renderError(h.view, w, r, http.StatusInternalServerError, "Could not store the image.")
			return
		}
		image = &rel
	}

	questionID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate question ID", "error", err)
		renderError(h.view, w, r, http.StatusInternalServerError, "Failed to create question.")
		return
	}

	question, err := models.NewQuestion(questionID, models.QuestionDraft{
		Title:       form.Title,
		Description: form.Description,
		Image:       image,
		AuthorID:    account.ID,
		Lifetime:    lifetime,
	}, time.Now())
	if err != nil {
		renderError(h.view, w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.insertQuestion(r, question, form.Options); err != nil {
		slog.Error("failed to insert question", "error", err)
		if image != nil {
			h.media.Remove(*image)
		}
		renderError(h.view, w, r, http.StatusInternalServerError, "Failed to create question.")
		return
	}

	slog.Info("question created", "question_id", question.ID, "options", len(form.Options), "expires_at", question.ExpiresAt)

	middleware.AddFlash(w, r, models.FlashSuccess, "Question created.")
	seeOther(w, r, "/")
}

func (h *QuestionHandler) insertQuestion(r *http.Request, q models.Question, options []string) error {
	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO question (id, title, full_description, image, created_at, lifetime_seconds, expires_at, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, q.ID, q.Title, q.Description, q.Image, q.CreatedAt, int64(q.Lifetime/time.Second), q.ExpiresAt, q.AuthorID)
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}

	for i, text := range options {
		optionID, err := auth.GenerateID(12)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO option (id, question_id, text, votes, position)
			VALUES ($1, $2, $3, 0, $4)
		`, optionID, q.ID, text, i)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	return tx.Commit()
}

// StaffQuestions handles GET /staff/questions
func (h *QuestionHandler) StaffQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.listQuestions(r)
	if err != nil {
		slog.Error("failed to list questions", "error", err)
		renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
		return
	}

	rows, err := h.db.QueryContext(r.Context(), `
		SELECT a.email, q.title, o.text, v.voted_at
		FROM vote v
		JOIN account a ON a.id = v.account_id
		JOIN question q ON q.id = v.question_id
		JOIN option o ON o.id = v.option_id
		ORDER BY v.voted_at DESC
		LIMIT 50
	`)
	if err != nil {
		slog.Error("failed to query votes", "error", err)
		renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
		return
	}
	defer rows.Close()

	votes := []staffVoteRow{}
	for rows.Next() {
		var v staffVoteRow
		if err := rows.Scan(&v.AccountEmail, &v.QuestionTitle, &v.OptionText, &v.VotedAt); err != nil {
			slog.Error("failed to scan vote", "error", err)
			renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
			return
		}
		votes = append(votes, v)
	}

	render(h.view, w, r, http.StatusOK, "staff_questions", views.Page{
		Title: "Staff",
		Data:  staffView{Questions: questions, Votes: votes},
	})
}
