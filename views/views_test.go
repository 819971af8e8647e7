// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollhall/models"
)

func TestNewParsesEveryPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	for _, name := range []string{
		"home", "question_detail", "vote", "results", "create_question",
		"register", "login", "edit_profile", "delete_profile", "staff_questions", "error",
	} {
		assert.Contains(t, r.pages, name)
	}
	assert.NotContains(t, r.pages, "layout")
}

func TestRender(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	t.Run("unknown template", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := r.Render(w, http.StatusOK, "nope", Page{})
		assert.Error(t, err)
		assert.Equal(t, 0, w.Body.Len(), "nothing written on failure")
	})

	t.Run("status and layout", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := r.Render(w, http.StatusNotFound, "error", Page{
			Title:   "Not Found",
			Data:    "<script>alert(1)</script>",
			Flashes: []models.Flash{{Level: models.FlashWarning, Message: "Heads up"}},
		})
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		body := w.Body.String()
		assert.Contains(t, body, "Not Found · Poll Hall")
		assert.Contains(t, body, `flash-warning`)
		assert.Contains(t, body, "Heads up")
		assert.NotContains(t, body, "<script>")
	})

	t.Run("results annotate percentages", func(t *testing.T) {
		options, total := models.Tally([]models.Option{
			{ID: "a", Text: "Yes", Votes: 2},
			{ID: "b", Text: "No", Votes: 1},
		})
		w := httptest.NewRecorder()
		err := r.Render(w, http.StatusOK, "results", Page{
			Account: &models.Account{Email: "alice@example.com"},
			Data: models.Results{
				Question:   models.Question{ID: "q1", Title: "Ship it?"},
				Options:    options,
				TotalVotes: total,
				Active:     true,
			},
		})
		require.NoError(t, err)

		body := w.Body.String()
		assert.Contains(t, body, "66.7")
		assert.Contains(t, body, "33.3")
		assert.Contains(t, body, `href="/vote/q1"`)
		assert.Contains(t, body, "alice@example.com")
	})

	t.Run("login keeps next", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := r.Render(w, http.StatusOK, "login", Page{Form: models.LoginForm{}, Data: "/vote/q1"})
		require.NoError(t, err)
		assert.Contains(t, w.Body.String(), `value="/vote/q1"`)
	})

	t.Run("detail hides form once closed", func(t *testing.T) {
		image := "question_images/x.png"
		w := httptest.NewRecorder()
		err := r.Render(w, http.StatusOK, "question_detail", Page{
			Data: struct {
				Question models.Question
				Options  []models.Option
				Active   bool
				HasVoted bool
			}{
				Question: models.Question{ID: "q1", Title: "Closed", Image: &image, ExpiresAt: time.Now()},
				Options:  []models.Option{{ID: "o1", Text: "Only"}},
			},
		})
		require.NoError(t, err)

		body := w.Body.String()
		assert.Contains(t, body, `src="/media/question_images/x.png"`)
		assert.NotContains(t, body, `<form method="post" action="/question/q1">`)
	})
}
