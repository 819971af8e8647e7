// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package views renders the server-side HTML pages embedded in the binary.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/pollhall/models"
)

//go:embed templates/*.html
var files embed.FS

const layout = "layout.html"

// Page is the data every template receives. Data holds the page-specific value.
type Page struct {
	Title   string
	Account *models.Account
	Flashes []models.Flash
	Form    any
	Errors  map[string]string
	Data    any
	Now     time.Time
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"ago":     humanize.Time,
	"comma":   func(n int) string { return humanize.Comma(int64(n)) },
	"percent": func(p float64) string { return fmt.Sprintf("%.1f", p) },
	"media":   func(rel string) string { return "/media/" + strings.TrimPrefix(rel, "/") },
	"active":  func(q models.Question, now time.Time) bool { return q.IsActive(now) },
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// New parses the layout and every page template.
func New() (*Renderer, error) {
	base, err := template.New(layout).Funcs(funcs).ParseFS(files, "templates/"+layout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range names {
		file := path.Base(name)
		if file == layout {
			continue
		}
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(files, name); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		r.pages[strings.TrimSuffix(file, ".html")] = t
	}

	return r, nil
}

// Render executes the named page into a buffer first so a template error
// never produces a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	if page.Now.IsZero() {
		page.Now = time.Now()
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layout, page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
