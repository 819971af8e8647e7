// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/pollhall/middleware"
	"github.com/danielhkuo/pollhall/views"
)

// maxUploadSize bounds multipart bodies (avatars and question images)
const maxUploadSize = 8 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the HTML input names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateForm returns one message per failing input name, or nil
func validateForm(form interface{}) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": "Invalid input."}
	}

	out := make(map[string]string)
	for _, fe := range verrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if _, seen := out[field]; !seen {
			out[field] = fieldMessage(fe)
		}
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Provide at least %s options.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Provide at most %s options.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	}
	return "Invalid value."
}

// render fills in the session account and pending flashes, then writes the page
func render(view *views.Renderer, w http.ResponseWriter, r *http.Request, status int, name string, page views.Page) {
	page.Account = middleware.AccountFromContext(r.Context())
	page.Flashes = middleware.PopFlashes(w, r)

	if err := view.Render(w, status, name, page); err != nil {
		slog.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func renderError(view *views.Renderer, w http.ResponseWriter, r *http.Request, status int, message string) {
	render(view, w, r, status, "error", views.Page{
		Title: http.StatusText(status),
		Data:  message,
	})
}

// parseForm accepts both url-encoded and multipart bodies
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// uploadedFile returns the file posted under field, if any
func uploadedFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if header.Size == 0 && header.Filename == "" {
		f.Close()
		return nil, nil, nil
	}
	return f, header, nil
}

// safeNext keeps redirects on this site
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}

func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
