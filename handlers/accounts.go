// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/pollhall/auth"
	"github.com/danielhkuo/pollhall/cliparse"
	"github.com/danielhkuo/pollhall/db"
	"github.com/danielhkuo/pollhall/media"
	"github.com/danielhkuo/pollhall/middleware"
	"github.com/danielhkuo/pollhall/models"
	"github.com/danielhkuo/pollhall/views"
)

const emailTakenMessage = "This email is already registered."

type AccountHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	view  *views.Renderer
	media *media.Store
}

func NewAccountHandler(db *sql.DB, cfg cliparse.Config, view *views.Renderer) *AccountHandler {
	return &AccountHandler{db: db, cfg: cfg, view: view, media: media.NewStore(cfg.MediaRoot)}
}

// signIn issues a session cookie for the account
func (h *AccountHandler) signIn(w http.ResponseWriter, account models.Account) error {
	token, err := auth.IssueSessionToken(account.ID, account.Email, h.cfg.SessionSecret, h.cfg.SessionTTL)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(w, token, h.cfg.SessionTTL, !h.cfg.Debug)
	return nil
}

// RegisterForm handles GET /register
func (h *AccountHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	render(h.view, w, r, http.StatusOK, "register", views.Page{
		Title: "Register",
		Form:  models.RegisterForm{},
	})
}

// Register handles POST /register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		renderError(h.view, w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	form := models.RegisterForm{
		Nickname:  strings.TrimSpace(r.PostFormValue("nickname")),
		Email:     strings.ToLower(strings.TrimSpace(r.PostFormValue("email"))),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}

	invalid := func(errs map[string]string) {
		// Never echo passwords back
		form.Password1, form.Password2 = "", ""
		render(h.view, w, r, http.StatusBadRequest, "register", views.Page{
			Title:  "Register",
			Form:   form,
			Errors: errs,
		})
	}

	if errs := validateForm(form); errs != nil {
		invalid(errs)
		return
	}

	var taken bool
	err := h.db.QueryRowContext(r.Context(), `
		SELECT EXISTS(SELECT 1 FROM account WHERE email = $1)
	`, form.Email).Scan(&taken)
	if err != nil {
		slog.Error("failed to check email", "error", err)
		renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
		return
	}
	if taken {
		invalid(map[string]string{"email": emailTakenMessage})
		return
	}

	hash, err := auth.HashPassword(form.Password1)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		renderError(h.view, w, r, http.StatusInternalServerError, "Failed to create account.")
		return
	}

	accountID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate account ID", "error", err)
		renderError(h.view, w, r, http.StatusInternalServerError, "Failed to create account.")
		return
	}

	account := models.Account{
		ID:           accountID,
		Email:        form.Email,
		PasswordHash: hash,
		IsStaff:      h.cfg.IsStaffEmail(form.Email),
		JoinedAt:     time.Now().UTC(),
	}

	err = h.createAccount(r.Context(), account, form.Nickname)
	if db.IsUniqueViolation(err) {
		invalid(map[string]string{"email": emailTakenMessage})
		return
	}
	if err != nil {
		slog.Error("failed to create account", "error", err)
		renderError(h.view, w, r, http.StatusInternalServerError, "Failed to create account.")
		return
	}

	slog.Info("account registered", "account_id", account.ID, "staff", account.IsStaff)

	if err := h.signIn(w, account); err != nil {
		slog.Error("failed to issue session", "error", err)
		seeOther(w, r, "/login")
		return
	}
	seeOther(w, r, "/")
}

func (h *AccountHandler) createAccount(ctx context.Context, account models.Account, nickname string) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO account (id, email, password_hash, is_staff, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`, account.ID, account.Email, account.PasswordHash, account.IsStaff, account.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profile (account_id, avatar, nickname, bio, email)
		VALUES ($1, $2, $3, '', $4)
	`, account.ID, models.DefaultAvatar, nickname, account.Email)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit account: %w", err)
	}
	return nil
}

// LoginForm handles GET /login
func (h *AccountHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	render(h.view, w, r, http.StatusOK, "login", views.Page{
		Title: "Log in",
		Form:  models.LoginForm{},
		Data:  safeNext(r.URL.Query().Get("next")),
	})
}

// Login handles POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		renderError(h.view, w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	form := models.LoginForm{
		Email:    strings.ToLower(strings.TrimSpace(r.PostFormValue("email"))),
		Password: r.PostFormValue("password"),
	}
	next := safeNext(r.PostFormValue("next"))

	fail := func(errs map[string]string) {
		render(h.view, w, r, http.StatusBadRequest, "login", views.Page{
			Title:  "Log in",
			Form:   models.LoginForm{Email: form.Email},
			Errors: errs,
			Data:   next,
		})
	}

	if errs := validateForm(form); errs != nil {
		fail(errs)
		return
	}

	var account models.Account
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, email, password_hash, is_staff, joined_at
		FROM account
		WHERE email = $1
	`, form.Email).Scan(&account.ID, &account.Email, &account.PasswordHash, &account.IsStaff, &account.JoinedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		slog.Error("failed to query account", "error", err)
		renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
		return
	}
	if err != nil || auth.CheckPassword(account.PasswordHash, form.Password) != nil {
		slog.Info("login failed", "ip", middleware.GetClientIP(r))
		fail(map[string]string{"form": "Invalid email or password."})
		return
	}

	if err := h.signIn(w, account); err != nil {
		slog.Error("failed to issue session", "error", err)
		renderError(h.view, w, r, http.StatusInternalServerError, "Failed to sign in.")
		return
	}

	slog.Info("login", "account_id", account.ID)
	seeOther(w, r, next)
}

// Logout handles POST /logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w)
	seeOther(w, r, "/")
}

// loadProfile returns the account's profile, creating an empty one if missing
func (h *AccountHandler) loadProfile(ctx context.Context, account *models.Account) (models.Profile, error) {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO profile (account_id, avatar, nickname, bio, email)
		VALUES ($1, $2, '', '', $3)
		ON CONFLICT (account_id) DO NOTHING
	`, account.ID, models.DefaultAvatar, account.Email)
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to ensure profile: %w", err)
	}

	var p models.Profile
	err = h.db.QueryRowContext(ctx, `
		SELECT account_id, avatar, nickname, bio, email
		FROM profile
		WHERE account_id = $1
	`, account.ID).Scan(&p.AccountID, &p.Avatar, &p.Nickname, &p.Bio, &p.Email)
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to query profile: %w", err)
	}
	return p, nil
}

// EditProfileForm handles GET /profile/edit
func (h *AccountHandler) EditProfileForm(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())

	profile, err := h.loadProfile(r.Context(), account)
	if err != nil {
		slog.Error("failed to load profile", "error", err, "account_id", account.ID)
		renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
		return
	}

	render(h.view, w, r, http.StatusOK, "edit_profile", views.Page{
		Title: "Edit profile",
		Form:  models.ProfileForm{Nickname: profile.Nickname, Email: profile.Email, Bio: profile.Bio},
		Data:  profile,
	})
}

// EditProfile handles POST /profile/edit
func (h *AccountHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())

	profile, err := h.loadProfile(r.Context(), account)
	if err != nil {
		slog.Error("failed to load profile", "error", err, "account_id", account.ID)
		renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
		return
	}

	if err := parseForm(w, r); err != nil {
		renderError(h.view, w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}

	form := models.ProfileForm{
		Nickname: strings.TrimSpace(r.PostFormValue("nickname")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Bio:      strings.TrimSpace(r.PostFormValue("bio")),
	}

	errs := validateForm(form)
	if errs == nil {
		errs = make(map[string]string)
	}

	file, header, err := uploadedFile(r, "avatar")
	if err != nil {
		errs["avatar"] = "Could not read the uploaded file."
	}
	if file != nil {
		defer file.Close()
		if err := media.Avatar.ValidateExtension(header.Filename); err != nil {
			errs["avatar"] = "File extension not allowed. Allowed extensions are: jpg, jpeg, png."
		}
	}

	invalid := func() {
		render(h.view, w, r, http.StatusBadRequest, "edit_profile", views.Page{
			Title:  "Edit profile",
			Form:   form,
			Errors: errs,
			Data:   profile,
		})
	}

	if len(errs) > 0 {
		invalid()
		return
	}

	oldAvatar := profile.Avatar
	if file != nil {
		rel, err := h.media.Save(media.Avatar, header.Filename, file)
		if errors.Is(err, media.ErrBadImage) {
			errs["avatar"] = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
			invalid()
			return
		}
		if err != nil {
			slog.Error("failed to save avatar", "error", err, "account_id", account.ID)
			renderError(h.view, w, r, http.StatusInternalServerError, "Could not store the avatar.")
			return
		}
		profile.Avatar = rel
	}

	_, err = h.db.ExecContext(r.Context(), `
		UPDATE profile
		SET avatar = $1, nickname = $2, email = $3, bio = $4
		WHERE account_id = $5
	`, profile.Avatar, form.Nickname, form.Email, form.Bio, account.ID)
	if err != nil {
		slog.Error("failed to update profile", "error", err, "account_id", account.ID)
		if profile.Avatar != oldAvatar {
			h.media.Remove(profile.Avatar)
		}
		renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
		return
	}

	if profile.Avatar != oldAvatar && oldAvatar != models.DefaultAvatar {
		if err := h.media.Remove(oldAvatar); err != nil {
			slog.Warn("failed to remove old avatar", "error", err, "path", oldAvatar)
		}
	}

	slog.Info("profile updated", "account_id", account.ID)

	middleware.AddFlash(w, r, models.FlashSuccess, "Your profile has been updated.")
	seeOther(w, r, "/")
}

// DeleteProfileForm handles GET /profile/delete
func (h *AccountHandler) DeleteProfileForm(w http.ResponseWriter, r *http.Request) {
	render(h.view, w, r, http.StatusOK, "delete_profile", views.Page{Title: "Delete account"})
}

// DeleteProfile handles POST /profile/delete
func (h *AccountHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	account := middleware.AccountFromContext(r.Context())

	var avatar string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT avatar FROM profile WHERE account_id = $1
	`, account.ID).Scan(&avatar)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		slog.Error("failed to query profile", "error", err, "account_id", account.ID)
		renderError(h.view, w, r, http.StatusInternalServerError, "Database error.")
		return
	}

	if err := DeleteAccount(r.Context(), h.db, account.ID); err != nil {
		slog.Error("failed to delete account", "error", err, "account_id", account.ID)
		renderError(h.view, w, r, http.StatusInternalServerError, "Failed to delete account.")
		return
	}

	if avatar != "" && avatar != models.DefaultAvatar {
		if err := h.media.Remove(avatar); err != nil {
			slog.Warn("failed to remove avatar", "error", err, "path", avatar)
		}
	}

	slog.Info("account deleted", "account_id", account.ID)

	middleware.ClearSessionCookie(w)
	middleware.AddFlash(w, r, models.FlashSuccess, "Your account has been deleted.")
	seeOther(w, r, "/")
}

// DeleteAccount removes an account with its profile and votes. Option
// counters the votes contributed to are decremented; authored questions
// stay with no author.
func DeleteAccount(ctx context.Context, conn *sql.DB, accountID string) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	steps := []struct {
		name  string
		query string
	}{
		{"decrement option counters", `
			UPDATE option SET votes = votes - 1
			WHERE id IN (SELECT option_id FROM vote WHERE account_id = $1) AND votes > 0`},
		{"delete votes", `DELETE FROM vote WHERE account_id = $1`},
		{"delete profile", `DELETE FROM profile WHERE account_id = $1`},
		{"detach questions", `UPDATE question SET author_id = NULL WHERE author_id = $1`},
		{"delete account", `DELETE FROM account WHERE id = $1`},
	}

	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, accountID); err != nil {
			return fmt.Errorf("failed to %s: %w", step.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deletion: %w", err)
	}
	return nil
}
