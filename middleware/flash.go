// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/danielhkuo/pollhall/models"
)

const FlashCookie = "pollhall_flash"

// AddFlash queues a message for the next rendered page. Messages that the
// current request carried in and has not shown yet are kept.
func AddFlash(w http.ResponseWriter, r *http.Request, level, message string) {
	flashes := readFlashes(r)
	flashes = append(flashes, models.Flash{Level: level, Message: message})

	data, err := json.Marshal(flashes)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlashes returns the queued messages and clears them
func PopFlashes(w http.ResponseWriter, r *http.Request) []models.Flash {
	flashes := readFlashes(r)
	if len(flashes) == 0 {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:   FlashCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	return flashes
}

func readFlashes(r *http.Request) []models.Flash {
	cookie, err := r.Cookie(FlashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var flashes []models.Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
