package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"solar-sizer/repository"
	"solar-sizer/service"
)

const sessionCookie = "solar_session"

// ErrSessionUnavailable means the session store could not be read or written.
var ErrSessionUnavailable = errors.New("session store unavailable")

// Sessions ties a browser to the application it is filling in.
type Sessions struct {
	store  repository.SessionStore
	log    *slog.Logger
	secure bool
}

func NewSessions(store repository.SessionStore, log *slog.Logger, secureCookie bool) *Sessions {
	return &Sessions{store: store, log: log, secure: secureCookie}
}

// ApplicationNumber returns the application bound to the request's session.
// A request without a live session gets a new session and number. When the
// store fails no cookie is written and ErrSessionUnavailable is returned.
func (s *Sessions) ApplicationNumber(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		number, ok, err := s.store.Get(r.Context(), c.Value)
		if err != nil {
			s.log.Error("failed to read session", "error", err)
			return "", fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
		}
		if ok {
			return number, nil
		}
	}

	id := uuid.NewString()
	number := service.NewApplicationNumber()
	if err := s.store.Set(r.Context(), id, number); err != nil {
		s.log.Error("failed to store session", "error", err)
		return "", fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(repository.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return number, nil
}
