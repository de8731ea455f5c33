package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"solar-sizer/domain"
	"solar-sizer/repository"
	"solar-sizer/service"
)

type ApplicationHandler struct {
	service  *service.ApplicationService
	sessions *Sessions
	log      *slog.Logger
}

func NewApplicationHandler(service *service.ApplicationService, sessions *Sessions, log *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{service: service, sessions: sessions, log: log}
}

type submitResponse struct {
	Success           bool   `json:"success"`
	ApplicationNumber string `json:"application_number"`
}

// Submit stores the contact details for the session's application.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFailure(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limitBody(w, r)
	var contact domain.Contact
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
			writeDecodeFailure(w, err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeDecodeFailure(w, err)
			return
		}
		contact = domain.Contact{
			FullName:    r.PostForm.Get("name"),
			Email:       r.PostForm.Get("email"),
			Phone:       r.PostForm.Get("phone"),
			ContactTime: r.PostForm.Get("contact_time"),
		}
	}

	number, err := h.sessions.ApplicationNumber(w, r)
	if err != nil {
		sessionFailure(w)
		return
	}
	app, err := h.service.SavePersonalInfo(r.Context(), number, contact)
	if err != nil {
		var inErr *domain.InputError
		if errors.As(err, &inErr) {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("failed to save application", "application", number, "error", err)
		writeFailure(w, http.StatusInternalServerError, "could not save application")
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{Success: true, ApplicationNumber: app.Number})
}

// List returns every application.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.List(r.Context())
	if err != nil {
		h.log.Error("failed to list applications", "error", err)
		writeFailure(w, http.StatusInternalServerError, "could not list applications")
		return
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	writeJSON(w, http.StatusOK, apps)
}

// Get returns one application by number.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	app, err := h.service.Get(r.Context(), number)
	if errors.Is(err, repository.ErrNotFound) {
		writeFailure(w, http.StatusNotFound, "application not found")
		return
	}
	if err != nil {
		h.log.Error("failed to get application", "application", number, "error", err)
		writeFailure(w, http.StatusInternalServerError, "could not load application")
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// Export downloads every application as CSV.
func (h *ApplicationHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="applications_%s.csv"`, time.Now().UTC().Format("20060102")))
	if err := h.service.ExportCSV(r.Context(), w); err != nil {
		h.log.Error("csv export failed", "error", err)
	}
}
