package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"solar-sizer/calculator"
	"solar-sizer/domain"
	"solar-sizer/service"
)

type CalculatorHandler struct {
	service  *service.RecommendationService
	sessions *Sessions
	log      *slog.Logger
}

func NewCalculatorHandler(service *service.RecommendationService, sessions *Sessions, log *slog.Logger) *CalculatorHandler {
	return &CalculatorHandler{service: service, sessions: sessions, log: log}
}

type calculateResponse struct {
	Success           bool                      `json:"success"`
	ApplicationNumber string                    `json:"application_number,omitempty"`
	Recommendation    calculator.Recommendation `json:"recommendation"`
	HTML              string                    `json:"recommendations"`
}

func (h *CalculatorHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFailure(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limitBody(w, r)
	req, err := decodeCalculationRequest(r)
	if err != nil {
		writeDecodeFailure(w, err)
		return
	}

	number := ""
	if h.sessions != nil {
		if number, err = h.sessions.ApplicationNumber(w, r); err != nil {
			sessionFailure(w)
			return
		}
	}

	out, err := h.service.Calculate(r.Context(), number, req)
	if err != nil {
		var inErr *domain.InputError
		if errors.As(err, &inErr) {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("calculation failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "calculation failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, calculateResponse{
		Success:           true,
		ApplicationNumber: number,
		Recommendation:    out.Recommendation,
		HTML:              out.HTML,
	})
}

func decodeCalculationRequest(r *http.Request) (domain.CalculationRequest, error) {
	var req domain.CalculationRequest
	if isJSON(r) {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	f := r.PostForm
	req = domain.CalculationRequest{
		Location:        f.Get("location"),
		UserType:        f.Get("user_type"),
		GridHours:       domain.FlexNumber(f.Get("grid_hours")),
		DailyEnergy:     domain.FlexNumber(f.Get("daily_energy")),
		MonthlyFuelCost: domain.FlexNumber(f.Get("monthly_fuel_cost")),
		MaintenanceCost: domain.FlexNumber(f.Get("maintenance_cost")),
		BackupDays:      domain.FlexNumber(f.Get("backup_days")),
		DualUse:         formBool(f.Get("dual_use")),
		BatteryType:     f.Get("battery_type"),
	}
	if raw := f.Get("appliances"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Appliances); err != nil {
			return req, err
		}
	}
	return req, nil
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func (h *CalculatorHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CalculatorHandler) Locations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Engine().Locations())
}

func (h *CalculatorHandler) Appliances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Catalog())
}

type estimateRequest struct {
	Appliances []domain.Appliance `json:"appliances"`
}

type applianceEstimate struct {
	Type     string  `json:"type"`
	DailyKWh float64 `json:"daily_kwh"`
}

type estimateResponse struct {
	Success       bool                `json:"success"`
	Appliances    []applianceEstimate `json:"appliances"`
	TotalDailyKWh float64             `json:"total_daily_kwh"`
}

// EstimateAppliances sums the daily energy of an appliance list. Rows with
// neither wattage nor daily usage take the catalogue wattage for their type.
func (h *CalculatorHandler) EstimateAppliances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFailure(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limitBody(w, r)
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeFailure(w, err)
		return
	}
	if len(req.Appliances) > service.MaxAppliances {
		writeFailure(w, http.StatusBadRequest, "too many appliances")
		return
	}

	resp := estimateResponse{Success: true, Appliances: make([]applianceEstimate, 0, len(req.Appliances))}
	for i, a := range req.Appliances {
		if err := a.Validate(); err != nil {
			writeFailure(w, http.StatusBadRequest, domain.NewInputError("appliances", a.Type, err).Error())
			return
		}
		if a.Power == 0 && a.DailyUsage == 0 {
			a.Power = domain.ApplianceCatalog[a.Type]
		}
		req.Appliances[i] = a
		resp.Appliances = append(resp.Appliances, applianceEstimate{Type: a.Type, DailyKWh: a.DailyKWh()})
	}
	resp.TotalDailyKWh = domain.TotalDailyKWh(req.Appliances)
	writeJSON(w, http.StatusOK, resp)
}
