package calculator

import (
	"github.com/shopspring/decimal"

	"solar-sizer/domain"
)

// Recommendation is the engine's structured result.
type Recommendation struct {
	SystemType   Classification `json:"system_type"`
	Solar        SolarSystem    `json:"solar_system"`
	Battery      BatterySystem  `json:"battery_system"`
	Financial    Financial      `json:"financial"`
	Installation Installation   `json:"installation"`

	// Fallbacks lists lookups that missed and used default table rows.
	Fallbacks []string `json:"fallbacks,omitempty"`
}

type SolarSystem struct {
	TotalCapacityKW  float64 `json:"total_capacity"`
	NumPanels        int     `json:"num_panels"`
	PanelType        string  `json:"panel_type"`
	Inverter         string  `json:"inverter"`
	ChargeController string  `json:"charge_controller"`
}

type BatterySystem struct {
	TotalCapacityKWh float64 `json:"total_capacity"`
	BatteryType      string  `json:"battery_type"`
	Configuration    string  `json:"configuration"`
}

type CostBreakdown struct {
	Panels           decimal.Decimal `json:"panels"`
	Battery          decimal.Decimal `json:"battery"`
	Inverter         decimal.Decimal `json:"inverter"`
	ChargeController decimal.Decimal `json:"charge_controller"`
	BOS              decimal.Decimal `json:"bos"`
	Installation     decimal.Decimal `json:"installation"`
	Total            decimal.Decimal `json:"total"`
}

type Financial struct {
	CostBreakdown  CostBreakdown   `json:"cost_breakdown"`
	MonthlySavings decimal.Decimal `json:"monthly_savings"`
	// PaybackYears is null when there are no monthly savings.
	PaybackYears decimal.NullDecimal `json:"payback_period"`
}

type Installation struct {
	Mounting        string `json:"mounting"`
	EstimatedAreaM2 int    `json:"estimated_area"`
	AdditionalNotes string `json:"additional_notes"`
}

// Summary extracts the fields stored with an application.
func (r Recommendation) Summary() domain.RecommendationSummary {
	return domain.RecommendationSummary{
		SystemType:     string(r.SystemType.Type),
		SolarKW:        r.Solar.TotalCapacityKW,
		BatteryKWh:     r.Battery.TotalCapacityKWh,
		TotalCost:      r.Financial.CostBreakdown.Total,
		MonthlySavings: r.Financial.MonthlySavings,
	}
}
