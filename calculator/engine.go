// Package calculator sizes and prices a solar, battery and inverter system
// from a customer's energy profile.
//
// The engine is pure: it performs no I/O, keeps no mutable state and is safe
// for concurrent use.
package calculator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"solar-sizer/domain"
)

type Engine struct {
	tables Tables
}

// New builds an engine over a private copy of t.
func New(t Tables) (*Engine, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tables: %w", err)
	}
	return &Engine{tables: t.clone()}, nil
}

// Location returns the factors for name, matched exactly and then without
// regard to case. Unknown names get the default factors and found=false.
func (e *Engine) Location(name string) (LocationFactors, bool) {
	name = strings.TrimSpace(name)
	if f, ok := e.tables.Locations[name]; ok {
		return f, true
	}
	for k, f := range e.tables.Locations {
		if strings.EqualFold(k, name) {
			return f, true
		}
	}
	return e.tables.DefaultLocation, false
}

// Battery resolves a chemistry name, falling back to the default chemistry.
// An empty name selects the default without counting as a miss.
func (e *Engine) Battery(name string) (string, BatteryChemistry, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return e.tables.DefaultBattery, e.tables.Batteries[e.tables.DefaultBattery], true
	}
	if b, ok := e.tables.Batteries[key]; ok {
		return key, b, true
	}
	for k, b := range e.tables.Batteries {
		if strings.EqualFold(k, key) {
			return k, b, true
		}
	}
	return e.tables.DefaultBattery, e.tables.Batteries[e.tables.DefaultBattery], false
}

type LocationInfo struct {
	Name     string  `json:"name"`
	SunHours float64 `json:"sun_hours"`
}

// Locations lists the known locations by name.
func (e *Engine) Locations() []LocationInfo {
	out := make([]LocationInfo, 0, len(e.tables.Locations))
	for name, f := range e.tables.Locations {
		out = append(out, LocationInfo{Name: name, SunHours: f.SunHours})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

const (
	batteryModuleKWh = 5.0
	m2PerPanel       = 2
	panelType        = "400 W monocrystalline"
	installNotes     = "Installation includes mounting hardware, wiring, and system configuration."
)

// Recommend runs the whole pipeline: classify, size, price.
func (e *Engine) Recommend(p domain.EnergyProfile) (Recommendation, error) {
	var fallbacks []string
	if _, found := e.Location(p.Location); !found {
		fallbacks = append(fallbacks, fmt.Sprintf("location %q not in price list, default factors used", p.Location))
	}
	batteryType, _, found := e.Battery(p.BatteryType)
	if !found {
		fallbacks = append(fallbacks, fmt.Sprintf("battery type %q not in price list, %s used", p.BatteryType, batteryType))
	}

	class := Classify(p.GridHours, p.UsageType, p.DualUse)

	solarKW, err := e.SolarSize(p.DailyEnergyKWh, p.Location)
	if err != nil {
		return Recommendation{}, fmt.Errorf("solar size: %w", err)
	}
	batteryKWh, err := BatterySize(p.DailyEnergyKWh, p.BackupDays, p.UsageType)
	if err != nil {
		return Recommendation{}, fmt.Errorf("battery size: %w", err)
	}
	inverter := InverterBand(solarKW)
	controller := ChargeControllerBand(solarKW)
	panels := PanelCount(solarKW, e.tables.PanelWatts)

	costs, err := e.CostBreakdown(CostInput{
		SolarKW:        solarKW,
		BatteryKWh:     batteryKWh,
		DailyEnergyKWh: p.DailyEnergyKWh,
		InverterBand:   inverter,
		ControllerBand: controller,
		Location:       p.Location,
		BatteryType:    batteryType,
	})
	if err != nil {
		return Recommendation{}, fmt.Errorf("cost breakdown: %w", err)
	}

	mounting := "roof mounted"
	if class.Type == SystemPortable {
		mounting = "wheeled mobile frame"
	}

	return Recommendation{
		SystemType: class,
		Solar: SolarSystem{
			TotalCapacityKW:  solarKW,
			NumPanels:        panels,
			PanelType:        panelType,
			Inverter:         inverter,
			ChargeController: controller,
		},
		Battery: BatterySystem{
			TotalCapacityKWh: batteryKWh,
			BatteryType:      batteryType,
			Configuration:    fmt.Sprintf("%d batteries in parallel", int(math.Ceil(batteryKWh/batteryModuleKWh))),
		},
		Financial: Financial{
			CostBreakdown: CostBreakdown{
				Panels:           costs.Panels,
				Battery:          costs.Battery,
				Inverter:         costs.Inverter,
				ChargeController: costs.ChargeController,
				BOS:              costs.BOS,
				Installation:     costs.Installation,
				Total:            costs.Total,
			},
			MonthlySavings: costs.MonthlySavings,
			PaybackYears:   costs.PaybackYears,
		},
		Installation: Installation{
			Mounting:        mounting,
			EstimatedAreaM2: panels * m2PerPanel,
			AdditionalNotes: installNotes,
		},
		Fallbacks: fallbacks,
	}, nil
}
