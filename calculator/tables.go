package calculator

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// LocationFactors are the per-location solar and pricing factors.
type LocationFactors struct {
	SunHours           float64         `json:"sun_hours"`
	CostPerWatt        decimal.Decimal `json:"cost_per_watt"`
	InstallationFactor decimal.Decimal `json:"installation_factor"`
}

// BatteryChemistry describes a battery technology.
type BatteryChemistry struct {
	CostPerKWh          decimal.Decimal `json:"cost_per_kwh"`
	CycleLife           int             `json:"cycle_life"`
	RoundTripEfficiency float64         `json:"round_trip_efficiency"`
}

// Tables is the lookup data the engine prices against. An Engine keeps its
// own copy, so a Tables value can be reused or modified after New returns.
type Tables struct {
	Locations       map[string]LocationFactors  `json:"locations"`
	DefaultLocation LocationFactors             `json:"default_location"`
	Batteries       map[string]BatteryChemistry `json:"batteries"`
	DefaultBattery  string                      `json:"default_battery"`
	InverterCosts   map[string]decimal.Decimal  `json:"inverter_costs"`
	ControllerCosts map[string]decimal.Decimal  `json:"controller_costs"`

	// FuelPricePerLiter is the diesel price of the generator baseline.
	FuelPricePerLiter decimal.Decimal `json:"fuel_price_per_liter"`
	PanelWatts        int             `json:"panel_watts"`
}

const (
	BandInverter1to3   = "1-3kW"
	BandInverter3to5   = "3-5kW"
	BandInverter5to10  = "5-10kW"
	BandInverter10to15 = "10-15kW"
	BandInverter15to20 = "15-20kW"

	BandController30A  = "30A"
	BandController50A  = "50A"
	BandController60A  = "60A"
	BandController80A  = "80A"
	BandController100A = "100A"

	DefaultPanelWatts = 400
)

var (
	InverterBands   = []string{BandInverter1to3, BandInverter3to5, BandInverter5to10, BandInverter10to15, BandInverter15to20}
	ControllerBands = []string{BandController30A, BandController50A, BandController60A, BandController80A, BandController100A}
)

// DefaultFuelPricePerLiter is the diesel price in naira per litre.
var DefaultFuelPricePerLiter = decimal.NewFromInt(650)

func naira(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func location(sun float64, costPerWatt int64, factor string) LocationFactors {
	return LocationFactors{
		SunHours:           sun,
		CostPerWatt:        naira(costPerWatt),
		InstallationFactor: decimal.RequireFromString(factor),
	}
}

// DefaultTables returns the Nigerian price list.
func DefaultTables() Tables {
	return Tables{
		Locations: map[string]LocationFactors{
			"Lagos":         location(5.5, 350, "1.1"),
			"Abuja":         location(6.0, 370, "1.0"),
			"Kano":          location(6.5, 390, "1.2"),
			"Port Harcourt": location(5.0, 360, "1.15"),
			"Ibadan":        location(5.8, 355, "1.05"),
			"Enugu":         location(5.6, 380, "1.1"),
		},
		DefaultLocation: location(5.5, 365, "1.1"),
		Batteries: map[string]BatteryChemistry{
			"lithium-ion": {CostPerKWh: naira(180000), CycleLife: 3000, RoundTripEfficiency: 0.95},
			"gel":         {CostPerKWh: naira(120000), CycleLife: 1500, RoundTripEfficiency: 0.85},
			"lead-acid":   {CostPerKWh: naira(80000), CycleLife: 800, RoundTripEfficiency: 0.75},
		},
		DefaultBattery: "lithium-ion",
		InverterCosts: map[string]decimal.Decimal{
			BandInverter1to3:   naira(150000),
			BandInverter3to5:   naira(250000),
			BandInverter5to10:  naira(400000),
			BandInverter10to15: naira(600000),
			BandInverter15to20: naira(800000),
		},
		ControllerCosts: map[string]decimal.Decimal{
			BandController30A:  naira(45000),
			BandController50A:  naira(70000),
			BandController60A:  naira(85000),
			BandController80A:  naira(120000),
			BandController100A: naira(150000),
		},
		FuelPricePerLiter: DefaultFuelPricePerLiter,
		PanelWatts:        DefaultPanelWatts,
	}
}

// Validate checks that every band is priced and the defaults resolve.
func (t Tables) Validate() error {
	var errs []error
	if _, ok := t.Batteries[t.DefaultBattery]; !ok {
		errs = append(errs, fmt.Errorf("default battery %q not in battery table", t.DefaultBattery))
	}
	for name, b := range t.Batteries {
		if b.CostPerKWh.IsNegative() {
			errs = append(errs, fmt.Errorf("battery %q: negative cost", name))
		}
		if b.RoundTripEfficiency <= 0 || b.RoundTripEfficiency > 1 {
			errs = append(errs, fmt.Errorf("battery %q: efficiency %v outside (0,1]", name, b.RoundTripEfficiency))
		}
	}
	for _, band := range InverterBands {
		if _, ok := t.InverterCosts[band]; !ok {
			errs = append(errs, fmt.Errorf("inverter band %q has no cost", band))
		}
	}
	for _, band := range ControllerBands {
		if _, ok := t.ControllerCosts[band]; !ok {
			errs = append(errs, fmt.Errorf("charge controller band %q has no cost", band))
		}
	}
	check := func(name string, f LocationFactors) {
		if f.SunHours < 0 {
			errs = append(errs, fmt.Errorf("location %q: negative sun hours", name))
		}
		if f.CostPerWatt.IsNegative() {
			errs = append(errs, fmt.Errorf("location %q: negative cost per watt", name))
		}
		if f.InstallationFactor.LessThan(decimal.NewFromInt(1)) {
			errs = append(errs, fmt.Errorf("location %q: installation factor below 1", name))
		}
	}
	check("default", t.DefaultLocation)
	for name, f := range t.Locations {
		check(name, f)
	}
	errs = append(errs, caseCollisions("location", slices.Collect(maps.Keys(t.Locations)))...)
	errs = append(errs, caseCollisions("battery", slices.Collect(maps.Keys(t.Batteries)))...)
	if t.FuelPricePerLiter.IsNegative() {
		errs = append(errs, errors.New("negative fuel price"))
	}
	if t.PanelWatts <= 0 {
		errs = append(errs, errors.New("panel watts must be positive"))
	}
	return errors.Join(errs...)
}

// caseCollisions reports names that differ only in letter case. Lookups
// ignore case, so such pairs would make the chosen row arbitrary.
func caseCollisions(kind string, names []string) []error {
	slices.Sort(names)
	seen := make(map[string]string, len(names))
	var errs []error
	for _, name := range names {
		key := strings.ToLower(name)
		if prev, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("%s names %q and %q differ only in case", kind, prev, name))
			continue
		}
		seen[key] = name
	}
	return errs
}

func (t Tables) clone() Tables {
	t.Locations = maps.Clone(t.Locations)
	t.Batteries = maps.Clone(t.Batteries)
	t.InverterCosts = maps.Clone(t.InverterCosts)
	t.ControllerCosts = maps.Clone(t.ControllerCosts)
	return t
}
