package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	bosRate          = decimal.RequireFromString("0.15")
	litersPerKWh     = decimal.RequireFromString("0.5")
	daysPerMonth     = decimal.NewFromInt(30)
	monthsPerYear    = decimal.NewFromInt(12)
	wattsPerKilowatt = decimal.NewFromInt(1000)
	one              = decimal.NewFromInt(1)
)

// CostInput carries the sizing results into the cost aggregator.
type CostInput struct {
	SolarKW        float64
	BatteryKWh     float64
	DailyEnergyKWh float64
	InverterBand   string
	ControllerBand string
	Location       string
	BatteryType    string
}

// Costs is the full price and savings breakdown, in naira.
type Costs struct {
	Panels           decimal.Decimal
	Battery          decimal.Decimal
	Inverter         decimal.Decimal
	ChargeController decimal.Decimal
	BOS              decimal.Decimal
	Installation     decimal.Decimal
	Total            decimal.Decimal

	MonthlySavings decimal.Decimal
	// PaybackYears is invalid when there are no savings to pay the system back.
	PaybackYears decimal.NullDecimal
}

// Components is the sum of the four priced components.
func (c Costs) Components() decimal.Decimal {
	return c.Panels.Add(c.Battery).Add(c.Inverter).Add(c.ChargeController)
}

// CostBreakdown prices the system. Monthly savings assume the system fully
// replaces a diesel generator burning 0.5 L per kWh.
func (e *Engine) CostBreakdown(in CostInput) (Costs, error) {
	loc, _ := e.Location(in.Location)
	_, chem, _ := e.Battery(in.BatteryType)

	inverter, ok := e.tables.InverterCosts[in.InverterBand]
	if !ok {
		return Costs{}, fmt.Errorf("no price for inverter band %q", in.InverterBand)
	}
	controller, ok := e.tables.ControllerCosts[in.ControllerBand]
	if !ok {
		return Costs{}, fmt.Errorf("no price for charge controller band %q", in.ControllerBand)
	}
	if in.SolarKW < 0 || in.BatteryKWh < 0 || in.DailyEnergyKWh < 0 {
		return Costs{}, ErrNegativeEnergy
	}
	if !sizeable(in.SolarKW) || !sizeable(in.BatteryKWh) || !sizeable(in.DailyEnergyKWh) {
		return Costs{}, ErrTooLarge
	}

	c := Costs{
		Panels:           decimal.NewFromFloat(in.SolarKW).Mul(wattsPerKilowatt).Mul(loc.CostPerWatt),
		Battery:          decimal.NewFromFloat(in.BatteryKWh).Mul(chem.CostPerKWh),
		Inverter:         inverter,
		ChargeController: controller,
	}
	components := c.Components()
	c.BOS = components.Mul(bosRate)
	c.Installation = components.Mul(loc.InstallationFactor.Sub(one))
	c.Total = components.Add(c.BOS).Add(c.Installation)

	c.MonthlySavings = decimal.NewFromFloat(in.DailyEnergyKWh).
		Mul(daysPerMonth).
		Mul(litersPerKWh).
		Mul(e.tables.FuelPricePerLiter)

	if c.MonthlySavings.IsPositive() {
		c.PaybackYears = decimal.NewNullDecimal(c.Total.Div(c.MonthlySavings.Mul(monthsPerYear)))
	}
	return c, nil
}
