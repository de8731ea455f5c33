package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostBreakdown_KanoLeadAcid(t *testing.T) {
	e := newDefaultEngine(t)

	c, err := e.CostBreakdown(CostInput{
		SolarKW:        6,
		BatteryKWh:     12,
		DailyEnergyKWh: 30,
		InverterBand:   InverterBand(6),
		ControllerBand: ChargeControllerBand(6),
		Location:       "Kano",
		BatteryType:    "lead-acid",
	})
	require.NoError(t, err)

	assert.True(t, c.Panels.Equal(d("2340000")), c.Panels.String())  // 6000 W x 390
	assert.True(t, c.Battery.Equal(d("960000")), c.Battery.String()) // 12 x 80000
	assert.True(t, c.Inverter.Equal(d("400000")))
	assert.True(t, c.ChargeController.Equal(d("150000"))) // 125 A
	assert.True(t, c.Components().Equal(d("3850000")))
	assert.True(t, c.BOS.Equal(d("577500")))
	assert.True(t, c.Installation.Equal(d("770000")), c.Installation.String())
	assert.True(t, c.Total.Equal(d("5197500")), c.Total.String())
	assert.True(t, c.MonthlySavings.Equal(d("292500")), c.MonthlySavings.String())
}

func TestCostBreakdown_UnknownBand(t *testing.T) {
	e := newDefaultEngine(t)

	_, err := e.CostBreakdown(CostInput{SolarKW: 1, InverterBand: "2-4kW", ControllerBand: "30A"})
	assert.Error(t, err)

	_, err = e.CostBreakdown(CostInput{SolarKW: 1, InverterBand: "1-3kW", ControllerBand: "45A"})
	assert.Error(t, err)
}

func TestCostBreakdown_NoDailyEnergyMeansNoPayback(t *testing.T) {
	e := newDefaultEngine(t)

	c, err := e.CostBreakdown(CostInput{SolarKW: 1, BatteryKWh: 1, InverterBand: "1-3kW", ControllerBand: "30A", Location: "Abuja"})
	require.NoError(t, err)
	assert.True(t, c.Installation.IsZero()) // Abuja factor is 1.0
	assert.False(t, c.PaybackYears.Valid)
}

func TestCostBreakdown_RejectsUnboundedSizes(t *testing.T) {
	e := newDefaultEngine(t)

	_, err := e.CostBreakdown(CostInput{SolarKW: 1, BatteryKWh: math.Inf(1), InverterBand: "1-3kW", ControllerBand: "30A"})
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = e.CostBreakdown(CostInput{SolarKW: 1, DailyEnergyKWh: 1e300, InverterBand: "1-3kW", ControllerBand: "30A"})
	assert.ErrorIs(t, err, ErrTooLarge)
}
