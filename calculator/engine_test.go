package calculator

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-sizer/domain"
)

func lagosHousehold() domain.EnergyProfile {
	return domain.EnergyProfile{
		Location:       "Lagos",
		UsageType:      domain.UsageHousehold,
		DailyEnergyKWh: 10,
		GridHours:      10,
		BackupDays:     1,
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRecommend_LagosHousehold(t *testing.T) {
	e := newDefaultEngine(t)

	rec, err := e.Recommend(lagosHousehold())
	require.NoError(t, err)

	assert.Equal(t, SystemHybrid, rec.SystemType.Type)
	assert.Equal(t, 2.5, rec.Solar.TotalCapacityKW)
	assert.Equal(t, 7, rec.Solar.NumPanels)
	assert.Equal(t, "1-3kW", rec.Solar.Inverter)
	assert.Equal(t, "60A", rec.Solar.ChargeController)
	assert.Equal(t, 7.0, rec.Battery.TotalCapacityKWh)
	assert.Equal(t, "lithium-ion", rec.Battery.BatteryType)
	assert.Equal(t, "2 batteries in parallel", rec.Battery.Configuration)
	assert.Equal(t, 14, rec.Installation.EstimatedAreaM2)
	assert.Equal(t, "roof mounted", rec.Installation.Mounting)
	assert.Empty(t, rec.Fallbacks)

	cb := rec.Financial.CostBreakdown
	assert.True(t, cb.Panels.Equal(d("875000")), cb.Panels.String())
	assert.True(t, cb.Battery.Equal(d("1260000")), cb.Battery.String())
	assert.True(t, cb.Inverter.Equal(d("150000")))
	assert.True(t, cb.ChargeController.Equal(d("85000")))
	assert.True(t, cb.BOS.Equal(d("355500")), cb.BOS.String())
	assert.True(t, cb.Installation.Equal(d("237000")), cb.Installation.String())

	sum := cb.Panels.Add(cb.Battery).Add(cb.Inverter).Add(cb.ChargeController).Add(cb.BOS).Add(cb.Installation)
	assert.True(t, cb.Total.Equal(sum))
	assert.True(t, cb.Total.Equal(d("2962500")), cb.Total.String())

	assert.True(t, rec.Financial.MonthlySavings.Equal(d("97500")))
	require.True(t, rec.Financial.PaybackYears.Valid)
	assert.True(t, rec.Financial.PaybackYears.Decimal.Round(4).Equal(d("2.5321")), rec.Financial.PaybackYears.Decimal.String())
}

func TestRecommend_IsIdempotent(t *testing.T) {
	e := newDefaultEngine(t)
	p := lagosHousehold()
	p.BackupDays = 2
	p.BatteryType = "gel"

	first, err := e.Recommend(p)
	require.NoError(t, err)
	second, err := e.Recommend(p)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRecommend_ConcurrentCallsAgree(t *testing.T) {
	e := newDefaultEngine(t)
	want, err := e.Recommend(lagosHousehold())
	require.NoError(t, err)
	wantJSON, _ := json.Marshal(want)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := e.Recommend(lagosHousehold())
			if err != nil {
				return
			}
			b, _ := json.Marshal(rec)
			results[i] = string(b)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, string(wantJSON), got)
	}
}

func TestRecommend_UnknownLookupsFallBack(t *testing.T) {
	e := newDefaultEngine(t)
	p := lagosHousehold()
	p.Location = "Jos"
	p.BatteryType = "nickel-iron"

	rec, err := e.Recommend(p)
	require.NoError(t, err)

	assert.Len(t, rec.Fallbacks, 2)
	assert.Equal(t, "lithium-ion", rec.Battery.BatteryType)
	// default factors: 5.5 sun hours, 365 per watt
	assert.Equal(t, 2.5, rec.Solar.TotalCapacityKW)
	assert.True(t, rec.Financial.CostBreakdown.Panels.Equal(d("912500")))
}

func TestRecommend_LocationIsCaseInsensitive(t *testing.T) {
	e := newDefaultEngine(t)
	p := lagosHousehold()
	p.Location = "port harcourt"

	rec, err := e.Recommend(p)
	require.NoError(t, err)
	assert.Empty(t, rec.Fallbacks)
	assert.Equal(t, 2.5, rec.Solar.TotalCapacityKW) // 10/5.0*1.2 = 2.4
}

func TestRecommend_PortableMounting(t *testing.T) {
	e := newDefaultEngine(t)
	p := lagosHousehold()
	p.DualUse = true

	rec, err := e.Recommend(p)
	require.NoError(t, err)
	assert.Equal(t, SystemPortable, rec.SystemType.Type)
	assert.Equal(t, "wheeled mobile frame", rec.Installation.Mounting)
}

func TestRecommend_ZeroFuelPriceLeavesPaybackUndefined(t *testing.T) {
	tables := DefaultTables()
	tables.FuelPricePerLiter = decimal.Zero
	e, err := New(tables)
	require.NoError(t, err)

	rec, err := e.Recommend(lagosHousehold())
	require.NoError(t, err)
	assert.True(t, rec.Financial.MonthlySavings.IsZero())
	assert.False(t, rec.Financial.PaybackYears.Valid)

	out, err := json.Marshal(rec.Financial)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"payback_period":null`)
}

func TestRecommend_ZeroSunHoursFails(t *testing.T) {
	tables := DefaultTables()
	tables.DefaultLocation.SunHours = 0
	e, err := New(tables)
	require.NoError(t, err)

	p := lagosHousehold()
	p.Location = "Somewhere"
	_, err = e.Recommend(p)
	assert.ErrorIs(t, err, ErrNoSunHours)
}

func TestRecommend_HugeDemandFailsCleanly(t *testing.T) {
	e := newDefaultEngine(t)

	for _, daily := range []float64{1e300, 1.7e308} {
		p := lagosHousehold()
		p.DailyEnergyKWh = daily
		p.BackupDays = 14
		assert.NotPanics(t, func() {
			_, err := e.Recommend(p)
			assert.ErrorIs(t, err, ErrTooLarge)
		})
	}
}

func TestNew_RejectsIncompleteTables(t *testing.T) {
	tables := DefaultTables()
	delete(tables.InverterCosts, BandInverter5to10)
	tables.DefaultBattery = "flywheel"

	_, err := New(tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5-10kW")
	assert.Contains(t, err.Error(), "flywheel")
}

func TestNew_RejectsCaseCollidingNames(t *testing.T) {
	tables := DefaultTables()
	tables.Locations["LAGOS"] = tables.Locations["Lagos"]
	_, err := New(tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"LAGOS" and "Lagos"`)

	tables = DefaultTables()
	tables.Batteries["Gel"] = tables.Batteries["gel"]
	_, err = New(tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Gel" and "gel"`)
}

func TestNew_CopiesTables(t *testing.T) {
	tables := DefaultTables()
	e, err := New(tables)
	require.NoError(t, err)

	tables.Locations["Lagos"] = LocationFactors{SunHours: 1, CostPerWatt: naira(1), InstallationFactor: naira(1)}

	kw, err := e.SolarSize(10, "Lagos")
	require.NoError(t, err)
	assert.Equal(t, 2.5, kw)
}

func TestLocations(t *testing.T) {
	e := newDefaultEngine(t)
	locs := e.Locations()
	require.Len(t, locs, 6)
	assert.Equal(t, "Abuja", locs[0].Name)
	assert.Equal(t, 6.0, locs[0].SunHours)
}
