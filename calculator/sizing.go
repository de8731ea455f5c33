package calculator

import (
	"errors"
	"math"

	"solar-sizer/domain"
)

var (
	ErrNegativeEnergy = errors.New("daily energy must not be negative")
	ErrNoSunHours     = errors.New("location has no sun hours")
	ErrBackupDays     = errors.New("backup days must be at least 1")
	ErrTooLarge       = errors.New("system too large to size")
)

// maxSizeKW bounds every size the engine produces, so panel counts fit an
// int and costs stay finite.
const maxSizeKW = 1e9

// sizeable reports whether v is a finite size within the engine's range.
func sizeable(v float64) bool { return v >= 0 && v <= maxSizeKW }

const (
	solarLossFactor   = 1.2 // system losses and headroom
	minSolarKW        = 1.0
	batteryBuffer     = 1.3 // depth of discharge and degradation
	householdNightUse = 0.5
	otherNightUse     = 0.3
	busVoltage        = 48.0
)

// SolarSize returns the array size in kW, rounded up to the next 0.5 kW and
// never below 1 kW.
func (e *Engine) SolarSize(dailyKWh float64, location string) (float64, error) {
	factors, _ := e.Location(location)
	return solarSize(dailyKWh, factors.SunHours)
}

func solarSize(dailyKWh, sunHours float64) (float64, error) {
	if dailyKWh < 0 || math.IsNaN(dailyKWh) {
		return 0, ErrNegativeEnergy
	}
	if sunHours <= 0 {
		return 0, ErrNoSunHours
	}
	required := (dailyKWh / sunHours) * solarLossFactor
	required = math.Ceil(required*2) / 2
	if !sizeable(required) {
		return 0, ErrTooLarge
	}
	return math.Max(minSolarKW, required), nil
}

// BatterySize returns the bank capacity in whole kWh. Households are assumed
// to use half their energy at night, everyone else 30%.
func BatterySize(dailyKWh float64, backupDays int, usage domain.UsageType) (float64, error) {
	if dailyKWh < 0 || math.IsNaN(dailyKWh) {
		return 0, ErrNegativeEnergy
	}
	if backupDays < 1 {
		return 0, ErrBackupDays
	}
	nightFactor := otherNightUse
	if usage == domain.UsageHousehold {
		nightFactor = householdNightUse
	}
	nightKWh := dailyKWh * nightFactor
	// The explicit conversion keeps the compiler from fusing this into an
	// FMA, which would change rounding on some architectures.
	backupKWh := float64(dailyKWh*float64(backupDays-1)) + nightKWh
	size := math.Ceil(backupKWh * batteryBuffer)
	if !sizeable(size) {
		return 0, ErrTooLarge
	}
	return size, nil
}

// InverterBand maps an array size to an inverter band. Boundary values fall
// in the lower band.
func InverterBand(systemKW float64) string {
	switch {
	case systemKW <= 3:
		return BandInverter1to3
	case systemKW <= 5:
		return BandInverter3to5
	case systemKW <= 10:
		return BandInverter5to10
	case systemKW <= 15:
		return BandInverter10to15
	default:
		return BandInverter15to20
	}
}

// ChargeControllerBand maps an array size to a controller rating on a 48 V bus.
func ChargeControllerBand(systemKW float64) string {
	amps := systemKW * 1000 / busVoltage
	switch {
	case amps <= 30:
		return BandController30A
	case amps <= 50:
		return BandController50A
	case amps <= 60:
		return BandController60A
	case amps <= 80:
		return BandController80A
	default:
		return BandController100A
	}
}

// PanelCount is the number of panels of the given wattage needed for
// systemKW. A non-positive wattage means the 400 W default. systemKW is
// expected to come from SolarSize; anything beyond its range yields 0.
func PanelCount(systemKW float64, panelWatts int) int {
	if panelWatts <= 0 {
		panelWatts = DefaultPanelWatts
	}
	if systemKW <= 0 || !sizeable(systemKW) {
		return 0
	}
	return int(math.Ceil(systemKW * 1000 / float64(panelWatts)))
}
