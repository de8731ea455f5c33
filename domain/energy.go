package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type UsageType string

const (
	UsageHousehold UsageType = "household"
	UsageBusiness  UsageType = "business"
	UsageDual      UsageType = "dual"
)

// ParseUsageType accepts the usage types in any letter case.
func ParseUsageType(s string) (UsageType, bool) {
	switch UsageType(strings.ToLower(strings.TrimSpace(s))) {
	case UsageHousehold:
		return UsageHousehold, true
	case UsageBusiness:
		return UsageBusiness, true
	case UsageDual:
		return UsageDual, true
	}
	return "", false
}

const (
	MaxGridHours      = 24.0
	DefaultBackupDays = 1
	MaxBackupDays     = 14
	// MaxDailyEnergyKWh bounds daily consumption well above any single site.
	MaxDailyEnergyKWh = 1_000_000.0
)

// EnergyProfile is the validated input of the sizing engine.
type EnergyProfile struct {
	Location        string
	UsageType       UsageType
	DailyEnergyKWh  float64
	GridHours       float64
	BackupDays      int
	MonthlyFuelCost *float64
	MaintenanceCost *float64
	DualUse         bool
	BatteryType     string
	Appliances      []Appliance
}

// FlexNumber holds a numeric field that clients send either as a JSON
// number or as a numeric string. The raw text is parsed on demand.
type FlexNumber string

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = FlexNumber(strings.TrimSpace(s))
		return nil
	}
	*n = FlexNumber(data)
	return nil
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(n))
}

// Present reports whether the field carried any value.
func (n FlexNumber) Present() bool { return strings.TrimSpace(string(n)) != "" }

// Float parses the value, rejecting NaN and infinities.
func (n FlexNumber) Float() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CalculationRequest is the loose calculator form as submitted by clients.
type CalculationRequest struct {
	Location        string      `json:"location"`
	UserType        string      `json:"user_type"`
	GridHours       FlexNumber  `json:"grid_hours"`
	DailyEnergy     FlexNumber  `json:"daily_energy"`
	MonthlyFuelCost FlexNumber  `json:"monthly_fuel_cost"`
	MaintenanceCost FlexNumber  `json:"maintenance_cost"`
	BackupDays      FlexNumber  `json:"backup_days"`
	DualUse         bool        `json:"dual_use"`
	BatteryType     string      `json:"battery_type,omitempty"`
	Appliances      []Appliance `json:"appliances,omitempty"`
}

// Profile validates the request and builds an EnergyProfile. Missing or
// unparseable grid hours are rejected rather than treated as zero.
func (r CalculationRequest) Profile() (EnergyProfile, error) {
	location := strings.TrimSpace(r.Location)
	if location == "" {
		return EnergyProfile{}, NewInputError("location", "", ErrMissingField)
	}

	if strings.TrimSpace(r.UserType) == "" {
		return EnergyProfile{}, NewInputError("user_type", "", ErrMissingField)
	}
	usage, ok := ParseUsageType(r.UserType)
	if !ok {
		return EnergyProfile{}, NewInputError("user_type", r.UserType, ErrUnknownUsageType)
	}

	gridHours, err := requiredFloat("grid_hours", r.GridHours)
	if err != nil {
		return EnergyProfile{}, err
	}
	if gridHours < 0 || gridHours > MaxGridHours {
		return EnergyProfile{}, NewInputError("grid_hours", string(r.GridHours), ErrOutOfRange)
	}

	daily, err := requiredFloat("daily_energy", r.DailyEnergy)
	if err != nil {
		return EnergyProfile{}, err
	}
	if daily <= 0 || daily > MaxDailyEnergyKWh {
		return EnergyProfile{}, NewInputError("daily_energy", string(r.DailyEnergy), ErrOutOfRange)
	}

	backupDays := DefaultBackupDays
	if r.BackupDays.Present() {
		v, ok := r.BackupDays.Float()
		if !ok {
			return EnergyProfile{}, NewInputError("backup_days", string(r.BackupDays), ErrNotNumeric)
		}
		if v != math.Trunc(v) || v < 1 || v > MaxBackupDays {
			return EnergyProfile{}, NewInputError("backup_days", string(r.BackupDays), ErrOutOfRange)
		}
		backupDays = int(v)
	}

	fuel, err := optionalNonNegative("monthly_fuel_cost", r.MonthlyFuelCost)
	if err != nil {
		return EnergyProfile{}, err
	}
	maintenance, err := optionalNonNegative("maintenance_cost", r.MaintenanceCost)
	if err != nil {
		return EnergyProfile{}, err
	}

	for i, a := range r.Appliances {
		if err := a.Validate(); err != nil {
			return EnergyProfile{}, NewInputError("appliances["+strconv.Itoa(i)+"]", a.Type, err)
		}
	}

	return EnergyProfile{
		Location:        location,
		UsageType:       usage,
		DailyEnergyKWh:  daily,
		GridHours:       gridHours,
		BackupDays:      backupDays,
		MonthlyFuelCost: fuel,
		MaintenanceCost: maintenance,
		DualUse:         r.DualUse,
		BatteryType:     strings.TrimSpace(r.BatteryType),
		Appliances:      r.Appliances,
	}, nil
}

func requiredFloat(field string, n FlexNumber) (float64, error) {
	if !n.Present() {
		return 0, NewInputError(field, "", ErrMissingField)
	}
	v, ok := n.Float()
	if !ok {
		return 0, NewInputError(field, string(n), ErrNotNumeric)
	}
	return v, nil
}

func optionalNonNegative(field string, n FlexNumber) (*float64, error) {
	if !n.Present() {
		return nil, nil
	}
	v, ok := n.Float()
	if !ok {
		return nil, NewInputError(field, string(n), ErrNotNumeric)
	}
	if v < 0 {
		return nil, NewInputError(field, string(n), ErrOutOfRange)
	}
	return &v, nil
}
