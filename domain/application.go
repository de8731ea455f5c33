package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Application is a prospective customer's record: what they entered in the
// calculator, the summary of the last recommendation, and their contact
// details once they ask to be called back.
type Application struct {
	Number          string        `json:"application_number"`
	Location        string        `json:"location"`
	UsageType       string        `json:"usage_type"`
	GridHours       *float64      `json:"grid_hours"`
	MonthlyFuelCost *float64      `json:"monthly_fuel_cost"`
	DailyEnergy     *float64      `json:"daily_energy"`
	MaintenanceCost *float64      `json:"maintenance_cost"`
	Appliances      ApplianceList `json:"appliances"`

	SystemType     string              `json:"system_type"`
	SolarKW        *float64            `json:"solar_kw"`
	BatteryKWh     *float64            `json:"battery_kwh"`
	TotalCost      decimal.NullDecimal `json:"total_cost"`
	MonthlySavings decimal.NullDecimal `json:"monthly_savings"`

	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ContactTime string `json:"contact_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecommendationSummary is the part of a recommendation kept with the
// application.
type RecommendationSummary struct {
	SystemType     string
	SolarKW        float64
	BatteryKWh     float64
	TotalCost      decimal.Decimal
	MonthlySavings decimal.Decimal
}

// CalculatorData is what the calculator step writes to an application.
type CalculatorData struct {
	Profile EnergyProfile
	Summary *RecommendationSummary
}

// Contact is what the personal-information step writes to an application.
type Contact struct {
	FullName    string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ContactTime string `json:"contact_time"`
}

// Normalize trims the fields and checks that name, email and phone are set.
func (c Contact) Normalize() (Contact, error) {
	c.FullName = strings.TrimSpace(c.FullName)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.ContactTime = strings.TrimSpace(c.ContactTime)
	switch {
	case c.FullName == "":
		return c, NewInputError("name", "", ErrMissingField)
	case c.Email == "":
		return c, NewInputError("email", "", ErrMissingField)
	case c.Phone == "":
		return c, NewInputError("phone", "", ErrMissingField)
	}
	if addr, err := mail.ParseAddress(c.Email); err != nil || addr.Address != c.Email {
		return c, NewInputError("email", c.Email, ErrInvalidEmail)
	}
	return c, nil
}

// ApplyCalculatorData overwrites the calculator fields.
func (a *Application) ApplyCalculatorData(d CalculatorData, now time.Time) {
	p := d.Profile
	a.Location = p.Location
	a.UsageType = string(p.UsageType)
	a.GridHours = floatPtr(p.GridHours)
	a.DailyEnergy = floatPtr(p.DailyEnergyKWh)
	a.MonthlyFuelCost = p.MonthlyFuelCost
	a.MaintenanceCost = p.MaintenanceCost
	a.Appliances = ApplianceList(p.Appliances)
	if s := d.Summary; s != nil {
		a.SystemType = s.SystemType
		a.SolarKW = floatPtr(s.SolarKW)
		a.BatteryKWh = floatPtr(s.BatteryKWh)
		a.TotalCost = decimal.NewNullDecimal(s.TotalCost)
		a.MonthlySavings = decimal.NewNullDecimal(s.MonthlySavings)
	}
	a.touch(now)
}

// ApplyContact overwrites the contact fields.
func (a *Application) ApplyContact(c Contact, now time.Time) {
	a.FullName = c.FullName
	a.Email = c.Email
	a.Phone = c.Phone
	a.ContactTime = c.ContactTime
	a.touch(now)
}

func (a *Application) touch(now time.Time) {
	now = now.UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
}

func floatPtr(v float64) *float64 { return &v }
