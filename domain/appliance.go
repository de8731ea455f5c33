package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Appliance is one row of the calculator's appliance table. It is recorded
// with the application but never feeds the costing formulas.
type Appliance struct {
	Type       string  `json:"type"`
	Units      int     `json:"units"`
	Hours      float64 `json:"hours"`
	Backup     bool    `json:"backup"`
	Power      float64 `json:"power"`
	DailyUsage float64 `json:"daily_usage"`
}

func (a Appliance) Validate() error {
	if a.Units < 0 || a.Hours < 0 || a.Hours > 24 || a.Power < 0 || a.DailyUsage < 0 {
		return ErrOutOfRange
	}
	return nil
}

// DailyKWh is watts x units x hours / 1000. When no wattage was given the
// client-side daily_usage figure is used as is.
func (a Appliance) DailyKWh() float64 {
	if a.Power == 0 {
		return a.DailyUsage
	}
	return a.Power * float64(a.Units) * a.Hours / 1000
}

// TotalDailyKWh sums the daily usage of every appliance.
func TotalDailyKWh(appliances []Appliance) float64 {
	total := 0.0
	for _, a := range appliances {
		total += a.DailyKWh()
	}
	return total
}

// ApplianceList stores appliances as a JSON column.
type ApplianceList []Appliance

func (l ApplianceList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Appliance(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ApplianceList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("appliances: unsupported column type %T", src)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	var out []Appliance
	if err := json.Unmarshal(data, &out); err != nil {
		return errors.Join(errors.New("appliances: decode column"), err)
	}
	*l = out
	return nil
}

// ApplianceCatalog lists typical wattage of common appliances.
var ApplianceCatalog = map[string]float64{
	"LED Lights":              10,
	"Ceiling Fan":             75,
	"Standing Fan":            50,
	"Smartphone Charger":      10,
	"Laptop":                  65,
	"Desktop Computer":        150,
	"TV (32-inch LED)":        50,
	"TV (43-inch LED)":        100,
	"TV (55-inch LED)":        150,
	"Small Refrigerator":      150,
	"Large Refrigerator":      250,
	"Chest Freezer":           300,
	"Air Conditioner (1HP)":   750,
	"Air Conditioner (1.5HP)": 1100,
	"Air Conditioner (2HP)":   1500,
	"Electric Iron":           1000,
	"Microwave":               800,
	"Electric Kettle":         1500,
	"Water Dispenser":         100,
	"Security Lights":         30,
	"CCTV System":             50,
	"Small Water Pump":        750,
	"Large Water Pump":        1500,
}

type CatalogEntry struct {
	Type  string  `json:"type"`
	Watts float64 `json:"watts"`
}

// Catalog returns the appliance catalogue sorted by name.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(ApplianceCatalog))
	for name, watts := range ApplianceCatalog {
		out = append(out, CatalogEntry{Type: name, Watts: watts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
