package repository

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"solar-sizer/domain"
)

// CSVTimeLayout is how timestamps are written in CSV files.
const CSVTimeLayout = "2006-01-02 15:04:05"

// CSVHeader is the column set shared by the CSV store and the admin export.
var CSVHeader = []string{
	"Application Number", "Location", "Usage Type", "Grid Hours",
	"Monthly Fuel Cost", "Daily Energy", "Maintenance Cost",
	"Appliances & Equipment", "Full Name", "Email", "Phone",
	"Created At", "Updated At",
	"Contact Time", "System Type", "Solar kW", "Battery kWh",
	"Total Cost", "Monthly Savings",
}

// WriteCSV writes a header row followed by one row per application.
func WriteCSV(w io.Writer, apps []domain.Application) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, app := range apps {
		row, err := csvRecord(app)
		if err != nil {
			return fmt.Errorf("application %s: %w", app.Number, err)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(app domain.Application) ([]string, error) {
	appliances, err := json.Marshal(nonNil(app.Appliances))
	if err != nil {
		return nil, err
	}
	return []string{
		app.Number,
		app.Location,
		app.UsageType,
		formatOptFloat(app.GridHours),
		formatOptFloat(app.MonthlyFuelCost),
		formatOptFloat(app.DailyEnergy),
		formatOptFloat(app.MaintenanceCost),
		string(appliances),
		app.FullName,
		app.Email,
		app.Phone,
		formatTime(app.CreatedAt),
		formatTime(app.UpdatedAt),
		app.ContactTime,
		app.SystemType,
		formatOptFloat(app.SolarKW),
		formatOptFloat(app.BatteryKWh),
		formatOptDecimal(app.TotalCost),
		formatOptDecimal(app.MonthlySavings),
	}, nil
}

// ReadCSV parses a file written by WriteCSV. Columns are matched by header
// name, so files holding only a subset of the columns are accepted. Values
// that do not parse are left empty.
func ReadCSV(r io.Reader) ([]domain.Application, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	var apps []domain.Application
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return apps, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		get := func(name string) string {
			if i, ok := col[name]; ok && i < len(rec) {
				return rec[i]
			}
			return ""
		}
		app := domain.Application{
			Number:          get("Application Number"),
			Location:        get("Location"),
			UsageType:       get("Usage Type"),
			GridHours:       parseOptFloat(get("Grid Hours")),
			MonthlyFuelCost: parseOptFloat(get("Monthly Fuel Cost")),
			DailyEnergy:     parseOptFloat(get("Daily Energy")),
			MaintenanceCost: parseOptFloat(get("Maintenance Cost")),
			FullName:        get("Full Name"),
			Email:           get("Email"),
			Phone:           get("Phone"),
			ContactTime:     get("Contact Time"),
			SystemType:      get("System Type"),
			SolarKW:         parseOptFloat(get("Solar kW")),
			BatteryKWh:      parseOptFloat(get("Battery kWh")),
			TotalCost:       parseOptDecimal(get("Total Cost")),
			MonthlySavings:  parseOptDecimal(get("Monthly Savings")),
			CreatedAt:       parseTime(get("Created At")),
			UpdatedAt:       parseTime(get("Updated At")),
		}
		if s := get("Appliances & Equipment"); s != "" {
			_ = app.Appliances.Scan(s)
		}
		apps = append(apps, app)
	}
}

func nonNil(l domain.ApplianceList) domain.ApplianceList {
	if l == nil {
		return domain.ApplianceList{}
	}
	return l
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseOptFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func formatOptDecimal(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}

func parseOptDecimal(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(CSVTimeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.ParseInLocation(CSVTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}
