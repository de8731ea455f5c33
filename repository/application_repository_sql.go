package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"solar-sizer/domain"
)

// Fixed width so that the text column sorts chronologically.
const sqlTimeLayout = "2006-01-02T15:04:05.000000000Z"

const applicationSchema = `
CREATE TABLE IF NOT EXISTS applications (
	application_number TEXT PRIMARY KEY,
	location           TEXT NOT NULL DEFAULT '',
	usage_type         TEXT NOT NULL DEFAULT '',
	grid_hours         DOUBLE PRECISION,
	monthly_fuel_cost  DOUBLE PRECISION,
	daily_energy       DOUBLE PRECISION,
	maintenance_cost   DOUBLE PRECISION,
	appliances         TEXT NOT NULL DEFAULT '[]',
	system_type        TEXT NOT NULL DEFAULT '',
	solar_kw           DOUBLE PRECISION,
	battery_kwh        DOUBLE PRECISION,
	total_cost         TEXT,
	monthly_savings    TEXT,
	full_name          TEXT NOT NULL DEFAULT '',
	email              TEXT NOT NULL DEFAULT '',
	phone              TEXT NOT NULL DEFAULT '',
	contact_time       TEXT NOT NULL DEFAULT '',
	created_at         TEXT NOT NULL,
	updated_at         TEXT NOT NULL
)`

var applicationColumns = []string{
	"application_number", "location", "usage_type", "grid_hours",
	"monthly_fuel_cost", "daily_energy", "maintenance_cost", "appliances",
	"system_type", "solar_kw", "battery_kwh", "total_cost", "monthly_savings",
	"full_name", "email", "phone", "contact_time", "created_at", "updated_at",
}

type applicationRow struct {
	Number          string               `db:"application_number"`
	Location        string               `db:"location"`
	UsageType       string               `db:"usage_type"`
	GridHours       *float64             `db:"grid_hours"`
	MonthlyFuelCost *float64             `db:"monthly_fuel_cost"`
	DailyEnergy     *float64             `db:"daily_energy"`
	MaintenanceCost *float64             `db:"maintenance_cost"`
	Appliances      domain.ApplianceList `db:"appliances"`
	SystemType      string               `db:"system_type"`
	SolarKW         *float64             `db:"solar_kw"`
	BatteryKWh      *float64             `db:"battery_kwh"`
	TotalCost       decimal.NullDecimal  `db:"total_cost"`
	MonthlySavings  decimal.NullDecimal  `db:"monthly_savings"`
	FullName        string               `db:"full_name"`
	Email           string               `db:"email"`
	Phone           string               `db:"phone"`
	ContactTime     string               `db:"contact_time"`
	CreatedAt       string               `db:"created_at"`
	UpdatedAt       string               `db:"updated_at"`
}

func toRow(a domain.Application) applicationRow {
	now := time.Now().UTC()
	created, updated := a.CreatedAt, a.UpdatedAt
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = created
	}
	return applicationRow{
		Number:          a.Number,
		Location:        a.Location,
		UsageType:       a.UsageType,
		GridHours:       a.GridHours,
		MonthlyFuelCost: a.MonthlyFuelCost,
		DailyEnergy:     a.DailyEnergy,
		MaintenanceCost: a.MaintenanceCost,
		Appliances:      nonNil(a.Appliances),
		SystemType:      a.SystemType,
		SolarKW:         a.SolarKW,
		BatteryKWh:      a.BatteryKWh,
		TotalCost:       a.TotalCost,
		MonthlySavings:  a.MonthlySavings,
		FullName:        a.FullName,
		Email:           a.Email,
		Phone:           a.Phone,
		ContactTime:     a.ContactTime,
		CreatedAt:       created.UTC().Format(sqlTimeLayout),
		UpdatedAt:       updated.UTC().Format(sqlTimeLayout),
	}
}

func (r applicationRow) application() domain.Application {
	created, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
	updated, _ := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	return domain.Application{
		Number:          r.Number,
		Location:        r.Location,
		UsageType:       r.UsageType,
		GridHours:       r.GridHours,
		MonthlyFuelCost: r.MonthlyFuelCost,
		DailyEnergy:     r.DailyEnergy,
		MaintenanceCost: r.MaintenanceCost,
		Appliances:      r.Appliances,
		SystemType:      r.SystemType,
		SolarKW:         r.SolarKW,
		BatteryKWh:      r.BatteryKWh,
		TotalCost:       r.TotalCost,
		MonthlySavings:  r.MonthlySavings,
		FullName:        r.FullName,
		Email:           r.Email,
		Phone:           r.Phone,
		ContactTime:     r.ContactTime,
		CreatedAt:       created.UTC(),
		UpdatedAt:       updated.UTC(),
	}
}

// ApplicationRepositorySQL stores applications in SQLite or Postgres.
type ApplicationRepositorySQL struct {
	db     *sqlx.DB
	upsert string
}

// NewSQLiteApplicationRepository opens (or creates) the database at path.
func NewSQLiteApplicationRepository(path string) (*ApplicationRepositorySQL, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return newApplicationRepositorySQL(db)
}

// NewPostgresApplicationRepository connects to the database named by dsn.
func NewPostgresApplicationRepository(ctx context.Context, dsn string) (*ApplicationRepositorySQL, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return newApplicationRepositorySQL(db)
}

func newApplicationRepositorySQL(db *sqlx.DB) (*ApplicationRepositorySQL, error) {
	if _, err := db.Exec(applicationSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	named := make([]string, len(applicationColumns))
	var updates []string
	for i, c := range applicationColumns {
		named[i] = ":" + c
		if c != "application_number" && c != "created_at" {
			updates = append(updates, c+" = excluded."+c)
		}
	}
	upsert := fmt.Sprintf(
		"INSERT INTO applications (%s) VALUES (%s) ON CONFLICT (application_number) DO UPDATE SET %s",
		strings.Join(applicationColumns, ", "),
		strings.Join(named, ", "),
		strings.Join(updates, ", "),
	)
	return &ApplicationRepositorySQL{db: db, upsert: upsert}, nil
}

func (r *ApplicationRepositorySQL) Close() error {
	return r.db.Close()
}

func (r *ApplicationRepositorySQL) Save(ctx context.Context, app domain.Application) error {
	if _, err := r.db.NamedExecContext(ctx, r.upsert, toRow(app)); err != nil {
		return fmt.Errorf("upsert application %s: %w", app.Number, err)
	}
	return nil
}

func (r *ApplicationRepositorySQL) Get(ctx context.Context, number string) (domain.Application, error) {
	var row applicationRow
	q := r.db.Rebind("SELECT " + strings.Join(applicationColumns, ", ") + " FROM applications WHERE application_number = ?")
	if err := r.db.GetContext(ctx, &row, q, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Application{}, ErrNotFound
		}
		return domain.Application{}, fmt.Errorf("get application %s: %w", number, err)
	}
	return row.application(), nil
}

func (r *ApplicationRepositorySQL) List(ctx context.Context) ([]domain.Application, error) {
	var rows []applicationRow
	q := "SELECT " + strings.Join(applicationColumns, ", ") + " FROM applications ORDER BY created_at, application_number"
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	out := make([]domain.Application, len(rows))
	for i, row := range rows {
		out[i] = row.application()
	}
	return out, nil
}
