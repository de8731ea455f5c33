// Command migrate moves applications from the CSV store into a SQL store.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"solar-sizer/repository"
	"solar-sizer/service"
)

func main() {
	fs := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	csvPath := fs.String("csv", "data/loan_applications.csv", "CSV file to import")
	sqlitePath := fs.String("sqlite", "", "SQLite database to import into")
	dsn := fs.String("postgres-dsn", os.Getenv("DATABASE_URL"), "Postgres database to import into")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	var (
		dst *repository.ApplicationRepositorySQL
		err error
	)
	switch {
	case *sqlitePath != "":
		dst, err = repository.NewSQLiteApplicationRepository(*sqlitePath)
	case *dsn != "":
		dst, err = repository.NewPostgresApplicationRepository(ctx, *dsn)
	default:
		log.Error("one of --sqlite or --postgres-dsn is required")
		os.Exit(2)
	}
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer dst.Close()

	if _, err := service.MigrateCSV(ctx, *csvPath, dst, log, time.Now()); err != nil {
		log.Error("migration failed", "error", err)
		dst.Close()
		os.Exit(1)
	}
}
