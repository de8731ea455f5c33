package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"solar-sizer/repository"
)

// MigrationResult reports what MigrateCSV did.
type MigrationResult struct {
	Imported   int
	Skipped    int
	BackupPath string
}

// MigrateCSV imports every application in the CSV file at path into dst.
// Rows without a number, or whose number dst already holds, are skipped.
// Missing timestamps are set to now. After a successful import the file is
// renamed to <path>.bak.<YYYYmmdd_HHMMSS> so it is not imported twice. A
// missing or empty file is not an error.
func MigrateCSV(
	ctx context.Context,
	path string,
	dst repository.ApplicationRepository,
	log *slog.Logger,
	now time.Time,
) (MigrationResult, error) {
	var res MigrationResult

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info("no CSV file found, nothing to migrate", "path", path)
		return res, nil
	}
	if err != nil {
		return res, err
	}
	apps, err := repository.ReadCSV(f)
	f.Close()
	if err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}
	if len(apps) == 0 {
		log.Info("CSV file is empty, nothing to migrate", "path", path)
		return res, nil
	}

	for _, app := range apps {
		if app.Number == "" {
			res.Skipped++
			continue
		}
		_, err := dst.Get(ctx, app.Number)
		if err == nil {
			log.Info("application already exists, skipping", "application", app.Number)
			res.Skipped++
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return res, fmt.Errorf("check %s: %w", app.Number, err)
		}
		if app.CreatedAt.IsZero() {
			app.CreatedAt = now.UTC()
		}
		if app.UpdatedAt.IsZero() {
			app.UpdatedAt = app.CreatedAt
		}
		if err := dst.Save(ctx, app); err != nil {
			return res, fmt.Errorf("import %s: %w", app.Number, err)
		}
		log.Info("migrated application", "application", app.Number)
		res.Imported++
	}

	res.BackupPath = path + ".bak." + now.Format(backupTimeLayout)
	if err := os.Rename(path, res.BackupPath); err != nil {
		return res, fmt.Errorf("back up %s: %w", path, err)
	}
	log.Info("migration completed", "imported", res.Imported, "skipped", res.Skipped, "backup", res.BackupPath)
	return res, nil
}
