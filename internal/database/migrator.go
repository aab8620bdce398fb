package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/deppfellow/flavors/internal/config"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// Migrations are compiled into the binary, so start-up never depends on
// the working directory.
//
//go:embed migrations/*.sql
var migrations embed.FS

// VersionTable is where tern records the applied migration version.
const VersionTable = "schema_version"

// resetSQL wipes everything the migrations own, including tern's
// bookkeeping, so the next Migrate starts from version 0.
const resetSQL = `
DROP TABLE IF EXISTS flavors;
DROP TABLE IF EXISTS ` + VersionTable + `;
`

// MigrationsFS returns the embedded migrations directory.
func MigrationsFS() (fs.FS, error) {
	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("retrieving database migrations subtree: %w", err)
	}
	return subtree, nil
}

// Initialize bootstraps the schema before the server accepts traffic.
//
// With database.reset_on_start (the default) it drops the flavors table and
// re-runs every migration, which recreates the table and inserts the seed
// rows. Otherwise it only applies migrations that are not yet recorded.
// Any error is meant to be fatal for the caller: there is no retry.
func Initialize(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	// A dedicated connection rather than the pool: this runs once and
	// tern needs a *pgx.Conn.
	conn, err := pgx.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connecting for schema initialization: %w", err)
	}
	defer conn.Close(ctx)

	logger.Info().Msg("connected to database for schema initialization")

	if cfg.Database.ResetOnStart {
		if _, err := conn.Exec(ctx, resetSQL); err != nil {
			return fmt.Errorf("dropping flavors table: %w", err)
		}
		logger.Info().Msg("dropped flavors table")
	}

	return migrate(ctx, logger, conn)
}

func migrate(ctx context.Context, logger *zerolog.Logger, conn *pgx.Conn) error {
	m, err := tern.NewMigrator(ctx, conn, VersionTable)
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := MigrationsFS()
	if err != nil {
		return err
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	if from == int32(len(m.Migrations)) {
		logger.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		logger.Info().
			Int32("from", from).
			Int("to", len(m.Migrations)).
			Msg("table created and data seeded")
	}
	return nil
}
