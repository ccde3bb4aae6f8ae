package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/ManuelReschke/IntegrationHub/internal/pkg/env"
)

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]

	log.Infof("[Migrate] Connecting to %s@%s:%s/%s",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)

	m, err := migrate.New(sourceURL(), databaseURL())
	if err != nil {
		log.Fatalf("[Migrate] Failed to initialise migrations: %v", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Warnf("[Migrate] Failed to close migration resources: %v, %v", sourceErr, dbErr)
		}
	}()

	if err := run(m, command, os.Args[2:]); err != nil {
		log.Errorf("[Migrate] %v", err)
		printUsage()
		os.Exit(1)
	}
}

func databaseURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)
}

func sourceURL() string {
	return "file://" + env.GetEnv("MIGRATIONS_PATH", "migrations")
}

func run(m *migrate.Migrate, command string, args []string) error {
	switch command {
	case "up":
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("[Migrate] No change: database is up to date")
			return nil
		}
		if err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}
		log.Info("[Migrate] Migrations applied")

	case "down":
		if err := m.Steps(-1); err != nil {
			return fmt.Errorf("rolling back last migration: %w", err)
		}
		log.Info("[Migrate] Last migration rolled back")

	case "goto":
		if len(args) < 1 {
			return errors.New("goto needs a version number")
		}
		version, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		err = m.Migrate(uint(version))
		if errors.Is(err, migrate.ErrNoChange) {
			log.Infof("[Migrate] No change: database is already at version %d", version)
			return nil
		}
		if err != nil {
			return fmt.Errorf("migrating to version %d: %w", version, err)
		}
		log.Infof("[Migrate] Migrated to version %d", version)

	case "status":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info("[Migrate] No migrations applied yet")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading version: %w", err)
		}
		suffix := ""
		if dirty {
			suffix = " (dirty)"
		}
		log.Infof("[Migrate] Current version: %d%s", version, suffix)

	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: go run ./cmd/migrate [command]")
	fmt.Println("Commands:")
	fmt.Println("  up     - apply all pending migrations")
	fmt.Println("  down   - roll back the last migration")
	fmt.Println("  goto N - migrate to version N")
	fmt.Println("  status - print the current version")
}
