package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"codeberg.org/lunos/server/internal/config"
	"codeberg.org/lunos/server/internal/logger"
	"codeberg.org/lunos/server/internal/storage"
)

func usage() {
	fmt.Println("Usage: migrate <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  up       - apply all pending migrations")
	fmt.Println("  down     - roll every migration back")
	fmt.Println("  steps    - apply --steps migrations (negative rolls back)")
	fmt.Println("  version  - print the current schema version")
	fmt.Println("\nOptions:")
	fmt.Println("  --database-url <url>  - Postgres connection string (default $DATABASE_URL)")
	fmt.Println("  --steps <n>           - Number of steps for the steps command")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]

	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	flags := config.ParseMigrateFlags(command, os.Args[2:])
	if flags.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL environment variable or --database-url is required")
	}

	migrator, err := storage.NewMigrator(flags.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to create migrator", "error", err)
	}

	defer migrator.Close() //nolint:errcheck // process is exiting

	if err := run(migrator, command, flags); err != nil {
		logger.Error("migration command failed", "command", command, "error", err)
		migrator.Close() //nolint:errcheck,gosec // deferred close is skipped by os.Exit
		os.Exit(1)
	}
}

// route to the matching migrator call and report the resulting version
func run(migrator *storage.Migrator, command string, flags config.MigrateFlags) error {
	switch command {
	case "up":
		if err := migrator.Up(); err != nil {
			return err
		}

	case "down":
		if err := migrator.Down(); err != nil {
			return err
		}

	case "steps":
		if flags.Steps == 0 {
			return fmt.Errorf("--steps must be non-zero")
		}

		if err := migrator.Steps(flags.Steps); err != nil {
			return err
		}

	case "version":

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}

	logger.Info("schema version", "version", version, "dirty", dirty)
	return nil
}
