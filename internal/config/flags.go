package config

import (
	"flag"
	"os"
)

// parses CLI flags for the migrate subcommands
func ParseMigrateFlags(name string, args []string) MigrateFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	databaseURL := fs.String("database-url", os.Getenv("DATABASE_URL"), "postgres connection string")
	steps := fs.Int("steps", 0, "number of migrations to apply (negative rolls back); 0 applies all")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return MigrateFlags{DatabaseURL: *databaseURL, Steps: *steps}
}
