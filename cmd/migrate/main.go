package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/stemsi/learnhub-backend/internal/config"
	"github.com/stemsi/learnhub-backend/internal/logger"
)

func main() {
	var migrationDir, dbOverride string
	flag.StringVar(&migrationDir, "path", "migrations", "Path to migration files")
	flag.StringVar(&dbOverride, "database", "", "Database URL (defaults to DATABASE_URL)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	dbURL := cfg.DatabaseURL
	if dbOverride != "" {
		dbURL = dbOverride
	}
	if dbURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return
	}

	m, err := migrate.New("file://"+migrationDir, dbURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed to initialize")
	}
	defer m.Close()
	m.Log = migrateLogger{log: log}

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("Up failed")
		}
		fmt.Println("Migrated up successfully")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("Down failed")
		}
		fmt.Println("Migrated down successfully")
	case "steps":
		n := intArg(log, args, "steps")
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Int("steps", n).Msg("Steps failed")
		}
		fmt.Printf("Applied %d step(s)\n", n)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("No migrations applied")
			return
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Version failed")
		}
		fmt.Printf("Version: %d, Dirty: %t\n", version, dirty)
	case "force":
		v := intArg(log, args, "force")
		if err := m.Force(v); err != nil {
			log.Fatal().Err(err).Msg("Force failed")
		}
		fmt.Printf("Forced version to %d\n", v)
	default:
		printUsage()
	}
}

func intArg(log zerolog.Logger, args []string, command string) int {
	if len(args) < 2 {
		log.Fatal().Str("command", command).Msg("Missing numeric argument")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("Invalid numeric argument")
	}
	return n
}

// migrateLogger adapts zerolog to migrate.Logger.
type migrateLogger struct {
	log zerolog.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msgf(format, v...)
}

func (l migrateLogger) Verbose() bool {
	return zerolog.GlobalLevel() <= zerolog.DebugLevel
}

func printUsage() {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println("Commands: up, down, steps <n>, version, force <version>")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
