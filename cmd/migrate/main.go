package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/golang-migrate/migrate/v4"

	"github.com/noah-isme/sma-timetable-api/migrations"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
)

const usage = `usage: migrate <command> [steps]

commands:
  up [n]     apply all or n pending migrations
  down [n]   revert one or n migrations
  version    print the current schema version`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		color.Red("✗ %v", err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	m, err := database.NewMigrator(cfg.Database, migrations.FS)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck

	steps, err := parseSteps(args)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps == 0 {
			steps = 1
		}
		err = m.Steps(-steps)
	case "version":
		return printVersion(m)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		color.Yellow("• no change")
		return printVersion(m)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	color.Green("✓ migrate %s done", command)
	return printVersion(m)
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("steps must be a positive integer, got %q", args[0])
	}
	return n, nil
}

func printVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		color.Cyan("schema version: none")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if dirty {
		color.Red("schema version: %d (dirty)", version)
		return nil
	}
	color.Cyan("schema version: %d", version)
	return nil
}
