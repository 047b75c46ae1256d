package db

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
)

// MigrateCommand runs the 'migrate' subcommand against one database.
type MigrateCommand struct {
	Out io.Writer
	// In answers the confirmation prompt of 'force'.
	In io.Reader

	// FS overrides the embedded migrations.
	FS fs.FS
}

// Run dispatches args[0] to the matching action.
func (c *MigrateCommand) Run(args []string, dbPath string) error {
	if len(args) < 1 {
		c.PrintHelp()
		return fmt.Errorf("missing migrate action")
	}
	action := args[0]
	if action == "help" {
		c.PrintHelp()
		return nil
	}

	migrationsFS := c.FS
	if migrationsFS == nil {
		migrationsFS = MigrationsFS()
	}

	database, err := OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	needVersion := func() (uint64, error) {
		if len(args) < 2 {
			return 0, fmt.Errorf("usage: sealevel migrate %s <version_number>", action)
		}
		v, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid version number: %s", args[1])
		}
		return v, nil
	}

	switch action {
	case "up":
		if err := database.MigrateUp(migrationsFS); err != nil {
			return err
		}
		fmt.Fprintln(c.Out, "✓ All migrations applied successfully")
		return c.printVersion(database, migrationsFS)

	case "down":
		if err := database.MigrateDown(migrationsFS); err != nil {
			return err
		}
		fmt.Fprintln(c.Out, "✓ Migration rolled back successfully")
		return c.printVersion(database, migrationsFS)

	case "status":
		return c.printStatus(database, migrationsFS)

	case "version":
		v, err := needVersion()
		if err != nil {
			return err
		}
		if err := database.MigrateTo(migrationsFS, uint(v)); err != nil {
			return err
		}
		fmt.Fprintf(c.Out, "✓ Migrated to version %d successfully\n", v)
		return nil

	case "force":
		v, err := needVersion()
		if err != nil {
			return err
		}
		if !c.confirm(fmt.Sprintf("⚠️  WARNING: Forcing migration version to %d\nThis should only be used to recover from a dirty migration state.\nContinue? [y/N]: ", v)) {
			fmt.Fprintln(c.Out, "Aborted")
			return nil
		}
		if err := database.MigrateForce(migrationsFS, int(v)); err != nil {
			return err
		}
		fmt.Fprintf(c.Out, "✓ Migration version forced to %d\n", v)
		return nil

	case "baseline":
		v, err := needVersion()
		if err != nil {
			return err
		}
		if err := database.BaselineAtVersion(uint(v)); err != nil {
			return fmt.Errorf("baseline failed: %w", err)
		}
		fmt.Fprintf(c.Out, "✓ Database baselined at version %d\n", v)
		return nil

	default:
		c.PrintHelp()
		return fmt.Errorf("unknown migrate action: %s", action)
	}
}

func (c *MigrateCommand) printVersion(database *DB, migrationsFS fs.FS) error {
	version, dirty, err := database.MigrateVersion(migrationsFS)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}

func (c *MigrateCommand) printStatus(database *DB, migrationsFS fs.FS) error {
	status, err := database.GetMigrationStatus(migrationsFS)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Fprintln(c.Out, "=== Migration Status ===")
	fmt.Fprintf(c.Out, "Current version: %d\n", status.CurrentVersion)
	fmt.Fprintf(c.Out, "Latest available: %d\n", status.LatestVersion)
	fmt.Fprintf(c.Out, "Dirty: %v\n", status.Dirty)
	fmt.Fprintf(c.Out, "Schema migrations table exists: %v\n", status.TableExists)

	switch {
	case status.Dirty:
		fmt.Fprintln(c.Out, "\n⚠️  WARNING: Database is in a dirty state!")
		fmt.Fprintln(c.Out, "A migration failed mid-execution. Inspect the database, then run:")
		fmt.Fprintln(c.Out, "  sealevel migrate force <version>")
	case status.Pending() > 0:
		fmt.Fprintf(c.Out, "\n⚠️  %d migration(s) pending. Run 'sealevel migrate up' to update.\n", status.Pending())
	default:
		fmt.Fprintln(c.Out, "\n✓ Database is up to date!")
	}
	return nil
}

func (c *MigrateCommand) confirm(prompt string) bool {
	fmt.Fprint(c.Out, prompt)
	if c.In == nil {
		return false
	}
	line, _ := bufio.NewReader(c.In).ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}

// PrintHelp displays the help message for the migrate command.
func (c *MigrateCommand) PrintHelp() {
	fmt.Fprint(c.Out, `Database Migration Commands

Usage: sealevel migrate [-db path] <command> [options]

Commands:
  up              Apply all pending migrations
  down            Rollback one migration
  status          Show current migration status and version
  version <N>     Migrate to specific version N
  force <N>       Force migration version to N (recovery only)
  baseline <N>    Set migration version to N without running migrations
  help            Show this help message

Examples:
  sealevel migrate up
  sealevel migrate status
  sealevel migrate version 1
`)
}
