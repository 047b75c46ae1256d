// Command sealevel models island submersion under sea-level rise scenarios.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/banshee-data/sealevel.report/internal/db"
	"github.com/banshee-data/sealevel.report/internal/scenario"
	"github.com/banshee-data/sealevel.report/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err != flag.ErrHelp {
			log.Printf("sealevel: %v", err)
		}
		stop()
		os.Exit(1)
	}
}

// run dispatches a subcommand. Output goes to stdout; flag errors and usage
// go to stderr.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stderr)
		return fmt.Errorf("missing command")
	}

	command, rest := args[0], args[1:]
	switch command {
	case "run":
		return runCommand(ctx, rest, stderr)
	case "serve":
		return serveCommand(ctx, rest, stderr)
	case "migrate":
		return migrateCommand(rest, stdin, stdout, stderr)
	case "dump":
		return dumpCommand(rest, stdout, stderr)
	case "presets":
		return printPresets(stdout)
	case "version":
		fmt.Fprintln(stdout, version.String())
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `sealevel - island submersion under sea-level rise

Usage: sealevel <command> [options]

Commands:
  run        Simulate every configured island under every scenario
  serve      Serve stored runs and the database debug pages
  migrate    Manage the sqlite schema (see 'sealevel migrate help')
  dump       Print a heightmap as calibrated CSV
  presets    List the built-in rise series and islands
  version    Show version information
  help       Show this help message

Run 'sealevel <command> -h' for the options of a command.
`)
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func migrateCommand(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("migrate", stderr)
	dbPath := fs.String("db", "target/sealevel.db", "Path to the sqlite database")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd := &db.MigrateCommand{Out: stdout, In: stdin}
	return cmd.Run(fs.Args(), *dbPath)
}

func printPresets(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERIES\tYEARS\tFINAL RISE (mm)")
	for _, name := range scenario.Names() {
		s, _ := scenario.Series(name)
		final := 0.0
		if len(s) > 0 {
			final = s[len(s)-1]
		}
		fmt.Fprintf(tw, "%s\t%d\t%.1f\n", name, len(s), final)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ISLAND\tSCALE\tOFFSET (m)\tDANGER (m)\tCUTOFF (m)")
	for _, is := range scenario.Islands() {
		fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%g\n", is.Name,
			is.Calibration.Scale, is.Calibration.Offset, is.DangerThresholdMeters, is.CutoffMeters)
	}
	fmt.Fprintf(tw, "\nRCP scenarios run by default: %s\n", strings.Join(scenario.RCPNames(), ", "))
	return tw.Flush()
}
