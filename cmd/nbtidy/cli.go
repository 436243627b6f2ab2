package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/nbtidy/internal/config"
	"github.com/hpungsan/nbtidy/internal/db"
	"github.com/hpungsan/nbtidy/internal/errors"
	"github.com/hpungsan/nbtidy/internal/ops"
)

// stripOutputsEnv is the environment switch for strip mode; the flag and
// the config key can also enable it, whichever is set.
const stripOutputsEnv = "STRIP_OUTPUTS"

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "nbtidy",
		Usage:   "Sanitize Jupyter notebooks for strict validation and reliable preview",
		Version: Version,
		Commands: []*cli.Command{
			sanitizeCmd(db, cfg),
			checkCmd(db, cfg),
			previewCmd(cfg),
			historyCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// sanitizeCmd creates the sanitize command.
func sanitizeCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "sanitize",
		Usage:     "Repair all notebooks under a directory in place",
		ArgsUsage: "[root]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "strip-outputs", Aliases: []string{"s"}, Usage: "Remove all code outputs for lighter diffs and bulletproof preview"},
			&cli.BoolFlag{Name: "keep-going", Aliases: []string{"k"}, Usage: "Continue past unreadable or malformed files"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Suppress the all-clean summary line"},
		},
		Action: func(c *cli.Context) error {
			return runSanitize(c, database, cfg, false)
		},
	}
}

// checkCmd creates the check command (dry-run sanitize).
func checkCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Report which notebooks would be rewritten, without writing",
		ArgsUsage: "[root]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "strip-outputs", Aliases: []string{"s"}, Usage: "Check against strip mode instead of normalize mode"},
			&cli.BoolFlag{Name: "keep-going", Aliases: []string{"k"}, Usage: "Continue past unreadable or malformed files"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Suppress the all-clean summary line"},
		},
		Action: func(c *cli.Context) error {
			return runSanitize(c, database, cfg, true)
		},
	}
}

// runSanitize is the shared action behind sanitize and check.
func runSanitize(c *cli.Context, database *sql.DB, cfg *config.Config, dryRun bool) error {
	input := ops.SanitizeInput{
		Root:         c.Args().First(),
		StripOutputs: c.Bool("strip-outputs") || stripOutputsFromEnv() || cfg.StripOutputs,
		KeepGoing:    c.Bool("keep-going") || cfg.KeepGoing,
		DryRun:       dryRun,
	}

	output, err := ops.Sanitize(cfg, input)
	if err != nil {
		return outputError(err)
	}

	for _, path := range output.Modified {
		if dryRun {
			fmt.Printf("Would sanitize: %s\n", path)
		} else {
			fmt.Printf("Sanitized: %s\n", path)
		}
	}
	for _, failure := range output.Failures {
		fmt.Fprintf(os.Stderr, "skipped %s: %s\n", failure.Path, failure.Error)
	}

	recordRun(database, input, output)

	if output.Changed() {
		// Distinct status so CI and hooks can tell "rewrote files" from
		// "all clean".
		return cli.Exit("", 2)
	}
	if !c.Bool("quiet") {
		fmt.Println("All notebooks already clean.")
	}
	return nil
}

// recordRun stores a run in the ledger. Best-effort: the sanitize result
// stands even if the ledger write fails.
func recordRun(database *sql.DB, input ops.SanitizeInput, output *ops.SanitizeOutput) {
	if database == nil {
		return
	}
	mode := "sanitize"
	if input.DryRun {
		mode = "check"
	}
	if err := db.RecordRun(database, &db.Run{
		ID:        ops.NewRunID(),
		Root:      output.Root,
		Mode:      mode,
		Strip:     input.StripOutputs,
		Checked:   output.Checked,
		Modified:  len(output.Modified),
		CreatedAt: time.Now().Unix(),
		Paths:     output.Modified,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record run: %v\n", err)
	}
}

// previewCmd creates the preview command.
func previewCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Render one notebook to a standalone HTML file",
		ArgsUsage: "<notebook>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output path (default: notebook path with .html)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("notebook path is required"))
			}

			output, err := ops.Preview(cfg, ops.PreviewInput{
				Path:   c.Args().First(),
				Output: c.String("output"),
			})
			if err != nil {
				return outputError(err)
			}

			fmt.Printf("Preview written: %s (%d cells)\n", output.Output, output.Cells)
			return nil
		},
	}
}

// historyCmd creates the history command.
func historyCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent sanitize and check runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum runs to show"},
		},
		Action: func(c *cli.Context) error {
			limit := c.Int("limit")
			if limit <= 0 {
				limit = cfg.HistoryLimit
			}

			output, err := ops.History(database, ops.HistoryInput{Limit: limit})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// Helper functions

// stripOutputsFromEnv reads the STRIP_OUTPUTS switch.
func stripOutputsFromEnv() bool {
	switch strings.ToLower(os.Getenv(stripOutputsEnv)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if tErr, ok := err.(*errors.TidyError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
