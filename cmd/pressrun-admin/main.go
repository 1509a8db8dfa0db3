// Command pressrun-admin provides operational tooling for the pressrun
// database: migrations, development seeding, and catalog inspection.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/pressrun/backoffice/config"
	"github.com/pressrun/backoffice/internal/bootstrap"
	"github.com/pressrun/backoffice/internal/data"
	"github.com/pressrun/backoffice/internal/devseed"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultMigrationTimeout = 5 * time.Minute

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrate,
		},
		"db-reset": {
			name:        "db-reset",
			description: "Drop the database schema, run migrations, and optionally seed data",
			run:         runDBReset,
		},
		"db-seed": {
			name:        "db-seed",
			description: "Run database migrations and seed development pricing rules and counterparties",
			run:         runDBSeed,
		},
		"list-pricing-rules": {
			name:        "list-pricing-rules",
			description: "List the pricing rule catalog",
			run:         runListPricingRules,
		},
		"list-counterparties": {
			name:        "list-counterparties",
			description: "List registered counterparties",
			run:         runListCounterparties,
		},
		"list-outbox": {
			name:        "list-outbox",
			description: "List pending outbox events awaiting delivery",
			run:         runListOutbox,
		},
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: pressrun-admin <command> [flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "commands:")

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stderr, 2, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%s\n", name, cmds[name].description)
	}
	_ = w.Flush()
}

func runMigrate(ctx *commandContext, _ []string) error {
	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeQuietly(ctx, db)

	migCtx, cancel := context.WithTimeout(ctx.Ctx, defaultMigrationTimeout)
	defer cancel()

	return bootstrap.RunMigrations(migCtx, db, ctx.Logger)
}

func runDBReset(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("db-reset", flag.ContinueOnError)
	seed := fs.Bool("seed", false, "seed development data after reset")
	force := fs.Bool("force", false, "skip the confirmation check")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !ctx.Config.IsDev && !*force {
		return fmt.Errorf("refusing to reset a non-dev database without -force")
	}

	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeQuietly(ctx, db)

	if _, err = db.ExecContext(ctx.Ctx, `DROP SCHEMA public CASCADE; CREATE SCHEMA public`); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	ctx.Logger.InfoContext(ctx.Ctx, "database schema dropped")

	migCtx, cancel := context.WithTimeout(ctx.Ctx, defaultMigrationTimeout)
	defer cancel()
	if err = bootstrap.RunMigrations(migCtx, db, ctx.Logger); err != nil {
		return err
	}

	if *seed {
		return devseed.Run(ctx.Ctx, devseed.NewServices(db), ctx.Logger)
	}
	return nil
}

func runDBSeed(ctx *commandContext, _ []string) error {
	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeQuietly(ctx, db)

	migCtx, cancel := context.WithTimeout(ctx.Ctx, defaultMigrationTimeout)
	defer cancel()
	if err = bootstrap.RunMigrations(migCtx, db, ctx.Logger); err != nil {
		return err
	}

	return devseed.Run(ctx.Ctx, devseed.NewServices(db), ctx.Logger)
}

func runListPricingRules(ctx *commandContext, _ []string) error {
	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeQuietly(ctx, db)

	repo := data.NewPricingRuleRepo(db, &data.RealTimeProvider{})
	rules, err := repo.List(ctx.Ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE KEY\tMFG CPM\tPAPER WT/M\tPAPER $/LB\tMFG MARKUP %\tBROKER MARKUP %\tUPDATED")
	for _, r := range rules {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.SizeKey,
			r.ManufacturingCPM,
			r.PaperWeightPerM,
			r.PaperCostPerLb,
			r.ManufacturerMarkupPct,
			r.BrokerMarkupPct,
			r.UpdatedAt.Format(time.RFC3339),
		)
	}
	return w.Flush()
}

func runListCounterparties(ctx *commandContext, _ []string) error {
	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeQuietly(ctx, db)

	repo := data.NewCounterpartyRepo(db, &data.RealTimeProvider{})
	parties, err := repo.List(ctx.Ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tCODE")
	for _, p := range parties {
		code := "-"
		if p.Code != nil {
			code = *p.Code
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Kind, code)
	}
	return w.Flush()
}

func runListOutbox(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-outbox", flag.ContinueOnError)
	limit := fs.Int("limit", 50, "maximum number of events to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer closeQuietly(ctx, db)

	repo := data.NewOutboxRepo(db, &data.RealTimeProvider{})
	events, err := repo.ListPending(ctx.Ctx, *limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tJOB\tEVENT\tATTEMPTS\tLAST ERROR\tCREATED")
	for _, ev := range events {
		lastErr := "-"
		if ev.LastError != nil {
			lastErr = *ev.LastError
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			ev.ID, ev.JobID, ev.EventType, ev.Attempts, lastErr, ev.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
