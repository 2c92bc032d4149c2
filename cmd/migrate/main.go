package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/kevin07696/ctechpay-connector/internal/app"
	"github.com/kevin07696/ctechpay-connector/internal/config"
	"github.com/kevin07696/ctechpay-connector/internal/db/migrations"
)

const dialect = "postgres"

var (
	flags     = flag.NewFlagSet("migrate", flag.ExitOnError)
	partition = flags.String("partition", "", "only migrate this partition (default: every partition in DB_PARTITIONS)")
)

func main() {
	flags.Usage = usage
	_ = flags.Parse(os.Args[1:])

	args := flags.Args()
	if len(args) < 1 {
		flags.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	logger, err := app.NewLogger(cfg.Logger, cfg.Server.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	targets := cfg.Database.Partitions
	if *partition != "" {
		if !cfg.Database.HasPartition(*partition) {
			logger.Fatal("Partition is not listed in DB_PARTITIONS", zap.String("partition", *partition))
		}
		targets = []string{*partition}
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		logger.Fatal("Failed to set dialect", zap.Error(err))
	}

	failed := 0
	for _, name := range targets {
		if err := migrate(cfg.Database.URL(name), args[0], args[1:]); err != nil {
			logger.Error("Migration failed", zap.String("partition", name), zap.String("command", args[0]), zap.Error(err))
			failed++
			continue
		}
		logger.Info("Migration finished", zap.String("partition", name), zap.String("command", args[0]))
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func migrate(dsn, command string, args []string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	if err := goose.Run(command, db, ".", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func usage() {
	fmt.Print(`Usage: migrate [-partition NAME] COMMAND

Runs the embedded migrations against every data partition (DB_PARTITIONS).

Commands:
    up                   Migrate the DB to the most recent version available
    up-by-one            Migrate the DB up by 1
    up-to VERSION        Migrate the DB to a specific VERSION
    down                 Roll back the version by 1
    down-to VERSION      Roll back to a specific VERSION
    redo                 Re-run the latest migration
    status               Dump the migration status for the current DB
    version              Print the current version of the database

Examples:
    migrate up
    migrate -partition shop status
`)
}
