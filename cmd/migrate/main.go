package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/bloomhaus/petalboard-backend/pkg/config"
	"github.com/bloomhaus/petalboard-backend/pkg/db"
	"github.com/bloomhaus/petalboard-backend/pkg/logger"
	"github.com/bloomhaus/petalboard-backend/pkg/migrate"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: migrate [-dir path] <command> [args]

commands:
  up                  apply all pending migrations
  down                roll back the most recent migration
  status              print migration status
  version             print the current schema version
  up-to <version>     migrate up to a specific version
  create <name>       scaffold a new SQL migration
  validate            check the migrations directory
`)
	os.Exit(2)
}

func main() {
	_ = godotenv.Load()

	dir := flag.String("dir", migrate.DefaultDir, "migrations directory")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}
	command := args[0]

	switch command {
	case "create":
		if len(args) < 2 {
			usage()
		}
		path, err := migrate.CreateSQLMigration(*dir, args[1])
		if err != nil {
			log.Fatalf("creating migration: %v", err)
		}
		fmt.Println(path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			log.Fatalf("validating migrations: %v", err)
		}
		fmt.Println("ok")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "petalboard-migrate", Level: logger.ParseLevel(cfg.App.LogLevel)})

	ctx := context.Background()
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		log.Fatalf("connecting to postgres: %v", err)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		log.Fatalf("extracting sql.DB: %v", err)
	}

	switch command {
	case "up", "down", "status", "version":
		if err := migrate.Run(ctx, sqlDB, *dir, command, args[1:]...); err != nil {
			log.Fatalf("running goose %s: %v", command, err)
		}
	case "up-to":
		if len(args) < 2 {
			usage()
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, *dir, args[1]); err != nil {
			log.Fatalf("running goose up-to: %v", err)
		}
	default:
		usage()
	}
}
