package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"binder/internal/app"
	"binder/internal/config"
	"binder/internal/repository"
	"binder/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed records or folders")
	clearData := flag.Bool("clear-data", false, "Remove all folders and assignments (keep schema and records)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *clearData {
		log.Printf("🧹 Clearing folders only (environment: %s, driver: %s, prefix: %s)", cfg.Environment, cfg.DBDriver, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, driver: %s, prefix: %s)", cfg.Environment, cfg.DBDriver, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, driver: %s, prefix: %s)", cfg.Environment, cfg.DBDriver, cfg.TablePrefix)
	}

	ctx := context.Background()

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		store, err := repository.Open(ctx, cfg, logger)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		err = store.DropAll(ctx)
		store.Close()
		if err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// app.New runs the schema
	log.Println("📋 Ensuring database schema is up to date...")
	binder, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}
	defer binder.Close()
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	seeder := seed.NewSeeder(binder.Gateway, binder.Store.Records, logger)

	if *clearData {
		if err := seeder.Clear(ctx); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Folders cleared")
		return
	}

	if err := seeder.Seed(ctx); err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
	log.Println("✅ Seeding complete")
}
