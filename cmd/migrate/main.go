package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"editor-web/config"
	"editor-web/internal/repository"
	"editor-web/internal/services"
	"editor-web/pkg/database"
	editor_errors "editor-web/pkg/errors"
	"editor-web/pkg/logger"
)

const usage = `
Editor - Database CLI Tool

Usage:
  migrate [flags] [command]

Commands:
  up           Apply all pending migrations
  down         Roll back the most recent migration
  status       Show the state of every migration
  create-user  Register an account (requires -username and -password)

Flags:
  -username string   Username for create-user
  -password string   Password for create-user

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
  go run cmd/migrate/main.go -username alice -password s3cret create-user
`

func main() {
	username := flag.String("username", "", "Username for create-user")
	password := flag.String("password", "", "Password for create-user")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		log.Println("Running migrations UP...")
		if err := database.MigrateUp(ctx, db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	case "down":
		log.Println("Rolling back the last migration...")
		if err := database.MigrateDown(ctx, db); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		log.Println("Rollback completed successfully")
	case "status":
		if err := database.MigrationStatus(ctx, db); err != nil {
			log.Fatalf("Status failed: %v", err)
		}
	case "create-user":
		svc, err := services.NewAuthService(repository.NewUserRepository(db), cfg.BcryptCost, logger.NewNop())
		if err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
		u, err := svc.Register(ctx, services.RegisterInput{
			Username:        *username,
			Password:        *password,
			PasswordConfirm: *password,
		})
		if err != nil {
			if msg, ok := editor_errors.UserMessage(err); ok {
				log.Fatalf("User not created: %s", msg)
			}
			log.Fatalf("User not created: %v", err)
		}
		log.Printf("User %s created (ID: %s)", u.Username, u.ID)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
