package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"skill-staffing/internal/app"
	"skill-staffing/internal/config"
	dbpostgres "skill-staffing/internal/database/postgres"
	"skill-staffing/internal/database/seeder"
	"skill-staffing/internal/domain/user"
	"skill-staffing/internal/pkg/jwt"
	"skill-staffing/internal/pkg/logger"
	"skill-staffing/internal/repository"
)

func main() {
	seed := flag.Bool("seed", false, "insert development users, projects and skills")
	tokenFor := flag.String("token", "", "print an access token for the user with this email")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	log, err := logger.New(cfg.App.Environment)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatal("failed to connect database", "error", err)
	}
	defer db.Close()

	if err := app.MigrationRunner(cfg, log).Run(ctx, db.SQLDB()); err != nil {
		log.Fatal("migration failed", "error", err)
	}
	log.Info("migrations up to date")

	if *seed {
		if cfg.IsProduction() {
			log.Fatal("refusing to seed a production database")
		}
		r := seeder.Runner{Seeders: seeder.Defaults(), Logger: log}
		if err := r.Run(ctx, db); err != nil {
			log.Fatal("seed failed", "error", err)
		}
	}

	if email := strings.TrimSpace(*tokenFor); email != "" {
		users, err := repository.NewPostgresStore(db).Repos().Users().ListByRoles(ctx, user.RoleEmployee, user.RoleManager, user.RoleAdmin)
		if err != nil {
			log.Fatal("list users failed", "error", err)
		}
		svc := jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiresIn)
		for _, u := range users {
			if !strings.EqualFold(u.Email, email) {
				continue
			}
			tok, err := svc.GenerateAccessToken(u.ID, u.Email, string(u.Role))
			if err != nil {
				log.Fatal("token generation failed", "error", err)
			}
			fmt.Println(tok)
			return
		}
		log.Fatal("no user with that email", "email", email)
	}
}
