// Command seed imports a realtime-database JSON export into the report
// store and can print a development access token for a teacher.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"attendance-report/config"
	"attendance-report/internal/model"
	"attendance-report/internal/repository"
	"attendance-report/internal/service"
	"attendance-report/pkg/database"
	"attendance-report/pkg/jwt"
	applogger "attendance-report/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	file := flag.String("file", "", "realtime-database JSON export to import")
	token := flag.String("token", "", "print an access token for this teacher id")
	tokenTTL := flag.Duration("token-ttl", 12*time.Hour, "lifetime of the printed token")
	flag.Parse()

	if *file == "" && *token == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	}()
	if err := database.RunMigrations(db, cfg.Database.Driver, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	repo := repository.NewRepository(db)
	ctx := context.Background()

	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			logger.Fatal("open export file", zap.Error(err))
		}
		defer f.Close()

		importer := service.NewImportService(repo, applogger.Component(logger, "import"))
		export, err := importer.ParseExport(f)
		if err != nil {
			logger.Fatal("parse export file", zap.String("file", *file), zap.Error(err))
		}
		resp, err := importer.Import(ctx, export)
		if err != nil {
			logger.Fatal("import failed", zap.Error(err))
		}
		for _, e := range resp.Errors {
			logger.Warn("record skipped", zap.String("kind", e.Kind), zap.String("id", e.ID), zap.String("reason", e.Reason))
		}
		fmt.Printf("imported %d users, %d lectures, %d attendance marks (%d skipped)\n",
			resp.Users, resp.Lectures, resp.Attendees, resp.Failed)
	}

	if *token != "" {
		u, err := repo.User.GetByID(ctx, *token)
		if err != nil {
			logger.Fatal("token user lookup failed", zap.String("user_id", *token), zap.Error(err))
		}
		if u.Role != model.RoleTeacher {
			logger.Warn("token user is not a teacher; report endpoints will answer 403", zap.String("role", u.Role))
		}
		signed, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(u.UserID, u.Role, *tokenTTL)
		if err != nil {
			logger.Fatal("sign token", zap.Error(err))
		}
		fmt.Println(signed)
	}
}
