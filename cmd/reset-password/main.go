package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go-pos-ws/internal/config"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/database"
	"go-pos-ws/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "", "account to reset (defaults to ADMIN_EMAIL)")
	password := flag.String("password", "", "new password, at least 6 characters")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	appLog := logger.Must(logger.New(cfg.Log.Level, cfg.Log.Development))
	defer appLog.Sync()

	if *email == "" {
		*email = cfg.Seed.AdminEmail
	}
	if len(*password) < 6 {
		appLog.Fatal("password must be at least 6 characters")
	}

	// 2. Setup Database
	db, err := database.Connect(cfg.Database, appLog)
	if err != nil {
		appLog.Fatal("database connection failed", zap.Error(err))
	}
	users := repository.NewUserRepo(db)
	ctx := context.Background()

	// 3. Find user
	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		appLog.Fatal("user not found", zap.String("email", *email), zap.Error(err))
	}

	// 4. Hash and store the new password, then revoke existing sessions
	var hashed model.User
	if err := hashed.SetPassword(*password); err != nil {
		appLog.Fatal("failed to hash password", zap.Error(err))
	}
	if err := users.UpdatePassword(ctx, user.ID, hashed.Password); err != nil {
		appLog.Fatal("failed to update password", zap.Error(err))
	}
	if err := users.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
		appLog.Fatal("failed to revoke sessions", zap.Error(err))
	}

	appLog.Info("password reset", zap.String("email", user.Email))
}
