package main

import (
	"flag"
	"log"
	"os"

	"go-pos-ws/internal/config"
	"go-pos-ws/pkg/database"
	"go-pos-ws/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "revert instead of apply")
	steps := flag.Int("steps", 0, "number of migrations, 0 applies all pending")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	appLog := logger.Must(logger.New(cfg.Log.Level, cfg.Log.Development))
	defer appLog.Sync()

	n := *steps
	if *down {
		if n == 0 {
			n = 1
		}
		n = -n
	}
	if err := database.Migrate(cfg.Database, n, appLog); err != nil {
		appLog.Fatal("migration failed", zap.Error(err))
	}
}
