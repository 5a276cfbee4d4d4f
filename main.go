package main

import (
	"flag"
	"log"

	"flagdojo_backend/internal/app"
	"flagdojo_backend/internal/config"
	"flagdojo_backend/pkg/logger"
)

func main() {
	forceMigrate := flag.Bool("migrate", false, "启动时执行数据库迁移")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移和题目同步，然后退出")
	seedAdmin := flag.Bool("seed-admin", false, "不存在时创建初始管理员账号")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *forceMigrate
	cfg.MigrateOnly = *migrateOnly
	cfg.SeedAdmin = *seedAdmin

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if cfg.MigrateOnly {
		logger.Log.Info("Migration finished, exiting")
		return
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
