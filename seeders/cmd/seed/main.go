package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"it-inventory/internal/repositories"
	"it-inventory/pkg/config"
	"it-inventory/pkg/database/postgresql"
	"it-inventory/pkg/logger"
	"it-inventory/seeders"
)

func main() {
	cfg := config.New()

	dataFile := flag.String("data", cfg.Seeder.InitialDataFile, "Файл начальных данных (YAML)")
	runData := flag.Bool("sync", false, "Синхронизировать справочники из файла начальных данных")
	runAdmin := flag.Bool("admin", false, "Создать администратора из SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -sync -admin)")
	flag.Parse()

	if !*runData && !*runAdmin && !*runAll {
		log.Println("Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -sync -data data/initial_data.yaml")
		log.Println("  go run ./seeders/cmd/seed -all")
		return
	}

	appLogger := logger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		appLogger.Fatal("Не удалось подключиться к базе данных", zap.Error(err))
	}
	defer pool.Close()

	txManager := repositories.NewTxManager(pool)

	if *runAll || *runData {
		data, err := seeders.LoadInitialData(*dataFile)
		if err != nil {
			appLogger.Fatal("Ошибка чтения начальных данных", zap.String("file", *dataFile), zap.Error(err))
		}
		if _, err := seeders.SyncInitialData(ctx, txManager, seeders.NewRepositories(pool, appLogger), data, appLogger); err != nil {
			appLogger.Fatal("Ошибка синхронизации справочников", zap.Error(err))
		}
	}

	if *runAll || *runAdmin {
		users := repositories.NewUserRepository(pool, appLogger)
		if _, err := seeders.SeedSuperAdmin(ctx, txManager, users, cfg.Seeder.AdminEmail, cfg.Seeder.AdminPassword, appLogger); err != nil {
			appLogger.Fatal("Ошибка создания администратора", zap.Error(err))
		}
	}

	appLogger.Info("Все указанные операции сидирования завершены")
}
