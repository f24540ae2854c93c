// Файл: main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"it-inventory/internal/repositories"
	"it-inventory/internal/routes"
	"it-inventory/pkg/config"
	"it-inventory/pkg/database/postgresql"
	applogger "it-inventory/pkg/logger"
	appmiddleware "it-inventory/pkg/middleware"
	"it-inventory/pkg/service"
	"it-inventory/pkg/utils"
	"it-inventory/pkg/validation"
	"it-inventory/seeders"
)

func main() {
	// 1. Конфиг (.env подхватывается внутри) и логгеры
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	loggers := &routes.Loggers{
		Main:  logger,
		Auth:  logger.Named("auth"),
		Asset: logger.Named("asset"),
		Audit: logger.Named("audit"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. База данных и миграции
	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		logger.Fatal("Не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	if cfg.Postgres.RunMigrations {
		if err := postgresql.Migrate(cfg.Postgres.DSN); err != nil {
			logger.Fatal("Ошибка применения миграций", zap.Error(err))
		}
		logger.Info("Миграции применены")
	}

	// 3. Redis для сессий
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	// 4. Начальные данные
	if cfg.Seeder.SeedOnStart {
		data, err := seeders.LoadInitialData(cfg.Seeder.InitialDataFile)
		if err != nil {
			logger.Fatal("Ошибка чтения начальных данных", zap.Error(err))
		}
		txManager := repositories.NewTxManager(dbConn)
		if _, err := seeders.SyncInitialData(ctx, txManager, seeders.NewRepositories(dbConn, logger), data, logger); err != nil {
			logger.Fatal("Ошибка синхронизации начальных данных", zap.Error(err))
		}
	}

	jwtSvc, err := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.Algorithm, cfg.JWT.AccessTokenTTL, logger)
	if err != nil {
		logger.Fatal("Ошибка настройки JWT", zap.Error(err))
	}

	// 5. Echo и middleware
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				_ = utils.ErrorResponse(c, err, logger)
			}
			return err
		},
	}))
	e.Use(appmiddleware.RequestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return slices.Contains(cfg.Server.AllowedOrigins, origin), nil
		},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// 6. Маршруты
	routes.InitRouter(e, dbConn, redisClient, jwtSvc, loggers, cfg, time.Now)

	// 7. Запуск и корректная остановка
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал остановки, завершаем работу")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при остановке сервера", zap.Error(err))
	}
}
