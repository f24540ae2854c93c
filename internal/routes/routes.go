package routes

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"it-inventory/internal/controllers"
	"it-inventory/internal/dto"
	"it-inventory/internal/entities"
	"it-inventory/internal/repositories"
	"it-inventory/internal/services"
	"it-inventory/pkg/config"
	"it-inventory/pkg/middleware"
	"it-inventory/pkg/service"
)

type Loggers struct {
	Main  *zap.Logger
	Auth  *zap.Logger
	Asset *zap.Logger
	Audit *zap.Logger
}

// Clock - источник текущего времени для номеров и аналитики.
type Clock func() time.Time

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, loggers *Loggers, cfg *config.Config, clock Clock) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	txManager := repositories.NewTxManager(dbConn)

	// --- 1. РЕПОЗИТОРИИ ---
	checkRepo := repositories.NewCheckRepository(dbConn, loggers.Main)
	actionLogRepo := repositories.NewActionLogRepository(dbConn, loggers.Audit)
	userRepo := repositories.NewUserRepository(dbConn, loggers.Auth)
	sessionRepo := repositories.NewSessionRepository(repositories.NewRedisCacheRepository(redisClient), cfg.Session.TTL, loggers.Auth)
	deviceRepo := repositories.NewDeviceRepository(dbConn, loggers.Asset)
	assetTypeRepo := repositories.NewAssetTypeRepository(dbConn, loggers.Main)
	deviceModelRepo := repositories.NewDeviceModelRepository(dbConn, loggers.Main)
	employeeRepo := repositories.NewEmployeeRepository(dbConn, loggers.Main)
	analyticsRepo := repositories.NewAnalyticsRepository(dbConn, cfg.Analytics, loggers.Main)

	simpleKinds := []entities.DictionaryKind{
		entities.KindDeviceStatus, entities.KindManufacturer, entities.KindDepartment,
		entities.KindLocation, entities.KindSupplier, entities.KindTag,
	}
	dictRepos := make(map[entities.DictionaryKind]repositories.DictionaryRepositoryInterface, len(simpleKinds))
	for _, kind := range simpleKinds {
		dictRepos[kind] = repositories.NewDictionaryRepository(dbConn, kind, loggers.Main)
	}

	// --- 2. СЕРВИСЫ ---
	auditService := services.NewAuditService(txManager, actionLogRepo, clock, loggers.Audit)
	authService := services.NewAuthService(txManager, userRepo, sessionRepo, jwtSvc, cfg.Session.Secret, loggers.Auth)
	userService := services.NewUserService(txManager, userRepo, auditService, loggers.Auth)
	assetService := services.NewAssetService(txManager, services.AssetRepositories{
		Devices:     deviceRepo,
		AssetTypes:  assetTypeRepo,
		Tags:        dictRepos[entities.KindTag],
		Statuses:    dictRepos[entities.KindDeviceStatus],
		Departments: dictRepos[entities.KindDepartment],
		Locations:   dictRepos[entities.KindLocation],
		Checks:      checkRepo,
	}, auditService, clock, loggers.Asset)
	analyticsService := services.NewAnalyticsService(txManager, analyticsRepo, clock, loggers.Main)

	dictDeps := services.DictionaryDeps{TxManager: txManager, Checks: checkRepo, Audit: auditService, Logger: loggers.Main}

	// --- 3. КОНТРОЛЛЕРЫ ---
	authMW := middleware.NewAuthMiddleware(authService, loggers.Auth)
	healthCtrl := controllers.NewHealthController(dbConn.Ping, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}, loggers.Main)
	authCtrl := controllers.NewAuthController(authService, cfg.Session.TTL, loggers.Auth)
	userCtrl := controllers.NewUserController(userService, loggers.Auth)
	assetCtrl := controllers.NewAssetController(assetService, loggers.Asset)
	dashboardCtrl := controllers.NewDashboardController(analyticsService, loggers.Main)
	auditCtrl := controllers.NewAuditLogController(auditService, loggers.Audit)

	// --- 4. РОУТЕРЫ ---
	api.GET("/health", healthCtrl.Health)
	runAuthRouter(api, authCtrl, authMW)

	secureGroup := api.Group("", authMW.Auth, authMW.RequireActive)
	runAssetRouter(secureGroup, assetCtrl)

	dictionaries := secureGroup.Group("/dictionaries")
	controllers.NewDictionaryController[entities.AssetType, dto.CreateAssetTypeDTO, dto.UpdateAssetTypeDTO](
		services.NewAssetTypeService(assetTypeRepo, dictDeps), loggers.Main).Register(dictionaries)
	controllers.NewDictionaryController[entities.DeviceModel, dto.CreateDeviceModelDTO, dto.UpdateDeviceModelDTO](
		services.NewDeviceModelService(deviceModelRepo, dictDeps), loggers.Main).Register(dictionaries)
	controllers.NewDictionaryController[entities.Employee, dto.CreateEmployeeDTO, dto.UpdateEmployeeDTO](
		services.NewEmployeeService(employeeRepo, dictDeps), loggers.Main).Register(dictionaries)
	for _, kind := range simpleKinds {
		controllers.NewDictionaryController[entities.DictionaryItem, dto.CreateDictionaryItemDTO, dto.UpdateDictionaryItemDTO](
			services.NewSimpleDictionaryService(dictRepos[kind], dictDeps), loggers.Main).Register(dictionaries)
	}

	secureGroup.GET("/analytics/dashboard", dashboardCtrl.GetAnalytics)
	secureGroup.GET("/audit-logs", auditCtrl.GetAuditLogs)
	runUserRouter(secureGroup, userCtrl, authMW)

	loggers.Main.Info("InitRouter: Создание маршрутов завершено")
}
