package routes

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paper-system/internal/controllers"
	"paper-system/internal/integrations"
	"paper-system/internal/listeners"
	"paper-system/internal/repositories"
	"paper-system/internal/services"
	"paper-system/pkg/config"
	"paper-system/pkg/eventbus"
	"paper-system/pkg/filestorage"
	"paper-system/pkg/middleware"
	"paper-system/pkg/monitor"
	"paper-system/pkg/service"
	"paper-system/pkg/websocket"
)

type Loggers struct {
	Main    *zap.Logger
	Auth    *zap.Logger
	Paper   *zap.Logger
	User    *zap.Logger
	Stats   *zap.Logger
	Journal *zap.Logger
}

// NewLoggers - именованные дочерние логгеры по областям.
func NewLoggers(base *zap.Logger) *Loggers {
	return &Loggers{
		Main:    base.Named("main"),
		Auth:    base.Named("auth"),
		Paper:   base.Named("paper"),
		User:    base.Named("user"),
		Stats:   base.Named("stats"),
		Journal: base.Named("journal"),
	}
}

type Dependencies struct {
	DB       *pgxpool.Pool
	Redis    *redis.Client
	JWT      service.JWTService
	Monitor  *monitor.Monitor
	Bus      *eventbus.Bus
	Registry integrations.RegistryInterface
	Hub      *websocket.Hub
	Config   *config.Config
}

type controllerSet struct {
	auth         *controllers.AuthController
	user         *controllers.UserController
	department   *controllers.DepartmentController
	paper        *controllers.PaperController
	notification *controllers.NotificationController
	statistics   *controllers.StatisticsController
	journal      *controllers.JournalController
	system       *controllers.SystemController
	realtime     *controllers.RealtimeController
}

func InitRouter(e *echo.Echo, deps Dependencies, loggers *Loggers) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")
	cfg := deps.Config

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Server.UploadDir)
	if err != nil {
		loggers.Main.Fatal("не удалось создать файловое хранилище", zap.Error(err))
	}
	txManager := repositories.NewTxManager(deps.DB)

	// --- 1. РЕПОЗИТОРИИ ---
	cacheRepo := repositories.NewRedisCacheRepository(deps.Redis)
	userRepo := repositories.NewUserRepository(deps.DB, loggers.User)
	departmentRepo := repositories.NewDepartmentRepository(deps.DB, loggers.Main)
	paperRepo := repositories.NewPaperRepository(deps.DB, loggers.Paper)
	notificationRepo := repositories.NewNotificationRepository(deps.DB, loggers.Main)
	statsRepo := repositories.NewStatisticsRepository(deps.DB, loggers.Stats)
	journalRepo := repositories.NewJournalRepository(deps.DB, loggers.Journal)
	configRepo := repositories.NewSystemConfigRepository(deps.DB, loggers.Main)
	logRepo := repositories.NewOperationLogRepository(deps.DB, loggers.Main)

	listeners.NewOperationLogListener(logRepo, loggers.Main).Register(deps.Bus)
	listeners.NewRealtimeListener(deps.Hub, paperRepo, loggers.Main).Register(deps.Bus)

	// --- 2. СЕРВИСЫ ---
	base := services.NewBaseService(cacheRepo, deps.Bus, loggers.Main)
	authService := services.NewAuthService(base, userRepo, cacheRepo, deps.JWT, loggers.Auth, &cfg.Auth)
	userService := services.NewUserService(base, userRepo, departmentRepo, loggers.User)
	departmentService := services.NewDepartmentService(base, departmentRepo, loggers.Main)
	paperService := services.NewPaperService(base, paperRepo, txManager, fileStorage, loggers.Paper)
	notificationService := services.NewNotificationService(base, notificationRepo, loggers.Main)
	statsService := services.NewStatisticsService(base, statsRepo, cfg.Stats.CacheTTL, loggers.Stats)
	journalService := services.NewJournalService(base, deps.Registry, journalRepo, cfg.JournalAPI, loggers.Journal)
	systemService := services.NewSystemService(base, configRepo, logRepo, userRepo, paperRepo, journalRepo,
		deps.Monitor,
		func(ctx context.Context) error { return deps.DB.Ping(ctx) },
		func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() },
		loggers.Main,
	)

	// --- 3. КОНТРОЛЛЕРЫ ---
	ctrls := controllerSet{
		auth:         controllers.NewAuthController(authService, loggers.Auth),
		user:         controllers.NewUserController(userService, loggers.User),
		department:   controllers.NewDepartmentController(departmentService, loggers.Main),
		paper:        controllers.NewPaperController(paperService, loggers.Paper),
		notification: controllers.NewNotificationController(notificationService, loggers.Main),
		statistics:   controllers.NewStatisticsController(statsService, loggers.Stats),
		journal:      controllers.NewJournalController(journalService, loggers.Journal),
		system:       controllers.NewSystemController(systemService, loggers.Main),
		realtime:     controllers.NewRealtimeController(deps.Hub, cfg.Server.AllowedOrigins, loggers.Main),
	}

	authMW := middleware.NewAuthMiddleware(authService, loggers.Auth)
	registerRoutes(e, ctrls, authMW, systemService, loggers)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}

// registerRoutes: публичные маршруты, затем защищённая группа Auth -> Maintenance.
func registerRoutes(e *echo.Echo, ctrls controllerSet, authMW *middleware.AuthMiddleware,
	maintenance middleware.MaintenanceChecker, loggers *Loggers) {
	api := e.Group("/api")

	api.GET("/health", ctrls.system.Health)
	runPublicAuthRouter(api, ctrls.auth)
	api.GET("/ws", ctrls.realtime.Serve, authMW.AuthQuery)

	secureGroup := api.Group("", authMW.Auth, middleware.Maintenance(maintenance, loggers.Main))

	runAuthRouter(secureGroup, ctrls.auth)
	runPaperRouter(secureGroup, ctrls.paper, authMW)
	runUserRouter(secureGroup, ctrls.user, authMW)
	runDepartmentRouter(secureGroup, ctrls.department, authMW)
	runNotificationRouter(secureGroup, ctrls.notification, authMW)
	runStatisticsRouter(secureGroup, ctrls.statistics, authMW)
	runJournalRouter(secureGroup, ctrls.journal)
	runSystemRouter(secureGroup, ctrls.system, authMW)
}
