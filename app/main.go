package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"paper-system/internal/integrations"
	"paper-system/internal/integrations/fenqubiao"
	"paper-system/internal/integrations/mock"
	"paper-system/internal/routes"
	"paper-system/pkg/api"
	"paper-system/pkg/config"
	"paper-system/pkg/database/postgresql"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/eventbus"
	applogger "paper-system/pkg/logger"
	appmiddleware "paper-system/pkg/middleware"
	"paper-system/pkg/monitor"
	"paper-system/pkg/service"
	"paper-system/pkg/utils"
	"paper-system/pkg/websocket"
)

const maxBodySize = "60M"

func main() {
	cfg := config.New()

	e := echo.New()
	e.HideBanner = true
	logger := applogger.NewLogger()
	defer func() { _ = logger.Sync() }()

	api.SetExposeInternalErrors(!cfg.IsProduction())

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
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
	}))
	e.Use(middleware.BodyLimit(maxBodySize))

	mon := monitor.New(time.Now)
	e.Use(appmiddleware.RequestLogger(logger.Named("http"), mon))

	v, err := utils.NewValidator()
	if err != nil {
		logger.Fatal("Ошибка регистрации кастомных правил валидации", zap.Error(err))
	}
	e.Validator = v

	dbConn := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbConn.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, logger)
	bus := eventbus.New(logger.Named("eventbus"))

	registry := integrations.NewRegistry()
	if err := registry.Register(mock.NewMockProvider()); err != nil {
		logger.Fatal("не удалось зарегистрировать провайдер журналов", zap.Error(err))
	}
	if cfg.JournalAPI.User != "" {
		live := fenqubiao.New(cfg.JournalAPI.BaseURL, cfg.JournalAPI.User, cfg.JournalAPI.Password, cfg.JournalAPI.Timeout, logger.Named("fenqubiao"))
		if err := registry.Register(live); err != nil {
			logger.Fatal("не удалось зарегистрировать провайдер журналов", zap.Error(err))
		}
		if err := registry.SetActive(live.Name()); err != nil {
			logger.Fatal("не удалось активировать провайдер журналов", zap.Error(err))
		}
	} else {
		logger.Warn("JOURNAL_API_USER не задан: поиск журналов работает только по локальной таблице")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(logger.Named("websocket"))
	go hub.Run(ctx)

	routes.InitRouter(e, routes.Dependencies{
		DB:       dbConn,
		Redis:    redisClient,
		JWT:      jwtSvc,
		Monitor:  mon,
		Bus:      bus,
		Registry: registry,
		Hub:      hub,
		Config:   cfg,
	}, routes.NewLoggers(logger))

	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Остановка сервера")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
	bus.Wait()
}
