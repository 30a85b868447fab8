package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paper-system/pkg/contextkeys"
	"paper-system/pkg/monitor"
	"paper-system/pkg/utils"
)

// RequestLogger пишет метод, путь, статус и длительность запроса и обновляет счётчики монитора.
func RequestLogger(logger *zap.Logger, mon *monitor.Monitor) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := context.WithValue(c.Request().Context(), contextkeys.RequestIDKey, requestID)
			ctx = utils.ContextWithClient(ctx, utils.ClientMeta{IP: c.RealIP(), UserAgent: c.Request().UserAgent()})
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			mon.RecordRequest(status >= http.StatusInternalServerError)
			if p, perr := utils.PrincipalFromCtx(c.Request().Context()); perr == nil {
				mon.UserSeen(p.ID)
			}

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}
			switch {
			case status >= http.StatusInternalServerError:
				logger.Error("Запрос завершился ошибкой", fields...)
			case status >= http.StatusBadRequest:
				logger.Warn("Запрос отклонён", fields...)
			default:
				logger.Info("Запрос обработан", fields...)
			}
			return nil
		}
	}
}
