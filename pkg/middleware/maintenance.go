package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/utils"
)

type MaintenanceChecker interface {
	MaintenanceEnabled(ctx context.Context) bool
}

// Maintenance отвечает 503 всем, кроме администраторов, пока включён режим обслуживания.
// Ставится после Auth.
func Maintenance(checker MaintenanceChecker, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if !checker.MaintenanceEnabled(ctx) {
				return next(c)
			}
			if p, err := utils.PrincipalFromCtx(ctx); err == nil && p.IsAdmin() {
				return next(c)
			}
			return utils.ErrorResponse(c, apperrors.ErrMaintenance, logger)
		}
	}
}
