package routes

import (
	"github.com/labstack/echo/v4"

	"paper-system/internal/authz"
	"paper-system/internal/controllers"
	"paper-system/pkg/middleware"
)

func runStatisticsRouter(secureGroup *echo.Group, ctrl *controllers.StatisticsController, authMW *middleware.AuthMiddleware) {
	stats := secureGroup.Group("/statistics", authMW.RequirePermission(authz.ResourceStatistics, authz.ActionRead))
	{
		stats.GET("/overview", ctrl.Overview)
		stats.GET("/trends", ctrl.Trends)
		stats.GET("/by-department", ctrl.ByDepartment)
		stats.GET("/personal", ctrl.Personal)
		stats.GET("/personal/:userId", ctrl.Personal)
		stats.GET("/rankings", ctrl.Rankings)
		stats.GET("/export", ctrl.Export, authMW.RequirePermission(authz.ResourceStatistics, authz.ActionExport))
	}
}
