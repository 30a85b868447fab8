package routes

import (
	"github.com/labstack/echo/v4"

	"paper-system/internal/authz"
	"paper-system/internal/controllers"
	"paper-system/pkg/middleware"
)

func runSystemRouter(secureGroup *echo.Group, ctrl *controllers.SystemController, authMW *middleware.AuthMiddleware) {
	read := authMW.RequirePermission(authz.ResourceSystem, authz.ActionRead)
	update := authMW.RequirePermission(authz.ResourceSystem, authz.ActionUpdate)

	system := secureGroup.Group("/system")
	{
		system.GET("/config", ctrl.GetConfigs, read)
		system.PUT("/config", ctrl.UpdateConfigs, update)
		system.GET("/stats", ctrl.Stats, read)
		system.GET("/logs", ctrl.Logs, read)
		system.DELETE("/logs/cleanup", ctrl.CleanupLogs, update)
		system.PUT("/maintenance", ctrl.SetMaintenance, update)
	}
}
