package routes

import (
	"github.com/labstack/echo/v4"

	"paper-system/internal/authz"
	"paper-system/internal/controllers"
	"paper-system/pkg/middleware"
)

func runNotificationRouter(secureGroup *echo.Group, ctrl *controllers.NotificationController, authMW *middleware.AuthMiddleware) {
	read := authMW.RequirePermission(authz.ResourceNotifications, authz.ActionRead)
	update := authMW.RequirePermission(authz.ResourceNotifications, authz.ActionUpdate)

	notifications := secureGroup.Group("/notifications")
	{
		notifications.GET("", ctrl.GetNotifications, read)
		notifications.POST("", ctrl.CreateNotification, authMW.RequirePermission(authz.ResourceNotifications, authz.ActionCreate))
		notifications.GET("/unread/count", ctrl.UnreadCount, read)
		notifications.POST("/read-all", ctrl.MarkAllRead, read)
		notifications.GET("/stats/overview", ctrl.Stats, read)
		notifications.GET("/:id", ctrl.FindNotification, read)
		notifications.PUT("/:id", ctrl.UpdateNotification, update)
		notifications.DELETE("/:id", ctrl.DeleteNotification)
		notifications.PUT("/:id/publish", ctrl.Publish, update)
		notifications.PUT("/:id/unpublish", ctrl.Unpublish, update)
		notifications.POST("/:id/read", ctrl.MarkRead, read)
	}
}
