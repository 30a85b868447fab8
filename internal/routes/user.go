package routes

import (
	"github.com/labstack/echo/v4"

	"paper-system/internal/authz"
	"paper-system/internal/controllers"
	"paper-system/pkg/middleware"
)

func runUserRouter(secureGroup *echo.Group, userCtrl *controllers.UserController, authMW *middleware.AuthMiddleware) {
	users := secureGroup.Group("/users")
	{
		users.GET("", userCtrl.GetUsers, authMW.RequirePermission(authz.ResourceUsers, authz.ActionRead))
		users.POST("", userCtrl.CreateUser, authMW.RequirePermission(authz.ResourceUsers, authz.ActionCreate))
		users.PUT("/batch/status", userCtrl.BatchUpdateStatus, authMW.RequirePermission(authz.ResourceUsers, authz.ActionUpdate))
		users.GET("/:id", userCtrl.FindUser, authMW.RequirePermission(authz.ResourceUsers, authz.ActionRead))
		// себя правит любой, остальных admin: проверка в сервисе
		users.PUT("/:id", userCtrl.UpdateUser)
		users.DELETE("/:id", userCtrl.DeleteUser, authMW.RequirePermission(authz.ResourceUsers, authz.ActionDelete))
	}
}
