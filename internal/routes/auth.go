package routes

import (
	"github.com/labstack/echo/v4"

	"paper-system/internal/controllers"
)

func runPublicAuthRouter(api *echo.Group, authCtrl *controllers.AuthController) {
	api.POST("/auth/login", authCtrl.Login)
	api.POST("/auth/refresh", authCtrl.Refresh)
	api.GET("/auth/check-username/:username", authCtrl.CheckUsername)
}

func runAuthRouter(secureGroup *echo.Group, authCtrl *controllers.AuthController) {
	secureGroup.POST("/auth/logout", authCtrl.Logout)
	secureGroup.GET("/auth/me", authCtrl.Me)
	secureGroup.PUT("/auth/password", authCtrl.ChangePassword)
	secureGroup.PUT("/auth/reset-password/:id", authCtrl.ResetPassword)
}
