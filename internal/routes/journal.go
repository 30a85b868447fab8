package routes

import (
	"github.com/labstack/echo/v4"

	"paper-system/internal/controllers"
)

func runJournalRouter(secureGroup *echo.Group, ctrl *controllers.JournalController) {
	journals := secureGroup.Group("/journals")
	{
		journals.GET("/search", ctrl.Search)
		journals.GET("/years/available", ctrl.Years)
		journals.GET("/categories/list", ctrl.Categories)
		journals.GET("/:id", ctrl.Detail)
	}
}
