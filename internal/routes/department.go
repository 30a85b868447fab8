package routes

import (
	"github.com/labstack/echo/v4"

	"paper-system/internal/authz"
	"paper-system/internal/controllers"
	"paper-system/pkg/middleware"
)

// Справочник департаментов читают все, меняет только администратор.
func runDepartmentRouter(secureGroup *echo.Group, departmentCtrl *controllers.DepartmentController, authMW *middleware.AuthMiddleware) {
	manage := authMW.RequirePermission(authz.ResourceSystem, authz.ActionUpdate)

	secureGroup.GET("/departments", departmentCtrl.GetDepartments)
	secureGroup.GET("/departments/:id", departmentCtrl.FindDepartment)
	secureGroup.POST("/departments", departmentCtrl.CreateDepartment, manage)
	secureGroup.PUT("/departments/:id", departmentCtrl.UpdateDepartment, manage)
	secureGroup.DELETE("/departments/:id", departmentCtrl.DeleteDepartment, manage)
}
