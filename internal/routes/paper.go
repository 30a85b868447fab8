package routes

import (
	"github.com/labstack/echo/v4"

	"paper-system/internal/authz"
	"paper-system/internal/controllers"
	"paper-system/pkg/middleware"
)

// Удаление не закрыто правом papers:delete: владелец удаляет свою неодобренную статью,
// решение принимает сервис.
func runPaperRouter(secureGroup *echo.Group, paperCtrl *controllers.PaperController, authMW *middleware.AuthMiddleware) {
	read := authMW.RequirePermission(authz.ResourcePapers, authz.ActionRead)
	update := authMW.RequirePermission(authz.ResourcePapers, authz.ActionUpdate)
	audit := authMW.RequirePermission(authz.ResourcePapers, authz.ActionAudit)

	papers := secureGroup.Group("/papers")
	{
		papers.GET("", paperCtrl.GetPapers, read)
		papers.GET("/my", paperCtrl.GetMyPapers)
		papers.GET("/stats", paperCtrl.GetStats, read)
		papers.GET("/approved", paperCtrl.GetApproved, read)
		papers.GET("/pending", paperCtrl.GetPending, audit)
		papers.POST("", paperCtrl.CreatePaper, authMW.RequirePermission(authz.ResourcePapers, authz.ActionCreate))
		papers.POST("/batch-audit", paperCtrl.BatchAudit, audit)
		papers.GET("/:id", paperCtrl.FindPaper, read)
		papers.PUT("/:id", paperCtrl.UpdatePaper, update)
		papers.DELETE("/:id", paperCtrl.DeletePaper)
		papers.PUT("/:id/submit", paperCtrl.SubmitPaper, update)
		papers.PUT("/:id/audit", paperCtrl.AuditPaper, audit)
		papers.POST("/:id/upload", paperCtrl.UploadFile, update)
		papers.GET("/:id/download", paperCtrl.DownloadFile, read)
	}
}
