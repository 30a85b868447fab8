package controllers

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paper-system/internal/dto"
	"paper-system/internal/entities"
	"paper-system/internal/services"
	"paper-system/pkg/api"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/utils"
)

var paperListFilters = []string{"type", "status", "partition", "year", "department_id", "user_id"}

type PaperController struct {
	paperService services.PaperServiceInterface
	logger       *zap.Logger
}

func NewPaperController(paperService services.PaperServiceInterface, logger *zap.Logger) *PaperController {
	return &PaperController{paperService: paperService, logger: logger}
}

func (ctrl *PaperController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *PaperController) GetPapers(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query(), paperListFilters...)
	papers, total, err := ctrl.paperService.GetPapers(c.Request().Context(), filter)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return api.SuccessList(c, "Статьи успешно получены", papers, total, filter.Page, filter.PageSize)
}

func (ctrl *PaperController) GetMyPapers(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query(), "type", "status", "year")
	res, err := ctrl.paperService.GetMyPapers(c.Request().Context(), filter)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Мои статьи успешно получены", http.StatusOK)
}

func (ctrl *PaperController) listByStatus(c echo.Context, status, message string) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query(), "type", "partition", "year", "department_id", "user_id")
	papers, total, err := ctrl.paperService.GetByStatus(c.Request().Context(), status, filter)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return api.SuccessList(c, message, papers, total, filter.Page, filter.PageSize)
}

func (ctrl *PaperController) GetApproved(c echo.Context) error {
	return ctrl.listByStatus(c, entities.PaperStatusApproved, "Одобренные статьи успешно получены")
}

func (ctrl *PaperController) GetPending(c echo.Context) error {
	return ctrl.listByStatus(c, entities.PaperStatusPending, "Статьи на проверке успешно получены")
}

func (ctrl *PaperController) GetStats(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query(), "type", "year", "department_id")
	counts, err := ctrl.paperService.GetStats(c.Request().Context(), filter)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, counts, "Статистика по статьям получена", http.StatusOK)
}

func (ctrl *PaperController) FindPaper(c echo.Context) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	paper, err := ctrl.paperService.FindPaper(c.Request().Context(), id)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, paper, "Статья успешно найдена", http.StatusOK)
}

func (ctrl *PaperController) CreatePaper(c echo.Context) error {
	var payload dto.CreatePaperDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Неверное тело запроса"))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	paper, err := ctrl.paperService.CreatePaper(c.Request().Context(), payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, paper, "Статья успешно создана", http.StatusCreated)
}

func (ctrl *PaperController) UpdatePaper(c echo.Context) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	var payload dto.UpdatePaperDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Неверное тело запроса"))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	paper, err := ctrl.paperService.UpdatePaper(c.Request().Context(), id, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, paper, "Статья успешно обновлена", http.StatusOK)
}

func (ctrl *PaperController) SubmitPaper(c echo.Context) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	paper, err := ctrl.paperService.SubmitPaper(c.Request().Context(), id)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, paper, "Статья отправлена на проверку", http.StatusOK)
}

func (ctrl *PaperController) AuditPaper(c echo.Context) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	var payload dto.AuditPaperDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Неверное тело запроса"))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	paper, err := ctrl.paperService.AuditPaper(c.Request().Context(), id, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, paper, "Проверка статьи завершена", http.StatusOK)
}

func (ctrl *PaperController) BatchAudit(c echo.Context) error {
	var payload dto.BatchAuditDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Неверное тело запроса"))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	affected, err := ctrl.paperService.BatchAudit(c.Request().Context(), payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.BatchResultDTO{Affected: affected}, "Пакетная проверка завершена", http.StatusOK)
}

func (ctrl *PaperController) DeletePaper(c echo.Context) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	if err := ctrl.paperService.DeletePaper(c.Request().Context(), id); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Статья успешно удалена", http.StatusOK)
}

func (ctrl *PaperController) UploadFile(c echo.Context) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return ctrl.errorResponse(c, apperrors.NewBadRequestError("Файл не был передан"))
		}
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Неверный формат multipart-запроса"))
	}
	paper, err := ctrl.paperService.UploadFile(c.Request().Context(), id, fileHeader)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, paper, "Файл успешно загружен", http.StatusOK)
}

func (ctrl *PaperController) DownloadFile(c echo.Context) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	paper, file, err := ctrl.paperService.OpenFile(c.Request().Context(), id)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	defer file.Close()

	name := filepath.Base(file.Name())
	if paper.FileName != nil && *paper.FileName != "" {
		name = *paper.FileName
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, utils.ContentDisposition(name))
	return c.Stream(http.StatusOK, contentType, file)
}
