package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paper-system/internal/dto"
	"paper-system/internal/services"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/utils"
)

type JournalController struct {
	journalService services.JournalServiceInterface
	logger         *zap.Logger
}

func NewJournalController(service services.JournalServiceInterface, logger *zap.Logger) *JournalController {
	return &JournalController{journalService: service, logger: logger}
}

func (ctrl *JournalController) Search(c echo.Context) error {
	var q dto.JournalSearchDTO
	if err := c.Bind(&q); err != nil {
		return utils.ErrorResponse(c, apperrors.NewBadRequestError("Неверные параметры поиска"), ctrl.logger)
	}
	if err := c.Validate(&q); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	res, err := ctrl.journalService.Search(c.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Поиск журналов выполнен", http.StatusOK)
}

func (ctrl *JournalController) Detail(c echo.Context) error {
	journal, err := ctrl.journalService.Detail(c.Request().Context(), c.Param("id"), c.QueryParam("year"))
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, journal, "Журнал найден", http.StatusOK)
}

func (ctrl *JournalController) Years(c echo.Context) error {
	return utils.SuccessResponse(c, ctrl.journalService.Years(), "Доступные годы получены", http.StatusOK)
}

func (ctrl *JournalController) Categories(c echo.Context) error {
	categories, err := ctrl.journalService.Categories(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, categories, "Категории журналов получены", http.StatusOK)
}
