package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paper-system/internal/dto"
	"paper-system/internal/services"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/utils"
)

type StatisticsController struct {
	statsService services.StatisticsServiceInterface
	logger       *zap.Logger
}

func NewStatisticsController(service services.StatisticsServiceInterface, logger *zap.Logger) *StatisticsController {
	return &StatisticsController{statsService: service, logger: logger}
}

func (ctrl *StatisticsController) query(c echo.Context) (dto.StatsQueryDTO, error) {
	var q dto.StatsQueryDTO
	if err := c.Bind(&q); err != nil {
		return q, apperrors.NewBadRequestError("Неверные параметры запроса")
	}
	if err := c.Validate(&q); err != nil {
		return q, err
	}
	return q, nil
}

// respond - общий обработчик отчётов: разбор query, вызов сервиса, ответ.
func (ctrl *StatisticsController) respond(c echo.Context, message string,
	load func(q dto.StatsQueryDTO) (interface{}, error)) error {
	q, err := ctrl.query(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	res, err := load(q)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, message, http.StatusOK)
}

func (ctrl *StatisticsController) Overview(c echo.Context) error {
	return ctrl.respond(c, "Общая статистика получена", func(q dto.StatsQueryDTO) (interface{}, error) {
		return ctrl.statsService.Overview(c.Request().Context(), q)
	})
}

func (ctrl *StatisticsController) Trends(c echo.Context) error {
	return ctrl.respond(c, "Динамика получена", func(q dto.StatsQueryDTO) (interface{}, error) {
		return ctrl.statsService.Trends(c.Request().Context(), q)
	})
}

func (ctrl *StatisticsController) ByDepartment(c echo.Context) error {
	return ctrl.respond(c, "Статистика по департаментам получена", func(q dto.StatsQueryDTO) (interface{}, error) {
		return ctrl.statsService.ByDepartment(c.Request().Context(), q)
	})
}

func (ctrl *StatisticsController) Personal(c echo.Context) error {
	return ctrl.respond(c, "Личная статистика получена", func(q dto.StatsQueryDTO) (interface{}, error) {
		return ctrl.statsService.Personal(c.Request().Context(), q)
	})
}

func (ctrl *StatisticsController) Rankings(c echo.Context) error {
	return ctrl.respond(c, "Рейтинг получен", func(q dto.StatsQueryDTO) (interface{}, error) {
		return ctrl.statsService.Rankings(c.Request().Context(), q)
	})
}

func (ctrl *StatisticsController) Export(c echo.Context) error {
	q, err := ctrl.query(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	file, err := ctrl.statsService.Export(c.Request().Context(), q)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, utils.ContentDisposition(file.FileName))
	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(len(file.Content)))
	return c.Blob(http.StatusOK, file.ContentType, file.Content)
}
