package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paper-system/internal/dto"
	"paper-system/internal/services"
	"paper-system/pkg/api"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/utils"
)

type SystemController struct {
	systemService services.SystemServiceInterface
	logger        *zap.Logger
}

func NewSystemController(service services.SystemServiceInterface, logger *zap.Logger) *SystemController {
	return &SystemController{systemService: service, logger: logger}
}

func (ctrl *SystemController) GetConfigs(c echo.Context) error {
	configs, err := ctrl.systemService.GetConfigs(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, configs, "Параметры системы получены", http.StatusOK)
}

func (ctrl *SystemController) UpdateConfigs(c echo.Context) error {
	var payload dto.UpdateConfigDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.NewBadRequestError("Неверное тело запроса"), ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	configs, err := ctrl.systemService.UpdateConfigs(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, configs, "Параметры системы обновлены", http.StatusOK)
}

func (ctrl *SystemController) SetMaintenance(c echo.Context) error {
	var payload dto.MaintenanceDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.NewBadRequestError("Неверное тело запроса"), ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.systemService.SetMaintenance(c.Request().Context(), *payload.Enabled); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, payload, "Режим обслуживания изменён", http.StatusOK)
}

func (ctrl *SystemController) Stats(c echo.Context) error {
	stats, err := ctrl.systemService.Stats(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, stats, "Статистика системы получена", http.StatusOK)
}

func (ctrl *SystemController) Logs(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query(), "action", "resource_type", "user_id")
	logs, total, err := ctrl.systemService.Logs(c.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return api.SuccessList(c, "Журнал операций получен", logs, total, filter.Page, filter.PageSize)
}

func (ctrl *SystemController) CleanupLogs(c echo.Context) error {
	days := 0
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return utils.ErrorResponse(c, apperrors.NewValidationError("Неверный срок хранения",
				map[string]interface{}{"days": "Ожидается целое число"}), ctrl.logger)
		}
		days = parsed
	}
	res, err := ctrl.systemService.CleanupLogs(c.Request().Context(), days)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, res, "Журнал операций очищен", http.StatusOK)
}

// Health отвечает 503, если база или Redis недоступны.
func (ctrl *SystemController) Health(c echo.Context) error {
	health, ok := ctrl.systemService.Health(c.Request().Context())
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	return api.SuccessOne(c, status, "", health)
}
