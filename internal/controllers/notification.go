package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paper-system/internal/dto"
	"paper-system/internal/services"
	"paper-system/pkg/api"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/utils"
)

type NotificationController struct {
	notificationService services.NotificationServiceInterface
	logger              *zap.Logger
}

func NewNotificationController(service services.NotificationServiceInterface, logger *zap.Logger) *NotificationController {
	return &NotificationController{notificationService: service, logger: logger}
}

func (ctrl *NotificationController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *NotificationController) GetNotifications(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query(), "type", "status")
	list, total, err := ctrl.notificationService.GetNotifications(c.Request().Context(), filter)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return api.SuccessList(c, "Уведомления успешно получены", list, total, filter.Page, filter.PageSize)
}

func (ctrl *NotificationController) FindNotification(c echo.Context) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	n, err := ctrl.notificationService.FindNotification(c.Request().Context(), id)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, n, "Уведомление успешно найдено", http.StatusOK)
}

func (ctrl *NotificationController) CreateNotification(c echo.Context) error {
	var payload dto.CreateNotificationDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Неверное тело запроса"))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	n, err := ctrl.notificationService.CreateNotification(c.Request().Context(), payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, n, "Уведомление успешно создано", http.StatusCreated)
}

func (ctrl *NotificationController) UpdateNotification(c echo.Context) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	var payload dto.UpdateNotificationDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Неверное тело запроса"))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	n, err := ctrl.notificationService.UpdateNotification(c.Request().Context(), id, payload)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, n, "Уведомление успешно обновлено", http.StatusOK)
}

func (ctrl *NotificationController) DeleteNotification(c echo.Context) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	if err := ctrl.notificationService.DeleteNotification(c.Request().Context(), id); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Уведомление успешно удалено", http.StatusOK)
}

func (ctrl *NotificationController) setPublished(c echo.Context, published bool, message string) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	n, err := ctrl.notificationService.SetPublished(c.Request().Context(), id, published)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, n, message, http.StatusOK)
}

func (ctrl *NotificationController) Publish(c echo.Context) error {
	return ctrl.setPublished(c, true, "Уведомление опубликовано")
}

func (ctrl *NotificationController) Unpublish(c echo.Context) error {
	return ctrl.setPublished(c, false, "Публикация уведомления отменена")
}

func (ctrl *NotificationController) MarkRead(c echo.Context) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	if err := ctrl.notificationService.MarkRead(c.Request().Context(), id); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Уведомление отмечено как прочитанное", http.StatusOK)
}

func (ctrl *NotificationController) MarkAllRead(c echo.Context) error {
	marked, err := ctrl.notificationService.MarkAllRead(c.Request().Context())
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.ReadAllDTO{Marked: marked}, "Все уведомления отмечены как прочитанные", http.StatusOK)
}

func (ctrl *NotificationController) UnreadCount(c echo.Context) error {
	count, err := ctrl.notificationService.UnreadCount(c.Request().Context())
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, dto.UnreadCountDTO{Count: count}, "Количество непрочитанных получено", http.StatusOK)
}

func (ctrl *NotificationController) Stats(c echo.Context) error {
	stats, err := ctrl.notificationService.Stats(c.Request().Context())
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, stats, "Статистика уведомлений получена", http.StatusOK)
}
