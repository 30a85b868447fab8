package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paper-system/internal/dto"
	"paper-system/internal/services"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/middleware"
	"paper-system/pkg/utils"
)

type AuthController struct {
	authService services.AuthServiceInterface
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthServiceInterface, logger *zap.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := c.Bind(&payload); err != nil {
		ctrl.logger.Debug("Login: ошибка привязки данных", zap.Error(err))
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Неверный формат данных для входа"))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.Login(c.Request().Context(), c.RealIP(), payload)
	if err != nil {
		ctrl.logger.Warn("Login: вход не выполнен", zap.String("username", payload.Username), zap.String("ip", c.RealIP()), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Авторизация прошла успешно", http.StatusOK)
}

func (ctrl *AuthController) Refresh(c echo.Context) error {
	var payload dto.RefreshTokenDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Неверное тело запроса"))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.Refresh(c.Request().Context(), payload.RefreshToken)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Токены успешно обновлены", http.StatusOK)
}

// Logout отзывает текущий access-токен и, если передан, refresh-токен.
func (ctrl *AuthController) Logout(c echo.Context) error {
	var payload dto.LogoutDTO
	_ = c.Bind(&payload)

	ctx := c.Request().Context()
	if err := ctrl.authService.Logout(ctx, middleware.RawTokenFromCtx(ctx), payload.RefreshToken); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Выход выполнен успешно", http.StatusOK)
}

func (ctrl *AuthController) Me(c echo.Context) error {
	user, err := ctrl.authService.Me(c.Request().Context())
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, user, "Профиль пользователя получен", http.StatusOK)
}

func (ctrl *AuthController) ChangePassword(c echo.Context) error {
	var payload dto.ChangePasswordDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Неверное тело запроса"))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	if err := ctrl.authService.ChangePassword(c.Request().Context(), payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Пароль успешно изменён", http.StatusOK)
}

func (ctrl *AuthController) ResetPassword(c echo.Context) error {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	var payload dto.ResetPasswordDTO
	if err := c.Bind(&payload); err != nil {
		return ctrl.errorResponse(c, apperrors.NewBadRequestError("Неверное тело запроса"))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	if err := ctrl.authService.ResetPassword(c.Request().Context(), id, payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, nil, "Пароль успешно сброшен", http.StatusOK)
}

func (ctrl *AuthController) CheckUsername(c echo.Context) error {
	res, err := ctrl.authService.CheckUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Проверка имени пользователя выполнена", http.StatusOK)
}
