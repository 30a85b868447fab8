package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paper-system/internal/authz"
	"paper-system/pkg/contextkeys"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/utils"
)

// Authenticator проверяет access-токен и возвращает принципала.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*authz.Principal, error)
}

type AuthMiddleware struct {
	auth   Authenticator
	logger *zap.Logger
}

func NewAuthMiddleware(auth Authenticator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		auth:   auth,
		logger: logger,
	}
}

// BearerToken извлекает токен из заголовка "Authorization: Bearer <token>".
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", apperrors.ErrEmptyAuthHeader
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.ErrInvalidAuthHeader
	}
	return parts[1], nil
}

func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			m.logger.Debug("AuthMiddleware: заголовок Authorization отсутствует или неверен", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}
		return m.authenticate(c, tokenString, next)
	}
}

// AuthQuery берёт токен из параметра ?token=, браузер не передаёт заголовки при открытии WebSocket.
func (m *AuthMiddleware) AuthQuery(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := c.QueryParam("token")
		if tokenString == "" {
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}
		return m.authenticate(c, tokenString, next)
	}
}

func (m *AuthMiddleware) authenticate(c echo.Context, tokenString string, next echo.HandlerFunc) error {
	principal, err := m.auth.Authenticate(c.Request().Context(), tokenString)
	if err != nil {
		m.logger.Warn("AuthMiddleware: Ошибка аутентификации", zap.Error(err))
		return utils.ErrorResponse(c, err, m.logger)
	}

	ctx := utils.ContextWithPrincipal(c.Request().Context(), principal)
	ctx = context.WithValue(ctx, contextkeys.TokenKey, tokenString)
	c.SetRequest(c.Request().WithContext(ctx))

	return next(c)
}

// RequirePermission пропускает запрос, только если у роли есть право resource:action.
func (m *AuthMiddleware) RequirePermission(resource, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := utils.PrincipalFromCtx(c.Request().Context())
			if err != nil {
				return utils.ErrorResponse(c, err, m.logger)
			}
			if !principal.Can(resource, action) {
				m.logger.Warn("Недостаточно прав",
					zap.Uint64("userID", principal.ID),
					zap.String("role", string(principal.Role)),
					zap.String("permission", authz.Permission(resource, action)),
				)
				return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
			}
			return next(c)
		}
	}
}

// RawTokenFromCtx - исходный access-токен текущего запроса.
func RawTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(contextkeys.TokenKey).(string)
	return token
}
