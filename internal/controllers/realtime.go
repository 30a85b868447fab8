package controllers

import (
	"net/http"
	"slices"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paper-system/pkg/utils"
	"paper-system/pkg/websocket"
)

type RealtimeController struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
	logger   *zap.Logger
}

func NewRealtimeController(hub *websocket.Hub, allowedOrigins []string, logger *zap.Logger) *RealtimeController {
	return &RealtimeController{
		hub: hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: logger,
	}
}

// Serve открывает WebSocket для текущего пользователя. Токен проверен middleware AuthQuery.
func (ctrl *RealtimeController) Serve(c echo.Context) error {
	principal, err := utils.PrincipalFromCtx(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	conn, err := ctrl.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		ctrl.logger.Warn("WebSocket: не удалось установить соединение", zap.Error(err))
		return nil
	}

	client := websocket.NewClient(ctrl.hub, conn, principal.ID)
	if !ctrl.hub.Register(client) {
		_ = conn.Close()
		return nil
	}
	go client.WritePump()
	go client.ReadPump()

	ctrl.logger.Info("WebSocket: клиент подключен", zap.Uint64("userID", principal.ID))
	return nil
}
