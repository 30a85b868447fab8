package utils

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"paper-system/internal/authz"
	"paper-system/pkg/contextkeys"
	apperrors "paper-system/pkg/errors"
)

func ContextWithTimeout(ctx echo.Context, timeout int) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request().Context(), time.Duration(timeout)*time.Second)
}

func PrincipalFromCtx(ctx context.Context) (*authz.Principal, error) {
	principal, ok := ctx.Value(contextkeys.PrincipalKey).(*authz.Principal)
	if !ok || principal == nil {
		return nil, apperrors.ErrPrincipalNotFoundInContext
	}
	return principal, nil
}

func ContextWithPrincipal(ctx context.Context, p *authz.Principal) context.Context {
	return context.WithValue(ctx, contextkeys.PrincipalKey, p)
}

// Detached - фоновый контекст с таймаутом для best-effort задач после ответа.
func Detached(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ClientMeta - адрес и user-agent клиента для журнала операций.
type ClientMeta struct {
	IP        string
	UserAgent string
}

func ContextWithClient(ctx context.Context, meta ClientMeta) context.Context {
	return context.WithValue(ctx, contextkeys.ClientKey, meta)
}

func ClientFromCtx(ctx context.Context) ClientMeta {
	meta, _ := ctx.Value(contextkeys.ClientKey).(ClientMeta)
	return meta
}
