package api

import (
	"net/http"
	"sync/atomic"

	"github.com/labstack/echo/v4"

	apperrors "paper-system/pkg/errors"
)

type Response[T any] struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    T                      `json:"data,omitempty"`
	Code    string                 `json:"code,omitempty"`
	Errors  map[string]interface{} `json:"errors,omitempty"`
	Detail  string                 `json:"detail,omitempty"`
}

type PaginationMeta struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Total      uint64 `json:"total"`
	TotalPages int    `json:"totalPages"`
}

type ListBody[T any] struct {
	List       []T             `json:"list"`
	Pagination *PaginationMeta `json:"pagination"`
}

var exposeInternalErrors atomic.Bool

// SetExposeInternalErrors включает текст внутренних ошибок в ответе (только не в production).
func SetExposeInternalErrors(v bool) { exposeInternalErrors.Store(v) }

func NewPaginationMeta(total uint64, page, pageSize int) *PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + uint64(pageSize) - 1) / uint64(pageSize))
	}
	return &PaginationMeta{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

// SuccessOne - для возврата одного объекта
func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SuccessList[T any](c echo.Context, message string, list []T, total uint64, page, pageSize int) error {
	if list == nil {
		list = make([]T, 0)
	}
	return c.JSON(http.StatusOK, Response[ListBody[T]]{
		Success: true,
		Message: message,
		Data: ListBody[T]{
			List:       list,
			Pagination: NewPaginationMeta(total, page, pageSize),
		},
	})
}

func ErrorResponse(c echo.Context, err error) error {
	status, code, msg := apperrors.Classify(err)
	resp := Response[any]{Success: false, Code: code, Message: msg}

	if httpErr, ok := err.(*apperrors.HttpError); ok && len(httpErr.Details) > 0 {
		resp.Errors = httpErr.Details
	}
	if code == apperrors.CodeInternal {
		resp.Message = "Внутренняя ошибка сервера"
		if exposeInternalErrors.Load() {
			resp.Detail = err.Error()
		}
	}
	return c.JSON(status, resp)
}
