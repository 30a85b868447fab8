package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"paper-system/pkg/api"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/types"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ParseFilterFromQuery разбирает page/pageSize/keyword/sortBy/sortOrder и
// фильтры из allowedFilters. Остальные ключи query игнорируются.
func ParseFilterFromQuery(values url.Values, allowedFilters ...string) types.Filter {
	filterReq := types.Filter{
		Filter:    make(map[string]string),
		Page:      1,
		PageSize:  DefaultPageSize,
		SortOrder: "desc",
	}

	if pageStr := values.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			filterReq.Page = p
		}
	}

	sizeStr := values.Get("pageSize")
	if sizeStr == "" {
		sizeStr = values.Get("limit")
	}
	if sizeStr != "" {
		if l, err := strconv.Atoi(sizeStr); err == nil {
			switch {
			case l < 1:
				filterReq.PageSize = 1
			case l > MaxPageSize:
				filterReq.PageSize = MaxPageSize
			default:
				filterReq.PageSize = l
			}
		}
	}

	filterReq.Search = strings.TrimSpace(values.Get("keyword"))
	if filterReq.Search == "" {
		filterReq.Search = strings.TrimSpace(values.Get("search"))
	}

	filterReq.SortBy = values.Get("sortBy")
	if strings.EqualFold(values.Get("sortOrder"), "asc") {
		filterReq.SortOrder = "asc"
	}

	for _, key := range allowedFilters {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			filterReq.Filter[key] = v
		}
	}

	return filterReq
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return api.SuccessOne(ctx, code, message, body)
}

// ErrorResponse логирует ошибку и отдаёт её в едином конверте.
// Ошибки валидатора превращаются в VALIDATION_ERROR с сообщением по каждому полю.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]interface{}, len(validationErrors))
		for _, e := range validationErrors {
			fields[jsonFieldName(e)] = fieldMessage(e)
		}
		return api.ErrorResponse(c, apperrors.NewValidationError("Ошибка валидации", fields))
	}

	status, _, _ := apperrors.Classify(err)
	if status >= 500 {
		logger.Error("Unexpected Error",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
	} else {
		logger.Debug("HTTP Error", zap.Int("code", status), zap.Error(err))
	}
	return api.ErrorResponse(c, err)
}

func jsonFieldName(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Поле обязательно для заполнения"
	case "max":
		return fmt.Sprintf("Максимальная длина: %s", e.Param())
	case "min":
		return fmt.Sprintf("Минимальная длина: %s", e.Param())
	case "email":
		return "Неверный формат email"
	case "oneof":
		return fmt.Sprintf("Допустимые значения: %s", e.Param())
	}
	return fmt.Sprintf("Поле не прошло проверку '%s'", e.Tag())
}

// ParseIDParam читает положительный числовой параметр пути.
func ParseIDParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("Неверный параметр %s", name))
	}
	return id, nil
}

// ContentDisposition - заголовок для скачивания: ASCII-имя и filename* в UTF-8 (RFC 5987).
func ContentDisposition(fileName string) string {
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		asciiFileName(fileName), url.PathEscape(fileName))
}

func asciiFileName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r == '"' || r == '\\':
			sb.WriteByte('_')
		case r >= 0x20 && r < 0x7f:
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "download"
	}
	return sb.String()
}
