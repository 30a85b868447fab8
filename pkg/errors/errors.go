package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")
	ErrTokenRevoked         = fmt.Errorf("токен отозван")
	ErrTokenIsNotRefresh    = fmt.Errorf("токен не является refresh-токеном")
	ErrTokenIsNotAccess     = fmt.Errorf("refresh-токен нельзя использовать для доступа")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверное имя пользователя или пароль")
	ErrAccountDisabled    = fmt.Errorf("учётная запись отключена")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")
	ErrTooManyAttempts    = fmt.Errorf("слишком много попыток входа, попробуйте позже")

	// Контекст
	ErrPrincipalNotFoundInContext = fmt.Errorf("пользователь не найден в контексте запроса")

	// Общие
	ErrNotFound     = fmt.Errorf("запись не найдена")
	ErrBadRequest   = fmt.Errorf("неверный запрос")
	ErrInvalidState = fmt.Errorf("операция недопустима в текущем статусе")
	ErrConflict     = fmt.Errorf("запись с такими данными уже существует или используется")
	ErrMaintenance  = fmt.Errorf("система на техническом обслуживании")
)

// Машинные коды ошибок для поля code в ответе.
const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountDisabled    = "ACCOUNT_DISABLED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidState       = "INVALID_STATE"
	CodeValidation         = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
	CodeMaintenance        = "MAINTENANCE"
	CodeInternal           = "INTERNAL"
)

type HttpError struct {
	Code    int                    `json:"-"`
	ErrCode string                 `json:"code"`
	Message string                 `json:"message"`
	Err     error                  `json:"-"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details map[string]interface{}) *HttpError {
	_, errCode := statusFor(err)
	if err == nil || errCode == CodeInternal {
		errCode = codeForStatus(code)
	}
	return &HttpError{Code: code, ErrCode: errCode, Message: message, Err: err, Details: details}
}

func NewBadRequestError(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message, ErrBadRequest, nil)
}

func NewValidationError(message string, fields map[string]interface{}) *HttpError {
	return &HttpError{Code: http.StatusBadRequest, ErrCode: CodeValidation, Message: message, Details: fields}
}

func NewInvalidStateError(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message, ErrInvalidState, nil)
}

func NewNotFoundError(message string) *HttpError {
	return NewHttpError(http.StatusNotFound, message, ErrNotFound, nil)
}

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

type classification struct {
	target error
	status int
	code   string
}

var classifications = []classification{
	{ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
	{ErrAccountDisabled, http.StatusUnauthorized, CodeAccountDisabled},
	{ErrTooManyAttempts, http.StatusTooManyRequests, CodeTooManyAttempts},
	{ErrInvalidSigningMethod, http.StatusUnauthorized, CodeUnauthenticated},
	{ErrInvalidToken, http.StatusUnauthorized, CodeUnauthenticated},
	{ErrTokenExpired, http.StatusUnauthorized, CodeUnauthenticated},
	{ErrTokenNotYetValid, http.StatusUnauthorized, CodeUnauthenticated},
	{ErrTokenRevoked, http.StatusUnauthorized, CodeUnauthenticated},
	{ErrTokenIsNotRefresh, http.StatusUnauthorized, CodeUnauthenticated},
	{ErrTokenIsNotAccess, http.StatusUnauthorized, CodeUnauthenticated},
	{ErrEmptyAuthHeader, http.StatusUnauthorized, CodeUnauthenticated},
	{ErrInvalidAuthHeader, http.StatusUnauthorized, CodeUnauthenticated},
	{ErrUnauthorized, http.StatusUnauthorized, CodeUnauthenticated},
	{ErrPrincipalNotFoundInContext, http.StatusUnauthorized, CodeUnauthenticated},
	{ErrForbidden, http.StatusForbidden, CodeForbidden},
	{ErrNotFound, http.StatusNotFound, CodeNotFound},
	{ErrInvalidState, http.StatusBadRequest, CodeInvalidState},
	{ErrBadRequest, http.StatusBadRequest, CodeValidation},
	{ErrConflict, http.StatusConflict, CodeConflict},
	{ErrMaintenance, http.StatusServiceUnavailable, CodeMaintenance},
}

func statusFor(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, CodeInternal
	}
	var invalidInput *InvalidInputError
	if stderrors.As(err, &invalidInput) {
		return http.StatusBadRequest, CodeValidation
	}
	for _, c := range classifications {
		if stderrors.Is(err, c.target) {
			return c.status, c.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusConflict:
		return CodeConflict
	case http.StatusTooManyRequests:
		return CodeTooManyAttempts
	case http.StatusServiceUnavailable:
		return CodeMaintenance
	}
	return CodeInternal
}

// Classify возвращает HTTP-статус, машинный код и сообщение для любой ошибки приложения.
// Для неизвестных ошибок сообщение пустое: текст драйвера наружу не отдаём.
func Classify(err error) (status int, code string, message string) {
	var httpErr *HttpError
	if stderrors.As(err, &httpErr) {
		return httpErr.Code, httpErr.ErrCode, httpErr.Message
	}
	status, code = statusFor(err)
	if code == CodeInternal {
		return status, code, ""
	}
	return status, code, err.Error()
}
