package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "paper-system/pkg/errors"
)

func TestParseFilterFromQuery_Defaults(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{})

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.PageSize)
	assert.Equal(t, "desc", f.SortOrder)
	assert.Empty(t, f.SortBy)
	assert.Empty(t, f.Filter)
	assert.Equal(t, uint64(0), f.Offset())
}

func TestParseFilterFromQuery_PageSizeClamp(t *testing.T) {
	cases := map[string]int{
		"0":    1,
		"-5":   1,
		"1":    1,
		"50":   50,
		"100":  100,
		"1000": MaxPageSize,
		"abc":  DefaultPageSize,
	}
	for raw, want := range cases {
		f := ParseFilterFromQuery(url.Values{"pageSize": {raw}})
		assert.Equal(t, want, f.PageSize, "pageSize=%s", raw)
	}
}

func TestParseFilterFromQuery_FiltersAndSort(t *testing.T) {
	q := url.Values{
		"page":          {"3"},
		"pageSize":      {"20"},
		"keyword":       {"  graph  "},
		"sortBy":        {"publish_year"},
		"sortOrder":     {"ASC"},
		"status":        {"pending"},
		"department_id": {"2"},
		"password":      {"x"},
	}
	f := ParseFilterFromQuery(q, "status", "department_id", "type")

	assert.Equal(t, "graph", f.Search)
	assert.Equal(t, "publish_year", f.SortBy)
	assert.Equal(t, "asc", f.SortOrder)
	assert.Equal(t, map[string]string{"status": "pending", "department_id": "2"}, f.Filter)
	assert.Equal(t, uint64(40), f.Offset())
	assert.Equal(t, uint64(20), f.Limit())

	_, ok := f.Get("type")
	assert.False(t, ok)
}

func TestContentDisposition(t *testing.T) {
	h := ContentDisposition("論文 final.pdf")

	assert.Contains(t, h, `attachment; filename="`)
	assert.Contains(t, h, `filename="__ final.pdf"`)
	assert.Contains(t, h, "filename*=UTF-8''%E8%AB%96%E6%96%87%20final.pdf")

	assert.Equal(t, `attachment; filename="a_b.pdf"; filename*=UTF-8''a%22b.pdf`, ContentDisposition(`a"b.pdf`))
}

type validatedDTO struct {
	Title string `json:"title" validate:"required,max=5"`
	Type  string `json:"type" validate:"required,paper_type"`
}

func TestErrorResponse_ValidationFields(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	verr := v.Validate(&validatedDTO{Title: "too long title", Type: "book"})
	require.Error(t, verr)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	require.NoError(t, ErrorResponse(c, verr, zap.NewNop()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, apperrors.CodeValidation, body["code"])

	fields := body["errors"].(map[string]interface{})
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "type")
}

func TestErrorResponse_Sentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.ErrNotFound, http.StatusNotFound, apperrors.CodeNotFound},
		{apperrors.ErrInvalidState, http.StatusBadRequest, apperrors.CodeInvalidState},
		{apperrors.ErrForbidden, http.StatusForbidden, apperrors.CodeForbidden},
		{apperrors.ErrTooManyAttempts, http.StatusTooManyRequests, apperrors.CodeTooManyAttempts},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, apperrors.CodeInternal},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		require.NoError(t, ErrorResponse(c, tc.err, zap.NewNop()))
		assert.Equal(t, tc.status, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body["code"])
		if tc.code == apperrors.CodeInternal {
			assert.NotContains(t, rec.Body.String(), "connection refused")
		}
	}
}
