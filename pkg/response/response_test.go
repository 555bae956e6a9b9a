package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/clubsphere/clubsphere/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	Success(ctx, http.StatusCreated, gin.H{"message": "ok"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Nil(t, resp.Error)
}

func TestSuccessWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	SuccessWithMeta(ctx, http.StatusOK, []string{"a", "b"}, NewMeta(1, 10, 21))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	require.Equal(t, int64(21), resp.Meta.Total)
	require.Equal(t, 3, resp.Meta.TotalPages)
}

func TestNewMetaZeroPageSize(t *testing.T) {
	require.Equal(t, 0, NewMeta(1, 0, 5).TotalPages)
	require.Equal(t, 0, NewMeta(1, 20, 0).TotalPages)
	require.Equal(t, 1, NewMeta(1, 20, 20).TotalPages)
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	Attachment(ctx, "logs.csv", "text/csv; charset=utf-8", []byte("a,b\n"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "attachment; filename=logs.csv", rec.Header().Get("Content-Disposition"))
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "a,b\n", rec.Body.String())
}

func TestErrorWithAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	Error(ctx, appErrors.ErrForbidden)
	require.Equal(t, appErrors.ErrForbidden.StatusCode, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	require.Equal(t, appErrors.ErrForbidden.Code, resp.Error.Code)
}

func TestErrorWithGenericError(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	Error(ctx, errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestErrorCarriesValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	Error(ctx, appErrors.NewValidation("name is required", []string{"name"}))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	require.Equal(t, []string{"name"}, resp.Error.Fields)
}
