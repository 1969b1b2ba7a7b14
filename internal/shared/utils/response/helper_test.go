package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"organizer/internal/shared/apperror"
	"organizer/internal/shared/constants"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/x", nil)
	c.Set(constants.ContextKeyRequestID, "req-42")
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) StandardApiResponse {
	t.Helper()
	var body StandardApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRespondSuccess(t *testing.T) {
	c, w := testContext()
	RespondSuccess(c, http.StatusOK, "ok", gin.H{"split": nil})

	body := decode(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "req-42", body.RequestID)
	assert.Nil(t, body.Retryable)
	assert.Empty(t, body.ErrorCode)
}

func TestRespondError(t *testing.T) {
	t.Run("coded error keeps its status", func(t *testing.T) {
		c, w := testContext()
		RespondError(c, apperror.Conflict(apperror.CodeSplitLocked, "Split is locked"))

		body := decode(t, w)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "error", body.Status)
		assert.Equal(t, "SPLIT_LOCKED", body.ErrorCode)
		assert.Equal(t, "Split is locked", body.Message)
		require.NotNil(t, body.Retryable)
		assert.False(t, *body.Retryable)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		c, w := testContext()
		RespondError(c, errors.New("connection reset"))

		body := decode(t, w)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "INTERNAL_ERROR", body.ErrorCode)
		assert.NotContains(t, w.Body.String(), "connection reset")
		require.NotNil(t, body.Retryable)
		assert.True(t, *body.Retryable)
	})
}

func TestAbortWithError(t *testing.T) {
	c, w := testContext()
	AbortWithError(c, apperror.NotFound("Booking not found"))

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type sample struct {
	Name  string `validate:"required"`
	Count int    `validate:"min=2"`
}

func TestBindError(t *testing.T) {
	err := validator.New().Struct(sample{Count: 1})
	require.Error(t, err)

	appErr := BindError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, map[string]string{
		"Name":  "This field is required",
		"Count": "Minimum is 2",
	}, appErr.Details)

	appErr = BindError(json.Unmarshal([]byte("{"), &struct{}{}))
	assert.Equal(t, apperror.CodeBadRequest, appErr.Code)
	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, appErr, &syntaxErr)
}
