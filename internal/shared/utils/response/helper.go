package response

import (
	"errors"
	"net/http"

	"organizer/internal/shared/apperror"
	"organizer/internal/shared/constants"
	"organizer/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:        status,
		StatusCode:    code,
		RequestID:     c.GetString(constants.ContextKeyRequestID),
		CorrelationID: c.GetString(constants.ContextKeyCorrelationID),
		Message:       message,
		Data:          data,
		Errors:        errors,
	})
}

func RespondSuccess(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, "success", code, message, data, nil)
}

// RespondError renders err in the error envelope. Uncoded errors are logged and
// surfaced as INTERNAL_ERROR with a generic message.
func RespondError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		logger.GetDefault().ErrorWithContext(c.Request.Context(), "Request failed", err, map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(constants.ContextKeyRequestID),
			"error_code": string(appErr.Code),
		})
	}

	retryable := appErr.Retryable()
	c.JSON(appErr.Status, StandardApiResponse{
		Status:        "error",
		StatusCode:    appErr.Status,
		RequestID:     c.GetString(constants.ContextKeyRequestID),
		CorrelationID: c.GetString(constants.ContextKeyCorrelationID),
		ErrorCode:     string(appErr.Code),
		Message:       appErr.Message,
		Retryable:     &retryable,
		Errors:        appErr.Details,
	})
}

// AbortWithError renders err and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	RespondError(c, err)
	c.Abort()
}

// BindError converts a gin binding failure into a coded error, keeping
// per-field messages when the validator produced them.
func BindError(err error) *apperror.Error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return apperror.New(apperror.CodeValidation, http.StatusBadRequest, "Invalid request body").
			WithDetails(FieldErrors(validationErrors))
	}
	return apperror.Wrap(err, apperror.CodeBadRequest, http.StatusBadRequest, "Invalid request body")
}
