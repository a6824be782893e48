package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope for failures; Kind and Fields let the
// dashboard pick a message per error class instead of parsing text.
type ErrorResponse struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Kind    ErrorKind         `json:"kind,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	resp := ErrorResponse{
		Status:  false,
		Message: err.Error(),
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		resp.Kind = appErr.Kind
		resp.Fields = appErr.Fields
		resp.Message = appErr.Message
	}
	c.JSON(code, resp)
}

// RespondAppError answers with the status and user-facing message for err's
// kind. Unclassified errors are logged and hidden behind a 500.
func RespondAppError(c *gin.Context, err error) {
	code := HTTPStatus(err)
	if code == http.StatusInternalServerError || code == http.StatusServiceUnavailable {
		ErrorLogger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	}

	resp := ErrorResponse{
		Status:  false,
		Message: UserMessage(err),
		Kind:    KindOf(err),
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		resp.Fields = appErr.Fields
		if appErr.Kind != KindStorage && appErr.Message != "" {
			resp.Message = resp.Message + ": " + appErr.Message
		}
	}
	c.AbortWithStatusJSON(code, resp)
}
