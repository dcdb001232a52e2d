package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myaralbdany4-glitch/MoodLens/internal/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError writes a classified service error as-is; anything else
// becomes a 500 with the supplied fallback code.
func RespondAPIError(c *gin.Context, err error, fallbackCode string) {
	if apiErr := apierr.From(err); apiErr != nil {
		RespondError(c, apiErr.Status, apiErr.Code, apiErr.Err)
		return
	}
	RespondError(c, http.StatusInternalServerError, fallbackCode, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
