package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/myaralbdany4-glitch/MoodLens/internal/requestdata"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.Identity == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.New("User not found"))
		return
	}
	RespondOK(c, rd.Identity)
}
