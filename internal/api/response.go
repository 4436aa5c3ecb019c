package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MsgReportFailed is shown for any failure of the scoring core.
const MsgReportFailed = "could not generate your report"

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details []string    `json:"details,omitempty"`
}

func errorBody(msg string) Response {
	return Response{Success: false, Error: msg}
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func fail(c *gin.Context, code int, msg string, details ...string) {
	c.AbortWithStatusJSON(code, Response{Success: false, Error: msg, Details: details})
}
