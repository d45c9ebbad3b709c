// Package httpx holds the HTTP envelope and middleware shared by the API.
package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeValidation = "ERR_VALIDATION"
	CodeNotFound   = "ERR_NOT_FOUND"
	CodeBadRequest = "ERR_BAD_REQUEST"
	CodeInternal   = "ERR_INTERNAL"
)

// Response is the envelope of every API reply.
// swagger:model Response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"    example:"ERR_NOT_FOUND"`
	Message string `json:"message" example:"product not found"`
}

func OK(data any) Response { return Response{Success: true, Data: data} }

func Fail(code, message string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message}}
}

var statusByCode = map[string]int{
	CodeValidation: http.StatusBadRequest,
	CodeBadRequest: http.StatusBadRequest,
	CodeNotFound:   http.StatusNotFound,
	CodeInternal:   http.StatusInternalServerError,
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func JSON(c *gin.Context, status int, data any) { c.JSON(status, OK(data)) }

// Error writes a failed envelope. Internal errors are attached to the gin
// context for the access log and replaced by a generic message.
func Error(c *gin.Context, code string, err error) {
	msg := err.Error()
	if code == CodeInternal {
		_ = c.Error(err)
		msg = "internal error"
	}
	c.JSON(StatusFor(code), Fail(code, msg))
}

// Ack is the reply of idempotent deletes: always 200, success reports
// whether something was removed.
func Ack(c *gin.Context, removed bool, notFound string) {
	if removed {
		c.JSON(http.StatusOK, Response{Success: true})
		return
	}
	c.JSON(http.StatusOK, Fail(CodeNotFound, notFound))
}
