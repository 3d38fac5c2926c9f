// Package handlers implements the cafe endpoints on top of the query and
// mutation services.
//
// Failures are written as
//
//	{"error": {"<status text>": "<message>"}}
//
// and successful mutations as
//
//	{"response": {"success": "<message>"}}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-cafe-api/internal/http/middleware"
)

// ErrorResponse is the error envelope. Error holds one entry keyed by the
// status text.
type ErrorResponse struct {
	Error map[string]string `json:"error"`
}

// SuccessBody carries the success message of a mutation.
type SuccessBody struct {
	Success string `json:"success" example:"Successfully added Monmouth."`
}

// SuccessResponse wraps SuccessBody under "response".
type SuccessResponse struct {
	Response SuccessBody `json:"response"`
}

// fail aborts with the error envelope. 5xx answers are also logged, with any
// errors recorded on the context.
func fail(c *gin.Context, status int, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Strs("errors", c.Errors.Errors()).
			Msg(msg)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: map[string]string{http.StatusText(status): msg}})
}

// Fail lets the router answer unknown routes and methods with the same
// envelope.
func Fail(c *gin.Context, status int, msg string) { fail(c, status, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func success(c *gin.Context, msg string) {
	ok(c, http.StatusOK, SuccessResponse{Response: SuccessBody{Success: msg}})
}
