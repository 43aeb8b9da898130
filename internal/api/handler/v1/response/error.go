package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	Err        error  `json:"-"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return e.Err.Error()
}

// RenderErr writes err as JSON and aborts the request. Server errors are
// logged with their cause and rendered without it.
func RenderErr(ctx *gin.Context, err *Err) {
	if err.StatusCode >= http.StatusInternalServerError {
		zap.L().Error(err.Message,
			zap.String("requestID", requestid.Get(ctx)),
			zap.String("path", ctx.FullPath()),
			zap.Error(err.Err),
		)
	}

	ctx.AbortWithStatusJSON(err.StatusCode, err)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusBadRequest,
		Message:    "Bad request",
		Details:    err.Error(),
	}
}

// ErrInvalidState is a precondition failure on the current state of a resource.
func ErrInvalidState(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusBadRequest,
		Message:    err.Error(),
	}
}

func ErrNotFound(resource, field string, value any) *Err {
	return &Err{
		Err:        fmt.Errorf("%s with %s %v not found", resource, field, value),
		StatusCode: http.StatusNotFound,
		Message:    "Resource not found",
		Details:    fmt.Sprintf("%s with %s %v not found", resource, field, value),
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusForbidden,
		Message:    "Permission denied",
		Details:    err.Error(),
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusConflict,
		Message:    "Conflict",
		Details:    err.Error(),
	}
}

func ErrPayloadTooLarge(limit int64) *Err {
	return &Err{
		Err:        fmt.Errorf("upload exceeds %d bytes", limit),
		StatusCode: http.StatusRequestEntityTooLarge,
		Message:    "Payload too large",
		Details:    fmt.Sprintf("upload exceeds %d bytes", limit),
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal server error",
	}
}

func ErrResourceNotFound(err error) *Err {
	return &Err{
		Err:        err,
		StatusCode: http.StatusNotFound,
		Message:    "Resource not found",
		Details:    err.Error(),
	}
}
