package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the body of every non-2xx response.
type Err struct {
	Err            error          `json:"-"`
	HTTPStatusCode int            `json:"-"`
	StatusText     string         `json:"status"`
	Message        string         `json:"message"`
	Meta           map[string]any `json:"meta,omitempty"`
}

func (e *Err) Error() string {
	return e.Message
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", ctx.FullPath()),
			zap.Int("status", e.HTTPStatusCode),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func newErr(status int, err error, message string) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
		Message:        message,
	}
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, err, err.Error())
}

func ErrUnauthorized(err error) *Err {
	return newErr(http.StatusUnauthorized, err, err.Error())
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, err, err.Error())
}

func ErrNotFound(resource, key string, value any) *Err {
	err := fmt.Errorf("%s with %s %v not found", resource, key, value)
	return newErr(http.StatusNotFound, err, err.Error())
}

// ErrResourceNotFound renders a lookup failure whose key is already in err's message.
func ErrResourceNotFound(err error) *Err {
	return newErr(http.StatusNotFound, err, err.Error())
}

// ErrConflict carries meta so clients can show the numbers behind the refusal.
func ErrConflict(err error, meta map[string]any) *Err {
	e := newErr(http.StatusConflict, err, err.Error())
	e.Meta = meta
	return e
}

func ErrInternalServerError(err error) *Err {
	if err == nil {
		err = errors.New("unknown error")
	}
	return newErr(http.StatusInternalServerError, err, "internal server error")
}
