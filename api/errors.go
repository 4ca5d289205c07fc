package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"captionforge/style"
)

// httpStatus maps the error taxonomy onto HTTP codes. Anything outside
// the taxonomy is an internal failure.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, style.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, style.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, style.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, style.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, style.ErrTimeout):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// fail writes the uniform error envelope. Server-side failures are
// logged; caller mistakes are not worth the noise.
func (s *Server) fail(c *gin.Context, err error) {
	code := httpStatus(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(code, gin.H{
		"status":  "error",
		"message": err.Error(),
	})
}
