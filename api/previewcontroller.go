package api

import (
	"bytes"
	"fmt"
	"image/png"
	"net/http"

	"github.com/gin-gonic/gin"

	"captionforge/render"
	"captionforge/style"
)

func (s *Server) registerPreviewRoutes(r *gin.Engine) {
	r.POST("/preview", s.handlePreview)
}

// handlePreview rasterizes a styled text block over a blank frame and
// returns it as PNG, bypassing the encoder entirely.
func (s *Server) handlePreview(c *gin.Context) {
	var job render.PreviewJob
	if err := c.ShouldBindJSON(&job); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", style.ErrInvalidParameter, err))
		return
	}

	img, err := s.engine.RenderPreview(c.Request.Context(), job)
	if err != nil {
		s.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
