package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"captionforge/render"
	"captionforge/style"
)

func (s *Server) registerMergeRoutes(r *gin.Engine) {
	r.POST("/merge", s.handleMerge)
}

type mergeRequest struct {
	render.MergeJob
	ResponseFormat string `json:"response_format"`
}

// handleMerge sequences 2-10 independently styled clips into one video.
func (s *Server) handleMerge(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", style.ErrInvalidParameter, err))
		return
	}

	outputPath, err := s.engine.RenderMerge(c.Request.Context(), req.MergeJob)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.deliver(c, outputPath, req.ResponseFormat)
}
