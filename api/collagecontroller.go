package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"captionforge/render"
	"captionforge/style"
)

func (s *Server) registerCollageRoutes(r *gin.Engine) {
	r.POST("/collage/grid", s.handleCollageGrid)
	r.POST("/collage/overlap", s.handleCollageOverlap)
}

type gridCollageRequest struct {
	render.GridCollageJob
	ResponseFormat string `json:"response_format"`
}

type overlapCollageRequest struct {
	render.OverlapCollageJob
	ResponseFormat string `json:"response_format"`
}

// handleCollageGrid composes the nine-image grid variant.
func (s *Server) handleCollageGrid(c *gin.Context) {
	var req gridCollageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", style.ErrInvalidParameter, err))
		return
	}

	outputPath, err := s.engine.RenderCollageGrid(c.Request.Context(), req.GridCollageJob)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.deliver(c, outputPath, req.ResponseFormat)
}

// handleCollageOverlap composes the eight-slot overlap variant.
func (s *Server) handleCollageOverlap(c *gin.Context) {
	var req overlapCollageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", style.ErrInvalidParameter, err))
		return
	}

	outputPath, err := s.engine.RenderCollageOverlap(c.Request.Context(), req.OverlapCollageJob)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.deliver(c, outputPath, req.ResponseFormat)
}
