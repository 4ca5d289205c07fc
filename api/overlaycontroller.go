package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"captionforge/config"
	"captionforge/render"
	"captionforge/style"
)

func (s *Server) registerOverlayRoutes(r *gin.Engine) {
	r.POST("/overlay/url", s.handleOverlayURL)
	r.POST("/overlay/upload", s.handleOverlayUpload)
}

type overlayRequest struct {
	render.OverlayJob
	ResponseFormat string `json:"response_format"`
}

// handleOverlayURL is the primary overlay path: the source is fetched
// from a URL, styled and returned.
func (s *Server) handleOverlayURL(c *gin.Context) {
	var req overlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", style.ErrInvalidParameter, err))
		return
	}

	outputPath, err := s.engine.RenderOverlay(c.Request.Context(), req.OverlayJob)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.deliver(c, outputPath, req.ResponseFormat)
}

// handleOverlayUpload accepts the file in a multipart form instead of a
// URL. Style overrides and the fine offset arrive as JSON string fields.
func (s *Server) handleOverlayUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		s.fail(c, fmt.Errorf("%w: file: required", style.ErrInvalidParameter))
		return
	}
	if file.Size > config.MaxUploadSize {
		s.fail(c, fmt.Errorf("%w: file: exceeds %d bytes", style.ErrInvalidParameter, config.MaxUploadSize))
		return
	}
	if !render.ValidExtension(file.Filename) {
		s.fail(c, fmt.Errorf("%w: file: unsupported file type", style.ErrInvalidParameter))
		return
	}

	job := render.OverlayJob{
		Text:         c.PostForm("text"),
		Template:     c.PostForm("template"),
		OutputFormat: c.DefaultPostForm("output_format", "same"),
	}
	if raw := c.PostForm("overrides"); raw != "" {
		var ov style.Overrides
		if err := json.Unmarshal([]byte(raw), &ov); err != nil {
			s.fail(c, fmt.Errorf("%w: overrides: invalid JSON", style.ErrInvalidParameter))
			return
		}
		job.Overrides = &ov
	}
	if raw := c.PostForm("fine_offset"); raw != "" {
		var fo style.FineOffset
		if err := json.Unmarshal([]byte(raw), &fo); err != nil {
			s.fail(c, fmt.Errorf("%w: fine_offset: invalid JSON", style.ErrInvalidParameter))
			return
		}
		job.FineOffset = fo
	}

	localPath := filepath.Join(s.tempDir, fmt.Sprintf("upload_%s%s",
		uuid.NewString(), filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, localPath); err != nil {
		s.fail(c, err)
		return
	}
	defer os.Remove(localPath)
	job.LocalPath = localPath

	outputPath, err := s.engine.RenderOverlay(c.Request.Context(), job)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.deliver(c, outputPath, c.DefaultPostForm("response_format", "binary"))
}
