// Package api exposes the render engine over HTTP: overlay, merge and
// collage pipelines plus template CRUD, with binary or URL delivery.
package api

import (
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"captionforge/render"
	"captionforge/storage"
	"captionforge/templates"
)

// Server holds the shared state every handler needs.
type Server struct {
	engine   *render.Engine
	store    templates.Store
	uploader *storage.Uploader
	logger   *log.Logger
	tempDir  string
}

// NewServer wires an API server. uploader may be nil; URL delivery then
// responds 503.
func NewServer(engine *render.Engine, store templates.Store, uploader *storage.Uploader, tempDir string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		engine:   engine,
		store:    store,
		uploader: uploader,
		logger:   logger,
		tempDir:  tempDir,
	}
}

// Router constructs a gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Set(startTimeKey, time.Now())
		c.Next()
	})
	r.MaxMultipartMemory = 32 << 20

	r.GET("/", s.handleIndex)
	r.GET("/health", s.handleHealth)

	s.registerOverlayRoutes(r)
	s.registerMergeRoutes(r)
	s.registerCollageRoutes(r)
	s.registerTemplateRoutes(r)
	s.registerPreviewRoutes(r)
	return r
}

// handleIndex documents the surface for anyone poking the root URL.
func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "captionforge",
		"endpoints": gin.H{
			"POST /overlay/url":                "Overlay styled text on an image or video from a URL",
			"POST /overlay/upload":             "Overlay styled text on an uploaded file",
			"POST /merge":                      "Merge 2-10 independently styled clips",
			"POST /collage/grid":               "Compose a 9-image grid collage video",
			"POST /collage/overlap":            "Compose an 8-image overlap collage video",
			"POST /preview":                    "Rasterize a styled text block over a blank frame",
			"GET /templates":                   "List style templates",
			"POST /templates":                  "Create a style template",
			"GET /templates/:name":             "Fetch a style template",
			"PUT /templates/:name":             "Update a style template",
			"DELETE /templates/:name":          "Delete a style template",
			"POST /templates/:name/duplicate":  "Duplicate a style template",
			"GET /health":                      "Service health",
		},
	})
}

// handleHealth reports whether the encoder binary is reachable.
func (s *Server) handleHealth(c *gin.Context) {
	ffmpegAvailable := true
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		ffmpegAvailable = false
	}

	status := "healthy"
	code := http.StatusOK
	if !ffmpegAvailable {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":           status,
		"ffmpeg_available": ffmpegAvailable,
		"font_loaded":      s.engine.FontLoaded(),
		"storage_enabled":  s.uploader.Enabled(),
	})
}

// deliver sends a finished render either as the binary or as a download
// URL, cleaning up the local file in both cases.
func (s *Server) deliver(c *gin.Context, outputPath, responseFormat string) {
	name := filepath.Base(outputPath)

	if responseFormat == "url" {
		defer os.Remove(outputPath)

		if !s.uploader.Enabled() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "error",
				"message": "object storage is not configured, URL delivery unavailable",
			})
			return
		}
		url, err := s.uploader.Upload(c.Request.Context(), outputPath, name)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":          "success",
			"filename":        name,
			"download_url":    url,
			"processing_time": s.elapsed(c),
		})
		return
	}

	c.FileAttachment(outputPath, name)
	os.Remove(outputPath)
}

const startTimeKey = "request_start"

// elapsed returns seconds since the request entered the router.
func (s *Server) elapsed(c *gin.Context) float64 {
	if v, ok := c.Get(startTimeKey); ok {
		if start, ok := v.(time.Time); ok {
			return time.Since(start).Seconds()
		}
	}
	return 0
}
