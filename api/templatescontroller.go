package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"captionforge/style"
	"captionforge/templates"
)

func (s *Server) registerTemplateRoutes(r *gin.Engine) {
	r.GET("/templates", s.handleListTemplates)
	r.POST("/templates", s.handleCreateTemplate)
	r.GET("/templates/:name", s.handleGetTemplate)
	r.PUT("/templates/:name", s.handleUpdateTemplate)
	r.DELETE("/templates/:name", s.handleDeleteTemplate)
	r.POST("/templates/:name/duplicate", s.handleDuplicateTemplate)
}

func (s *Server) handleListTemplates(c *gin.Context) {
	list, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"templates": list,
		"count":     len(list),
	})
}

func (s *Server) handleCreateTemplate(c *gin.Context) {
	var t templates.Template
	if err := c.ShouldBindJSON(&t); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", style.ErrInvalidParameter, err))
		return
	}

	created, err := s.store.Create(c.Request.Context(), t)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetTemplate(c *gin.Context) {
	t, err := s.store.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleUpdateTemplate(c *gin.Context) {
	var ov style.Overrides
	if err := c.ShouldBindJSON(&ov); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", style.ErrInvalidParameter, err))
		return
	}

	updated, err := s.store.Update(c.Request.Context(), c.Param("name"), &ov)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteTemplate(c *gin.Context) {
	if err := s.store.Delete(c.Request.Context(), c.Param("name")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("template %q deleted", c.Param("name")),
	})
}

type duplicateRequest struct {
	NewName string `json:"new_name"`
}

func (s *Server) handleDuplicateTemplate(c *gin.Context) {
	var req duplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", style.ErrInvalidParameter, err))
		return
	}

	dup, err := s.store.Duplicate(c.Request.Context(), c.Param("name"), req.NewName)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dup)
}
