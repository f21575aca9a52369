package server

import (
	"net/http"
	"strconv"

	"snaphunt/internal/db"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

type adminPackRequest struct {
	Slug        string  `json:"slug" binding:"required,slug"`
	Name        string  `json:"name" binding:"required,max=64"`
	Description string  `json:"description" binding:"max=512"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	RadiusKM    float64 `json:"radius_km" binding:"min=0"`
	Area        string  `json:"area" binding:"max=128"`
}

type adminPromptRequest struct {
	Text string `json:"text" binding:"required,prompt"`
}

type packURI struct {
	Slug string `uri:"slug" binding:"required"`
}

var adminPackMessages = bindMessages{
	"Slug": {
		"required": "slug is required",
		"slug":     "slug may only contain lowercase letters, digits, - and _",
	},
	"Name": {"required": "name is required"},
}

var adminPromptMessages = bindMessages{
	"Text": {
		"required": "prompt text is required",
		"prompt":   "prompt text is invalid",
	},
}

func (s *Server) adminHandler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	registerValidators()
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/admin/api")
	api.GET("/packs", s.handleAdminListPacks)
	api.POST("/packs", s.handleAdminCreatePack)
	api.GET("/packs/:slug/prompts", s.handleAdminListPrompts)
	api.POST("/packs/:slug/prompts", s.handleAdminCreatePrompt)
	api.DELETE("/packs/:slug/prompts/:id", s.handleAdminDeletePrompt)
	return router
}

func (s *Server) handleAdminListPacks(c *gin.Context) {
	packs, err := s.content.ListPacks()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load packs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"packs": packs})
}

func (s *Server) handleAdminCreatePack(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}
	var req adminPackRequest
	if !bindJSON(c, &req, adminPackMessages, "invalid pack") {
		return
	}
	record := db.Pack{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Lat:         req.Lat,
		Lon:         req.Lon,
		RadiusKM:    req.RadiusKM,
		Area:        req.Area,
	}
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save pack"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "pack already exists"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slug": record.Slug})
}

func (s *Server) handleAdminListPrompts(c *gin.Context) {
	var uri packURI
	if !bindURI(c, &uri) {
		return
	}
	prompts, err := s.content.ListPrompts(uri.Slug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pack not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompts": prompts})
}

func (s *Server) handleAdminCreatePrompt(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}
	var uri packURI
	if !bindURI(c, &uri) {
		return
	}
	var req adminPromptRequest
	if !bindJSON(c, &req, adminPromptMessages, "invalid prompt") {
		return
	}
	text, err := validatePrompt(req.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry := db.Prompt{Pack: uri.Slug, Text: text}
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save prompt"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "prompt already exists in this pack"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": entry.ID, "text": entry.Text})
}

func (s *Server) handleAdminDeletePrompt(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}
	var uri packURI
	if !bindURI(c, &uri) {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.Status(http.StatusNotFound)
		return
	}
	result := s.db.Where("pack = ?", uri.Slug).Delete(&db.Prompt{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete prompt"})
		return
	}
	if result.RowsAffected == 0 {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
