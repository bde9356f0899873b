package handlers

import (
	"MucosaView/models"
	"MucosaView/services"
	"MucosaView/utils"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type IntakeHandler struct {
	service *services.IntakeService
}

func NewIntakeHandler(service *services.IntakeService) *IntakeHandler {
	return &IntakeHandler{service: service}
}

// Register handles POST /api/mucosa/registro: patient upsert plus the first
// visit of the intake event.
func (h *IntakeHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateVitals(&req.Obstetric); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// AttachPhoto handles POST /api/mucosa/registro/:dni/fotos. Expects
// multipart form-data with a required file and type, an optional index
// (default 1), and optional original_name / content_type / sha256 overrides.
func (h *IntakeHandler) AttachPhoto(c *gin.Context) {
	dni := strings.TrimSpace(c.Param("dni"))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"file": "this field is required"})
		return
	}

	index := 1
	if raw := c.PostForm("index"); raw != "" {
		index, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"index": "must be an integer >= 1"})
			return
		}
	}

	photoType := c.PostForm("type")
	if err := utils.ValidatePhotoUpload(photoType, index); err != nil {
		respondError(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"file": "could not read upload"})
		return
	}
	defer file.Close()

	originalName := c.PostForm("original_name")
	if originalName == "" {
		originalName = fileHeader.Filename
	}
	contentType := c.PostForm("content_type")
	if contentType == "" {
		contentType = fileHeader.Header.Get("Content-Type")
	}

	result, err := h.service.AttachPhoto(c.Request.Context(), dni, &services.PhotoUpload{
		File:         file,
		DeclaredSize: fileHeader.Size,
		Type:         photoType,
		Index:        index,
		OriginalName: originalName,
		ContentType:  contentType,
		SHA256:       c.PostForm("sha256"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// AddVisit handles POST /api/mucosa/registro/:dni/visita: a follow-up visit
// with a server-assigned sequence number.
func (h *IntakeHandler) AddVisit(c *gin.Context) {
	dni := strings.TrimSpace(c.Param("dni"))

	var req models.AddVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateVitals(&req.Obstetric); err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.AddVisit(c.Request.Context(), dni, &req.Obstetric)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
