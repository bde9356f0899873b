package handlers

import (
	"MucosaView/models"
	"MucosaView/services"
	"MucosaView/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type VisitHandler struct {
	service *services.VisitService
}

func NewVisitHandler(service *services.VisitService) *VisitHandler {
	return &VisitHandler{service: service}
}

// visitResponse adds the read-time derived gestational age to the stored
// visit fields.
type visitResponse struct {
	*models.Visit
	GestationalWeeks *int `json:"gestational_weeks"`
}

func newVisitResponse(v *models.Visit) visitResponse {
	return visitResponse{Visit: v, GestationalWeeks: v.GestationalWeeks(time.Now())}
}

// GetVisit handles GET /api/visits/:visit_id and surfaces the current
// version token as an ETag so callers can pipeline conditional writes.
func (h *VisitHandler) GetVisit(c *gin.Context) {
	visit, err := h.service.GetByID(c.Request.Context(), c.Param("visit_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("ETag", visit.VersionToken())
	c.JSON(http.StatusOK, newVisitResponse(visit))
}

// PutVisit handles PUT /api/visits/:visit_id. An existing visit is updated
// only when the If-Match header matches the stored version token; a missing
// visit is created under the supplied id.
func (h *VisitHandler) PutVisit(c *gin.Context) {
	var payload models.VisitUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateVisitUpdate(&payload); err != nil {
		respondError(c, err)
		return
	}

	visit, created, err := h.service.UpsertByID(
		c.Request.Context(),
		c.Param("visit_id"),
		c.GetHeader("If-Match"),
		&payload,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.Header("ETag", visit.VersionToken())
	c.JSON(status, newVisitResponse(visit))
}
