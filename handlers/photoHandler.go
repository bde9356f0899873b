package handlers

import (
	"MucosaView/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type PhotoHandler struct {
	service *services.PhotoService
}

func NewPhotoHandler(service *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{service: service}
}

// ProbeByHash handles HEAD /api/media/by-hash/:sha256. A 200 means the bytes
// were already ingested somewhere, so the client can skip the upload.
func (h *PhotoHandler) ProbeByHash(c *gin.Context) {
	exists, err := h.service.ExistsByHash(c.Request.Context(), c.Param("sha256"))
	if err != nil {
		respondError(c, err)
		return
	}
	if exists {
		c.Status(http.StatusOK)
		return
	}
	c.Status(http.StatusNotFound)
}

func (h *PhotoHandler) ListVisitPhotos(c *gin.Context) {
	photos, err := h.service.ListByVisit(c.Request.Context(), c.Param("visit_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, photos)
}
