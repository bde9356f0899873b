package handlers

import (
	"MucosaView/repositories"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"
)

// respondError maps core errors onto the HTTP taxonomy: validation errors
// carry field-level detail as 400, unknown identities are 404, integrity
// violations are 409, a stale version token is 412 so clients can
// retry-with-refetch, and anything else is a logged 500.
func respondError(c *gin.Context, err error) {
	var fieldErrors validation.Errors
	if errors.As(err, &fieldErrors) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
		return
	}

	switch {
	case errors.Is(err, repositories.ErrPatientNotFound),
		errors.Is(err, repositories.ErrVisitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repositories.ErrNoVisits),
		errors.Is(err, repositories.ErrVisitPatientRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repositories.ErrVersionMismatch):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case errors.Is(err, repositories.ErrDNIConflict),
		errors.Is(err, repositories.ErrDuplicatePhoto):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logrus.Error(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
