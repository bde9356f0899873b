package controllers

import (
	"MucosaView/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRecordRoutes registers the intake, patient, visit and media routes.
func SetupRecordRoutes(
	router *gin.Engine,
	intakeHandler *handlers.IntakeHandler,
	patientHandler *handlers.PatientHandler,
	visitHandler *handlers.VisitHandler,
	photoHandler *handlers.PhotoHandler,
) {
	api := router.Group("/api")

	// Intake operations used by the screening app
	api.POST("/mucosa/registro", intakeHandler.Register)
	api.POST("/mucosa/registro/:dni/fotos", intakeHandler.AttachPhoto)
	api.POST("/mucosa/registro/:dni/visita", intakeHandler.AddVisit)

	// Pre-upload dedup probe
	api.HEAD("/media/by-hash/:sha256", photoHandler.ProbeByHash)

	// Resource routes
	api.GET("/patients", patientHandler.GetAllPatients)
	api.GET("/patients/:patient_id", patientHandler.GetPatientByID)
	api.PUT("/patients/:patient_id", patientHandler.ReplacePatient)

	api.GET("/visits/:visit_id", visitHandler.GetVisit)
	api.PUT("/visits/:visit_id", visitHandler.PutVisit)
	api.GET("/visits/:visit_id/photos", photoHandler.ListVisitPhotos)
}
