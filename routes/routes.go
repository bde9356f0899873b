package routes

import (
	"MucosaView/cache"
	"MucosaView/config"
	"MucosaView/controllers"
	"MucosaView/handlers"
	"MucosaView/middlewares"
	"MucosaView/repositories"
	"MucosaView/services"
	"MucosaView/storage"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes wires repositories, services and handlers and returns the
// configured HTTP handler. The data store, cache and blob store arrive as
// injected dependencies.
func SetupRoutes(cache *cache.Cache, cfg *config.AppConfig, db *gorm.DB, blobs storage.BlobStore) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middlewares.CorsMiddleware(&middlewares.CorsConfig{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "If-Match"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: true,
	}))

	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: 15,
		Burst:             30,
	}))

	router.Use(middlewares.RequestLogger())

	patientRepo := repositories.NewPatientRepository(db, cache)
	visitRepo := repositories.NewVisitRepository(db)
	photoRepo := repositories.NewPhotoRepository(db, cache)

	intakeService := services.NewIntakeService(db, patientRepo, visitRepo, photoRepo, blobs)
	patientService := services.NewPatientService(patientRepo)
	visitService := services.NewVisitService(visitRepo)
	photoService := services.NewPhotoService(photoRepo)

	controllers.SetupRecordRoutes(
		router,
		handlers.NewIntakeHandler(intakeService),
		handlers.NewPatientHandler(patientService),
		handlers.NewVisitHandler(visitService),
		handlers.NewPhotoHandler(photoService),
	)
	controllers.SetupRootRoute(router)

	return router
}
