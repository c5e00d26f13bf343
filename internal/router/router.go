package router

import (
	"github.com/gin-gonic/gin"

	"rentacheck/internal/handler"
	"rentacheck/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	analyzeH *handler.AnalyzeHandler,
	ragH *handler.RagHandler,
	fileH *handler.FileHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	v1.POST("/analyze", analyzeH.Analyze)

	rag := v1.Group("/rag")
	rag.POST("/search", ragH.Search)

	files := v1.Group("/files")
	files.POST("/sign-read", fileH.SignRead)

	return r
}
