// Package server builds the gin router serving the review UI's API.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hepworth/owlmap/internal/app"
	"github.com/hepworth/owlmap/internal/handlers"
)

// NewRouter wires the HTTP routes over the application's services.
func NewRouter(a *app.App) *gin.Engine {
	if a.Config.LogMode == "prod" || a.Config.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	review := handlers.NewReviewHandler(a.Review, a.Config.PageSize, a.Log)
	graph := handlers.NewGraphHandler(a.Graph, a.Config.PageSize, a.Log)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		api.GET("/filters", review.FilterOptions)
		api.GET("/occurrences", review.Browse)
		api.GET("/audit/queue", review.Queue)
		api.GET("/audit/stats", review.Stats)
		api.GET("/occurrences/:id", review.TermDetail)
		api.GET("/occurrences/:id/adjacent", review.Adjacent)
		api.POST("/occurrences/:id/decision", review.SaveDecision)
		api.POST("/audit/apply", review.ApplyPending)

		api.GET("/candidates", graph.Candidates)
		api.POST("/edges/confirm", graph.ConfirmEdge)
		api.GET("/concepts/:id", graph.ConceptDetail)
		api.GET("/concepts/load-bearing", graph.LoadBearing)
		api.GET("/dashboard/stats", graph.Stats)
	}
	return r
}
