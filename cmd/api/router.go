package main

import (
	"context"
	"net/http"
	"time"

	"inkwell-backend/internal/shared/middleware"
	"inkwell-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupDraftRoutes(v1, c)
		setupLibraryRoutes(v1, c)
		setupCreditRoutes(v1, c)
	}

	return router
}

func setupDraftRoutes(v1 *gin.RouterGroup, c *container.Container) {
	drafts := v1.Group("/drafts")
	drafts.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		drafts.POST("", c.DraftHandler.Create)
		drafts.GET("", c.DraftHandler.List)
		drafts.GET("/:id", c.DraftHandler.Get)
		drafts.PUT("/:id", c.DraftHandler.Update)
		drafts.DELETE("/:id", c.DraftHandler.Delete)

		drafts.POST("/:id/chapters", c.DraftHandler.AddChapter)
		drafts.PUT("/:id/chapters/:chapter_id", c.DraftHandler.UpdateChapter)
		drafts.DELETE("/:id/chapters/:chapter_id", c.DraftHandler.DeleteChapter)

		drafts.POST("/:id/export", c.ExportHandler.Export)
	}
}

func setupLibraryRoutes(v1 *gin.RouterGroup, c *container.Container) {
	library := v1.Group("/library")
	library.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		library.GET("", c.LibraryHandler.List)
		library.GET("/:id", c.LibraryHandler.Get)
		library.PATCH("/:id/progress", c.LibraryHandler.UpdateProgress)
	}
}

func setupCreditRoutes(v1 *gin.RouterGroup, c *container.Container) {
	credits := v1.Group("/credits")
	credits.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		credits.GET("/balance", c.LedgerHandler.GetBalance)
	}
}

func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"version": appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.Ping(ctx); err != nil {
				dbStatus = "error"
				health["status"] = "degraded"
			}
		}

		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = "error"
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
