package api

import (
	"net/http"
	"os"

	"wallpaper_studio_go_backend/internal/auth"
	apperrors "wallpaper_studio_go_backend/internal/errors"
	"wallpaper_studio_go_backend/internal/models"
	"wallpaper_studio_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	quotaService *services.QuotaService,
	generationService *services.GenerationService,
	generationClient services.GenerationAPI,
	uploadService *services.UploadService,
	imageService *services.ImageService,
	crawlService *services.CrawlService,
) {
	api := r.Group("/api")
	{
		api.GET("/usage", auth.AuthMiddleware(), getUsageHandler(quotaService))
		api.POST("/usage/consume", auth.AuthMiddleware(), consumeUsageHandler(quotaService))
		api.POST("/admin/set-tier", setTierHandler(quotaService))

		api.POST("/generate", auth.AuthMiddleware(), startGenerationHandler(generationService))
		api.GET("/generate/session/:sessionId", auth.AuthMiddleware(), getGenerationSessionHandler(generationService))
		api.POST("/generate/session/:sessionId/cancel", auth.AuthMiddleware(), cancelGenerationHandler(generationService))
		api.POST("/generate/session/:sessionId/reset", auth.AuthMiddleware(), resetGenerationHandler(generationService))
		api.GET("/generate/status/:taskId", auth.AuthMiddleware(), getJobStatusHandler(generationClient))

		api.POST("/upload", auth.AuthMiddleware(), uploadHandler(uploadService))
		api.POST("/image", convertImageHandler(imageService))
		api.POST("/crawl", crawlHandler(crawlService))

		api.GET("/templates", getTemplatesHandler)
		api.GET("/presets", getPresetsHandler)
	}
}

func getUsageHandler(quotaService *services.QuotaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			return
		}

		tier, err := quotaService.GetTier(userID)
		if err != nil {
			apperrors.HandleError(c, apperrors.LogAndReturn500(err))
			return
		}

		status, err := quotaService.CheckQuota(userID, tier, services.Today())
		if err != nil {
			apperrors.HandleError(c, apperrors.LogAndReturn500(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"tier":      status.Tier,
			"usedToday": status.UsedToday,
			"limit":     status.Limit,
			"remaining": status.Remaining,
		})
	}
}

func consumeUsageHandler(quotaService *services.QuotaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			return
		}

		tier, err := quotaService.GetTier(userID)
		if err != nil {
			apperrors.HandleError(c, apperrors.LogAndReturn500(err))
			return
		}

		today := services.Today()
		status, err := quotaService.CheckQuota(userID, tier, today)
		if err != nil {
			apperrors.HandleError(c, apperrors.LogAndReturn500(err))
			return
		}
		if !status.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":     "daily free quota exhausted",
				"tier":      status.Tier,
				"usedToday": status.UsedToday,
				"limit":     status.Limit,
				"remaining": 0,
			})
			return
		}

		updated, err := quotaService.ConsumeQuota(userID, today)
		if err != nil {
			apperrors.HandleError(c, apperrors.LogAndReturn500(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"tier":      updated.Tier,
			"usedToday": updated.UsedToday,
			"limit":     updated.Limit,
			"remaining": updated.Remaining,
		})
	}
}

func setTierHandler(quotaService *services.QuotaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminSecret := c.GetHeader("X-Admin-Secret")
		if adminSecret == "" || adminSecret != os.Getenv("ADMIN_SECRET") {
			apperrors.HandleError(c, apperrors.New403Error())
			return
		}

		var request struct {
			UserID string `json:"userId" binding:"required"`
			Tier   string `json:"tier" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId and tier are required"})
			return
		}
		if request.Tier != models.TierFree && request.Tier != models.TierPremium {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tier must be free or premium"})
			return
		}

		if err := quotaService.SetTier(request.UserID, request.Tier); err != nil {
			apperrors.HandleError(c, apperrors.LogAndReturn500(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func getTemplatesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": services.EffectTemplates})
}

func getPresetsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": services.WallpaperPresets})
}
