package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"wallpaper_studio_go_backend/internal/auth"
	apperrors "wallpaper_studio_go_backend/internal/errors"
	"wallpaper_studio_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

func uploadHandler(uploadService *services.UploadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			return
		}

		model := c.PostForm("model")
		if model == "" {
			model = services.ModelI2VTurbo
		}

		file, err := readUploadedFile(c, services.MaxUploadBytes)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		url, err := uploadService.Upload(c.Request.Context(), file, userID, model)
		if err != nil {
			var validationErr *services.ValidationError
			var uploadErr *services.UploadError
			switch {
			case errors.As(err, &validationErr):
				c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})
			case errors.As(err, &uploadErr):
				c.JSON(http.StatusInternalServerError, gin.H{"error": uploadErr.Msg})
			default:
				apperrors.HandleError(c, apperrors.LogAndReturn500(err))
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}

func convertImageHandler(imageService *services.ImageService) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := readUploadedFile(c, services.MaxUploadBytes)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		opts := services.ConvertOptions{
			Format:     c.DefaultPostForm("format", services.FormatJPEG),
			Quality:    formInt(c, "quality", 80),
			Width:      formInt(c, "width", 0),
			Height:     formInt(c, "height", 0),
			CropX:      formInt(c, "cropX", 0),
			CropY:      formInt(c, "cropY", 0),
			CropWidth:  formInt(c, "cropWidth", 0),
			CropHeight: formInt(c, "cropHeight", 0),
		}

		// A preset id overrides explicit dimensions.
		if presetID := c.PostForm("preset"); presetID != "" {
			preset, ok := services.WallpaperPresetByID(presetID)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown preset %q", presetID)})
				return
			}
			opts.Width = preset.Width
			opts.Height = preset.Height
		}

		output, mimeType, err := imageService.Convert(file.Data, opts)
		if err != nil {
			var validationErr *services.ValidationError
			if errors.As(err, &validationErr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})
				return
			}
			apperrors.HandleError(c, apperrors.LogAndReturn500(err))
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="wallpaper.%s"`, services.OutputExtension(opts.Format)))
		c.Data(http.StatusOK, mimeType, output)
	}
}

func crawlHandler(crawlService *services.CrawlService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Query  string `json:"query"`
			APIKey string `json:"apiKey"`
			Limit  int    `json:"limit"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		results, err := crawlService.SearchWallpapers(c.Request.Context(), request.APIKey, request.Query, request.Limit)
		if err != nil {
			var validationErr *services.ValidationError
			if errors.As(err, &validationErr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

func formInt(c *gin.Context, field string, fallback int) int {
	raw := c.PostForm(field)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
