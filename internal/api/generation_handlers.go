package api

import (
	"errors"
	"io"
	"net/http"

	"wallpaper_studio_go_backend/internal/auth"
	apperrors "wallpaper_studio_go_backend/internal/errors"
	"wallpaper_studio_go_backend/internal/services"

	"github.com/gin-gonic/gin"
)

func startGenerationHandler(generationService *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			return
		}

		templateID := c.PostForm("template")
		resolution := c.PostForm("resolution")

		file, err := readUploadedFile(c, services.MaxUploadBytes)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sessionID, err := generationService.StartGeneration(c.Request.Context(), userID, file, templateID, resolution)
		if err != nil {
			handleGenerationError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"session_id": sessionID})
	}
}

func getGenerationSessionHandler(generationService *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := loadOwnedSession(c, generationService)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func cancelGenerationHandler(generationService *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := loadOwnedSession(c, generationService)
		if !ok {
			return
		}
		if err := generationService.CancelGeneration(info.SessionID); err != nil {
			apperrors.HandleError(c, apperrors.LogAndReturn500(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Generation canceled"})
	}
}

func resetGenerationHandler(generationService *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := loadOwnedSession(c, generationService)
		if !ok {
			return
		}
		if err := generationService.ResetSession(info.SessionID); err != nil {
			apperrors.HandleError(c, apperrors.LogAndReturn500(err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Session reset"})
	}
}

func getJobStatusHandler(generationClient services.GenerationAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !generationClient.Configured() {
			apperrors.HandleError(c, apperrors.New500Error(services.ErrNotConfigured))
			return
		}

		taskID := c.Param("taskId")
		status, err := generationClient.JobStatus(c.Request.Context(), taskID)
		if err != nil {
			var validationErr *services.ValidationError
			var pollErr *services.PollError
			switch {
			case errors.As(err, &validationErr):
				c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})
			case errors.As(err, &pollErr):
				apperrors.HandleError(c, apperrors.NewRemoteError(http.StatusBadGateway, "failed to query job status", pollErr))
			default:
				apperrors.HandleError(c, apperrors.LogAndReturn500(err))
			}
			return
		}

		c.JSON(http.StatusOK, status)
	}
}

func loadOwnedSession(c *gin.Context, generationService *services.GenerationService) (services.GenerationSessionInfo, bool) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return services.GenerationSessionInfo{}, false
	}

	info, err := generationService.GetSession(c.Param("sessionId"))
	if err != nil {
		if errors.Is(err, services.ErrGenerationSessionNotFound) {
			apperrors.HandleError(c, apperrors.New404Error("Session not found"))
		} else {
			apperrors.HandleError(c, apperrors.LogAndReturn500(err))
		}
		return services.GenerationSessionInfo{}, false
	}
	if info.UserID != userID {
		apperrors.HandleError(c, apperrors.New403Error())
		return services.GenerationSessionInfo{}, false
	}
	return info, true
}

func handleGenerationError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var quotaErr *services.QuotaExceededError
	var submissionErr *services.SubmissionError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})
	case errors.As(err, &quotaErr):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":     "daily free quota exhausted, upgrade to premium for unlimited generations",
			"tier":      quotaErr.Status.Tier,
			"usedToday": quotaErr.Status.UsedToday,
			"limit":     quotaErr.Status.Limit,
			"remaining": quotaErr.Status.Remaining,
		})
	case errors.As(err, &submissionErr):
		apperrors.HandleError(c, apperrors.NewRemoteError(submissionErr.StatusCode, submissionErr.Message, submissionErr))
	case errors.Is(err, services.ErrNotConfigured):
		apperrors.HandleError(c, apperrors.New500Error(err))
	default:
		apperrors.HandleError(c, apperrors.LogAndReturn500(err))
	}
}

// readUploadedFile pulls the multipart "file" field into memory, enforcing
// the size ceiling before the body is fully read.
func readUploadedFile(c *gin.Context, maxBytes int64) (services.UploadFile, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return services.UploadFile{}, errors.New("no file provided")
	}
	if fileHeader.Size > maxBytes {
		return services.UploadFile{}, errors.New("image exceeds the 10MB size limit")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return services.UploadFile{}, errors.New("could not read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return services.UploadFile{}, errors.New("could not read uploaded file")
	}
	if int64(len(data)) > maxBytes {
		return services.UploadFile{}, errors.New("image exceeds the 10MB size limit")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return services.UploadFile{
		Data:        data,
		Filename:    fileHeader.Filename,
		ContentType: contentType,
	}, nil
}
