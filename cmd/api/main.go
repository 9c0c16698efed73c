package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"wallpaper_studio_go_backend/cmd/api/config"
	"wallpaper_studio_go_backend/internal/api"
	"wallpaper_studio_go_backend/internal/auth"
	"wallpaper_studio_go_backend/internal/database"
	"wallpaper_studio_go_backend/internal/services"
	"wallpaper_studio_go_backend/internal/utils/broker"
	"wallpaper_studio_go_backend/internal/wsocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Absence of the credential is not fatal at startup: generation
	// endpoints answer 500 until it is configured, everything else works.
	dashscopeAPIKey := os.Getenv("DASHSCOPE_API_KEY")
	if dashscopeAPIKey == "" {
		log.Println("DASHSCOPE_API_KEY is not set; generation endpoints will be unavailable")
	}

	database.InitDB()

	cfg := config.NewConfig()

	// Initialize external service clients
	generationClient := services.NewGenerationClient(os.Getenv("DASHSCOPE_BASE_URL"), dashscopeAPIKey)
	crawlService := services.NewCrawlService(os.Getenv("FIRECRAWL_BASE_URL"))

	// Initialize internal services
	messageBroker := broker.NewBroker()
	quotaService := services.NewQuotaService(services.NewQuotaStoreDB(database.DB))
	uploadService := services.NewUploadService(generationClient)
	imageService := services.NewImageService()
	generationService := services.NewGenerationService(
		quotaService,
		uploadService,
		generationClient,
		messageBroker,
		cfg.PollInterval,
		cfg.MaxPollTime,
		cfg.SessionRetention,
	)

	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173" // Default to your local frontend
	}

	// CORS middleware configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(allowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Secret"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// WebSocket upgrader
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // TODO: Implement a more secure check in production
		},
	}

	wsHandler := wsocket.NewHandler(generationService, messageBroker, upgrader, cfg.StatusPushInterval)

	api.SetupRoutes(r, quotaService, generationService, generationClient, uploadService, imageService, crawlService)
	auth.SetupRoutes(r)

	r.GET("/ws", auth.AuthMiddleware(), func(c *gin.Context) {
		userID, _ := auth.UserID(c)
		wsHandler.HandleWebSocket(c.Writer, c.Request, userID)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
