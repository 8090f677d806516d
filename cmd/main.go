package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/snacksync/snacksync-api/internal/auth"
	"github.com/snacksync/snacksync-api/internal/config"
	"github.com/snacksync/snacksync-api/internal/controllers"
	"github.com/snacksync/snacksync-api/internal/crypto"
	"github.com/snacksync/snacksync-api/internal/database"
	"github.com/snacksync/snacksync-api/internal/middleware"
	"github.com/snacksync/snacksync-api/internal/models"
	"github.com/snacksync/snacksync-api/internal/recommend"
	"github.com/snacksync/snacksync-api/internal/services"
	"github.com/snacksync/snacksync-api/internal/youtube"
)

var (
	configuration       *config.Config
	db                  *gorm.DB
	authController      *controllers.AuthController
	activityController  *controllers.ActivityController
	recommendController *controllers.RecommendController
)

// @title SnackSync API
// @version 1.0
// @description Recommends YouTube videos to watch while eating, based on food tags and liked-video history
// @host localhost:8000
// @BasePath /
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration = loadConfig()

	// The encryption key and session signing key are validated here so a
	// misconfigured deployment dies at startup, not on the first login.
	cipher, err := crypto.NewTokenCipher(configuration.EncryptionKey)
	checkPanicErr(err)

	sessions, err := auth.NewSessionManager(
		configuration.JWTSecret,
		configuration.JWTAlgorithm,
		time.Duration(configuration.SessionTTLMinutes)*time.Minute,
	)
	checkPanicErr(err)

	// Initialize database connection
	db = setupDatabase(configuration)

	// Initialize services
	credentialService := services.NewCredentialService(db, cipher)
	loginService := auth.NewLoginService(configuration, credentialService)
	activityService := youtube.NewService(
		youtube.NewGoogleSource(credentialService),
		youtube.NewGoogleLister(),
	)

	oracle := setupOracle(configuration)
	recommendService := recommend.NewService(activityService, rankingOracle(oracle))

	// Initialize controllers
	authController = controllers.NewAuthController(loginService, sessions)
	activityController = controllers.NewActivityController(activityService)
	recommendController = controllers.NewRecommendController(recommendService, oracle)

	// Initialize Gin router
	router := setupRouter(sessions)

	// Start the server
	log.Infof("Starting server on %s:%d", configuration.Host, configuration.Port)
	router.Run(fmt.Sprintf("%v:%d", configuration.Host, configuration.Port))
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase initializes the database connection and migrates the schema
func setupDatabase(conf *config.Config) *gorm.DB {
	database, err := database.InitDatabase(database.FromAppConfig(conf))
	checkPanicErr(err)

	// Migrate the schema
	checkPanicErr(database.AutoMigrate(&models.User{}))
	return database
}

// setupOracle builds the Gemini oracle, or returns nil when no API key is
// configured; recommendation endpoints then degrade instead of failing startup
func setupOracle(conf *config.Config) *recommend.GeminiOracle {
	if conf.GeminiAPIKey == "" {
		log.Warn("Gemini is not configured, recommendations will be unavailable")
		return nil
	}
	oracle, err := recommend.NewGeminiOracle(context.Background(), conf.GeminiAPIKey, conf.GeminiModel)
	checkPanicErr(err)
	return oracle
}

// rankingOracle wraps the optional Gemini client so the recommendation
// service always has an Oracle to call
func rankingOracle(oracle *recommend.GeminiOracle) recommend.Oracle {
	if oracle == nil {
		return recommend.UnavailableOracle{}
	}
	return oracle
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter(sessions *auth.SessionManager) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.RequestID())

	// Define routes
	setupRoutes(router, sessions)

	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine, sessions *auth.SessionManager) {
	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	// Authentication routes
	router.POST("/auth/google/login", authController.GoogleLogin)
	router.POST("/auth/logout", authController.Logout)

	// Tag detection works without a session; it only sees the uploaded image
	router.POST("/api/suggest_video", recommendController.SuggestTags)

	// Protected routes (require a valid session cookie)
	protectedApi := router.Group("/api")
	protectedApi.Use(middleware.SessionAuth(sessions))
	{
		protectedApi.GET("/youtube_activity", activityController.GetYouTubeActivity)
		protectedApi.POST("/recommend_video", recommendController.RecommendVideo)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "snacksync-api",
	})
}
