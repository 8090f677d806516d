package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Port int    `json:"port"`
	Host string `json:"host"`

	// Database configuration
	DBDriver   string `json:"db_driver"`
	DBPath     string `json:"db_path"`
	DBHost     string `json:"db_host"`
	DBPort     string `json:"db_port"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBName     string `json:"db_name"`
	DBSSLMode  string `json:"db_ssl_mode"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret         string `json:"jwt_secret"`
	JWTAlgorithm      string `json:"jwt_algorithm"`
	SessionTTLMinutes int    `json:"session_ttl_minutes"`
	EncryptionKey     string `json:"encryption_key"`

	// Google OAuth Configuration
	GoogleClientID     string `json:"google_client_id"`
	GoogleClientSecret string `json:"google_client_secret"`
	GoogleRedirectURI  string `json:"google_redirect_uri"`

	// Gemini Configuration
	GeminiAPIKey string `json:"gemini_api_key"`
	GeminiModel  string `json:"gemini_model"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Host: %s, DBDriver: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], LogLevel: %s, "+
		"JWTSecret: [REDACTED], JWTAlgorithm: %s, SessionTTLMinutes: %d, EncryptionKey: [REDACTED], "+
		"GoogleClientID: %s, GoogleClientSecret: [REDACTED], GoogleRedirectURI: %s, GeminiAPIKey: [REDACTED], GeminiModel: %s}",
		c.Port, c.Host, c.DBDriver, c.DBName, c.DBUser, c.LogLevel,
		c.JWTAlgorithm, c.SessionTTLMinutes,
		c.GoogleClientID, c.GoogleRedirectURI, c.GeminiModel)
}

// LoadConfig reads the configuration from environment variables and returns a Config struct.
// The session signing key is the only hard requirement at this layer: without it every
// protected endpoint is unusable. The encryption key is validated when the token cipher
// is constructed, so a structurally bad key still fails at startup. Missing Google or
// Gemini settings degrade their endpoints only, so they just warn.
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8000"))
	if err != nil {
		return nil, err
	}

	sessionTTL, err := strconv.Atoi(GetEnvWithDefault("ACCESS_TOKEN_EXPIRE_MINUTES", strconv.Itoa(60*24*7)))
	if err != nil {
		return nil, err
	}

	jwtSecret := GetEnvWithDefault("JWT_SECRET_KEY", "")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET_KEY environment variable is required")
	}

	config := &Config{
		Port:               port,
		Host:               GetEnvWithDefault("APP_HOST", "0.0.0.0"),
		DBDriver:           GetEnvWithDefault("DB_DRIVER", "sqlite"),
		DBPath:             GetEnvWithDefault("DB_PATH", "snacksync.sqlite"),
		DBHost:             GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:             GetEnvWithDefault("DB_PORT", "5432"),
		DBUser:             GetEnvWithDefault("DB_USER", "user"),
		DBPassword:         GetEnvWithDefault("DB_PASSWORD", "password"),
		DBName:             GetEnvWithDefault("DB_NAME", "snacksync"),
		DBSSLMode:          GetEnvWithDefault("DB_SSL_MODE", "disable"),
		LogLevel:           GetEnvWithDefault("LOG_LEVEL", "info"),
		JWTSecret:          jwtSecret,
		JWTAlgorithm:       GetEnvWithDefault("JWT_ALGORITHM", "HS256"),
		SessionTTLMinutes:  sessionTTL,
		EncryptionKey:      GetEnvWithDefault("ENCRYPTION_KEY", ""),
		GoogleClientID:     GetEnvWithDefault("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: GetEnvWithDefault("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  GetEnvWithDefault("GOOGLE_REDIRECT_URI", ""),
		GeminiAPIKey:       GetEnvWithDefault("GEMINI_API_KEY", ""),
		GeminiModel:        GetEnvWithDefault("GEMINI_MODEL", "gemini-1.5-flash"),
	}

	if config.EncryptionKey == "" {
		log.Warn("ENCRYPTION_KEY is not set, credential encryption will fail at startup")
	}
	if config.GoogleClientID == "" || config.GoogleClientSecret == "" {
		log.Warn("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET are not set, Google login will be unavailable")
	}
	if config.GoogleRedirectURI == "" {
		log.Warn("GOOGLE_REDIRECT_URI is not set, Google login will be unavailable")
	}
	if config.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY is not set, recommendations and tag detection will be unavailable")
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Warnf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}
