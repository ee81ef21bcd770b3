package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	// Progression engine tunables
	VideoCompletionThreshold float64 // watched fraction above which a video counts as watched
	DefaultPassingScorePct   int     // used when a quiz does not override it
	DefaultMaxAttempts       int     // used when a quiz does not override it

	CertRenderURL  string // external certificate renderer endpoint
	SendgridApiKey string
	EmailSender    string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		VideoCompletionThreshold: getEnvFloat("VIDEO_COMPLETION_THRESHOLD", 0.9),
		DefaultPassingScorePct:   getEnvInt("DEFAULT_PASSING_SCORE", 70),
		DefaultMaxAttempts:       getEnvInt("DEFAULT_MAX_ATTEMPTS", 3),

		CertRenderURL:  getEnv("CERT_RENDER_URL", ""),
		SendgridApiKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@learnhub.io"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.VideoCompletionThreshold <= 0 || AppConfig.VideoCompletionThreshold > 1 {
		log.Printf("Warning: VIDEO_COMPLETION_THRESHOLD %.2f out of range, using 0.9", AppConfig.VideoCompletionThreshold)
		AppConfig.VideoCompletionThreshold = 0.9
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvFloat retrieves an environment variable as a float or returns the default float value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Error converting environment variable %s to float: %v", key, err)
		return defaultValue
	}
	return floatValue
}
