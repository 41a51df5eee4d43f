package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends
const (
	StoreFirestore = "firestore"
	StoreSQLite    = "sqlite"
	StoreMemory    = "memory"
)

// Config holds all configuration for the application
type Config struct {
	// Google Cloud
	ProjectID string
	Location  string

	// AppID namespaces every document path (artifacts/{appId}/...)
	AppID string

	// Server
	Port        string
	Debug       bool
	CORSOrigins []string

	// Persistence
	StoreBackend string
	SQLitePath   string
	UploadBucket string

	// Vertex AI suggestions
	VertexEnabled bool
	GeminiModel   string

	// External resume service
	ResumeServiceURL   string
	ResumeServiceRPS   float64
	HTTPTimeoutSeconds int

	// Authentication
	JWTSecret      string
	JWTExpiryHours int
	GoogleClientID string

	// Role resolution
	RoleRetryAttempts int
	RoleRetryDelay    time.Duration

	// Navigation table override
	NavigationFile string
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Google Cloud
		ProjectID: getEnv("PROJECT_ID", ""),
		Location:  getEnv("LOCATION", "us-central1"),
		AppID:     getEnv("APP_ID", ""),

		// Server
		Port:        getEnv("PORT", "8080"),
		Debug:       getEnvBool("DEBUG", false),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		// Persistence
		StoreBackend: getEnv("STORE_BACKEND", StoreFirestore),
		SQLitePath:   getEnv("SQLITE_PATH", "data/careerverse.db"),
		UploadBucket: getEnv("UPLOAD_BUCKET", ""),

		// Vertex AI
		VertexEnabled: getEnvBool("VERTEX_ENABLED", false),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		// External resume service
		ResumeServiceURL:   getEnv("RESUME_SERVICE_URL", "http://127.0.0.1:5000/api"),
		ResumeServiceRPS:   getEnvFloat("RESUME_SERVICE_RPS", 2),
		HTTPTimeoutSeconds: getEnvInt("HTTP_TIMEOUT_SECONDS", 60),

		// Authentication
		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),
		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		// Role resolution
		RoleRetryAttempts: getEnvInt("ROLE_RETRY_ATTEMPTS", 5),
		RoleRetryDelay:    getEnvDuration("ROLE_RETRY_DELAY", time.Second),

		NavigationFile: getEnv("NAVIGATION_FILE", ""),
	}

	if cfg.AppID == "" {
		cfg.AppID = cfg.ProjectID
	}

	return cfg
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreFirestore:
		if c.ProjectID == "" {
			return &ConfigError{Field: "PROJECT_ID", Message: "PROJECT_ID is required for the Firestore store"}
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return &ConfigError{Field: "SQLITE_PATH", Message: "SQLITE_PATH is required for the sqlite store"}
		}
	case StoreMemory:
	default:
		return &ConfigError{Field: "STORE_BACKEND", Message: "STORE_BACKEND must be one of firestore, sqlite, memory"}
	}

	if c.AppID == "" {
		return &ConfigError{Field: "APP_ID", Message: "APP_ID (or PROJECT_ID) is required to namespace documents"}
	}

	if c.VertexEnabled && c.ProjectID == "" {
		return &ConfigError{Field: "PROJECT_ID", Message: "PROJECT_ID is required for Vertex AI"}
	}

	if c.RoleRetryAttempts < 1 {
		return &ConfigError{Field: "ROLE_RETRY_ATTEMPTS", Message: "ROLE_RETRY_ATTEMPTS must be at least 1"}
	}

	if c.ResumeServiceRPS <= 0 {
		return &ConfigError{Field: "RESUME_SERVICE_RPS", Message: "RESUME_SERVICE_RPS must be positive"}
	}

	return nil
}

// HTTPTimeout is the client-side timeout for outbound calls
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
