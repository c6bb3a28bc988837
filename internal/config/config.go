package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreSalesforce = "salesforce"
	StoreRedis      = "redis"
	StorePostgres   = "postgres"
)

// Config holds all configuration for the compliance auditor.
type Config struct {
	// Service addresses
	Port       string
	HealthPort string
	GRPCPort   string

	// Slack app
	SlackBotToken      string
	SlackSigningSecret string

	// Feature flags
	UseClassifier  bool
	UseAgent       bool
	EnableMockMode bool

	// Remote classifier
	GenAIAPIKey string
	GenAIModel  string

	// Salesforce org and agent
	SalesforceLoginURL     string
	SalesforceUsername     string
	SalesforcePassword     string
	SalesforceClientID     string
	SalesforceClientSecret string
	SalesforceInstanceURL  string
	SalesforceAgentID      string
	SalesforceAPIVersion   string
	AgentTimeout           time.Duration

	// Incident storage
	IncidentStore string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string

	// Event bus, empty disables it
	NATSURL string

	LogLevel       string
	LogDevelopment bool

	// EnvFile is the .env file that was loaded, if any.
	EnvFile string
}

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	envPaths := []string{
		".env",
		"../.env",
		"/app/.env", // Docker
	}

	envFile := ""
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			envFile = path
			break
		}
	}

	config := &Config{
		Port:       getEnvOrDefault("PORT", "3000"),
		HealthPort: getEnvOrDefault("HEALTH_PORT", "8081"),
		GRPCPort:   getEnvOrDefault("GRPC_PORT", "50051"),

		SlackBotToken:      os.Getenv("SLACK_BOT_TOKEN"),
		SlackSigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),

		UseClassifier:  parseBoolOrDefault("USE_CLASSIFIER", false),
		UseAgent:       parseBoolOrDefault("USE_AGENT", false),
		EnableMockMode: parseBoolOrDefault("ENABLE_MOCK_MODE", false),

		GenAIAPIKey: os.Getenv("GENAI_API_KEY"),
		GenAIModel:  getEnvOrDefault("GENAI_MODEL", "gemini-2.5-flash"),

		SalesforceLoginURL:     getEnvOrDefault("SALESFORCE_LOGIN_URL", "https://login.salesforce.com"),
		SalesforceUsername:     os.Getenv("SALESFORCE_USERNAME"),
		SalesforcePassword:     os.Getenv("SALESFORCE_PASSWORD"),
		SalesforceClientID:     os.Getenv("SALESFORCE_CLIENT_ID"),
		SalesforceClientSecret: os.Getenv("SALESFORCE_CLIENT_SECRET"),
		SalesforceInstanceURL:  os.Getenv("SALESFORCE_INSTANCE_URL"),
		SalesforceAgentID:      os.Getenv("SALESFORCE_AGENT_ID"),
		SalesforceAPIVersion:   getEnvOrDefault("SALESFORCE_API_VERSION", "v58.0"),
		AgentTimeout:           parseDurationOrDefault("AGENT_TIMEOUT", 30*time.Second),

		IncidentStore: strings.ToLower(getEnvOrDefault("INCIDENT_STORE", StoreSalesforce)),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       parseIntOrDefault("REDIS_DB", 0),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		NATSURL: os.Getenv("NATS_URL"),

		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogDevelopment: parseBoolOrDefault("LOG_DEVELOPMENT", false),

		EnvFile: envFile,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.HealthPort == "" {
		return fmt.Errorf("HEALTH_PORT is required")
	}

	if c.GRPCPort == "" {
		return fmt.Errorf("GRPC_PORT is required")
	}

	switch c.IncidentStore {
	case StoreSalesforce:
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when INCIDENT_STORE=redis")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when INCIDENT_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown INCIDENT_STORE %q", c.IncidentStore)
	}

	return nil
}

// RequireSlack checks the settings only the Slack service needs.
func (c *Config) RequireSlack() error {
	if c.SlackBotToken == "" {
		return fmt.Errorf("SLACK_BOT_TOKEN is required")
	}

	if c.SlackSigningSecret == "" {
		return fmt.Errorf("SLACK_SIGNING_SECRET is required")
	}

	return nil
}

// Helper functions
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
