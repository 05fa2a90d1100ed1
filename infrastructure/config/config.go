// Package config loads application configuration from the environment,
// with an optional YAML file overlay for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"serverAddress"`
	Environment   string `yaml:"environment"`

	// AWS configuration
	AWSRegion      string `yaml:"awsRegion"`
	DynamoDBTable  string `yaml:"dynamodbTable"`
	SlugIndexName  string `yaml:"slugIndexName"`
	EmailIndexName string `yaml:"emailIndexName"`
	EventBusName   string `yaml:"eventBusName"`

	// Lambda configuration
	IsLambda bool `yaml:"isLambda"`

	// Authentication
	JWTSecret   string `yaml:"jwtSecret"`
	JWTIssuer   string `yaml:"jwtIssuer"`
	JWTAudience string `yaml:"jwtAudience"`

	// Rate limiting (requests per minute, 0 disables)
	IPRateLimit   int `yaml:"ipRateLimit"`
	UserRateLimit int `yaml:"userRateLimit"`

	// Logging and features
	LogLevel      string `yaml:"logLevel"`
	EnableMetrics bool   `yaml:"enableMetrics"`
	EnableCORS    bool   `yaml:"enableCORS"`
}

// LoadConfig loads configuration from environment variables. When
// CONFIG_FILE points at a YAML file, its values are read first and the
// environment overrides them.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:  ":8080",
		Environment:    "development",
		AWSRegion:      "us-west-2",
		DynamoDBTable:  "roadmaps",
		SlugIndexName:  "SlugIndex",
		EmailIndexName: "EmailIndex",
		EventBusName:   "roadmaps-events",
		JWTIssuer:      "roadmaps-backend",
		JWTAudience:    "roadmaps-web",
		IPRateLimit:    120,
		UserRateLimit:  300,
		LogLevel:       "info",
		EnableMetrics:  true,
		EnableCORS:     true,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.DynamoDBTable = getEnv("TABLE_NAME", cfg.DynamoDBTable)
	cfg.SlugIndexName = getEnv("SLUG_INDEX_NAME", cfg.SlugIndexName)
	cfg.EmailIndexName = getEnv("EMAIL_INDEX_NAME", cfg.EmailIndexName)
	cfg.EventBusName = getEnv("EVENT_BUS_NAME", cfg.EventBusName)
	cfg.IsLambda = getEnvBool("IS_LAMBDA", cfg.IsLambda)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)
	cfg.JWTAudience = getEnv("JWT_AUDIENCE", cfg.JWTAudience)
	cfg.IPRateLimit = getEnvInt("IP_RATE_LIMIT", cfg.IPRateLimit)
	cfg.UserRateLimit = getEnvInt("USER_RATE_LIMIT", cfg.UserRateLimit)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.EnableCORS = getEnvBool("ENABLE_CORS", cfg.EnableCORS)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
