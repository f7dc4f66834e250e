package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the report worker
type Config struct {
	RabbitMQ      RabbitMQConfig      `json:"rabbitmq"`
	Clients       ClientsConfig       `json:"clients"`
	Health        HealthConfig        `json:"health"`
	Observability ObservabilityConfig `json:"observability"`
}

// RabbitMQConfig holds broker configuration
type RabbitMQConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	QueueName      string        `json:"queue_name"`
	ReconnectDelay time.Duration `json:"reconnect_delay"`
}

// ClientsConfig holds the upstream service base URLs
type ClientsConfig struct {
	ContactServiceURL string        `json:"contact_service_url"`
	ReportServiceURL  string        `json:"report_service_url"`
	RequestTimeout    time.Duration `json:"request_timeout"`
}

// HealthConfig holds the worker's health endpoint configuration
type HealthConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	ServiceName    string `json:"service_name"`
	ServiceVersion string `json:"service_version"`
	TracingEnabled bool   `json:"tracing_enabled"`
	LogLevel       string `json:"log_level"`
	OTELEndpoint   string `json:"otel_endpoint"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		RabbitMQ: RabbitMQConfig{
			Host:           getEnv("RABBITMQ_HOST", "localhost"),
			Port:           getEnvAsInt("RABBITMQ_PORT", 5672),
			User:           getEnv("RABBITMQ_USER", "guest"),
			Password:       getEnv("RABBITMQ_PASSWORD", "guest"),
			QueueName:      getEnv("RABBITMQ_QUEUE_NAME", "report-requests"),
			ReconnectDelay: getEnvAsDuration("RABBITMQ_RECONNECT_DELAY", "5s"),
		},
		Clients: ClientsConfig{
			ContactServiceURL: getEnv("CONTACT_SERVICE_URL", "http://localhost:8080"),
			ReportServiceURL:  getEnv("REPORT_SERVICE_URL", "http://localhost:8081"),
			RequestTimeout:    getEnvAsDuration("CLIENT_REQUEST_TIMEOUT", "30s"),
		},
		Health: HealthConfig{
			Host: getEnv("HEALTH_HOST", "0.0.0.0"),
			Port: getEnvAsInt("HEALTH_PORT", 8082),
		},
		Observability: ObservabilityConfig{
			ServiceName:    getEnv("SERVICE_NAME", "report-worker"),
			ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
			TracingEnabled: getEnvAsBool("TRACING_ENABLED", false),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			OTELEndpoint:   getEnv("OTEL_ENDPOINT", ""),
		},
	}

	return config, nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
