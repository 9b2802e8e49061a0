package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

type Config struct {
	AppURL   string
	GRPCPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RabbitMQUser     string
	RabbitMQPassword string
	RabbitMQHost     string
	RabbitMQPort     string
	ActivityQueue    string

	RedisAddr            string
	BoardCacheTTLSeconds int

	StorageDir     string
	StorageBaseURL string

	JWTSecretKey string

	// PublicBaseURL - адрес, с которого строятся публичные ссылки на доски
	PublicBaseURL string

	ShutdownTimeoutSeconds int
	MaxUploadMB            int
	MaxUploadFiles         int
}

func Load() Config {
	appHost := getEnv("APP_HOST", "0.0.0.0")
	appPort := getEnv("APP_PORT", "8080")

	cfg := Config{
		AppURL:   fmt.Sprintf("%s:%s", appHost, appPort),
		GRPCPort: getEnv("GRPC_PORT", "9090"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "kanban"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),
		RabbitMQHost:     getEnv("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		ActivityQueue:    getEnv("ACTIVITY_QUEUE", "task_activity"),

		// пустой адрес - кеш доски в памяти процесса
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		BoardCacheTTLSeconds: getEnvAsInt("BOARD_CACHE_TTL_SECONDS", 300),

		StorageDir:     getEnv("STORAGE_DIR", "./uploads"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "/files"),

		JWTSecretKey: getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),

		ShutdownTimeoutSeconds: getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10),
		MaxUploadMB:            getEnvAsInt("MAX_UPLOAD_MB", 10),
		MaxUploadFiles:         getEnvAsInt("MAX_UPLOAD_FILES", 10),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
	}

	validate(cfg)
	return cfg
}

// DatabaseURL - строка подключения для pgx и migrate
func (c Config) DatabaseURL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func (c Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.RabbitMQUser, c.RabbitMQPassword, c.RabbitMQHost, c.RabbitMQPort)
}

func validate(cfg Config) {
	if cfg.AppURL == "" {
		log.Fatal("APP_HOST/APP_PORT must not be empty")
	}
	if cfg.DBName == "" {
		log.Fatal("DB_NAME must not be empty")
	}
	if cfg.ActivityQueue == "" {
		log.Fatal("ACTIVITY_QUEUE must not be empty")
	}
	if cfg.BoardCacheTTLSeconds <= 0 {
		log.Fatal("BOARD_CACHE_TTL_SECONDS must be greater than 0")
	}
	if cfg.StorageDir == "" {
		log.Fatal("STORAGE_DIR must not be empty")
	}
	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY must not be empty")
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		log.Fatal("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")
	}
	if cfg.MaxUploadMB <= 0 {
		log.Fatal("MAX_UPLOAD_MB must be greater than 0")
	}
	if cfg.MaxUploadFiles <= 0 {
		log.Fatal("MAX_UPLOAD_FILES must be greater than 0")
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s", key)
		}
		return i
	}
	return defaultVal
}
