package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	// SQLite Configuration (record store for items, transactions, activity)
	SQLitePath string
	// JWT Configuration
	JWTSecret string
	// Inventory behavior
	DefaultLowStockThreshold int
	// Redis Configuration (optional - for item read cache)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      int  // Cache TTL in seconds
	UseCache      bool // Whether to use cache (Redis) or not
	// Kafka Configuration (optional - for domain events)
	KafkaBrokers           []string
	KafkaTopicItems        string
	KafkaTopicTransactions string
	KafkaAcks              string
	KafkaRetries           int
	UseKafka               bool
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// .env file is optional, continue with environment variables
	}

	// Parse Kafka brokers (comma-separated)
	kafkaBrokersStr := getEnv("KAFKA_BROKERS", "localhost:9093")
	kafkaBrokers := strings.Split(kafkaBrokersStr, ",")
	for i, broker := range kafkaBrokers {
		kafkaBrokers[i] = strings.TrimSpace(broker)
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		// SQLite Configuration
		SQLitePath: getEnv("SQLITE_PATH", "./inventory.db"),
		// JWT Configuration
		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production-min-32-chars"),
		// Inventory behavior
		DefaultLowStockThreshold: getEnvAsInt("DEFAULT_LOW_STOCK_THRESHOLD", 10),
		// Redis Configuration (optional)
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		CacheTTL:      getEnvAsInt("CACHE_TTL", 300),    // 5 minutes default
		UseCache:      getEnvAsBool("USE_CACHE", false), // Cache is optional, default false
		// Kafka Configuration (optional - for domain events)
		KafkaBrokers:           kafkaBrokers,
		KafkaTopicItems:        getEnv("KAFKA_TOPIC_ITEMS", "inventory.items"),
		KafkaTopicTransactions: getEnv("KAFKA_TOPIC_TRANSACTIONS", "inventory.transactions"),
		KafkaAcks:              getEnv("KAFKA_ACKS", "all"),
		KafkaRetries:           getEnvAsInt("KAFKA_RETRIES", 3),
		UseKafka:               getEnvAsBool("USE_KAFKA", false), // Kafka is optional, default false
	}
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.ToLower(value) == "true" || value == "1"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}
