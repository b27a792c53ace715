package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Elastic  ElasticsearchConfig
	Shopify  ShopifyConfig
	SendGrid SendGridConfig
	Sweep    SweepConfig
	Widget   WidgetConfig
}

type ServerConfig struct {
	AppEnv         string
	GRPCPort       string
	HTTPPort       string
	RequestTimeout time.Duration
	// AutoMigrate applies the embedded schema on start.
	AutoMigrate bool
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

type ShopifyConfig struct {
	APISecret     string
	APIVersion    string
	ClientTimeout time.Duration
}

type SendGridConfig struct {
	APIKey   string
	From     string
	FromName string
}

type SweepConfig struct {
	Spec    string
	LockTTL time.Duration
}

type WidgetConfig struct {
	CacheTTL time.Duration
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:         getEnv("APP_ENV", "dev"),
			GRPCPort:       getEnv("GRPC_PORT", ":8082"),
			HTTPPort:       getEnv("HTTP_PORT", ":8080"),
			RequestTimeout: getEnvDuration("HTTP_REQUEST_TIMEOUT", 30*time.Second),
			AutoMigrate:    getEnvBool("AUTO_MIGRATE", true),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5433"),
			User:            getEnv("POSTGRES_USER", "omnipos"),
			Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:          getEnv("POSTGRES_DB", "availability"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC_ORDERS", "shopify.orders"),
			GroupID: getEnv("KAFKA_GROUP_ID", "availability"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Shopify: ShopifyConfig{
			APISecret:     getEnv("SHOPIFY_API_SECRET", ""),
			APIVersion:    getEnv("SHOPIFY_API_VERSION", "2024-01"),
			ClientTimeout: getEnvDuration("SHOPIFY_CLIENT_TIMEOUT", 10*time.Second),
		},
		SendGrid: SendGridConfig{
			APIKey:   getEnv("SENDGRID_API_KEY", ""),
			From:     getEnv("SENDGRID_FROM", "no-reply@example.com"),
			FromName: getEnv("SENDGRID_FROM_NAME", "Availability"),
		},
		Sweep: SweepConfig{
			Spec:    getEnv("SWEEP_SPEC", "@hourly"),
			LockTTL: getEnvDuration("SWEEP_LOCK_TTL", 50*time.Minute),
		},
		Widget: WidgetConfig{
			CacheTTL: getEnvDuration("WIDGET_CACHE_TTL", 5*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
