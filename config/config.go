package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	awspkg "github.com/yashrajoria/E-Commerce-backend/storefront/pkg/aws"
)

const (
	StoreRedis  = "redis"
	StoreDynamo = "dynamodb"
	StoreMongo  = "mongo"

	TransportSNS   = "sns"
	TransportSQS   = "sqs"
	TransportKafka = "kafka"

	dbSecretName    = "storefront/DB_CREDENTIALS"
	redisSecretName = "storefront/REDIS_URL"
)

type Config struct {
	Port   string
	AppEnv string

	RedisURL string
	CartTTL  time.Duration

	CartStore       string
	CartDynamoTable string
	DynamoEndpoint  string
	MongoURI        string
	MongoDB         string

	ProductServiceURL string
	ProductTimeout    time.Duration
	ProductCacheTTL   time.Duration

	CheckoutTransport   string
	CheckoutSNSTopicARN string
	CheckoutQueueURL    string
	KafkaBrokers        []string
	KafkaTopic          string
	IdempotencyTTL      time.Duration

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	PostgresTimeZone string

	JWTSecret      string
	AllowedOrigins []string

	RateLimitPerMinute int
	RateLimitBurst     int

	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string

	UseSecrets bool
}

// SecretSource is the part of the Secrets Manager client used for overrides.
type SecretSource interface {
	GetSecret(ctx context.Context, name string) (string, error)
	GetJSONSecret(ctx context.Context, name string) (map[string]string, error)
}

// Load reads configuration from the environment (and .env when present),
// then applies Secrets Manager overrides when AWS_USE_SECRETS=true.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := fromEnv()

	if cfg.UseSecrets {
		awsCfg, err := awspkg.LoadAWSConfig(context.Background())
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		cfg.ApplySecrets(ctx, awspkg.NewSecretsClient(awsCfg))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() *Config {
	return &Config{
		Port:   getEnv("PORT", "8086"),
		AppEnv: getEnv("APP_ENV", "development"),

		RedisURL: getEnv("REDIS_URL", "redis://redis:6379"),
		CartTTL:  getDuration("CART_TTL", 7*24*time.Hour),

		CartStore:       strings.ToLower(getEnv("CART_STORE", StoreRedis)),
		CartDynamoTable: getEnv("CART_DYNAMO_TABLE", "storefront-carts"),
		DynamoEndpoint:  os.Getenv("DYNAMODB_ENDPOINT"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://mongo:27017"),
		MongoDB:         getEnv("MONGO_DB", "storefront"),

		ProductServiceURL: getEnv("PRODUCT_SERVICE_URL", "http://product-service:8082"),
		ProductTimeout:    getDuration("PRODUCT_SERVICE_TIMEOUT", 5*time.Second),
		ProductCacheTTL:   getDuration("PRODUCT_CACHE_TTL", 5*time.Minute),

		CheckoutTransport:   strings.ToLower(getEnv("CHECKOUT_TRANSPORT", TransportSNS)),
		CheckoutSNSTopicARN: os.Getenv("CHECKOUT_SNS_TOPIC_ARN"),
		CheckoutQueueURL:    os.Getenv("CHECKOUT_QUEUE_URL"),
		KafkaBrokers:        splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "checkout.requested"),
		IdempotencyTTL:      getDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 20),

		CloudWatchEnabled:   getBool("CLOUDWATCH_ENABLED", false),
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "Storefront"),
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/storefront/services"),

		UseSecrets: os.Getenv("AWS_USE_SECRETS") == "true",
	}
}

// ApplySecrets overrides database credentials and the Redis URL with values
// from Secrets Manager. Missing secrets leave the env values in place.
func (c *Config) ApplySecrets(ctx context.Context, sm SecretSource) {
	if m, err := sm.GetJSONSecret(ctx, dbSecretName); err == nil {
		override(&c.PostgresUser, m["POSTGRES_USER"])
		override(&c.PostgresPassword, m["POSTGRES_PASSWORD"])
		override(&c.PostgresDB, m["POSTGRES_DB"])
		override(&c.PostgresHost, m["POSTGRES_HOST"])
		override(&c.PostgresPort, m["POSTGRES_PORT"])
	}
	if v, err := sm.GetSecret(ctx, redisSecretName); err == nil {
		override(&c.RedisURL, strings.TrimSpace(v))
	}
}

// Validate checks the selectors and the settings each selected backend needs.
func (c *Config) Validate() error {
	switch c.CartStore {
	case StoreRedis, StoreDynamo:
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when CART_STORE=%s", StoreMongo)
		}
	default:
		return fmt.Errorf("unknown CART_STORE %q", c.CartStore)
	}

	switch c.CheckoutTransport {
	case TransportSNS:
		if c.CheckoutSNSTopicARN == "" {
			return fmt.Errorf("CHECKOUT_SNS_TOPIC_ARN is required when CHECKOUT_TRANSPORT=%s", TransportSNS)
		}
	case TransportSQS:
		if c.CheckoutQueueURL == "" {
			return fmt.Errorf("CHECKOUT_QUEUE_URL is required when CHECKOUT_TRANSPORT=%s", TransportSQS)
		}
	case TransportKafka:
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return fmt.Errorf("KAFKA_BROKERS and KAFKA_TOPIC are required when CHECKOUT_TRANSPORT=%s", TransportKafka)
		}
	default:
		return fmt.Errorf("unknown CHECKOUT_TRANSPORT %q", c.CheckoutTransport)
	}

	if c.PostgresUser == "" || c.PostgresDB == "" {
		return fmt.Errorf("database config incomplete")
	}
	return nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
