package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the daemon needs, resolved once at startup.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	WorkerCount       int
	MaxStageAttempts  int
	VisibilityTimeout time.Duration
	SignedURLTTL      time.Duration
	WorkDir           string

	QueueBackend string // "kafka" or "local"
	StoreBackend string // "redis" or "memory"

	S3Bucket       string
	S3Region       string
	S3Profile      string
	S3UsePathStyle bool

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OpenAIAPIKey     string
	CohereAPIKey     string
	CohereModel      string
	ElevenLabsAPIKey string
	GoogleAPIKey     string
}

// Load reads .env (if present) and builds a Config from environment
// variables, falling back to the defaults in constants.go.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:      GetEnv("PORT", "8080"),
		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogFormat: GetEnv("LOG_FORMAT", "json"),

		WorkerCount:       GetEnvInt("WORKER_COUNT", DefaultWorkerCount),
		MaxStageAttempts:  GetEnvInt("MAX_STAGE_ATTEMPTS", DefaultMaxStageAttempts),
		VisibilityTimeout: GetEnvDuration("VISIBILITY_TIMEOUT", DefaultVisibilityTimeout),
		SignedURLTTL:      GetEnvDuration("SIGNED_URL_TTL", DefaultSignedURLTTL),
		WorkDir:           GetEnv("WORK_DIR", os.TempDir()),

		QueueBackend: GetEnv("QUEUE_BACKEND", "local"),
		StoreBackend: GetEnv("STORE_BACKEND", "memory"),

		S3Bucket:       GetEnv("S3_BUCKET", ""),
		S3Region:       GetEnv("S3_REGION", ""),
		S3Profile:      GetEnv("S3_PROFILE", ""),
		S3UsePathStyle: strings.EqualFold(GetEnv("S3_USE_PATH_STYLE", ""), "true"),

		KafkaBrokers: splitList(GetEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   GetEnv("KAFKA_TOPIC", "dubbing-tasks"),
		KafkaGroupID: GetEnv("KAFKA_GROUP_ID", "dubbing-workers"),

		RedisAddr:     GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: GetEnv("REDIS_PASS", ""),
		RedisDB:       GetEnvInt("REDIS_DB", 0),

		OpenAIAPIKey:     GetEnv("OPENAI_API_KEY", ""),
		CohereAPIKey:     GetEnv("COHERE_API_KEY", ""),
		CohereModel:      GetEnv("COHERE_MODEL", DefaultTranslationModel),
		ElevenLabsAPIKey: GetEnv("ELEVENLABS_API_KEY", ""),
		GoogleAPIKey:     GetEnv("GOOGLE_API_KEY", ""),
	}
}

// GetEnv returns the value of the environment variable named by key, or
// fallback if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by
// key, or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvDuration returns the duration value of the environment variable named
// by key (Go duration syntax, e.g. "5m"), or fallback if unset or invalid.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
