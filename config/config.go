package config

import (
	"os"
	"strings"
)

// Config holds the environment-driven settings. Everything is optional;
// missing values disable the corresponding integration.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// TempDir for downloaded inputs and rendered outputs.
	TempDir string

	// FontPath to a TTF used for measurement and preview rendering.
	// Empty falls back to the heuristic measurer.
	FontPath string

	// RedisAddr enables the Redis-backed template registry when set.
	RedisAddr string

	// S3 output delivery. Uploads are skipped unless S3Bucket is set.
	S3Bucket       string
	S3Region       string
	S3Prefix       string
	S3PublicBase   string
	S3UsePathStyle bool

	// Kafka job intake. The consumer is not started unless brokers are set.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
}

// Load reads configuration from the environment.
func Load() Config {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		TempDir:        getEnv("TEMP_DIR", os.TempDir()),
		FontPath:       os.Getenv("FONT_PATH"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		S3Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		S3PublicBase:   strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
		S3UsePathStyle: strings.EqualFold(os.Getenv("S3_USE_PATH_STYLE"), "true"),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "render.jobs"),
		KafkaGroupID:   getEnv("KAFKA_GROUP_ID", "captionforge"),
	}

	if prefix := strings.TrimSpace(os.Getenv("S3_PREFIX")); prefix != "" {
		cfg.S3Prefix = strings.Trim(prefix, "/") + "/"
	}

	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
