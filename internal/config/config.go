package config

import (
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/emrgen/docrepo/internal/blob"
)

// Config is populated from environment variables. A .env file is loaded
// automatically when present; real environment variables take precedence.
type Config struct {
	// DBDriver is "postgres" or "sqlite".
	DBDriver string
	// DBDSN is the postgres DSN, or the sqlite file path.
	DBDSN string

	RedisAddr string

	KafkaBrokers string
	KafkaTopic   string

	Minio blob.MinioConfig

	// ReindexCron is the reconciliation schedule.
	ReindexCron string
	// Compression names the codec for metadata blobs: "", gzip, lz4, brotli.
	Compression string
}

func LoadConfig() *Config {
	return &Config{
		DBDriver:     getEnv("DB_DRIVER", "sqlite"),
		DBDSN:        getEnv("DB_DSN", ".db/docrepo.db"),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "document-events"),
		Minio: blob.MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		ReindexCron: getEnv("REINDEX_CRON", "@every 1m"),
		Compression: getEnv("COMPRESSION", ""),
	}
}

// GetDb opens the configured database.
func GetDb(cnf *Config) *gorm.DB {
	var dialector gorm.Dialector
	switch cnf.DBDriver {
	case "postgres":
		dialector = postgres.Open(cnf.DBDSN)
	default:
		dialector = sqlite.Open(cnf.DBDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}

	return db
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
