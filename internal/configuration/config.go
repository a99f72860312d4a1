package configuration

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig

	// RetentionDays deletes assets older than this many days; 0 keeps
	// everything for the lifetime of the event.
	RetentionDays int

	AdminPassword string

	// Optional integrations; each stays disabled while its address is
	// empty.
	RedisAddr string
	NATSURL   string
	ClamAVURL string
	MinIO     MinIOConfig
}

type ServerConfig struct {
	Port string
	// ReadTimeout must cover a full multi-minute video upload;
	// IdleTimeout covers keep-alive gaps between gallery requests.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type UploadConfig struct {
	Dir                string
	MaxFileSizeBytes   int64
	MaxRequestBytes    int64
	MaxFilesPerRequest int
	BannedExtensions   []string
	AllowedExtensions  []string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getEnvDuration("READ_TIMEOUT", 10*time.Minute),
			WriteTimeout: getEnvDuration("WRITE_TIMEOUT", 2*time.Minute),
			IdleTimeout:  getEnvDuration("IDLE_TIMEOUT", 90*time.Second),
		},
		Upload: UploadConfig{
			Dir:                getEnv("UPLOAD_DIR", "./uploads"),
			MaxFileSizeBytes:   getEnvInt64("MAX_FILE_SIZE_BYTES", 4000<<20),
			MaxRequestBytes:    getEnvInt64("MAX_REQUEST_BYTES", 4200<<20),
			MaxFilesPerRequest: getEnvInt("MAX_FILES_PER_REQUEST", 30),
			BannedExtensions:   getEnvList("BANNED_EXTENSIONS"),
			AllowedExtensions:  getEnvList("ALLOWED_EXTENSIONS"),
		},
		RateLimit: RateLimitConfig{
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 20),
			Window:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		RetentionDays: getEnvInt("RETENTION_DAYS", 0),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		NATSURL:       getEnv("NATS_URL", ""),
		ClamAVURL:     getEnv("CLAMAV_URL", ""),
		MinIO: MinIOConfig{
			Endpoint:   getEnv("MINIO_ENDPOINT", ""),
			AccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:  getEnv("MINIO_SECRET_KEY", ""),
			BucketName: getEnv("MINIO_BUCKET", "wedding-media"),
			UseSSL:     getEnv("MINIO_USE_SSL", "false") == "true",
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList parses a comma-separated extension list; empty means "use
// the built-in defaults".
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
