package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend selection values.
const (
	RecordBackendPostgres = "postgres"
	RecordBackendRedis    = "redis"

	BlobBackendMinIO = "minio"
	BlobBackendLocal = "local"

	AuthModeRemote = "remote"
	AuthModeJWT    = "jwt"
)

// Config aggregates runtime configuration for the artifact repo API.
type Config struct {
	Server   ServerConfig
	Artifact ArtifactConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	MinIO    MinIOConfig
	Local    LocalStorageConfig
	Auth     AuthConfig
	Metrics  MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ArtifactConfig groups coordinator settings.
type ArtifactConfig struct {
	// RecordBackend selects the metadata store: postgres or redis.
	RecordBackend string
	// BlobBackend selects physical storage: minio or local.
	BlobBackend string
	// BaseURL prefixes derived artifact download URLs.
	BaseURL string
	// AllowedTypes restricts upload content types; empty accepts any.
	AllowedTypes []string
	// BlobTimeout bounds a single blob-store save; a timeout fails the upload.
	BlobTimeout time.Duration
	// MaxUploadBytes caps a single upload payload.
	MaxUploadBytes int64
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// RedisConfig contains Redis connection details for the record store.
type RedisConfig struct {
	URL       string
	KeyPrefix string
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// LocalStorageConfig locates the on-disk blob directory.
type LocalStorageConfig struct {
	Dir string
}

// AuthConfig groups authentication-related settings.
type AuthConfig struct {
	// Mode selects the token validator: remote or jwt.
	Mode string
	// AuthenticateURL is the remote session-validation endpoint.
	AuthenticateURL string
	// RequestTimeout bounds calls to the remote validator.
	RequestTimeout time.Duration
	// JWTSecret signs locally validated access tokens (jwt mode).
	JWTSecret string
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	host := getString("ARTIFACTREPO_API_HOST", "0.0.0.0")
	port := getInt("ARTIFACTREPO_API_PORT", 8080)

	cfg := Config{
		Server: ServerConfig{
			Host:         host,
			Port:         port,
			ReadTimeout:  getDuration("ARTIFACTREPO_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("ARTIFACTREPO_API_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("ARTIFACTREPO_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Artifact: ArtifactConfig{
			RecordBackend:  strings.ToLower(getString("ARTIFACT_RECORD_BACKEND", RecordBackendPostgres)),
			BlobBackend:    strings.ToLower(getString("ARTIFACT_BLOB_BACKEND", BlobBackendMinIO)),
			BaseURL:        getString("ARTIFACT_BASE_URL", fmt.Sprintf("http://%s:%d/api", host, port)),
			AllowedTypes:   getStringList("ARTIFACT_ALLOWED_TYPES", nil),
			BlobTimeout:    getDuration("ARTIFACT_BLOB_TIMEOUT", 30*time.Second),
			MaxUploadBytes: getInt64("ARTIFACT_MAX_UPLOAD_BYTES", 100*1024*1024),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "artifactrepo_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "artifactrepo"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		Redis: RedisConfig{
			URL:       getString("REDIS_URL", "redis://localhost:6379"),
			KeyPrefix: getString("REDIS_KEY_PREFIX", "artifact:record:"),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "artifactrepo"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "artifacts"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Local: LocalStorageConfig{
			Dir: getString("ARTIFACT_LOCAL_DIR", "/var/lib/artifactrepo/blobs"),
		},
		Auth: AuthConfig{
			Mode:            strings.ToLower(getString("ARTIFACTREPO_AUTH_MODE", AuthModeRemote)),
			AuthenticateURL: getString("AUTH_SERVICE_AUTHENTICATE_URL", "http://localhost:8081/api/auth/me"),
			RequestTimeout:  getDuration("AUTH_SERVICE_TIMEOUT", 5*time.Second),
			JWTSecret:       getString("ARTIFACTREPO_JWT_SECRET", "change-me-to-a-32-byte-secret"),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("ARTIFACTREPO_METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getStringList(key string, fallback []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var list []string
	for _, item := range strings.Split(val, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			list = append(list, item)
		}
	}
	return list
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
