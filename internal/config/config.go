package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DB        DBConfig
	Storage   StorageConfig
	MinIO     MinIOConfig
	S3        S3Config
	JWT       JWTConfig
	Server    ServerConfig
	Bootstrap BootstrapConfig
	Google    GoogleConfig
	Gallery   GalleryConfig
	Audit     AuditConfig
	Log       LogConfig
	Templates TemplatesConfig
}

type DBConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type StorageConfig struct {
	Backend string
}

type MinIOConfig struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
}

type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

type ServerConfig struct {
	Port        string
	FrontendURL string
	CORSOrigins []string
	Timezone    string
}

// Location resolves the configured timezone, falling back to UTC when unknown.
func (s ServerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func (g GoogleConfig) Enabled() bool {
	return g.ClientID != ""
}

type GalleryConfig struct {
	MaxUploadMB int
	MaxWidth    int
	JPEGQuality int
	ListLimit   int
	URLExpiry   time.Duration
}

type AuditConfig struct {
	QueueSize int
}

type LogConfig struct {
	Level string
}

type TemplatesConfig struct {
	Path string
}

func Load() *Config {
	s3Region := getEnv("S3_REGION", "eu-central-1")
	frontendURL := getEnv("FRONTEND_URL", "http://localhost:3000")

	return &Config{
		DB: DBConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Path:     getEnv("DB_PATH", "shiftboard.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "hospoda"),
			Password: getEnv("DB_PASSWORD", "hospoda_secret"),
			Name:     getEnv("DB_NAME", "hospoda"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "minio"),
		},
		MinIO: MinIOConfig{
			Endpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
			PublicEndpoint: getEnv("MINIO_PUBLIC_ENDPOINT", getEnv("MINIO_ENDPOINT", "localhost:9000")),
			AccessKey:      getEnv("MINIO_ACCESS_KEY", "hospoda"),
			SecretKey:      getEnv("MINIO_SECRET_KEY", "hospoda_secret"),
			Bucket:         getEnv("MINIO_BUCKET", "hospoda"),
			UseSSL:         getEnvAsBool("MINIO_USE_SSL", false),
		},
		S3: S3Config{
			Region:    s3Region,
			Endpoint:  getEnv("S3_ENDPOINT", "s3."+s3Region+".amazonaws.com"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    getEnv("S3_BUCKET", "hospoda"),
			UseSSL:    getEnvAsBool("S3_USE_SSL", true),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-me-in-production"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			FrontendURL: frontendURL,
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{frontendURL}),
			Timezone:    getEnv("APP_TIMEZONE", "Europe/Prague"),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    strings.ToLower(getEnv("BOOTSTRAP_ADMIN_EMAIL", "admin@hospoda.local")),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		},
		Gallery: GalleryConfig{
			MaxUploadMB: getEnvAsInt("GALLERY_MAX_UPLOAD_MB", 20),
			MaxWidth:    1200,
			JPEGQuality: 80,
			ListLimit:   50,
			URLExpiry:   getEnvAsDuration("GALLERY_URL_EXPIRY", time.Hour),
		},
		Audit: AuditConfig{
			QueueSize: getEnvAsInt("AUDIT_QUEUE_SIZE", 256),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Templates: TemplatesConfig{
			Path: getEnv("TEMPLATES_PATH", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping empty entries.
func getEnvAsList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
