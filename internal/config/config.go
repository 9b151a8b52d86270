package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	GRPCAddr string

	MySQLDSN  string
	RedisAddr string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	SessionSecret string
	SessionTTL    time.Duration

	AdminAllowList []string
	WhatsAppNumber string
	StoreTimeout   time.Duration
	LogLevel       string
}

// Load reads an optional .env file from the working directory, then the
// environment. Variables already set in the environment win.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

func LoadFiles(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	sessionTTL, err := duration("SESSION_TTL", 72*time.Hour)
	if err != nil {
		return nil, err
	}
	storeTimeout, err := duration("STORE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:           env("HTTP_ADDR", ":8080"),
		GRPCAddr:           env("GRPC_ADDR", ":50051"),
		MySQLDSN:           env("MYSQL_DSN", "root:root@tcp(localhost:3306)/cartec?parseTime=true"),
		RedisAddr:          env("REDIS_ADDR", "localhost:6379"),
		S3Endpoint:         env("S3_ENDPOINT", ""),
		S3Region:           env("S3_REGION", "ap-south-1"),
		S3Bucket:           env("S3_BUCKET", "cartec-images"),
		S3AccessKey:        env("S3_ACCESS_KEY", ""),
		S3SecretKey:        env("S3_SECRET_KEY", ""),
		S3PublicURL:        env("S3_PUBLIC_URL", ""),
		GoogleClientID:     env("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: env("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  env("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/callback"),
		SessionSecret:      env("SESSION_SECRET", ""),
		SessionTTL:         sessionTTL,
		AdminAllowList:     list(os.Getenv("ADMIN_ALLOWLIST")),
		WhatsAppNumber:     env("WHATSAPP_NUMBER", "919527006593"),
		StoreTimeout:       storeTimeout,
		LogLevel:           strings.ToLower(env("LOG_LEVEL", "info")),
	}
	if cfg.S3PublicURL == "" {
		cfg.S3PublicURL = defaultPublicURL(cfg)
	}

	return cfg, nil
}

// Validate checks the settings the serve command cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func defaultPublicURL(c *Config) string {
	if c.S3Endpoint != "" {
		return strings.TrimRight(c.S3Endpoint, "/") + "/" + c.S3Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.S3Bucket, c.S3Region)
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func list(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
