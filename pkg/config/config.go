package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// MaxPageSize bounds the configurable list page size.
const MaxPageSize = 1000

type Config struct {
	BaseURL                   string
	CoverDir                  string
	DatabaseBusyTimeout       time.Duration
	DatabaseConnectRetryCount int
	DatabaseConnectRetryDelay time.Duration
	DatabaseDebug             bool
	DatabaseFilePath          string
	Hostname                  string
	JWTSecret                 string
	MailFrom                  string
	PageSize                  int
	ResendAPIKey              string
	ServerHost                string
	ServerPort                int
}

const environmentENV = "ENVIRONMENT"

func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		Hostname:                  hostname,
		MailFrom:                  "Bookspace <onboarding@resend.dev>",
		PageSize:                  20,
		ServerPort:                4870,
	}

	switch os.Getenv(environmentENV) {
	case "development", "":
		loadDevelopmentConfig(cfg)
	case "test":
		loadTestConfig(cfg)
	case "production":
		loadProductionConfig(cfg)
	}

	loadCommonEnv(cfg)

	return cfg, nil
}

// loadCommonEnv applies environment overrides shared by all environments.
// Provider credentials are opaque values supplied by the deployment.
func loadCommonEnv(cfg *Config) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("RESEND_API_KEY"); v != "" {
		cfg.ResendAPIKey = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		cfg.MailFrom = v
	}
	if v := os.Getenv("PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			cfg.PageSize = min(n, MaxPageSize)
		}
	}
}
