package directory

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/IntegrationHub/internal/pkg/env"
)

var defaultAccessGroups = []string{"beta", "aluno", "student", "premium", "vip", "member"}

// Config controls the directory client and the sync run.
type Config struct {
	BaseURL      string        `validate:"required,url"`
	Token        string        `validate:"required"`
	PageSize     int           `validate:"min=1,max=500"`
	MaxPages     int           `validate:"min=1"`
	Concurrency  int           `validate:"min=1,max=32"`
	AccessGroups []string      `validate:"min=1,dive,required"`
	Timeout      time.Duration `validate:"min=0"`
	LockTTL      time.Duration `validate:"min=0"`
}

// LoadConfig reads DIRECTORY_* settings and validates them.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		BaseURL:      strings.TrimRight(strings.TrimSpace(env.GetEnv("DIRECTORY_API_BASE_URL", "")), "/"),
		Token:        strings.TrimSpace(env.GetEnv("DIRECTORY_API_TOKEN", "")),
		PageSize:     env.GetEnvInt("DIRECTORY_SYNC_PAGE_SIZE", 100),
		MaxPages:     env.GetEnvInt("DIRECTORY_SYNC_MAX_PAGES", 1000),
		Concurrency:  env.GetEnvInt("DIRECTORY_SYNC_CONCURRENCY", 4),
		AccessGroups: env.GetEnvList("DIRECTORY_ACCESS_GROUPS", defaultAccessGroups),
		Timeout:      time.Duration(env.GetEnvInt("DIRECTORY_API_TIMEOUT_SECONDS", 15)) * time.Second,
		LockTTL:      time.Duration(env.GetEnvInt("DIRECTORY_SYNC_LOCK_TTL_MINUTES", 30)) * time.Minute,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid directory sync configuration: %w", err)
	}
	return nil
}
