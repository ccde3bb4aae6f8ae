package archive

import (
	"errors"
	"fmt"
	"time"

	"github.com/ManuelReschke/IntegrationHub/internal/pkg/env"
)

// Config holds the raw payload archive settings.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // optional, for S3-compatible services
	Prefix          string
	Enabled         bool
}

// LoadConfig loads archive settings from ARCHIVE_S3_* variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AccessKeyID:     env.GetEnv("ARCHIVE_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("ARCHIVE_S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("ARCHIVE_S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("ARCHIVE_S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("ARCHIVE_S3_ENDPOINT_URL", ""),
		Prefix:          env.GetEnv("ARCHIVE_S3_PREFIX", "integration-events"),
		Enabled:         env.GetEnvBool("ARCHIVE_S3_ENABLED", false),
	}

	if cfg.Enabled {
		if cfg.AccessKeyID == "" {
			return nil, errors.New("ARCHIVE_S3_ACCESS_KEY_ID is required when the archive is enabled")
		}
		if cfg.SecretAccessKey == "" {
			return nil, errors.New("ARCHIVE_S3_SECRET_ACCESS_KEY is required when the archive is enabled")
		}
		if cfg.BucketName == "" {
			return nil, errors.New("ARCHIVE_S3_BUCKET_NAME is required when the archive is enabled")
		}
	}
	return cfg, nil
}

// ObjectKey returns prefix/source/YYYY/MM/DD/<id>.json for an event.
func (c *Config) ObjectKey(source string, id uint, receivedAt time.Time) string {
	t := receivedAt.UTC()
	return fmt.Sprintf("%s/%s/%04d/%02d/%02d/%d.json", c.Prefix, source, t.Year(), int(t.Month()), t.Day(), id)
}
