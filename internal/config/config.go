// Package config loads service configuration from OCEANMETA_* environment
// variables, with an optional TOML file as the base layer. Environment
// values always win over file values.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config carries every tunable of the server and CLI.
type Config struct {
	HTTPAddr   string `toml:"http_addr"`   // OCEANMETA_HTTP_ADDR (default ":8080")
	SchemaPath string `toml:"schema_path"` // OCEANMETA_SCHEMA_PATH (default "docs/schema/ocean_carbon_bundle.json")

	StoreDriver string `toml:"store_driver"` // OCEANMETA_STORE_DRIVER: memory|sqlite|postgres (default memory)
	SQLitePath  string `toml:"sqlite_path"`  // OCEANMETA_SQLITE_PATH (default "oceanmeta.db")
	PostgresDSN string `toml:"postgres_dsn"` // OCEANMETA_POSTGRES_DSN (driver default applies when empty)

	ArchiveDriver string `toml:"archive_driver"` // OCEANMETA_ARCHIVE_DRIVER: fs|s3|memory (default fs)
	ArchiveFSRoot string `toml:"archive_fs_root"` // OCEANMETA_ARCHIVE_FS_ROOT (default "./archivedata")

	S3Bucket          string `toml:"s3_bucket"`            // OCEANMETA_ARCHIVE_S3_BUCKET
	S3Region          string `toml:"s3_region"`            // OCEANMETA_ARCHIVE_S3_REGION (default "us-east-1")
	S3Endpoint        string `toml:"s3_endpoint"`          // OCEANMETA_ARCHIVE_S3_ENDPOINT (for MinIO)
	S3AccessKeyID     string `toml:"s3_access_key_id"`     // OCEANMETA_ARCHIVE_S3_ACCESS_KEY_ID
	S3SecretAccessKey string `toml:"s3_secret_access_key"` // OCEANMETA_ARCHIVE_S3_SECRET_ACCESS_KEY
	S3SessionToken    string `toml:"s3_session_token"`     // OCEANMETA_ARCHIVE_S3_SESSION_TOKEN
	S3PathStyle       bool   `toml:"s3_path_style"`        // OCEANMETA_ARCHIVE_S3_PATH_STYLE=true

	MetricsEnabled bool `toml:"metrics_enabled"` // OCEANMETA_METRICS_ENABLED=true exposes /metrics
}

// Load assembles the configuration: defaults, then the TOML file named by
// OCEANMETA_CONFIG (if any), then environment overrides.
func Load() (*Config, error) {
	c := &Config{
		HTTPAddr:      ":8080",
		SchemaPath:    "docs/schema/ocean_carbon_bundle.json",
		StoreDriver:   "memory",
		SQLitePath:    "oceanmeta.db",
		ArchiveDriver: "fs",
		ArchiveFSRoot: "./archivedata",
		S3Region:      "us-east-1",
	}

	if path := os.Getenv("OCEANMETA_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	applyEnv(&c.HTTPAddr, "OCEANMETA_HTTP_ADDR")
	applyEnv(&c.SchemaPath, "OCEANMETA_SCHEMA_PATH")
	applyEnv(&c.StoreDriver, "OCEANMETA_STORE_DRIVER")
	applyEnv(&c.SQLitePath, "OCEANMETA_SQLITE_PATH")
	applyEnv(&c.PostgresDSN, "OCEANMETA_POSTGRES_DSN")
	applyEnv(&c.ArchiveDriver, "OCEANMETA_ARCHIVE_DRIVER")
	applyEnv(&c.ArchiveFSRoot, "OCEANMETA_ARCHIVE_FS_ROOT")
	applyEnv(&c.S3Bucket, "OCEANMETA_ARCHIVE_S3_BUCKET")
	applyEnv(&c.S3Region, "OCEANMETA_ARCHIVE_S3_REGION")
	applyEnv(&c.S3Endpoint, "OCEANMETA_ARCHIVE_S3_ENDPOINT")
	applyEnv(&c.S3AccessKeyID, "OCEANMETA_ARCHIVE_S3_ACCESS_KEY_ID")
	applyEnv(&c.S3SecretAccessKey, "OCEANMETA_ARCHIVE_S3_SECRET_ACCESS_KEY")
	applyEnv(&c.S3SessionToken, "OCEANMETA_ARCHIVE_S3_SESSION_TOKEN")
	applyEnvBool(&c.S3PathStyle, "OCEANMETA_ARCHIVE_S3_PATH_STYLE")
	applyEnvBool(&c.MetricsEnabled, "OCEANMETA_METRICS_ENABLED")

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("OCEANMETA_STORE_DRIVER must be memory, sqlite, or postgres; got %q", c.StoreDriver)
	}
	switch c.ArchiveDriver {
	case "fs", "s3", "memory":
	default:
		return fmt.Errorf("OCEANMETA_ARCHIVE_DRIVER must be fs, s3, or memory; got %q", c.ArchiveDriver)
	}
	if c.ArchiveDriver == "s3" && c.S3Bucket == "" {
		return fmt.Errorf("OCEANMETA_ARCHIVE_S3_BUCKET is required for the s3 archive driver")
	}
	return nil
}

func applyEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func applyEnvBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.EqualFold(v, "true") || v == "1"
	}
}
