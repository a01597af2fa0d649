package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/cal/internal/flagx"
	"github.com/dmitrijs2005/cal/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk form of Config. Durations accept "15m" or
// integer nanoseconds.
type FileConfig struct {
	EndpointAddrGRPC  string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	EndpointAddrHTTP  string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN       string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey         string         `json:"secret_key" yaml:"secret_key"`
	RunMigrations     *bool          `json:"run_migrations" yaml:"run_migrations"`
	PosterURLValidity timex.Duration `json:"poster_url_validity" yaml:"poster_url_validity"`
	S3RootUser        string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword    string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket          string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region          string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	LogLevel          string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c/-config into config. Files ending in
// .yaml or .yml are read as YAML, anything else as JSON. Keys missing from
// the file leave the current values alone. Unreadable or invalid files panic.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.RunMigrations != nil {
		config.RunMigrations = *c.RunMigrations
	}
	if c.PosterURLValidity.Duration != 0 {
		config.PosterURLValidity = c.PosterURLValidity.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
