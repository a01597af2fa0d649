package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func setArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"server"}, args...)
}

func TestParseFlags_EveryFlag(t *testing.T) {
	setArgs(t,
		"-a", "127.0.0.1:9090", "-l", "127.0.0.1:8081",
		"-d", "postgres://cal@db/cal", "-s", "s3cr3t", "-v", "5",
		"-u", "minio", "-p", "minio123", "-b", "flyers", "-g", "eu-central-1",
		"-e", "http://minio:9000", "-log", "warn", "-m", "-k")

	got := &Config{}
	parseFlags(got)

	want := &Config{
		EndpointAddrGRPC:  "127.0.0.1:9090",
		EndpointAddrHTTP:  "127.0.0.1:8081",
		DatabaseDSN:       "postgres://cal@db/cal",
		SecretKey:         "s3cr3t",
		RunMigrations:     true,
		PrintKeys:         true,
		PosterURLValidity: 5 * time.Minute,
		S3RootUser:        "minio",
		S3RootPassword:    "minio123",
		S3Bucket:          "flyers",
		S3Region:          "eu-central-1",
		S3BaseEndpoint:    "http://minio:9000",
		LogLevel:          "warn",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseFlags mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFlags_OnlyOverridesGivenFlags(t *testing.T) {
	setArgs(t, "-c", "server.yaml", "-x", "1", "-d", "postgres://other/cal")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	var want Config
	want.LoadDefaults()
	want.DatabaseDSN = "postgres://other/cal"
	assert.Equal(t, want, *cfg)
}

func TestParseFlags_BadValidityPanics(t *testing.T) {
	setArgs(t, "-v", "15m")
	assert.Panics(t, func() { parseFlags(&Config{}) })
}
