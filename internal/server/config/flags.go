package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/cal/internal/flagx"
)

type stringFlag struct {
	name, usage string
	dst         func(*Config) *string
}

var stringFlags = []stringFlag{
	{"a", "gRPC listen address", func(c *Config) *string { return &c.EndpointAddrGRPC }},
	{"l", "HTTP listen address", func(c *Config) *string { return &c.EndpointAddrHTTP }},
	{"d", "PostgreSQL DSN", func(c *Config) *string { return &c.DatabaseDSN }},
	{"s", "API key signing secret", func(c *Config) *string { return &c.SecretKey }},
	{"u", "S3 access key", func(c *Config) *string { return &c.S3RootUser }},
	{"p", "S3 secret key", func(c *Config) *string { return &c.S3RootPassword }},
	{"b", "S3 poster bucket", func(c *Config) *string { return &c.S3Bucket }},
	{"g", "S3 region", func(c *Config) *string { return &c.S3Region }},
	{"e", "S3 endpoint, e.g. http://127.0.0.1:9000/", func(c *Config) *string { return &c.S3BaseEndpoint }},
	{"log", "log level", func(c *Config) *string { return &c.LogLevel }},
}

// parseFlags overlays config with command-line flags. -v takes the poster
// URL validity in minutes; -m and -k are switches. Flags that belong to
// other layers (such as -config) are skipped.
func parseFlags(config *Config) {
	names := []string{"-v"}
	for _, f := range stringFlags {
		names = append(names, "-"+f.name)
	}
	args := flagx.FilterArgs(os.Args[1:], names)
	args = append(args, flagx.FilterBoolArgs(os.Args[1:], []string{"-m", "-k"})...)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	for _, f := range stringFlags {
		dst := f.dst(config)
		fs.StringVar(dst, f.name, *dst, f.usage)
	}
	validity := fs.Int("v", int(config.PosterURLValidity/time.Minute), "poster upload URL validity in minutes")
	fs.BoolVar(&config.RunMigrations, "m", config.RunMigrations, "apply migrations on start")
	fs.BoolVar(&config.PrintKeys, "k", config.PrintKeys, "print anon and service API keys, then exit")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
	config.PosterURLValidity = time.Duration(*validity) * time.Minute
}
