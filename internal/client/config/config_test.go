package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withArgs replaces os.Args for the duration of the test.
func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"cal"}, args...)
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, Config{
		ServerEndpointAddr:    "127.0.0.1:50051",
		DatabasePath:          "cal.db",
		OnlineCheckInterval:   3 * time.Second,
		ReminderCheckInterval: 30 * time.Second,
		ReminderLeadTime:      15 * time.Minute,
		OutputDir:             "out",
		LogLevel:              "warn",
	}, c)
}

func TestLoadConfig_NoSources(t *testing.T) {
	withArgs(t)

	cfg := LoadConfig()

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestLoadConfig_FlagsOverrideFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server_endpoint_addr: calendar.example.org:443\n"+
			"reminder_lead_time: 1h\n"+
			"output_dir: qr\n"), 0o600))

	withArgs(t, "-config", path, "-lead", "5")

	cfg := LoadConfig()

	assert.Equal(t, "calendar.example.org:443", cfg.ServerEndpointAddr, "from file")
	assert.Equal(t, "qr", cfg.OutputDir, "from file")
	assert.Equal(t, 5*time.Minute, cfg.ReminderLeadTime, "flag beats file")
	assert.Equal(t, "cal.db", cfg.DatabasePath, "default kept")
}

func TestLoadConfig_MissingFilePanics(t *testing.T) {
	withArgs(t, "-c", filepath.Join(t.TempDir(), "absent.json"))

	assert.Panics(t, func() { LoadConfig() })
}

func TestLoadConfig_SubUnitDurationsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"reminder_check_interval":"500ms","reminder_lead_time":"90s"}`), 0o600))
	withArgs(t, "-c", path)

	cfg := LoadConfig()

	assert.Equal(t, 500*time.Millisecond, cfg.ReminderCheckInterval)
	assert.Equal(t, 90*time.Second, cfg.ReminderLeadTime)
}

func TestLoadConfig_ZeroIntervalFlagPanics(t *testing.T) {
	for _, args := range [][]string{{"-r", "0"}, {"-i", "0"}, {"-i", "-3"}} {
		withArgs(t, args...)
		assert.Panics(t, func() { LoadConfig() }, "%v", args)
	}
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()
	require.NoError(t, c.Validate())

	c.ReminderCheckInterval = 0
	assert.ErrorContains(t, c.Validate(), "reminder check interval must be positive")

	c.LoadDefaults()
	c.ReminderLeadTime = -time.Minute
	assert.ErrorContains(t, c.Validate(), "lead time must not be negative")

	c.LoadDefaults()
	c.ReminderLeadTime = 0
	assert.NoError(t, c.Validate())
}
