package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "data/gophdesk.db", c.DatabasePath)
	assert.Equal(t, time.Duration(0), c.SessionMaxAge)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-d", "/tmp/x.db"}

	cfg := LoadConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "/tmp/x.db", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
}
