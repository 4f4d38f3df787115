package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"ADDR", "ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_PRETTY", "MAX_MESSAGE_SIZE",
	"SEND_BUFFER_SIZE", "MESSAGE_RATE", "MESSAGE_BURST", "UPGRADE_RATE",
}

// clearEnv unsets every config key for the test and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADDR", ":9000")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("SEND_BUFFER_SIZE", "4")
	t.Setenv("MESSAGE_RATE", "2.5")
	t.Setenv("MESSAGE_BURST", "3")
	t.Setenv("UPGRADE_RATE", "1")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{
		Addr:           ":9000",
		AllowedOrigins: []string{"http://a.test", "http://b.test"},
		LogLevel:       "debug",
		LogPretty:      true,
		MaxMessageSize: 1024,
		SendBufferSize: 4,
		MessageRate:    2.5,
		MessageBurst:   3,
		UpgradeRate:    1,
	}, c)
}

func TestFromEnvInvalid(t *testing.T) {
	testCases := []struct {
		key, value string
	}{
		{"LOG_PRETTY", "maybe"},
		{"MAX_MESSAGE_SIZE", "big"},
		{"MAX_MESSAGE_SIZE", "0"},
		{"SEND_BUFFER_SIZE", "-1"},
		{"MESSAGE_RATE", "fast"},
		{"MESSAGE_BURST", "0"},
		{"UPGRADE_RATE", "-2"},
	}

	for _, tc := range testCases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := FromEnv()
			assert.ErrorContains(t, err, tc.key)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ADDR=:7070\nLOG_LEVEL=debug\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", c.Addr)
	assert.Equal(t, "warn", c.LogLevel, "environment wins over the file")
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	clearEnv(t)

	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}
