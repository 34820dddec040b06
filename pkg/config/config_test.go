package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "192.168.0.171", c.Target.Host)
	assert.Equal(t, 445, c.Target.Port)
	assert.Equal(t, "share", c.Target.Share)
	assert.Equal(t, "read_test.txt", c.Target.File)
	assert.Equal(t, 5*time.Second, c.Connection.ReadTimeout)
	assert.Equal(t, time.Second, c.Connection.RetryDelay)
	assert.Equal(t, 300, c.Connection.ReadBuffer)
	assert.Equal(t, 100, c.Fuzz.Iterations)
	assert.Equal(t, 10000, c.Fuzz.RandomCap)
	assert.Equal(t, 100, c.Fuzz.MaxSamples)
	assert.Empty(t, c.Auth.Password)
	assert.NoError(t, c.Validate())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smbfuzz.yaml")
	data := []byte("target:\n  host: 10.0.0.5\n  share: data\nconnection:\n  readtimeout: 2s\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("SMBFUZZ_TARGET__PORT", "4455")
	t.Setenv("SMBFUZZ_FUZZ__SEED", "42")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", c.Target.Host)
	assert.Equal(t, "data", c.Target.Share)
	assert.Equal(t, 4455, c.Target.Port)
	assert.Equal(t, int64(42), c.Fuzz.Seed)
	assert.Equal(t, 2*time.Second, c.Connection.ReadTimeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Configuration)
		want   error
	}{
		{"empty host", func(c *Configuration) { c.Target.Host = "" }, ErrEmptyHost},
		{"port zero", func(c *Configuration) { c.Target.Port = 0 }, ErrInvalidPort},
		{"port too big", func(c *Configuration) { c.Target.Port = 70000 }, ErrInvalidPort},
		{"zero buffer", func(c *Configuration) { c.Connection.ReadBuffer = 0 }, ErrInvalidBuffer},
		{"negative iterations", func(c *Configuration) { c.Fuzz.Iterations = -1 }, ErrNegativeBudget},
		{"zero cap", func(c *Configuration) { c.Fuzz.RandomCap = 0 }, ErrInvalidCap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load("")
			require.NoError(t, err)
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), tt.want)
		})
	}
}
