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

	assert.Equal(t, ":3000", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, 20, c.DatabaseMaxConns)
	assert.Equal(t, 10*time.Second, c.DatabaseConnectTimeout)
	assert.Equal(t, 30*time.Second, c.DatabaseIdleTimeout)
	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 7*24*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, HashSchemeSHA256, c.PasswordHashScheme)
	assert.Equal(t, StorageBackendS3, c.StorageBackend)
	assert.Equal(t, "profile_pictures", c.ProfileBucket)
	assert.Equal(t, "complaint_photos", c.ComplaintBucket)
	assert.Equal(t, int64(5<<20), c.MaxUploadSize)
	assert.Equal(t, 10, c.MaxComplaintPhotos)
	assert.Empty(t, c.AccessTokenSecret)
	assert.Empty(t, c.RefreshTokenSecret)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		c.AccessTokenSecret = "access"
		c.RefreshTokenSecret = "refresh"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "missing access secret", mutate: func(c *Config) { c.AccessTokenSecret = "" }, wantErr: "access token secret is required"},
		{name: "missing refresh secret", mutate: func(c *Config) { c.RefreshTokenSecret = "" }, wantErr: "refresh token secret is required"},
		{name: "same secrets", mutate: func(c *Config) { c.RefreshTokenSecret = c.AccessTokenSecret }, wantErr: "must differ"},
		{name: "zero ttl", mutate: func(c *Config) { c.AccessTokenValidityDuration = 0 }, wantErr: "must be positive"},
		{name: "bad scheme", mutate: func(c *Config) { c.PasswordHashScheme = "md5" }, wantErr: "unknown password hash scheme"},
		{name: "bad backend", mutate: func(c *Config) { c.StorageBackend = "ftp" }, wantErr: "unknown storage backend"},
		{name: "short salt", mutate: func(c *Config) { c.SaltLength = 8 }, wantErr: "salt length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_LayersApplyInOrder(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"database_dsn":        "postgres://json",
		"access_token_secret": "json-access",
		"log_level":           "debug",
	})

	t.Setenv("DATABASE_DSN", "postgres://env")
	t.Setenv("JWT_REFRESH_SECRET", "env-refresh")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")

	os.Args = []string{"testbin", "-config", path, "-a", ":8081"}

	c := LoadConfig()
	require.NotNil(t, c)

	assert.Equal(t, ":8081", c.EndpointAddrHTTP)
	assert.Equal(t, "postgres://env", c.DatabaseDSN)
	assert.Equal(t, "json-access", c.AccessTokenSecret)
	assert.Equal(t, "env-refresh", c.RefreshTokenSecret)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
	require.NoError(t, c.Validate())
}
