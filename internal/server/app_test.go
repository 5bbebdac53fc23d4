package server

import (
	"testing"

	"github.com/dmitrijs2005/civicdesk/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.AccessTokenSecret = "access"
	c.RefreshTokenSecret = "refresh"
	c.LogLevel = "error"
	return c
}

func TestNewApp_BuildsWithoutConnecting(t *testing.T) {
	c := validConfig()
	c.DatabaseDSN = "postgres://nobody@127.0.0.1:1/none?sslmode=disable"

	app, err := NewApp(c)
	require.NoError(t, err)
	assert.NotNil(t, app.handler)
	assert.NotNil(t, app.pool)
}

func TestNewApp_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing secrets", func(c *config.Config) { c.AccessTokenSecret, c.RefreshTokenSecret = "", "" }},
		{"equal secrets", func(c *config.Config) { c.RefreshTokenSecret = c.AccessTokenSecret }},
		{"unknown storage backend", func(c *config.Config) { c.StorageBackend = "ftp" }},
		{"unknown hash scheme", func(c *config.Config) { c.PasswordHashScheme = "md5" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			_, err := NewApp(c)
			assert.Error(t, err)
		})
	}
}
