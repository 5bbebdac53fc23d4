package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/civicdesk/internal/flagx"
	"github.com/dmitrijs2005/civicdesk/internal/timex"
	"github.com/joho/godotenv"
)

// parseEnv overlays environment variables onto config. A dotenv file is read
// first (the one named by -env-file, otherwise ./.env if present); variables
// already set in the process environment win over the file.
//
// Malformed numeric or duration values panic, like the other config layers.
func parseEnv(config *Config) {
	if err := loadDotEnv(flagx.EnvFileFlags()); err != nil {
		panic(err)
	}

	envString(&config.EndpointAddrHTTP, "HTTP_ADDRESS")
	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		config.EndpointAddrHTTP = ":" + port
	}
	envString(&config.EndpointAddrGRPC, "GRPC_ADDRESS")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.AccessTokenSecret, "JWT_SECRET")
	envString(&config.RefreshTokenSecret, "JWT_REFRESH_SECRET")
	envString(&config.PasswordHashScheme, "PASSWORD_HASH_SCHEME")
	envString(&config.StorageBackend, "STORAGE_BACKEND")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.S3PublicURL, "S3_PUBLIC_URL")
	envString(&config.ProfileBucket, "S3_BUCKET_PROFILE")
	envString(&config.ComplaintBucket, "S3_BUCKET_COMPLAINTS")
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.LogFormat, "LOG_FORMAT")

	must(envInt(&config.DatabaseMaxConns, "DATABASE_MAX_CONNS"))
	must(envDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL"))
	must(envDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_TTL"))
	must(envDuration(&config.SignedURLExpiry, "SIGNED_URL_EXPIRY"))
}

func loadDotEnv(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func envString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, name string) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

func envDuration(dst *time.Duration, name string) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
