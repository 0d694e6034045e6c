package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type lookupFunc func(key string) (string, bool)

// parseEnv overlays values from environment variables. PORT is accepted for
// platform compatibility and expands to ":<port>"; HTTP_ADDR takes precedence
// when both are set.
func parseEnv(config *Config, lookup lookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(fmt.Errorf("env %s: %w", key, err))
			}
			*dst = d
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		config.HTTPAddr = ":" + strings.TrimPrefix(v, ":")
	}
	str("HTTP_ADDR", &config.HTTPAddr)
	str("DATABASE_URL", &config.DatabaseDSN)
	str("JWT_SECRET", &config.SecretKey)
	dur("TOKEN_TTL", &config.TokenTTL)
	dur("DB_TIMEOUT", &config.DBTimeout)
	dur("SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)
	str("LOG_LEVEL", &config.LogLevel)

	if v, ok := lookup("BCRYPT_COST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("env BCRYPT_COST: %w", err))
		}
		config.BcryptCost = n
	}

	str("UPLOAD_BACKEND", &config.UploadBackend)
	str("UPLOAD_DIR", &config.UploadDir)
	if v, ok := lookup("UPLOAD_MAX_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("env UPLOAD_MAX_BYTES: %w", err))
		}
		config.UploadMaxBytes = n
	}

	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("S3_PUBLIC_BASE_URL", &config.S3PublicBaseURL)
}
