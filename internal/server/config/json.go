package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophstore/internal/flagx"
	"github.com/dmitrijs2005/gophstore/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "24h" and integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddr        string         `json:"http_addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	SecretKey       string         `json:"secret_key"`
	TokenTTL        timex.Duration `json:"token_ttl"`
	DBTimeout       timex.Duration `json:"db_timeout"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
	BcryptCost      int            `json:"bcrypt_cost"`
	LogLevel        string         `json:"log_level"`
	UploadBackend   string         `json:"upload_backend"`
	UploadDir       string         `json:"upload_dir"`
	UploadMaxBytes  int64          `json:"upload_max_bytes"`
	S3RootUser      string         `json:"s3_root_user"`
	S3RootPassword  string         `json:"s3_root_password"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	S3PublicBaseURL string         `json:"s3_public_base_url"`
}

// parseJson overlays values from the file named by -c/-config in args.
// Only keys present with a non-zero value replace what is already set.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setStr(&config.HTTPAddr, c.HTTPAddr)
	setStr(&config.DatabaseDSN, c.DatabaseDSN)
	setStr(&config.SecretKey, c.SecretKey)
	if c.TokenTTL.Duration != 0 {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.DBTimeout.Duration != 0 {
		config.DBTimeout = c.DBTimeout.Duration
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	setStr(&config.LogLevel, c.LogLevel)
	setStr(&config.UploadBackend, c.UploadBackend)
	setStr(&config.UploadDir, c.UploadDir)
	if c.UploadMaxBytes != 0 {
		config.UploadMaxBytes = c.UploadMaxBytes
	}
	setStr(&config.S3RootUser, c.S3RootUser)
	setStr(&config.S3RootPassword, c.S3RootPassword)
	setStr(&config.S3Bucket, c.S3Bucket)
	setStr(&config.S3Region, c.S3Region)
	setStr(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setStr(&config.S3PublicBaseURL, c.S3PublicBaseURL)
}
