package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gophstore/internal/flagx"
)

// parseFlags overlays values from command-line flags.
//
//	-a string     HTTP bind address (":5000")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret
//	-t duration   token lifetime ("24h")
//	-l string     log level (debug|info|warn|error)
//	-b string     upload backend (local|s3)
//	-u string     upload directory for the local backend
//	-m int        upload size limit in bytes
//
// Anything not listed is filtered out first, so flags owned by other
// parsers (the -c config flag, adminctl sub-command flags) pass untouched.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, "a", "d", "s", "t", "l", "b", "u", "m")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.TokenTTL, "t", config.TokenTTL, "token lifetime")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.UploadBackend, "b", config.UploadBackend, "upload backend (local|s3)")
	fs.StringVar(&config.UploadDir, "u", config.UploadDir, "upload directory")
	fs.Int64Var(&config.UploadMaxBytes, "m", config.UploadMaxBytes, "upload size limit in bytes")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
