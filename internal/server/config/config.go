// Package config handles configuration for the relay server, including
// defaults, JSON overlay, and command-line flags.
package config

import (
	"errors"
	"time"
)

// Config holds runtime settings for the relay server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses; an empty gRPC address disables it.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps all state in memory.
//   - SecretKey: HMAC secret for signing access tokens (HS256). Required.
//   - AccessTokenValidityDuration: the single access token lifetime.
//   - PasswordHashCost: bcrypt cost for new password digests.
//   - AllowedOrigins: CORS origins allowed to call the HTTP API with credentials.
//   - S3*: object storage for encrypted attachments; an empty bucket disables them.
type Config struct {
	EndpointAddrHTTP              string
	EndpointAddrGRPC              string
	DatabaseDSN                   string
	SecretKey                     string
	AccessTokenValidityDuration   time.Duration
	PasswordHashCost              int
	AllowedOrigins                []string
	LogLevel                      string
	MaxRequestBodyBytes           int64
	S3RootUser                    string
	S3RootPassword                string
	S3Bucket                      string
	S3Region                      string
	S3BaseEndpoint                string
	AttachmentURLValidityDuration time.Duration
}

// LoadDefaults populates Config with development defaults. There is no
// default secret key: it must come from the JSON file or the -s flag.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.PasswordHashCost = 10
	c.AllowedOrigins = []string{"http://localhost", "http://localhost:3000", "http://127.0.0.1:3000"}
	c.LogLevel = "info"
	c.MaxRequestBodyBytes = 1 << 20
	c.S3RootUser = ""
	c.S3RootPassword = ""
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.AttachmentURLValidityDuration = 15 * time.Minute
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.SecretKey == "":
		return errors.New("secret key is required")
	case c.AccessTokenValidityDuration <= 0:
		return errors.New("access token validity must be positive")
	case c.EndpointAddrHTTP == "" && c.EndpointAddrGRPC == "":
		return errors.New("at least one of HTTP or gRPC endpoints must be set")
	case c.S3Bucket != "" && c.AttachmentURLValidityDuration <= 0:
		return errors.New("attachment URL validity must be positive")
	}
	return nil
}
