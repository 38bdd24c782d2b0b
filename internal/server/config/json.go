package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/securechat/internal/flagx"
	"github.com/dmitrijs2005/securechat/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Every field is
// optional; absent fields leave the current value untouched.
type JsonConfig struct {
	EndpointAddrHTTP              *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC              *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                   *string         `json:"database_dsn"`
	SecretKey                     *string         `json:"secret_key"`
	AccessTokenValidityDuration   *timex.Duration `json:"access_token_validity_duration"`
	PasswordHashCost              *int            `json:"password_hash_cost"`
	AllowedOrigins                []string        `json:"allowed_origins"`
	LogLevel                      *string         `json:"log_level"`
	MaxRequestBodyBytes           *int64          `json:"max_request_body_bytes"`
	S3RootUser                    *string         `json:"s3_root_user"`
	S3RootPassword                *string         `json:"s3_root_password"`
	S3Bucket                      *string         `json:"s3_bucket"`
	S3Region                      *string         `json:"s3_region"`
	S3BaseEndpoint                *string         `json:"s3_base_endpoint"`
	AttachmentURLValidityDuration *timex.Duration `json:"attachment_url_validity_duration"`
}

// parseJson overlays values from the file named by -c/-config. Nothing is
// loaded when neither flag is present. An unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.AttachmentURLValidityDuration != nil {
		config.AttachmentURLValidityDuration = c.AttachmentURLValidityDuration.Duration
	}
	if c.PasswordHashCost != nil {
		config.PasswordHashCost = *c.PasswordHashCost
	}
	if c.MaxRequestBodyBytes != nil {
		config.MaxRequestBodyBytes = *c.MaxRequestBodyBytes
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
