package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/securechat/internal/flagx"
)

var knownFlags = []string{"-a", "-grpc", "-d", "-s", "-t", "-k", "-o", "-l", "-m", "-u", "-p", "-b", "-g", "-e", "-x"}

// parseFlags populates Config fields from command-line flags.
//
//	-a string   HTTP bind address (":8000")
//	-grpc string gRPC bind address (":50051", empty disables)
//	-d string   PostgreSQL DSN (empty keeps state in memory)
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-k int      bcrypt cost
//	-o string   comma-separated CORS origins
//	-l string   log level
//	-m int      max HTTP request body, bytes
//	-u/-p/-b/-g/-e  S3 user, password, bucket, region, endpoint
//	-x int      attachment URL validity, minutes
//
// Durations are given as whole minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.IntVar(&config.PasswordHashCost, "k", config.PasswordHashCost, "bcrypt cost")
	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed CORS origins, comma separated")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.Int64Var(&config.MaxRequestBodyBytes, "m", config.MaxRequestBodyBytes, "max request body size (bytes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket for attachments")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	attachmentValidity := fs.Int("x", int(config.AttachmentURLValidityDuration.Minutes()), "attachment URL validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.AttachmentURLValidityDuration = time.Duration(*attachmentValidity) * time.Minute
	config.AllowedOrigins = splitOrigins(*origins)
}

func splitOrigins(s string) []string {
	result := []string{}
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			result = append(result, o)
		}
	}
	return result
}
