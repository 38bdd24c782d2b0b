package common

const (
	// AuthorizationHeaderName carries the bearer token, both as an HTTP header
	// and as gRPC metadata key.
	AuthorizationHeaderName = "authorization"

	// BearerScheme is the authorization scheme accepted by the relay.
	BearerScheme = "Bearer"

	// TokenType is reported to clients alongside an issued access token.
	TokenType = "bearer"
)
