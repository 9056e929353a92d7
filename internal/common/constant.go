package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the literal scheme prefix expected in the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName is echoed on every response for log correlation.
const RequestIDHeaderName = "X-Request-ID"
