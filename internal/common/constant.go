// Package common contains shared constants and sentinel errors used across
// scanonce components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the access token
// on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the scheme prefix expected in the Authorization header.
const BearerPrefix = "Bearer "
