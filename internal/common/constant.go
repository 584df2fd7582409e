package common

// Header keys shared by the HTTP layer and its tests.
const (
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "
)
