package constants

// Runtime environments.
const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Pub/Sub provider names accepted in configuration.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Cookie names used by the session endpoints and the auth guard.
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
)
