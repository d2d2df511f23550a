package config

// EnvPrefix is the envconfig prefix; individual fields carry explicit names.
const EnvPrefix = "PETALBOARD"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "PETALBOARD_APP_ENV"
	EnvPort       = "PETALBOARD_APP_PORT"
	EnvRedisURL   = "PETALBOARD_REDIS_URL"
	EnvJWTSecret  = "PETALBOARD_JWT_SECRET"
	EnvJWTIssuer  = "PETALBOARD_JWT_ISSUER"
	EnvJWTExpMins = "PETALBOARD_JWT_EXPIRATION_MINUTES"
)

const (
	EnvDBDSN  = "PETALBOARD_DB_DSN"
	EnvDBHost = "PETALBOARD_DB_HOST"
	EnvDBUser = "PETALBOARD_DB_USER"
	EnvDBName = "PETALBOARD_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
