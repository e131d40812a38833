package config

const (
	// EnvPrefix scopes every environment variable the app reads.
	EnvPrefix = "NOORMART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "NOORMART_DB_DSN"
	EnvDBHost = "NOORMART_DB_HOST"
	EnvDBUser = "NOORMART_DB_USER"
	EnvDBName = "NOORMART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
