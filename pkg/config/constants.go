package config

const (
	EnvPrefix = "servex"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SERVEX_DB_DSN"
	EnvDBHost = "SERVEX_DB_HOST"
	EnvDBUser = "SERVEX_DB_USER"
	EnvDBName = "SERVEX_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
