package config

const (
	// EnvPrefix is passed to envconfig; individual fields carry the full
	// variable name in their tags, so the prefix stays empty.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SMARTPAYSTACK_DB_DSN"
	EnvDBHost = "SMARTPAYSTACK_DB_HOST"
	EnvDBUser = "SMARTPAYSTACK_DB_USER"
	EnvDBName = "SMARTPAYSTACK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
