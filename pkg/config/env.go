package config

// EnvPrefix is empty because every field carries its fully qualified
// WARRANTYWIZARD_* name in its tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

const (
	ChatModeRules = "rules"
	ChatModeLLM   = "llm"

	ChatProviderOpenAI = "openai"
	ChatProviderGemini = "gemini"
)

const (
	EnvAppEnv       = "WARRANTYWIZARD_APP_ENV"
	EnvPort         = "WARRANTYWIZARD_APP_PORT"
	EnvLogLevel     = "WARRANTYWIZARD_LOG_LEVEL"
	EnvStoreDriver  = "WARRANTYWIZARD_STORE_DRIVER"
	EnvStoreSeed    = "WARRANTYWIZARD_STORE_SEED_DEMO"
	EnvDBDSN        = "WARRANTYWIZARD_DB_DSN"
	EnvDBHost       = "WARRANTYWIZARD_DB_HOST"
	EnvDBUser       = "WARRANTYWIZARD_DB_USER"
	EnvDBName       = "WARRANTYWIZARD_DB_NAME"
	EnvDBPassword   = "WARRANTYWIZARD_DB_PASSWORD"
	EnvRedisURL     = "WARRANTYWIZARD_REDIS_URL"
	EnvChatMode     = "WARRANTYWIZARD_CHAT_MODE"
	EnvChatProvider = "WARRANTYWIZARD_CHAT_PROVIDER"
	EnvOpenAIAPIKey = "WARRANTYWIZARD_OPENAI_API_KEY"
	EnvGeminiAPIKey = "WARRANTYWIZARD_GEMINI_API_KEY"
	EnvUploadsDir   = "WARRANTYWIZARD_UPLOADS_DIR"
	EnvCORSOrigins  = "WARRANTYWIZARD_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
