package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Pool     PoolConfig     `mapstructure:"pool" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret         string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMins int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost        int    `mapstructure:"bcrypt_cost" validate:"omitempty,gte=4,lte=31"`
}

// LLMConfig contains all LLM integration related settings. The API key
// and model name here are fallbacks used only when the database holds
// no active model configuration row.
type LLMConfig struct {
	GeminiAPIKey     string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName        string `mapstructure:"model_name"`
	MaxRetries       int    `mapstructure:"max_retries" validate:"omitempty,gte=0,lte=5"`
	RetryBaseDelayMs int    `mapstructure:"retry_base_delay_ms" validate:"omitempty,gt=0"`
}

// PoolConfig sizes the shared paper generation worker pool.
type PoolConfig struct {
	CoreWorkers int `mapstructure:"core_workers" validate:"required,gt=0"`
	MaxWorkers  int `mapstructure:"max_workers" validate:"required,gtefield=CoreWorkers"`
	QueueSize   int `mapstructure:"queue_size" validate:"required,gt=0"`
}
