package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Log      LogConfig      `mapstructure:"log"      validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Topics   TopicsConfig   `mapstructure:"topics"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	// GeminiAPIKey may be empty for dry runs; DeliveryErrors reports it.
	GeminiAPIKey      string  `mapstructure:"gemini_api_key"`
	ModelName         string  `mapstructure:"model_name"          validate:"required"`
	Temperature       float32 `mapstructure:"temperature"         validate:"gte=0,lte=2"`
	MaxOutputTokens   int32   `mapstructure:"max_output_tokens"   validate:"gt=0"`
	MaxRetries        int     `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"gte=1"`
}

// SMTPConfig contains outbound email settings.
// Credentials may be absent for dry runs; DeliveryErrors reports them.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from" validate:"omitempty,email"`
	// To holds one or more comma-separated recipient addresses.
	To string `mapstructure:"to"`
}

// TopicsConfig contains settings for the static topic source.
type TopicsConfig struct {
	// Path points at the static topics JSON file. A missing file means
	// no static candidates, which is not an error.
	Path string `mapstructure:"path"`
}

// DeliveryErrors returns the configuration problems that make a live
// (delivering, persisting) run impossible. An empty slice means the
// configuration is complete. Dry runs ignore these.
func (c *Config) DeliveryErrors() []string {
	var errs []string

	if c.LLM.GeminiAPIKey == "" {
		errs = append(errs, "llm.gemini_api_key is not set")
	}

	if c.SMTP.Username == "" || c.SMTP.Password == "" {
		errs = append(errs, "smtp credentials are not configured")
	}

	if c.SMTP.From == "" || c.SMTP.To == "" {
		errs = append(errs, "smtp sender and recipient addresses are not configured")
	}

	return errs
}
