package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	URL          string `mapstructure:"url"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type EmailConfig struct {
	Provider string `mapstructure:"provider"`

	PostmarkServerToken  string `mapstructure:"postmark_server_token"`
	PostmarkAccountToken string `mapstructure:"postmark_account_token"`

	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`

	FromAddress  string `mapstructure:"from_address"`
	AdminEmail   string `mapstructure:"admin_email"`
	CompanyName  string `mapstructure:"company_name"`
	CompanyEmail string `mapstructure:"company_email"`
	AdminURL     string `mapstructure:"admin_url"`

	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

type RateLimitConfig struct {
	MaxPerRecipient int           `mapstructure:"max_per_recipient"`
	Window          time.Duration `mapstructure:"window"`

	SubmitRPS   float64 `mapstructure:"submit_rps"`
	SubmitBurst int     `mapstructure:"submit_burst"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Email     EmailConfig     `mapstructure:"email"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// envOverrides carries the secrets and deploy-specific values that
// should never live in the config file.
type envOverrides struct {
	DBHost     string `envconfig:"DB_HOST"`
	DBPassword string `envconfig:"DB_PASSWORD"`

	RedisURL string `envconfig:"REDIS_URL"`

	PostmarkServerToken  string `envconfig:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `envconfig:"POSTMARK_ACCOUNT_TOKEN"`
	SMTPPassword         string `envconfig:"SMTP_PASSWORD"`

	AdminEmail string `envconfig:"ADMIN_EMAIL"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("portfolio", &env); err != nil {
		return nil, fmt.Errorf("failed to read env overrides: %w", err)
	}
	applyOverrides(&config, env)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "10s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("email.provider", "smtp")
	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("email.send_timeout", "15s")
	viper.SetDefault("rate_limit.max_per_recipient", 10)
	viper.SetDefault("rate_limit.window", "1m")
	viper.SetDefault("rate_limit.submit_rps", 5)
	viper.SetDefault("rate_limit.submit_burst", 10)
	viper.SetDefault("retry.max_attempts", 3)
	viper.SetDefault("retry.base_delay", "1s")
	viper.SetDefault("logging.level", "info")
}

func applyOverrides(config *Config, env envOverrides) {
	if env.DBHost != "" {
		config.Database.Host = env.DBHost
	}
	if env.DBPassword != "" {
		config.Database.Password = env.DBPassword
	}
	if env.RedisURL != "" {
		config.Redis.URL = env.RedisURL
	}
	if env.PostmarkServerToken != "" {
		config.Email.PostmarkServerToken = env.PostmarkServerToken
	}
	if env.PostmarkAccountToken != "" {
		config.Email.PostmarkAccountToken = env.PostmarkAccountToken
	}
	if env.SMTPPassword != "" {
		config.Email.SMTPPassword = env.SMTPPassword
	}
	if env.AdminEmail != "" {
		config.Email.AdminEmail = env.AdminEmail
	}
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Email.FromAddress == "" {
		return fmt.Errorf("email.from_address is required")
	}
	if config.Email.AdminEmail == "" {
		return fmt.Errorf("email.admin_email is required")
	}
	if config.Redis.Enabled && config.Redis.URL == "" {
		return fmt.Errorf("redis.url is required when redis is enabled")
	}
	return nil
}
