package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB configuration.
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisContextDB int    `mapstructure:"REDIS_CONTEXT_DB"`

	// Auth.
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	TokenLifetime time.Duration `mapstructure:"TOKEN_LIFETIME"`

	// Responder (Gemini) configuration.
	GeminiAPIKey     string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel      string        `mapstructure:"GEMINI_MODEL"`
	ResponderTimeout time.Duration `mapstructure:"RESPONDER_TIMEOUT"`
}

// Load reads configuration from config.yaml (current or ./config directory)
// and the environment, applying defaults for anything unset.
func Load() Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB_NAME", "hustlr")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_CONTEXT_DB", 1)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("TOKEN_LIFETIME", "24h")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("RESPONDER_TIMEOUT", "30s")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
