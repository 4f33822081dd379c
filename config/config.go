package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Availability API consumed by the controller.
	APIBaseURL         string `mapstructure:"API_BASE_URL"`
	APIUsername        string `mapstructure:"API_USERNAME"`
	APIPassword        string `mapstructure:"API_PASSWORD"`
	CSRFCookieName     string `mapstructure:"CSRF_COOKIE_NAME"`
	CSRFHeaderName     string `mapstructure:"CSRF_HEADER_NAME"`
	LoginURL           string `mapstructure:"LOGIN_URL"`
	HTTPTimeoutSeconds int    `mapstructure:"HTTP_TIMEOUT_SECONDS"`
	MaxRequestsPerSec  int    `mapstructure:"MAX_REQUESTS_PER_SEC"`
	RequestBurst       int    `mapstructure:"REQUEST_BURST"`

	// Controller tuning.
	DebounceMS int `mapstructure:"DEBOUNCE_MS"`

	// Cache backend: "memory" or "redis".
	CacheBackend  string `mapstructure:"CACHE_BACKEND"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`

	// Local API simulator.
	SimulatorEnabled           bool   `mapstructure:"SIMULATOR_ENABLED"`
	SimulatorAddr              string `mapstructure:"SIMULATOR_ADDR"`
	SimulatorAllowedOrigins    string `mapstructure:"SIMULATOR_ALLOWED_ORIGINS"`
	SimulatorMaxRequestsPerMin int    `mapstructure:"SIMULATOR_MAX_REQUESTS_PER_MIN"`
	JWTSecret                  string `mapstructure:"JWT_SECRET"`
	SessionTTLMinutes          int    `mapstructure:"SESSION_TTL_MINUTES"`
}

var AppConfig Config

func LoadConfig() {
	// Pick up a local .env if there is one; real environment variables win.
	_ = godotenv.Load()

	v := viper.New()
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := v.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("API_USERNAME", "")
	v.SetDefault("API_PASSWORD", "")
	v.SetDefault("CSRF_COOKIE_NAME", "csrftoken")
	v.SetDefault("CSRF_HEADER_NAME", "X-CSRFToken")
	v.SetDefault("LOGIN_URL", "/accounts/login/")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 0)
	v.SetDefault("MAX_REQUESTS_PER_SEC", 20)
	v.SetDefault("REQUEST_BURST", 10)
	v.SetDefault("DEBOUNCE_MS", 350)
	v.SetDefault("CACHE_BACKEND", "memory")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("SIMULATOR_ENABLED", false)
	v.SetDefault("SIMULATOR_ADDR", ":8080")
	v.SetDefault("SIMULATOR_ALLOWED_ORIGINS", "")
	v.SetDefault("SIMULATOR_MAX_REQUESTS_PER_MIN", 600)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL_MINUTES", 60)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Debounce is the quiescence delay applied to date and room inputs.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// HTTPTimeout is zero when requests may hang until superseded.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}
