package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppName names the configuration directory and the environment prefix.
const AppName = "memotica"

// Environments
const (
	Production  = "production"
	Development = "development"
)

type Config struct {
	Environment string   `mapstructure:"environment" validate:"required,oneof=production development"`
	DBPath      string   `mapstructure:"db_path" validate:"required"`
	Addr        string   `mapstructure:"addr" validate:"required"`
	LogLevel    string   `mapstructure:"log_level" validate:"required,oneof=DEBUG INFO WARN ERROR"`
	LogFile     string   `mapstructure:"log_file"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// envNames are the environment variables read for each key, the prefixed one first.
var envNames = map[string][]string{
	"environment":  {"MEMOTICA_ENVIRONMENT", "ENVIRONMENT"},
	"db_path":      {"MEMOTICA_DB_PATH", "DB_PATH"},
	"addr":         {"MEMOTICA_ADDR", "ADDR"},
	"log_level":    {"MEMOTICA_LOG_LEVEL", "LOG_LEVEL"},
	"log_file":     {"MEMOTICA_LOG_FILE", "LOG_FILE"},
	"cors_origins": {"MEMOTICA_CORS_ORIGINS", "CORS_ORIGINS"},
}

// AppDir returns the per-user directory holding config.toml and, by
// default, the database.
func AppDir() (string, error) {
	if dir := os.Getenv("MEMOTICA_HOME"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// Load reads configuration from a .env file (if present), config.toml in
// the application directory and environment variables, in increasing order
// of precedence.
func Load() (Config, error) {
	// Ignore error so the app still starts when .env is absent.
	_ = godotenv.Load()

	dir, err := AppDir()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(dir)
}

// LoadFrom is Load with an explicit application directory.
func LoadFrom(dir string) (Config, error) {
	v := viper.New()
	v.SetDefault("environment", Production)
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_file", "")
	v.SetDefault("cors_origins", []string{})

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	for key, names := range envNames {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(dir, AppName+".db")
		if cfg.Environment == Development {
			cfg.DBPath = AppName + ".db"
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the development environment is selected.
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

var validate = validator.New()

// Validate normalizes the log level and checks every field, reporting all
// problems at once.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToUpper(strings.TrimSpace(c.LogLevel))

	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := envKey(fe.StructField())
		switch fe.Tag() {
		case "required":
			problems = append(problems, name+" cannot be empty")
		case "oneof":
			problems = append(problems, fmt.Sprintf("%s must be one of %s, got %q", name, fe.Param(), fe.Value()))
		default:
			problems = append(problems, fmt.Sprintf("%s is invalid", name))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

func envKey(field string) string {
	switch field {
	case "DBPath":
		return "DB_PATH"
	case "LogLevel":
		return "LOG_LEVEL"
	case "LogFile":
		return "LOG_FILE"
	case "CORSOrigins":
		return "CORS_ORIGINS"
	default:
		return strings.ToUpper(field)
	}
}
