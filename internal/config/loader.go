package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads config.yaml (optional), a .env file (optional) and CLASHUB_* environment variables.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but reads an explicit config file when path is not empty.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/clashub/")
	}

	v.SetEnvPrefix("CLASHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := loadDotEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", "0.0.0.0:8080")
	v.SetDefault("http.shutdown_timeout", "15s")
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.read_header_timeout", "10s")
	v.SetDefault("http.write_timeout", "60s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.max_body_bytes", 10*1024*1024)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.add_source", false)
	v.SetDefault("log.environment", "production")

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "data/clashub.db")

	v.SetDefault("relay.user_agent", "Clashub/1.0")
	v.SetDefault("relay.client_ip_header", "CF-Connecting-IP")

	v.SetDefault("session.cookie_max_age", "720h")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "clashub")
	v.SetDefault("metrics.subsystem", "http")
	v.SetDefault("metrics.token", "")

	v.SetDefault("ui.title", "Clashub")
	v.SetDefault("ui.default_lang", "zh-CN")
}

func loadDotEnv(v *viper.Viper) error {
	candidates := []string{".", ".."}
	for _, path := range candidates {
		file := filepath.Clean(filepath.Join(path, ".env"))
		if _, err := os.Stat(file); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat .env: %w", err)
		}

		// Separate instance so dotenv keys never clash with yaml typing.
		envViper := viper.New()
		envViper.SetConfigFile(file)
		envViper.SetConfigType("env")
		if err := envViper.ReadInConfig(); err != nil {
			return fmt.Errorf("read .env: %w", err)
		}
		bindDotEnv(v, envViper)
	}
	return nil
}

// bindDotEnv maps CLASHUB_* keys of a .env file onto the hierarchical config.
// Real environment variables still win because AutomaticEnv is consulted on Get.
func bindDotEnv(target *viper.Viper, source *viper.Viper) {
	for _, key := range target.AllKeys() {
		envKey := "CLASHUB_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if val := source.GetString(envKey); val != "" {
			if _, set := os.LookupEnv(envKey); set {
				continue
			}
			target.Set(key, val)
		}
	}
}
