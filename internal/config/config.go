package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const devSecret = "dev-secret-change-in-production-min-32-chars"

// OperatorRoles are the roles an operator account may hold.
var OperatorRoles = []string{"viewer", "operator", "admin"}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Devices DevicesConfig `mapstructure:"devices"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	GRPCPort        int           `mapstructure:"grpc_port"`
	HTTPPort        int           `mapstructure:"http_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Auth Configuration
type AuthConfig struct {
	JWTSecretEnv   string           `mapstructure:"jwt_secret_env"`
	AccessTokenTTL time.Duration    `mapstructure:"access_token_ttl"`
	Operators      []OperatorConfig `mapstructure:"operators"`
}

// OperatorConfig is a statically configured account. PasswordHash is an
// argon2id hash in PHC format.
type OperatorConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
	Role         string `mapstructure:"role"`
}

type DevicesConfig struct {
	SearchPaths []string `mapstructure:"search_paths"`
	Profile     string   `mapstructure:"profile"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("auth.jwt_secret_env", "JWT_SECRET")
	v.SetDefault("auth.access_token_ttl", "60m")

	v.SetDefault("devices.search_paths", []string{"configs/profiles"})
	v.SetDefault("devices.profile", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	// Environment variables use the OLC_ prefix, e.g. OLC_SERVER_HTTP_PORT.
	v.SetEnvPrefix("OLC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the YAML file at path. A missing path yields the defaults.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server.http_port: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid server.grpc_port: %d", c.Server.GRPCPort)
	}
	for i, op := range c.Auth.Operators {
		if op.Username == "" || op.PasswordHash == "" {
			return fmt.Errorf("auth.operators[%d]: username and password_hash are required", i)
		}
		if !slices.Contains(OperatorRoles, op.Role) {
			return fmt.Errorf("auth.operators[%d]: role %q must be one of %v", i, op.Role, OperatorRoles)
		}
	}
	return nil
}

// GetJWTSecret reads the signing secret from the configured environment variable.
func (a *AuthConfig) GetJWTSecret() string {
	envVar := a.JWTSecretEnv
	if envVar == "" {
		envVar = "JWT_SECRET"
	}

	secret := os.Getenv(envVar)
	if secret == "" {
		return devSecret
	}
	return secret
}

func (a *AuthConfig) IsProductionReady() bool {
	secret := a.GetJWTSecret()
	return secret != devSecret && len(secret) >= 32
}
