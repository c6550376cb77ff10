package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 50051, cfg.Server.GRPCPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, []string{"configs/profiles"}, cfg.Devices.SearchPaths)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  http_port: 9090
  shutdown_timeout: 5s
auth:
  access_token_ttl: 15m
  operators:
    - username: alice
      password_hash: "$argon2id$v=19$m=65536,t=1,p=1$c2FsdA$aGFzaA"
      role: operator
devices:
  search_paths: [profiles, /etc/laundry/profiles]
  profile: faulty-pump
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	require.Len(t, cfg.Auth.Operators, 1)
	assert.Equal(t, "alice", cfg.Auth.Operators[0].Username)
	assert.Equal(t, "operator", cfg.Auth.Operators[0].Role)
	assert.Equal(t, []string{"profiles", "/etc/laundry/profiles"}, cfg.Devices.SearchPaths)
	assert.Equal(t, "faulty-pump", cfg.Devices.Profile)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("OLC_SERVER_HTTP_PORT", "7070")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.HTTPPort)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  operators:\n    - username: bob\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidateOperatorRoles(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	for _, role := range OperatorRoles {
		cfg.Auth.Operators = []OperatorConfig{{Username: "bob", PasswordHash: "x", Role: role}}
		assert.NoError(t, cfg.Validate(), role)
	}

	for _, role := range []string{"", "admn", "Admin", "root"} {
		cfg.Auth.Operators = []OperatorConfig{{Username: "bob", PasswordHash: "x", Role: role}}
		err := cfg.Validate()
		require.Error(t, err, role)
		assert.Contains(t, err.Error(), "auth.operators[0]")
	}
}

func TestJWTSecret(t *testing.T) {
	a := AuthConfig{JWTSecretEnv: "OLC_TEST_SECRET"}

	t.Setenv("OLC_TEST_SECRET", "")
	assert.Equal(t, devSecret, a.GetJWTSecret())
	assert.False(t, a.IsProductionReady())

	t.Setenv("OLC_TEST_SECRET", "0123456789abcdef0123456789abcdef")
	assert.True(t, a.IsProductionReady())
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "default", cfg.Devices.Profile)
	assert.Empty(t, cfg.Auth.Operators)
}
