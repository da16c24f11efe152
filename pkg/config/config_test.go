package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cuemby/burrow/pkg/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = strings.Repeat("ab", 32)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "burrow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.NodeID, cfg.NodeID)
	assert.Equal(t, def.APIAddr, cfg.APIAddr)
	assert.Equal(t, def.DrainInterval, cfg.DrainInterval)
	assert.Equal(t, def.OracleMode, cfg.OracleMode)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
node_id: manager-7
data_dir: /var/lib/burrow
operator: ops
oracle_mode: sealed
oracle_key: `+testKey+`
drain_interval: 250ms
kafka_brokers: [kafka-1:9092, kafka-2:9092]
log_json: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "manager-7", cfg.NodeID)
	assert.Equal(t, "/var/lib/burrow", cfg.DataDir)
	assert.Equal(t, "ops", string(cfg.OperatorPrincipal()))
	assert.Equal(t, 250*time.Millisecond, cfg.DrainInterval)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, "127.0.0.1:8080", cfg.APIAddr, "unset keys keep defaults")
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "node_id: from-file\nlog_level: debug\n")
	t.Setenv("BURROW_NODE_ID", "from-env")
	t.Setenv("BURROW_DRAIN_INTERVAL", "2s")
	t.Setenv("BURROW_IN_MEMORY", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.NodeID)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.DrainInterval)
	assert.True(t, cfg.InMemory)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "node_id: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"missing node id", func(c *Config) { c.NodeID = "" }, "node id"},
		{"missing operator", func(c *Config) { c.Operator = "" }, "operator"},
		{"missing api addr", func(c *Config) { c.APIAddr = "" }, "api address"},
		{"missing data dir", func(c *Config) { c.DataDir = "" }, "data dir"},
		{"in memory without data dir", func(c *Config) { c.InMemory = true; c.DataDir = ""; c.RaftAddr = ""; c.CertDir = "/etc/burrow/certs" }, ""},
		{"no cert dir at all", func(c *Config) { c.InMemory = true; c.DataDir = ""; c.RaftAddr = "" }, "cert dir"},
		{"zero token cleanup", func(c *Config) { c.TokenCleanupInterval = 0 }, "token cleanup"},
		{"negative interval", func(c *Config) { c.DrainInterval = -time.Second }, "negative"},
		{"unknown oracle", func(c *Config) { c.OracleMode = "psychic" }, "unknown oracle"},
		{"key in numeric mode", func(c *Config) { c.OracleKey = testKey }, "only used"},
		{"sealed without key", func(c *Config) { c.OracleMode = "sealed" }, "required"},
		{"sealed with bad hex", func(c *Config) { c.OracleMode = "sealed"; c.OracleKey = "zz" }, "hex"},
		{"sealed with short key", func(c *Config) { c.OracleMode = "sealed"; c.OracleKey = "abcd" }, "32 bytes"},
		{"sealed with key", func(c *Config) { c.OracleMode = "sealed"; c.OracleKey = testKey }, ""},
		{"brokers without topic", func(c *Config) { c.KafkaBrokers = []string{"k:9092"}; c.KafkaTopic = "" }, "kafka topic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOracle(t *testing.T) {
	cfg := Default()
	cmp, err := cfg.Oracle()
	require.NoError(t, err)
	assert.IsType(t, oracle.Numeric{}, cmp)

	cfg.OracleMode = "sealed"
	cfg.OracleKey = testKey
	cmp, err = cfg.Oracle()
	require.NoError(t, err)
	assert.IsType(t, &oracle.Sealed{}, cmp)
}

func TestCertDirectory(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/var/lib/burrow"
	assert.Equal(t, filepath.Join("/var/lib/burrow", "certs"), cfg.CertDirectory())

	cfg.CertDir = "/etc/burrow/certs"
	assert.Equal(t, "/etc/burrow/certs", cfg.CertDirectory())
}

func TestAPIHosts(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"localhost", "127.0.0.1", "::1"}, cfg.APIHosts())

	cfg.APIAddr = "10.0.0.4:8080"
	cfg.TLSHosts = []string{"burrow.internal", "localhost"}
	assert.Equal(t, []string{"localhost", "127.0.0.1", "::1", "10.0.0.4", "burrow.internal"}, cfg.APIHosts())

	cfg.APIAddr = ":8080"
	assert.NotContains(t, cfg.APIHosts(), "")
}

func TestLoadTLSSettingsFromEnvironment(t *testing.T) {
	t.Setenv("BURROW_CERT_DIR", "/etc/burrow/certs")
	t.Setenv("BURROW_TLS_HOSTS", "a.example,b.example")
	t.Setenv("BURROW_REQUIRE_CLIENT_CERT", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/etc/burrow/certs", cfg.CertDirectory())
	assert.Equal(t, []string{"a.example", "b.example"}, cfg.TLSHosts)
	assert.True(t, cfg.RequireClientCert)
	assert.Equal(t, time.Minute, cfg.TokenCleanupInterval)
}
