package config

import (
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"slices"
	"time"

	"github.com/cuemby/burrow/pkg/oracle"
	"github.com/cuemby/burrow/pkg/security"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/vrischmann/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of a burrow manager
type Config struct {
	NodeID     string `yaml:"node_id" envconfig:"BURROW_NODE_ID"`
	RaftAddr   string `yaml:"raft_addr" envconfig:"BURROW_RAFT_ADDR"`
	APIAddr    string `yaml:"api_addr" envconfig:"BURROW_API_ADDR"`
	HealthAddr string `yaml:"health_addr" envconfig:"BURROW_HEALTH_ADDR"`
	SocketPath string `yaml:"socket_path" envconfig:"BURROW_SOCKET_PATH"`
	DataDir    string `yaml:"data_dir" envconfig:"BURROW_DATA_DIR"`
	InMemory   bool   `yaml:"in_memory" envconfig:"BURROW_IN_MEMORY"`

	// JoinAddr is the API address of an existing manager; empty bootstraps
	// a new cluster
	JoinAddr string `yaml:"join_addr" envconfig:"BURROW_JOIN_ADDR"`

	// CertDir holds the cluster CA; defaults to <data_dir>/certs
	CertDir string `yaml:"cert_dir" envconfig:"BURROW_CERT_DIR"`
	// TLSHosts are extra names and addresses for the API certificate
	TLSHosts          []string `yaml:"tls_hosts" envconfig:"BURROW_TLS_HOSTS"`
	RequireClientCert bool     `yaml:"require_client_cert" envconfig:"BURROW_REQUIRE_CLIENT_CERT"`

	Operator      string `yaml:"operator" envconfig:"BURROW_OPERATOR"`
	OperatorToken string `yaml:"operator_token" envconfig:"BURROW_OPERATOR_TOKEN"`

	OracleMode string `yaml:"oracle_mode" envconfig:"BURROW_ORACLE_MODE"`
	// OracleKey is the hex-encoded 32-byte AES key for the sealed oracle
	OracleKey string `yaml:"oracle_key" envconfig:"BURROW_ORACLE_KEY"`

	DrainInterval time.Duration `yaml:"drain_interval" envconfig:"BURROW_DRAIN_INTERVAL"`
	// TokenCleanupInterval is how often expired generated tokens are dropped
	TokenCleanupInterval time.Duration `yaml:"token_cleanup_interval" envconfig:"BURROW_TOKEN_CLEANUP_INTERVAL"`

	KafkaBrokers []string `yaml:"kafka_brokers" envconfig:"BURROW_KAFKA_BROKERS"`
	KafkaTopic   string   `yaml:"kafka_topic" envconfig:"BURROW_KAFKA_TOPIC"`

	LogLevel string `yaml:"log_level" envconfig:"BURROW_LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" envconfig:"BURROW_LOG_JSON"`
}

// Default returns the settings used when nothing overrides them
func Default() *Config {
	return &Config{
		NodeID:        "manager-1",
		RaftAddr:      "127.0.0.1:7946",
		APIAddr:       "127.0.0.1:8080",
		HealthAddr:    "127.0.0.1:9090",
		SocketPath:    "/var/run/burrow.sock",
		DataDir:       "./burrow-data",
		Operator:      "operator",
		OracleMode:    string(oracle.ModeNumeric),
		DrainInterval:        5 * time.Second,
		TokenCleanupInterval: time.Minute,
		KafkaTopic:           "burrow.notifications",
		LogLevel:             "info",
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped
// when path is empty) and then BURROW_* environment variables
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.InitWithOptions(cfg, envconfig.Options{AllOptional: true}); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return cfg, nil
}

// Validate rejects inconsistent settings
func (c *Config) Validate() error {
	if c.NodeID == "" {
		return fmt.Errorf("node id is required")
	}
	if c.Operator == "" {
		return fmt.Errorf("operator principal is required")
	}
	if c.APIAddr == "" {
		return fmt.Errorf("api address is required")
	}
	if !c.InMemory {
		if c.DataDir == "" {
			return fmt.Errorf("data dir is required unless running in memory")
		}
		if c.RaftAddr == "" {
			return fmt.Errorf("raft address is required unless running in memory")
		}
	}
	if c.DrainInterval < 0 {
		return fmt.Errorf("drain interval cannot be negative")
	}
	if c.TokenCleanupInterval <= 0 {
		return fmt.Errorf("token cleanup interval must be positive")
	}
	if c.CertDir == "" && c.DataDir == "" {
		return fmt.Errorf("cert dir is required when there is no data dir")
	}

	switch oracle.Mode(c.OracleMode) {
	case oracle.ModeNumeric, "":
		if c.OracleKey != "" {
			return fmt.Errorf("oracle key is only used in %s mode", oracle.ModeSealed)
		}
	case oracle.ModeSealed:
		if _, err := c.oracleKey(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown oracle mode: %s", c.OracleMode)
	}

	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return fmt.Errorf("kafka topic is required when brokers are set")
	}

	return nil
}

// Oracle builds the load comparator the settings select
func (c *Config) Oracle() (oracle.Comparator, error) {
	var key []byte
	if oracle.Mode(c.OracleMode) == oracle.ModeSealed {
		k, err := c.oracleKey()
		if err != nil {
			return nil, err
		}
		key = k
	}
	return oracle.New(oracle.Mode(c.OracleMode), key)
}

// CertDirectory returns the directory holding the cluster CA
func (c *Config) CertDirectory() string {
	if c.CertDir != "" {
		return c.CertDir
	}
	return security.DefaultCertDir(c.DataDir)
}

// APIHosts returns the names the API certificate is issued for: the host
// of APIAddr, the loopback names and TLSHosts
func (c *Config) APIHosts() []string {
	hosts := []string{"localhost", "127.0.0.1", "::1"}
	if host, _, err := net.SplitHostPort(c.APIAddr); err == nil && host != "" && !slices.Contains(hosts, host) {
		hosts = append(hosts, host)
	}
	for _, h := range c.TLSHosts {
		if !slices.Contains(hosts, h) {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// OperatorPrincipal returns the operator as a principal
func (c *Config) OperatorPrincipal() types.Principal {
	return types.Principal(c.Operator)
}

func (c *Config) oracleKey() ([]byte, error) {
	if c.OracleKey == "" {
		return nil, fmt.Errorf("oracle key is required in %s mode", oracle.ModeSealed)
	}
	key, err := hex.DecodeString(c.OracleKey)
	if err != nil {
		return nil, fmt.Errorf("oracle key must be hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("oracle key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
