package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cuemby/burrow/pkg/api"
	"github.com/cuemby/burrow/pkg/client"
	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/manager"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/notify"
	"github.com/cuemby/burrow/pkg/scheduler"
	"github.com/cuemby/burrow/pkg/security"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run a burrow manager",
	Long: `Run a burrow manager: the Raft replica, the gRPC API, the health
endpoints, the drain kicker and, when brokers are configured, the Kafka
notification forwarder.

Settings come from --config, then BURROW_* environment variables, then flags.
Without --join the manager bootstraps a new single-node cluster.

The API is served over TLS. The first manager creates the cluster CA in its
cert dir (<data-dir>/certs by default). Copy ca.crt and ca.key into the cert
dir of every manager before it joins.`,
	RunE: runServer,
}

func init() {
	f := serverCmd.Flags()
	f.String("config", "", "YAML config file")
	f.String("node-id", "", "Unique manager ID")
	f.String("raft-addr", "", "Address for Raft communication")
	f.String("api-addr", "", "Address for the gRPC API")
	f.String("health-addr", "", "Address for health and metrics endpoints")
	f.String("socket", "", "Path of the read-only Unix socket (empty disables)")
	f.String("data-dir", "", "Data directory for Raft and the state tables")
	f.String("cert-dir", "", "Directory holding the cluster CA (defaults to <data-dir>/certs)")
	f.StringSlice("tls-host", nil, "Extra host name or address for the API certificate")
	f.Bool("require-client-cert", false, "Reject API clients without a certificate signed by the cluster CA")
	f.Duration("token-cleanup-interval", 0, "Interval between expired token sweeps")
	f.Bool("in-memory", false, "Keep Raft state in memory")
	f.String("join", "", "API address of an existing manager to join")
	f.String("operator", "", "Operator principal name")
	f.String("operator-token", "", "Token that authenticates the operator")
	f.String("oracle-mode", "", "Load oracle: numeric or sealed")
	f.String("oracle-key", "", "Hex-encoded 32-byte key for the sealed oracle")
	f.Duration("drain-interval", 0, "Interval between queue drains (0 disables)")
	f.StringSlice("kafka-brokers", nil, "Kafka brokers for the notification stream")
	f.String("kafka-topic", "", "Kafka topic for the notification stream")
	f.String("log-level", "", "Log level: debug, info, warn, error")
	f.Bool("log-json", false, "Emit JSON logs")
}

// applyFlags overrides cfg with every flag set on the command line
func applyFlags(f *pflag.FlagSet, cfg *config.Config) {
	str := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	str("node-id", &cfg.NodeID)
	str("raft-addr", &cfg.RaftAddr)
	str("api-addr", &cfg.APIAddr)
	str("health-addr", &cfg.HealthAddr)
	str("socket", &cfg.SocketPath)
	str("data-dir", &cfg.DataDir)
	str("cert-dir", &cfg.CertDir)
	str("join", &cfg.JoinAddr)
	str("operator", &cfg.Operator)
	str("operator-token", &cfg.OperatorToken)
	str("oracle-mode", &cfg.OracleMode)
	str("oracle-key", &cfg.OracleKey)
	str("kafka-topic", &cfg.KafkaTopic)
	str("log-level", &cfg.LogLevel)

	if f.Changed("in-memory") {
		cfg.InMemory, _ = f.GetBool("in-memory")
	}
	if f.Changed("log-json") {
		cfg.LogJSON, _ = f.GetBool("log-json")
	}
	if f.Changed("drain-interval") {
		cfg.DrainInterval, _ = f.GetDuration("drain-interval")
	}
	if f.Changed("kafka-brokers") {
		cfg.KafkaBrokers, _ = f.GetStringSlice("kafka-brokers")
	}
	if f.Changed("tls-host") {
		cfg.TLSHosts, _ = f.GetStringSlice("tls-host")
	}
	if f.Changed("require-client-cert") {
		cfg.RequireClientCert, _ = f.GetBool("require-client-cert")
	}
	if f.Changed("token-cleanup-interval") {
		cfg.TokenCleanupInterval, _ = f.GetDuration("token-cleanup-interval")
	}
}

// loadServerTLS loads the cluster CA, creating it when this manager
// bootstraps the cluster, and issues a fresh API certificate. The
// certificate doubles as the client certificate for joining.
func loadServerTLS(cfg *config.Config) (server, join *tls.Config, err error) {
	certDir := cfg.CertDirectory()

	var ca *security.CertAuthority
	if cfg.JoinAddr == "" {
		var created bool
		ca, created, err = security.LoadOrCreateCA(certDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load cluster CA: %w", err)
		}
		if created {
			logger := log.WithComponent("server")
			logger.Info().Str("cert_dir", certDir).Msg("Created cluster CA")
		}
	} else {
		ca = security.NewCertAuthority()
		if err := ca.Load(certDir); err != nil {
			return nil, nil, fmt.Errorf("joining managers need the cluster CA (ca.crt and ca.key) in %s: %w", certDir, err)
		}
	}

	cert, err := ca.IssueServerCertificate(cfg.NodeID, cfg.APIHosts())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue API certificate: %w", err)
	}

	join = &tls.Config{
		RootCAs:      ca.CertPool(),
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS13,
	}
	return security.ServerTLSConfig(cert, ca, cfg.RequireClientCert), join, nil
}

// tokenJanitor drops expired tokens
type tokenJanitor interface {
	CleanupExpiredTokens() int
}

// cleanupTokens sweeps expired tokens every interval until ctx is done
func cleanupTokens(ctx context.Context, tokens tokenJanitor, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tokens.CleanupExpiredTokens()
		}
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd.Flags(), cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Init(log.Config{
		Level:      log.ParseLevel(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})
	logger := log.WithComponent("server")

	metrics.SetVersion(Version)
	metrics.SetCriticalComponents("raft", "storage", "api")
	metrics.RegisterComponent("raft", false, "starting")
	metrics.RegisterComponent("storage", false, "starting")
	metrics.RegisterComponent("api", false, "starting")

	cmp, err := cfg.Oracle()
	if err != nil {
		return err
	}

	serverTLS, joinTLS, err := loadServerTLS(cfg)
	if err != nil {
		return err
	}

	dataDir := cfg.DataDir
	if cfg.InMemory {
		dataDir = ""
	}
	mgr, err := manager.NewManager(&manager.Config{
		NodeID:        cfg.NodeID,
		BindAddr:      cfg.RaftAddr,
		DataDir:       dataDir,
		Operator:      cfg.OperatorPrincipal(),
		OperatorToken: cfg.OperatorToken,
		Oracle:        cmp,
		InMemory:      cfg.InMemory,
	})
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}

	if cfg.JoinAddr == "" {
		if err := mgr.Bootstrap(); err != nil {
			return fmt.Errorf("failed to bootstrap cluster: %w", err)
		}
	} else {
		if err := mgr.Start(); err != nil {
			return fmt.Errorf("failed to start raft: %w", err)
		}
		if err := joinCluster(cmd.Context(), cfg, joinTLS); err != nil {
			_ = mgr.Shutdown()
			return err
		}
	}
	if err := mgr.WaitForLeader(30 * time.Second); err != nil {
		_ = mgr.Shutdown()
		return err
	}
	metrics.UpdateComponent("raft", true, "started")
	if mgr.Store() != nil {
		metrics.UpdateComponent("storage", true, "bbolt")
	} else {
		metrics.UpdateComponent("storage", true, "in-memory")
	}

	logger.Info().
		Str("node_id", cfg.NodeID).
		Str("raft_addr", cfg.RaftAddr).
		Str("api_addr", cfg.APIAddr).
		Str("cert_dir", cfg.CertDirectory()).
		Str("oracle", cfg.OracleMode).
		Msg("Manager started")

	errCh := make(chan error, 3)

	apiServer, err := api.NewServer(mgr, serverTLS)
	if err != nil {
		_ = mgr.Shutdown()
		return err
	}
	go func() {
		if err := apiServer.Start(cfg.APIAddr); err != nil {
			errCh <- fmt.Errorf("API server error: %w", err)
		}
	}()
	if cfg.SocketPath != "" {
		go func() {
			if err := apiServer.StartUnix(cfg.SocketPath); err != nil {
				logger.Warn().Err(err).Msg("Read-only socket unavailable")
			}
		}()
	}
	metrics.UpdateComponent("api", true, cfg.APIAddr)

	var healthServer *api.HealthServer
	if cfg.HealthAddr != "" {
		healthServer = api.NewHealthServer(mgr)
		go func() {
			if err := healthServer.Start(cfg.HealthAddr); err != nil {
				errCh <- fmt.Errorf("health server error: %w", err)
			}
		}()
	}

	collector := manager.NewMetricsCollector(mgr)
	collector.Start()

	kicker := scheduler.NewKicker(mgr, cfg.DrainInterval)
	kicker.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go cleanupTokens(ctx, mgr, cfg.TokenCleanupInterval)

	var sink *notify.KafkaSink
	if len(cfg.KafkaBrokers) > 0 {
		sink, err = notify.NewKafkaSink(notify.Config{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			return err
		}
		forwarder := notify.NewForwarder(mgr.GetEventBroker(), sink, mgr.IsLeader)
		go forwarder.Run(ctx)
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("Forwarding notifications to Kafka")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info().Msg("Shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("Server failed, shutting down")
	}

	cancel()
	kicker.Stop()
	collector.Stop()
	apiServer.Stop()
	if healthServer != nil {
		_ = healthServer.Stop()
	}
	if sink != nil {
		if err := sink.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close Kafka sink")
		}
	}
	if err := mgr.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown: %w", err)
	}

	logger.Info().Msg("Shutdown complete")
	return nil
}

// joinCluster asks an existing manager to add this one as a voter. The
// leader may still be electing, so the call is retried with backoff.
func joinCluster(ctx context.Context, cfg *config.Config, tlsCfg *tls.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := client.NewClient(cfg.JoinAddr, cfg.OperatorToken, tlsCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.JoinAddr, err)
	}
	defer c.Close()

	logger := log.WithComponent("server")
	err = retry.Do(
		func() error { return c.JoinCluster(cfg.NodeID, cfg.RaftAddr) },
		retry.Context(ctx),
		retry.Attempts(10),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn().Err(err).Uint("attempt", n+1).Str("join_addr", cfg.JoinAddr).Msg("Join failed, retrying")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to join cluster via %s: %w", cfg.JoinAddr, err)
	}
	return nil
}
