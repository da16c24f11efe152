package main

import (
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/burrow/pkg/api"
	"github.com/cuemby/burrow/pkg/client"
	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/security"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "burrow",
	Short: "Burrow - confidential-load placement scheduler",
	Long: `Burrow places replicas of container images onto worker nodes. Nodes
report their load as opaque handles that only the configured oracle can
compare, so the scheduler balances work without learning anyone's load.

Managers replicate scheduling state with Raft and serve a gRPC API for
operators and workers.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	api.Version = Version

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Burrow version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("manager", "127.0.0.1:8080", "Manager API address")
	rootCmd.PersistentFlags().String("token", os.Getenv("BURROW_TOKEN"), "Operator token (defaults to $BURROW_TOKEN)")
	rootCmd.PersistentFlags().String("ca-cert", defaultCACert(), "Cluster CA certificate; a client.crt/client.key pair next to it is presented when present (defaults to $BURROW_CA_CERT)")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(nodeCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(certCmd)
}

// newClient connects to the manager named by the persistent flags
func newClient(cmd *cobra.Command) (*client.Client, error) {
	addr, _ := cmd.Flags().GetString("manager")
	token, _ := cmd.Flags().GetString("token")

	tlsCfg, err := clientTLS(cmd)
	if err != nil {
		return nil, err
	}

	c, err := client.NewClient(addr, token, tlsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to manager: %w", err)
	}
	return c, nil
}

// clientTLS trusts the CA named by --ca-cert and presents the client
// certificate stored beside it, if any
func clientTLS(cmd *cobra.Command) (*tls.Config, error) {
	caFile, _ := cmd.Flags().GetString("ca-cert")
	tlsCfg, err := security.ClientTLSConfig(caFile, filepath.Dir(caFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS settings (see --ca-cert): %w", err)
	}
	return tlsCfg, nil
}

func defaultCACert() string {
	if v := os.Getenv("BURROW_CA_CERT"); v != "" {
		return v
	}
	return filepath.Join(security.DefaultCertDir(config.Default().DataDir), security.CACertFile)
}
