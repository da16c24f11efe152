package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/oracle"
	"github.com/cuemby/burrow/pkg/worker"
	"github.com/spf13/cobra"
)

var agentCmd = &cobra.Command{
	Use:   "agent NODE_ID",
	Short: "Run the node agent that registers a worker and reports its load",
	Long: `Register this worker with the cluster and report its load on an
interval. With --key or --passphrase the load is sealed before it leaves
the host; otherwise it is sent as a plain number.

The node is deregistered when the agent stops unless --keep is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		keyHex, _ := cmd.Flags().GetString("key")
		passphrase, _ := cmd.Flags().GetString("passphrase")
		keep, _ := cmd.Flags().GetBool("keep")
		static, _ := cmd.Flags().GetUint64("static-load")
		logLevel, _ := cmd.Flags().GetString("log-level")

		log.Init(log.Config{Level: log.ParseLevel(logLevel)})

		cfg := &worker.Config{
			NodeID:           args[0],
			Interval:         interval,
			Source:           worker.LoadAvgSource{},
			DeregisterOnStop: !keep,
		}
		if cmd.Flags().Changed("static-load") {
			cfg.Source = worker.StaticSource(static)
		}

		switch {
		case keyHex != "":
			key, err := hex.DecodeString(keyHex)
			if err != nil {
				return fmt.Errorf("key must be hex: %w", err)
			}
			sealed, err := oracle.NewSealed(key)
			if err != nil {
				return err
			}
			cfg.Sealer = sealed
		case passphrase != "":
			sealed, err := oracle.NewSealed(oracle.DeriveKey(passphrase))
			if err != nil {
				return err
			}
			cfg.Sealer = sealed
		}

		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		agent, err := worker.NewAgent(cfg, c)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := agent.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return agent.Stop()
	},
}

func init() {
	agentCmd.Flags().Duration("interval", 0, "Interval between load reports (default 5s)")
	agentCmd.Flags().String("key", "", "Hex-encoded 32-byte oracle key")
	agentCmd.Flags().String("passphrase", "", "Derive the oracle key from a passphrase instead")
	agentCmd.Flags().Bool("keep", false, "Leave the node registered when the agent stops")
	agentCmd.Flags().Uint64("static-load", 0, "Report a fixed load instead of the host load average")
	agentCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	agentCmd.MarkFlagsMutuallyExclusive("key", "passphrase")

	rootCmd.AddCommand(agentCmd)
}
