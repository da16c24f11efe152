package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuemby/burrow/pkg/events"
	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and drain the pending queue",
}

var queueDrainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Attempt to place one queued replica",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Drain(); err != nil {
			return fmt.Errorf("failed to drain queue: %w", err)
		}
		fmt.Println("✓ Drain submitted")
		return nil
	},
}

var queuePendingCmd = &cobra.Command{
	Use:   "pending IMAGE",
	Short: "Show an image's queued replicas",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		n, err := c.PendingCount(args[0])
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

func init() {
	queueCmd.AddCommand(queueDrainCmd)
	queueCmd.AddCommand(queuePendingCmd)
}

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Inspect the manager cluster",
}

var clusterInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the Raft leader, members and scheduler counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		info, err := c.ClusterInfo()
		if err != nil {
			return err
		}
		counts, err := c.Counts()
		if err != nil {
			return err
		}

		fmt.Printf("Leader: %s\n", info.Leader)
		fmt.Printf("Nodes:  %d\n", counts.Nodes)
		fmt.Printf("Images: %d\n", counts.Images)
		fmt.Println("Managers:")
		for _, s := range info.Servers {
			fmt.Printf("  %s  %s  %s\n", s.ID, s.Address, s.Suffrage)
		}
		return nil
	},
}

var clusterLeaveCmd = &cobra.Command{
	Use:   "leave NODE_ID",
	Short: "Remove a manager from the Raft cluster",
	Long: `Remove a manager from the Raft cluster. The request must reach the
leader; stop the removed manager afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.LeaveCluster(args[0]); err != nil {
			return fmt.Errorf("failed to remove %s: %w", args[0], err)
		}
		fmt.Printf("✓ Manager %s removed from the cluster\n", args[0])
		return nil
	},
}

func init() {
	clusterCmd.AddCommand(clusterInfoCmd)
	clusterCmd.AddCommand(clusterLeaveCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream scheduler notifications as JSON lines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		enc := json.NewEncoder(os.Stdout)
		return c.Watch(ctx, func(ev *events.Event) {
			_ = enc.Encode(ev)
		})
	},
}
