package main

import (
	"encoding/hex"
	"fmt"

	"github.com/cuemby/burrow/pkg/oracle"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Manage worker nodes",
}

var nodeRegisterCmd = &cobra.Command{
	Use:   "register NODE_ID",
	Short: "Register or reactivate a node",
	Long: `Register a node with its current load. Pass --handle with a handle
produced by 'burrow load seal' on a sealed-oracle cluster, or --load with a
plain number on a numeric-oracle cluster.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		load, err := loadFromFlags(cmd)
		if err != nil {
			return err
		}

		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.RegisterNode(args[0], load); err != nil {
			return fmt.Errorf("failed to register node: %w", err)
		}
		fmt.Printf("✓ Node registered: %s\n", args[0])
		return nil
	},
}

var nodeDeregisterCmd = &cobra.Command{
	Use:   "deregister NODE_ID",
	Short: "Mark a node inactive and requeue its containers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.DeregisterNode(args[0]); err != nil {
			return fmt.Errorf("failed to deregister node: %w", err)
		}
		fmt.Printf("✓ Node deregistered: %s\n", args[0])
		return nil
	},
}

var nodeLoadCmd = &cobra.Command{
	Use:   "load NODE_ID",
	Short: "Report a node's new load",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		load, err := loadFromFlags(cmd)
		if err != nil {
			return err
		}

		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.SetNodeLoad(args[0], load); err != nil {
			return fmt.Errorf("failed to update load: %w", err)
		}
		fmt.Printf("✓ Load updated: %s\n", args[0])
		return nil
	},
}

var nodeStatusCmd = &cobra.Command{
	Use:   "status NODE_ID",
	Short: "Show whether a node is active and what it runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		active, err := c.NodeActive(args[0])
		if err != nil {
			return err
		}
		images, err := c.NodeImages(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Node:       %s\n", args[0])
		fmt.Printf("Active:     %t\n", active)
		fmt.Printf("Containers: %d\n", len(images))
		for slot, image := range images {
			fmt.Printf("  [%d] %s\n", slot, image)
		}
		return nil
	},
}

func init() {
	nodeCmd.AddCommand(nodeRegisterCmd)
	nodeCmd.AddCommand(nodeDeregisterCmd)
	nodeCmd.AddCommand(nodeLoadCmd)
	nodeCmd.AddCommand(nodeStatusCmd)

	for _, cmd := range []*cobra.Command{nodeRegisterCmd, nodeLoadCmd} {
		cmd.Flags().Uint64("load", 0, "Plain load value (numeric oracle)")
		cmd.Flags().String("handle", "", "Hex-encoded sealed load handle (sealed oracle)")
		cmd.MarkFlagsMutuallyExclusive("load", "handle")
	}
}

// loadFromFlags builds a load handle from --handle or --load
func loadFromFlags(cmd *cobra.Command) (types.LoadHandle, error) {
	handle, _ := cmd.Flags().GetString("handle")
	if handle != "" {
		return parseHandle(handle)
	}
	if !cmd.Flags().Changed("load") {
		return nil, fmt.Errorf("one of --load or --handle is required")
	}
	load, _ := cmd.Flags().GetUint64("load")
	return oracle.NumericHandle(load), nil
}

func parseHandle(s string) (types.LoadHandle, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("handle must be hex: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("handle cannot be empty")
	}
	return raw, nil
}
