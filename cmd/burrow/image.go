package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage images",
}

var imageAddCmd = &cobra.Command{
	Use:   "add IMAGE",
	Short: "Add or reactivate an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		replicas, _ := cmd.Flags().GetUint32("replicas")
		portSpecs, _ := cmd.Flags().GetStringSlice("port")
		ports, err := parsePorts(portSpecs)
		if err != nil {
			return err
		}

		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.AddImage(args[0], replicas); err != nil {
			return fmt.Errorf("failed to add image: %w", err)
		}
		if len(ports) > 0 {
			if err := c.SetImagePorts(args[0], ports); err != nil {
				return fmt.Errorf("failed to set ports: %w", err)
			}
		}
		fmt.Printf("✓ Image added: %s (replicas=%d)\n", args[0], replicas)
		return nil
	},
}

var imageRemoveCmd = &cobra.Command{
	Use:   "remove IMAGE",
	Short: "Deactivate an image and evict its containers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.RemoveImage(args[0]); err != nil {
			return fmt.Errorf("failed to remove image: %w", err)
		}
		fmt.Printf("✓ Image removed: %s\n", args[0])
		return nil
	},
}

var imagePortsCmd = &cobra.Command{
	Use:   "ports IMAGE",
	Short: "Show or replace an image's exposed ports",
	Long: `Without --port, print the image's exposed ports. With one or more
--port FROM:TO flags, replace them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if cmd.Flags().Changed("port") {
			portSpecs, _ := cmd.Flags().GetStringSlice("port")
			ports, err := parsePorts(portSpecs)
			if err != nil {
				return err
			}
			if err := c.SetImagePorts(args[0], ports); err != nil {
				return fmt.Errorf("failed to set ports: %w", err)
			}
			fmt.Printf("✓ Ports updated: %s\n", args[0])
			return nil
		}

		ports, err := c.ImagePorts(args[0])
		if err != nil {
			return err
		}
		for _, p := range ports {
			fmt.Printf("%d:%d\n", p.From, p.To)
		}
		return nil
	},
}

var imageStatusCmd = &cobra.Command{
	Use:   "status IMAGE",
	Short: "Show an image's replica status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		st, err := c.ImageStatus(args[0])
		if err != nil {
			return err
		}
		pending, err := c.PendingCount(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Image:    %s\n", args[0])
		fmt.Printf("Active:   %t\n", st.Active)
		fmt.Printf("Replicas: %d\n", st.Replicas)
		fmt.Printf("Deployed: %d\n", st.Deployed)
		fmt.Printf("Pending:  %d\n", pending)
		return nil
	},
}

var imageHostsCmd = &cobra.Command{
	Use:   "hosts IMAGE",
	Short: "List the nodes running an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		hosts, err := c.ImageHosts(args[0])
		if err != nil {
			return err
		}
		for _, h := range hosts {
			fmt.Println(h)
		}
		return nil
	},
}

func init() {
	imageCmd.AddCommand(imageAddCmd)
	imageCmd.AddCommand(imageRemoveCmd)
	imageCmd.AddCommand(imagePortsCmd)
	imageCmd.AddCommand(imageStatusCmd)
	imageCmd.AddCommand(imageHostsCmd)

	imageAddCmd.Flags().Uint32("replicas", 1, "Number of replicas")
	imageAddCmd.Flags().StringSlice("port", nil, "Exposed port as FROM:TO (repeatable)")
	imagePortsCmd.Flags().StringSlice("port", nil, "Exposed port as FROM:TO (repeatable)")
}

// parsePorts parses FROM:TO pairs. A bare PORT maps the port to itself.
func parsePorts(specs []string) ([]types.PortMapping, error) {
	ports := make([]types.PortMapping, 0, len(specs))
	for _, spec := range specs {
		from, to, found := strings.Cut(spec, ":")
		if !found {
			to = from
		}
		f, err := strconv.ParseUint(from, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", spec, err)
		}
		t, err := strconv.ParseUint(to, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", spec, err)
		}
		ports = append(ports, types.PortMapping{From: uint32(f), To: uint32(t)})
	}
	return ports, nil
}
