package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage temporary operator tokens",
	Long: `Generated tokens authorize the operator like the configured token but
expire. They live in the memory of the manager that issued them: they are not
replicated and do not survive a restart, so use them against that manager.`,
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate an operator token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl, _ := cmd.Flags().GetDuration("ttl")

		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		tok, err := c.CreateToken(ttl)
		if err != nil {
			return fmt.Errorf("failed to create token: %w", err)
		}

		fmt.Printf("✓ Token created\n")
		fmt.Printf("  ID:      %s\n", tok.ID)
		fmt.Printf("  Expires: %s\n", tok.ExpiresAt.Format(time.RFC3339))
		fmt.Printf("  Token:   %s\n", tok.Token)
		return nil
	},
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke ID",
	Short: "Revoke a generated token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.RevokeToken(args[0]); err != nil {
			return fmt.Errorf("failed to revoke token: %w", err)
		}
		fmt.Printf("✓ Token %s revoked\n", args[0])
		return nil
	},
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List generated tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		tokens, err := c.ListTokens()
		if err != nil {
			return err
		}

		if len(tokens) == 0 {
			fmt.Println("No generated tokens")
			return nil
		}
		fmt.Printf("%-36s  %-25s  %s\n", "ID", "CREATED", "EXPIRES")
		for _, tok := range tokens {
			fmt.Printf("%-36s  %-25s  %s\n", tok.ID, tok.CreatedAt.Format(time.RFC3339), tok.ExpiresAt.Format(time.RFC3339))
		}
		return nil
	},
}

func init() {
	tokenCreateCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")

	tokenCmd.AddCommand(tokenCreateCmd)
	tokenCmd.AddCommand(tokenRevokeCmd)
	tokenCmd.AddCommand(tokenListCmd)
}
