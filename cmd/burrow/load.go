package main

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/cuemby/burrow/pkg/oracle"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Produce load handles for workers",
}

var loadSealCmd = &cobra.Command{
	Use:   "seal LOAD",
	Short: "Seal a load value into an opaque handle",
	Long: `Encrypt a load value with the cluster's oracle key and print the handle
as hex. Pass the output to 'burrow node register --handle' or
'burrow node load --handle'. Each call yields a different handle for the
same load.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyHex, _ := cmd.Flags().GetString("key")
		passphrase, _ := cmd.Flags().GetString("passphrase")

		handle, err := sealLoad(args[0], keyHex, passphrase)
		if err != nil {
			return err
		}
		fmt.Println(handle)
		return nil
	},
}

func init() {
	loadCmd.AddCommand(loadSealCmd)
	loadSealCmd.Flags().String("key", "", "Hex-encoded 32-byte oracle key")
	loadSealCmd.Flags().String("passphrase", "", "Derive the oracle key from a passphrase instead")
	loadSealCmd.MarkFlagsMutuallyExclusive("key", "passphrase")
}

// sealLoad seals load under the key given as hex or derived from passphrase
func sealLoad(load, keyHex, passphrase string) (string, error) {
	value, err := strconv.ParseUint(load, 10, 64)
	if err != nil {
		return "", fmt.Errorf("load must be an unsigned integer: %w", err)
	}

	var key []byte
	switch {
	case keyHex != "":
		key, err = hex.DecodeString(keyHex)
		if err != nil {
			return "", fmt.Errorf("key must be hex: %w", err)
		}
	case passphrase != "":
		key = oracle.DeriveKey(passphrase)
	default:
		return "", fmt.Errorf("one of --key or --passphrase is required")
	}

	sealed, err := oracle.NewSealed(key)
	if err != nil {
		return "", err
	}
	handle, err := sealed.Seal(value)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(handle), nil
}
