package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/security"
	"github.com/spf13/cobra"
)

var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "Manage API certificates",
}

var certIssueCmd = &cobra.Command{
	Use:   "issue NAME",
	Short: "Issue a client certificate signed by the cluster CA",
	Long: `Issue a client certificate signed by the cluster CA. Run it on a manager
host: it needs ca.key from the manager's cert dir. The certificate, its key
and a copy of ca.crt are written to --out; point --ca-cert at that copy and
the CLI presents the certificate on every call.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		certDir, _ := cmd.Flags().GetString("cert-dir")
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = certDir
		}

		if err := issueClientCert(certDir, out, args[0]); err != nil {
			return err
		}

		fmt.Printf("✓ Client certificate issued for %s\n", args[0])
		fmt.Printf("  Certificate: %s\n", filepath.Join(out, security.ClientCertName+".crt"))
		fmt.Printf("  CA:          %s\n", filepath.Join(out, security.CACertFile))
		return nil
	},
}

// issueClientCert signs a client certificate with the CA in certDir and
// stores it, with the CA certificate, in out
func issueClientCert(certDir, out, name string) error {
	ca := security.NewCertAuthority()
	if err := ca.Load(certDir); err != nil {
		return fmt.Errorf("failed to load CA from %s: %w", certDir, err)
	}

	cert, err := ca.IssueClientCertificate(name)
	if err != nil {
		return err
	}
	if err := security.SaveCertToFile(cert, out, security.ClientCertName); err != nil {
		return err
	}

	if filepath.Clean(out) != filepath.Clean(certDir) {
		caPEM, err := os.ReadFile(filepath.Join(certDir, security.CACertFile))
		if err != nil {
			return fmt.Errorf("failed to read CA certificate: %w", err)
		}
		if err := os.WriteFile(filepath.Join(out, security.CACertFile), caPEM, 0644); err != nil {
			return fmt.Errorf("failed to copy CA certificate: %w", err)
		}
	}
	return nil
}

func init() {
	certIssueCmd.Flags().String("cert-dir", security.DefaultCertDir(config.Default().DataDir), "Manager cert dir holding ca.crt and ca.key")
	certIssueCmd.Flags().String("out", "", "Directory for the issued certificate (defaults to --cert-dir)")

	certCmd.AddCommand(certIssueCmd)
}
