package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"courier/internal/crypto"
)

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate endpoint keys, provision an inbox and store them securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if err := requireRelay(); err != nil {
				return err
			}
			if appCtx.Endpoints.Exists() && !force {
				return fmt.Errorf("an endpoint already exists in %s; use --force to replace it", home)
			}
			own, err := appCtx.Identity.Create(cmd.Context(), passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Endpoint created.\nSuite: %s\nInbox: %s\nThumbprint: %s\n",
				own.Endpoint.Suite, own.Endpoint.InboxURL, crypto.Fingerprint(own.Thumbprint()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing endpoint")
	return cmd
}
