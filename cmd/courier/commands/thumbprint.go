package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"courier/internal/crypto"
)

func thumbprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thumbprint",
		Short: "Print the endpoint thumbprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			own, err := appCtx.Endpoint(passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Thumbprint: %s\n", own.Thumbprint())
			fmt.Printf("Grouped:    %s\n", crypto.Fingerprint(own.Thumbprint()))
			return nil
		},
	}
	return cmd
}
