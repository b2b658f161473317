package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func publishCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a self-signed address book entry and print its direct-entry URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			own, err := appCtx.Endpoint(passphrase)
			if err != nil {
				return err
			}
			entryURL, err := appCtx.Identity.PublishAddressBookEntry(cmd.Context(), own, time.Now().UTC().Add(ttl))
			if err != nil {
				return err
			}
			fmt.Println(entryURL)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 365*24*time.Hour, "how long the entry stays published")
	return cmd
}
