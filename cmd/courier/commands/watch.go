package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"courier/internal/push"
)

func watchCmd() *cobra.Command {
	var del bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print payloads as the relay pushes them, until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			ch, err := appCtx.Channel(passphrase)
			if err != nil {
				return err
			}
			w, err := appCtx.Watcher(passphrase)
			if err != nil {
				return err
			}
			pass := func(ctx context.Context) error {
				_, err := receive(ctx, ch, false, del)
				return err
			}
			err = w.Run(cmd.Context(),
				pass,
				func(ctx context.Context, _ push.Notification) error { return pass(ctx) },
			)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&del, "delete", false, "delete items once they are shown")
	return cmd
}
