package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"courier/internal/app"
	"courier/internal/domain"
)

var (
	home       string
	passphrase string
	appCtx     *app.App

	relayURL  string
	blobURL   string
	level     string
	logLevel  string
	socialURL string
)

func Execute() error {
	root := &cobra.Command{
		Use:          "courier",
		Short:        "End-to-end encrypted store-and-forward messaging CLI",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".courier")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			fc, err := app.LoadFileConfig(home)
			if err != nil {
				return err
			}
			cfg := app.Config{
				Home:             home,
				RelayURL:         relayURL,
				BlobURL:          blobURL,
				Level:            domain.SecurityLevel(level),
				LogLevel:         logLevel,
				SocialProfileURL: socialURL,
				HTTP:             &http.Client{Timeout: 2 * time.Minute},
			}
			cfg.Merge(fc)

			log, err := app.NewLogger(cfg.LogLevel, "console")
			if err != nil {
				return err
			}
			w, err := app.NewWire(cfg, log)
			if err != nil {
				return err
			}
			appCtx = app.New(w)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appCtx != nil {
				_ = appCtx.Log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.courier)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the local endpoint")
	root.PersistentFlags().StringVar(&relayURL, "relay", "", "relay base URL (e.g. http://127.0.0.1:8080)")
	root.PersistentFlags().StringVar(&blobURL, "blob", "", "blob host base URL (default: the relay)")
	root.PersistentFlags().StringVar(&level, "level", "", "security level for new endpoints: minimum, recommended, maximum")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default warn)")
	root.PersistentFlags().StringVar(&socialURL, "social", "", "profile API template for @handle lookups, containing {handle}")

	root.AddCommand(
		initCmd(),
		thumbprintCmd(),
		publishCmd(),
		lookupCmd(),
		contactsCmd(),
		sendCmd(),
		recvCmd(),
		deleteCmd(),
		watchCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return root.ExecuteContext(ctx)
}

func requirePassphrase() error {
	if passphrase == "" {
		return fmt.Errorf("passphrase required (-p)")
	}
	return nil
}

func requireRelay() error {
	if appCtx.Config.RelayURL == "" {
		return fmt.Errorf("no relay configured. use --relay or set relay in %s", app.ConfigFilename)
	}
	return nil
}
