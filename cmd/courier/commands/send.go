package commands

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"courier/internal/domain"
)

func sendCmd() *cobra.Command {
	var (
		file        string
		contentType string
		ttl         time.Duration
	)
	cmd := &cobra.Command{
		Use:   "send <recipient[,recipient...]> [text]",
		Short: "Encrypt a payload once and notify every recipient",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			payload, err := readPayload(args[1:], file, contentType)
			if err != nil {
				return err
			}

			var recipients []domain.Endpoint
			for _, id := range strings.Split(args[0], ",") {
				id = strings.TrimSpace(id)
				if id == "" {
					continue
				}
				ep, err := lookup(cmd.Context(), id)
				if err != nil {
					return err
				}
				recipients = append(recipients, *ep)
			}

			ch, err := appCtx.Channel(passphrase)
			if err != nil {
				return err
			}
			res, err := ch.Post(cmd.Context(), payload, recipients, time.Now().UTC().Add(ttl))
			var de *domain.DeliveryError
			if err != nil && !errors.As(err, &de) {
				return err
			}
			for _, t := range res.Delivered {
				fmt.Printf("delivered %s\n", t)
			}
			for _, f := range res.Failed {
				fmt.Printf("failed    %s: %v\n", f.Recipient, f.Err)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "send the contents of a file")
	cmd.Flags().StringVar(&contentType, "content-type", "", "payload content type (default text/plain or guessed from --file)")
	cmd.Flags().DurationVar(&ttl, "ttl", 7*24*time.Hour, "how long the payload stays retrievable")
	return cmd
}

func readPayload(args []string, file, contentType string) (domain.Payload, error) {
	switch {
	case file != "" && len(args) > 0:
		return domain.Payload{}, fmt.Errorf("give either text or --file, not both")
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return domain.Payload{}, err
		}
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(file))
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		return domain.Payload{ContentType: contentType, Content: b}, nil
	case len(args) > 0:
		if contentType == "" {
			contentType = "text/plain; charset=utf-8"
		}
		return domain.Payload{ContentType: contentType, Content: []byte(args[0])}, nil
	default:
		return domain.Payload{}, fmt.Errorf("nothing to send")
	}
}
