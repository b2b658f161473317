package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"courier/internal/domain"
	"courier/internal/services/channel"
)

func recvCmd() *cobra.Command {
	var longPoll, del bool
	cmd := &cobra.Command{
		Use:   "recv",
		Short: "Fetch, verify and decrypt pending payloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			ch, err := appCtx.Channel(passphrase)
			if err != nil {
				return err
			}
			n, err := receive(cmd.Context(), ch, longPoll, del)
			if n == 0 && err == nil {
				fmt.Println("(no payloads)")
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&longPoll, "long-poll", false, "wait for at least one item")
	cmd.Flags().BoolVar(&del, "delete", false, "delete items once they are shown")
	return cmd
}

// receive runs one pass and prints what it recovered. It returns the number
// of payloads shown.
func receive(ctx context.Context, ch *channel.Channel, longPoll, del bool) (int, error) {
	res, err := ch.Receive(ctx, domain.ReceiveOptions{LongPoll: longPoll})
	if res == nil {
		return 0, err
	}
	for _, p := range res.Payloads {
		printPayload(p)
		if del {
			if derr := ch.DeleteInboxItem(ctx, p); derr != nil {
				fmt.Fprintf(os.Stderr, "delete %s: %v\n", p.InboxItem.URL, derr)
			}
		}
	}
	for _, r := range res.Rejected {
		fmt.Fprintf(os.Stderr, "rejected: %v\n", r)
	}
	return len(res.Payloads), err
}

func printPayload(p *domain.ReceivedPayload) {
	from := p.Sender.Thumbprint().String()
	if name, ok, err := appCtx.Contacts.FindByThumbprint(p.Sender.Thumbprint()); err == nil && ok {
		from = name
	}
	fmt.Printf("[%s] %s (%s)\n", p.PostedUTC.Format("2006-01-02 15:04:05Z"), from, p.Payload.ContentType)
	if strings.HasPrefix(p.Payload.ContentType, "text/") {
		fmt.Printf("  %s\n", p.Payload.Content)
	} else {
		fmt.Printf("  %d bytes\n", len(p.Payload.Content))
	}
	fmt.Printf("  item: %s\n", p.InboxItem.URL)
}
