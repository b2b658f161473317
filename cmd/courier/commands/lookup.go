package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"courier/internal/crypto"
	"courier/internal/domain"
)

func lookupCmd() *cobra.Command {
	var save string
	cmd := &cobra.Command{
		Use:   "lookup <name|url#thumbprint|@handle>",
		Short: "Resolve and verify an endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ep, err := lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printEndpoint(ep)
			if save != "" {
				if err := appCtx.Contacts.SaveContact(save, *ep); err != nil {
					return err
				}
				fmt.Printf("Pinned as %q\n", save)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "pin the endpoint as a contact under this name")
	return cmd
}

func contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage pinned contacts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <url#thumbprint|@handle>",
		Short: "Resolve, verify and pin an endpoint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ep, err := lookup(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			if err := appCtx.Contacts.SaveContact(args[0], *ep); err != nil {
				return err
			}
			fmt.Printf("Pinned %s as %q\n", ep.Thumbprint(), args[0])
			return nil
		},
	}, &cobra.Command{
		Use:   "list",
		Short: "List pinned contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := appCtx.Contacts.ListContacts()
			if err != nil {
				return err
			}
			names := make([]string, 0, len(all))
			for n := range all {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				ep := all[n]
				fmt.Printf("%-16s %s  %s\n", n, ep.Thumbprint(), ep.InboxURL)
			}
			return nil
		},
	})
	return cmd
}

func lookup(ctx context.Context, identifier string) (*domain.Endpoint, error) {
	ep, err := appCtx.AddressBook.Lookup(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if ep == nil {
		return nil, fmt.Errorf("%s: %w", identifier, domain.ErrNotFound)
	}
	return ep, nil
}

func printEndpoint(ep *domain.Endpoint) {
	fmt.Printf("Thumbprint: %s\n", crypto.Fingerprint(ep.Thumbprint()))
	fmt.Printf("Suite:      %s\n", ep.Suite)
	fmt.Printf("Inbox:      %s\n", ep.InboxURL)
	if !ep.CreatedUTC.IsZero() {
		fmt.Printf("Created:    %s\n", ep.CreatedUTC.Format("2006-01-02 15:04:05Z"))
	}
}
