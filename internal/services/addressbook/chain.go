package addressbook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"courier/internal/domain"
)

// Contacts resolves names pinned in the local contact store.
type Contacts struct {
	store domain.ContactStore
}

// NewContacts returns an address book over store.
func NewContacts(store domain.ContactStore) *Contacts { return &Contacts{store: store} }

func (c *Contacts) Lookup(_ context.Context, identifier string) (*domain.Endpoint, error) {
	name := strings.TrimSpace(identifier)
	if name == "" || strings.ContainsAny(name, "@:/#") {
		return nil, fmt.Errorf("%w: %q is not a contact name", domain.ErrInvalidArgument, identifier)
	}
	ep, ok, err := c.store.LoadContact(name)
	if err != nil || !ok {
		return nil, err
	}
	return &ep, nil
}

// Chain asks each book in turn. A book that rejects the identifier with
// domain.ErrInvalidArgument is skipped; any other error, trust failures
// included, stops the chain.
type Chain []domain.AddressBook

func (c Chain) Lookup(ctx context.Context, identifier string) (*domain.Endpoint, error) {
	var invalid error
	understood := false
	for _, b := range c {
		ep, err := b.Lookup(ctx, identifier)
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			invalid = err
			continue
		case err != nil:
			return nil, err
		case ep != nil:
			return ep, nil
		}
		understood = true
	}
	if !understood && invalid != nil {
		return nil, invalid
	}
	return nil, nil
}

var (
	_ domain.AddressBook = (*Contacts)(nil)
	_ domain.AddressBook = Chain(nil)
)
