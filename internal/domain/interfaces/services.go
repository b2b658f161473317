package interfaces

import (
	"context"
	"iter"
	"time"

	domaintypes "courier/internal/domain/types"
)

// IdentityService creates, loads and publishes the local endpoint.
type IdentityService interface {
	Create(ctx context.Context, passphrase string) (*domaintypes.OwnEndpoint, error)
	Load(passphrase string) (*domaintypes.OwnEndpoint, error)
	PublishAddressBookEntry(
		ctx context.Context,
		own *domaintypes.OwnEndpoint,
		expiresUTC time.Time,
	) (string, error)
}

// ChannelService posts payloads to recipients and receives payloads from the
// local inbox.
type ChannelService interface {
	Post(
		ctx context.Context,
		payload domaintypes.Payload,
		recipients []domaintypes.Endpoint,
		expiresUTC time.Time,
	) (*domaintypes.PostResult, error)
	Receive(
		ctx context.Context,
		opts domaintypes.ReceiveOptions,
	) (*domaintypes.ReceiveResult, error)
	Stream(
		ctx context.Context,
		opts domaintypes.ReceiveOptions,
	) iter.Seq2[*domaintypes.ReceivedPayload, error]
	DeleteInboxItem(ctx context.Context, received *domaintypes.ReceivedPayload) error
}

// AddressBook resolves a human-facing identifier to a verified Endpoint.
// A nil endpoint with a nil error means nothing was found.
type AddressBook interface {
	Lookup(ctx context.Context, identifier string) (*domaintypes.Endpoint, error)
}
