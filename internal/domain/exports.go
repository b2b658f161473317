package domain

import (
	interfaces "courier/internal/domain/interfaces"
	types "courier/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Thumbprint          = types.Thumbprint
	SecurityLevel       = types.SecurityLevel
	KeyPair             = types.KeyPair
	SymmetricCiphertext = types.SymmetricCiphertext
	Endpoint            = types.Endpoint
	OwnEndpoint         = types.OwnEndpoint
	AddressBookEntry    = types.AddressBookEntry
	Payload             = types.Payload
	ReceivedPayload     = types.ReceivedPayload
	PostResult          = types.PostResult
	ReceiveOptions      = types.ReceiveOptions
	ReceiveResult       = types.ReceiveResult
	PayloadReference    = types.PayloadReference
	InboxCreation       = types.InboxCreation
	InboxItem           = types.InboxItem
	RecipientFailure    = types.RecipientFailure
	DeliveryError       = types.DeliveryError
	ItemError           = types.ItemError
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	CryptoProvider  = interfaces.CryptoProvider
	SuiteResolver   = interfaces.SuiteResolver
	InboxRelay      = interfaces.InboxRelay
	BlobUploader    = interfaces.BlobUploader
	BlobDownloader  = interfaces.BlobDownloader
	BlobStorage     = interfaces.BlobStorage
	IdentityService = interfaces.IdentityService
	ChannelService  = interfaces.ChannelService
	AddressBook     = interfaces.AddressBook
	EndpointStore   = interfaces.EndpointStore
	ContactStore    = interfaces.ContactStore
)

// Security levels.
const (
	SecurityMinimum     = types.SecurityMinimum
	SecurityRecommended = types.SecurityRecommended
	SecurityMaximum     = types.SecurityMaximum
)

// Error taxonomy shared by every layer.
var (
	ErrInvalidArgument     = types.ErrInvalidArgument
	ErrUploadFailed        = types.ErrUploadFailed
	ErrDeliveryFailed      = types.ErrDeliveryFailed
	ErrUntrustedMessage    = types.ErrUntrustedMessage
	ErrHashMismatch        = types.ErrHashMismatch
	ErrBadAddressBookEntry = types.ErrBadAddressBookEntry
	ErrNotFound            = types.ErrNotFound
	ErrMalformedReference  = types.ErrMalformedReference
)

// ComputeThumbprint hashes a signing public key into a Thumbprint.
func ComputeThumbprint(signingKey []byte) Thumbprint { return types.ComputeThumbprint(signingKey) }

// NewPayloadReference builds a validated PayloadReference.
var NewPayloadReference = types.NewPayloadReference
