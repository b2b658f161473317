// Package identity manages creation, sealing, loading and publication of the
// local endpoint.
//
// It enforces passphrase policy, generates the signing and encryption key
// pairs with the configured crypto provider, provisions an inbox on the
// relay and persists the result via the domain.EndpointStore. Publishing
// uploads a self-signed AddressBookEntry and returns the direct-entry URL,
// which carries the thumbprint in its fragment.
package identity
