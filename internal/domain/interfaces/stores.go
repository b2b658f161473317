package interfaces

import domaintypes "courier/internal/domain/types"

// EndpointStore persists the local OwnEndpoint sealed under a passphrase.
type EndpointStore interface {
	SaveEndpoint(passphrase string, own domaintypes.OwnEndpoint) error
	LoadEndpoint(passphrase string) (domaintypes.OwnEndpoint, error)
}

// ContactStore keeps endpoints the user has pinned by name.
type ContactStore interface {
	SaveContact(name string, endpoint domaintypes.Endpoint) error
	LoadContact(name string) (domaintypes.Endpoint, bool, error)
	ListContacts() (map[string]domaintypes.Endpoint, error)
}
