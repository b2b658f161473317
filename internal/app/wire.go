package app

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"courier/internal/blob"
	"courier/internal/crypto"
	"courier/internal/domain"
	"courier/internal/relay"
	"courier/internal/services/addressbook"
	"courier/internal/services/identity"
	"courier/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config      Config
	Log         *zap.Logger
	Provider    *crypto.Provider
	Suites      *crypto.Registry
	Endpoints   *store.EndpointFileStore
	Contacts    *store.ContactFileStore
	Identity    *identity.Service
	AddressBook domain.AddressBook
	Relay       *relay.HTTP
	Blobs       *blob.HTTP
	HTTP        *http.Client
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, log *zap.Logger) (*Wire, error) {
	if log == nil {
		log = zap.NewNop()
	}
	provider, err := crypto.New(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("security level %q: %w", cfg.Level, err)
	}
	suites := crypto.NewRegistry(provider)

	// File-based stores
	endpoints := store.NewEndpointFileStore(cfg.Home)
	contacts := store.NewContactFileStore(cfg.Home)

	// Ensure an HTTP client is available for outbound calls
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	rc := relay.NewHTTP(cfg.RelayURL, httpClient, relay.WithLogger(log.Named("relay")))
	bc := blob.NewHTTP(cfg.BlobURL, httpClient)

	direct := addressbook.NewDirectEntry(bc, suites, log.Named("addressbook"))
	book := addressbook.Chain{addressbook.NewContacts(contacts), direct}
	if cfg.SocialProfileURL != "" {
		profiles := addressbook.NewHTTPProfileSource(cfg.SocialProfileURL, httpClient)
		book = append(book, addressbook.NewSocial(profiles, direct, log.Named("addressbook")))
	}

	return &Wire{
		Config:      cfg,
		Log:         log,
		Provider:    provider,
		Suites:      suites,
		Endpoints:   endpoints,
		Contacts:    contacts,
		Identity:    identity.New(endpoints, provider, suites, rc, bc, log.Named("identity")),
		AddressBook: book,
		Relay:       rc,
		Blobs:       bc,
		HTTP:        httpClient,
	}, nil
}
