package app

import (
	"fmt"

	"courier/internal/domain"
	"courier/internal/push"
	"courier/internal/services/channel"
	"courier/internal/util/httpx"
)

// App is the CLI's view of the wired dependencies plus the unlocked local
// endpoint.
type App struct {
	*Wire
	own *domain.OwnEndpoint
}

// New returns an App over w.
func New(w *Wire) *App { return &App{Wire: w} }

// Endpoint unlocks the local endpoint with passphrase, once per process.
func (a *App) Endpoint(passphrase string) (*domain.OwnEndpoint, error) {
	if a.own != nil {
		return a.own, nil
	}
	own, err := a.Identity.Load(passphrase)
	if err != nil {
		return nil, err
	}
	a.own = own
	return own, nil
}

// Channel returns a channel acting for the local endpoint. The provider
// follows the suite the endpoint was created with, not the configured level.
func (a *App) Channel(passphrase string) (*channel.Channel, error) {
	own, err := a.Endpoint(passphrase)
	if err != nil {
		return nil, err
	}
	var provider domain.CryptoProvider = a.Provider
	if provider.Suite() != own.Endpoint.Suite {
		if provider, err = a.Suites.Resolve(own.Endpoint.Suite); err != nil {
			return nil, fmt.Errorf("endpoint suite: %w", err)
		}
	}
	return channel.New(own, provider, a.Suites, a.Blobs, a.Blobs, a.Relay,
		channel.WithLogger(a.Log.Named("channel")),
	)
}

// Watcher returns a push watcher for the local inbox.
func (a *App) Watcher(passphrase string) (*push.Watcher, error) {
	own, err := a.Endpoint(passphrase)
	if err != nil {
		return nil, err
	}
	return push.NewWatcher(own, httpx.DefaultRetryConfig(), a.Log.Named("push")), nil
}
