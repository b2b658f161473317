package identity

import (
	"bytes"
	"context"
	"fmt"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"courier/internal/domain"
	"courier/internal/protocol/wire"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
)

// Service manages the local endpoint using a backing store.
//
// The endpoint contains:
//   - A signing key pair; its public half defines the thumbprint.
//   - An encryption key pair that senders seal notifications to.
//   - The inbox URL and owner token issued by the relay.
type Service struct {
	store    domain.EndpointStore
	provider domain.CryptoProvider
	suites   domain.SuiteResolver
	relay    domain.InboxRelay
	uploader domain.BlobUploader
	log      *zap.Logger
	now      func() time.Time
}

// New returns an identity service. provider generates keys for new
// endpoints; suites signs for endpoints created under another suite.
func New(
	s domain.EndpointStore,
	provider domain.CryptoProvider,
	suites domain.SuiteResolver,
	relay domain.InboxRelay,
	uploader domain.BlobUploader,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    s,
		provider: provider,
		suites:   suites,
		relay:    relay,
		uploader: uploader,
		log:      log,
		now:      time.Now,
	}
}

// Create generates key pairs, provisions an inbox and saves the endpoint
// sealed with passphrase.
func (s *Service) Create(ctx context.Context, passphrase string) (*domain.OwnEndpoint, error) {
	if !isSecurePassphrase(passphrase) {
		return nil, ErrWeakPassphrase
	}

	signing, err := s.provider.GenerateSigningKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	encryption, err := s.provider.GenerateEncryptionKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate encryption key: %w", err)
	}
	inbox, err := s.relay.CreateInbox(ctx)
	if err != nil {
		return nil, err
	}

	own := &domain.OwnEndpoint{
		Endpoint: domain.Endpoint{
			Suite:         s.provider.Suite(),
			SigningKey:    signing.Public,
			EncryptionKey: encryption.Public,
			ID:            uuid.NewString(),
			InboxURL:      inbox.InboxURL,
			CreatedUTC:    s.now().UTC(),
		},
		SigningPrivateKey:    signing.Private,
		EncryptionPrivateKey: encryption.Private,
		InboxOwnerToken:      inbox.OwnerToken,
	}
	if err := s.store.SaveEndpoint(passphrase, *own); err != nil {
		return nil, err
	}
	s.log.Info("endpoint created",
		zap.String("suite", own.Endpoint.Suite),
		zap.String("thumbprint", own.Thumbprint().String()),
		zap.String("inbox", own.Endpoint.InboxURL),
	)
	return own, nil
}

// Load decrypts and returns the local endpoint.
func (s *Service) Load(passphrase string) (*domain.OwnEndpoint, error) {
	own, err := s.store.LoadEndpoint(passphrase)
	if err != nil {
		return nil, err
	}
	return &own, nil
}

// PublishAddressBookEntry uploads a self-signed copy of the public endpoint
// that lives until expiresUTC and returns its direct-entry URL
// (location#thumbprint).
func (s *Service) PublishAddressBookEntry(
	ctx context.Context,
	own *domain.OwnEndpoint,
	expiresUTC time.Time,
) (string, error) {
	if own == nil {
		return "", fmt.Errorf("%w: nil endpoint", domain.ErrInvalidArgument)
	}
	p, err := s.suites.Resolve(own.Endpoint.Suite)
	if err != nil {
		return "", err
	}
	serialized, err := wire.EncodeEndpoint(own.Endpoint)
	if err != nil {
		return "", err
	}
	sig, err := p.Sign(serialized, own.SigningPrivateKey)
	if err != nil {
		return "", fmt.Errorf("sign address book entry: %w", err)
	}
	entry, err := wire.EncodeAddressBookEntry(domain.AddressBookEntry{
		SerializedEndpoint: serialized,
		Signature:          sig,
	})
	if err != nil {
		return "", err
	}
	location, err := s.uploader.Upload(ctx, bytes.NewReader(entry), expiresUTC, wire.AddressBookEntryContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)
	}
	return location + "#" + own.Thumbprint().String(), nil
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
