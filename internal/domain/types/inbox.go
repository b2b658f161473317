package types

import "time"

// InboxCreation is returned by a relay when a new inbox is provisioned.
// OwnerToken is the sole proof of ownership.
type InboxCreation struct {
	InboxURL   string `json:"inbox"`
	OwnerToken string `json:"token"`
}

// InboxItem is a pending notification listed from an inbox.
type InboxItem struct {
	URL       string    `json:"url"`
	PostedUTC time.Time `json:"posted"`
}
