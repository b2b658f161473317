package types

import "time"

// Payload is the plaintext unit an application wants delivered.
type Payload struct {
	ContentType string
	Content     []byte
}

// ReceivedPayload is a Payload recovered from the inbox together with what is
// needed to trust it and to acknowledge it later.
type ReceivedPayload struct {
	Payload   Payload
	Reference PayloadReference
	Sender    Endpoint
	InboxItem InboxItem
	PostedUTC time.Time
}

// PostResult reports the shared upload and the per-recipient outcome of a post.
type PostResult struct {
	Reference PayloadReference
	Delivered []Thumbprint
	Failed    []RecipientFailure
}

// ReceiveOptions controls a single receive pass.
type ReceiveOptions struct {
	// LongPoll waits for at least one inbox item instead of returning an
	// empty result.
	LongPoll bool
	// Progress is invoked for each recovered payload on the goroutine that
	// consumes the results, before the payload is added to the result.
	Progress func(*ReceivedPayload)
}

// ReceiveResult collects the trusted payloads and the rejected items of a
// receive pass.
type ReceiveResult struct {
	Payloads []*ReceivedPayload
	Rejected []*ItemError
}
