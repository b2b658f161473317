// Package wire defines the CBOR encodings exchanged between peers: the
// Envelope pushed to an inbox, the signed Notification sealed inside it, the
// public Endpoint and the published AddressBookEntry.
//
// Maps use small integer keys and the encoder is deterministic, so a value
// always encodes to the same bytes and signatures over encodings are stable.
// The Envelope carries a version; decoders reject versions they do not know.
// The sender Endpoint travels in the clear so a receiver knows which key to
// verify with before it decrypts anything.
package wire
