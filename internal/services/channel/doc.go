// Package channel posts payloads to recipients and receives payloads from the
// local inbox.
//
// Post encrypts the payload once with a fresh symmetric key, uploads the
// ciphertext once, and then pushes a small per-recipient envelope to every
// recipient's inbox. The envelope carries the sender's public endpoint in the
// clear and a sealed, signed notification that points at the blob:
//
//	sealed = Encrypt(recipient, Sign(sender, {reference, recipient, sender, posted}))
//
// The notification is signed first and encrypted second, so the signature is
// only visible to the recipient. Both thumbprints are inside the signed body;
// a recipient cannot forward a signed reference to a third party under the
// original sender's name.
//
// Receive lists the own inbox, opens each item, verifies the signature against
// the claimed sender and the blob hash against the reference, then decrypts.
// Items that fail verification are reported, not fatal. Receive never deletes;
// DeleteInboxItem acknowledges an item explicitly.
package channel
