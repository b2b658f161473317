// Package addressbook resolves human-facing identifiers to verified
// endpoints.
//
// Every strategy ends in the same check: a direct-entry URL names the
// expected thumbprint in its fragment, and the entry fetched from that URL
// must be self-signed by a key whose thumbprint equals the fragment. A
// mismatch is a trust failure (domain.ErrBadAddressBookEntry). Anything that
// merely fails to find an entry returns a nil endpoint and a nil error.
//
// Strategies:
//   - DirectEntry: https://host/blob/x#<thumbprint>
//   - Social: @handle, resolved through a ProfileSource whose biography
//     contains a direct-entry URL
//   - Contacts: a name pinned in the local contact store
//   - Chain: tries several books in order
package addressbook
