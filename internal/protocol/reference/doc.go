// Package reference encodes PayloadReference values in a fixed, versionless,
// length-prefixed binary layout that other implementations can reproduce.
//
// Layout (all integers big-endian):
//
//	uint32 len | location
//	uint32 len | content type
//	uint32 len | hash algorithm
//	uint32 len | hash
//	uint32 len | key
//	uint32 len | iv
//	int64      | expiration, Unix nanoseconds UTC
//
// Every length-prefixed field is required and must be non-empty.
package reference
