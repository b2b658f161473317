// Package crypto implements domain.CryptoProvider on top of vetted primitives.
//
// Suites
//
//   - ed25519-x25519: Ed25519 signatures and X25519 anonymous sealed boxes
//     (NaCl box) for wrapping payload references.
//   - mldsa65-mlkem768: ML-DSA-65 signatures and ML-KEM-768 encapsulation;
//     the shared secret is expanded with HKDF-SHA256 into an AES-256-GCM key.
//
// Bulk payloads always use AES-GCM with an explicit 12-byte IV. Hashes are
// looked up by name so a reference hashed under any profile can be checked.
//
// # Profiles
//
// Security levels (minimum, recommended, maximum) pick a suite, a symmetric
// key size and a hash; see New. A Registry resolves a peer's suite to a
// provider so peers on different suites can still talk.
package crypto
