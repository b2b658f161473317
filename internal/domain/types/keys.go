package types

// KeyPair holds encoded public and private key material of one algorithm.
type KeyPair struct {
	Public  []byte `json:"public"`
	Private []byte `json:"private"`
}

// SymmetricCiphertext is the output of a symmetric encryption together with
// the key and IV needed to reverse it.
type SymmetricCiphertext struct {
	Ciphertext []byte
	Key        []byte
	IV         []byte
}
