package crypto

import (
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"

	"courier/internal/domain"
)

// mldsaSigner signs with ML-DSA-65 through circl's generic scheme API.
type mldsaSigner struct{}

var mldsaScheme = mldsa65.Scheme()

func (mldsaSigner) generate() (domain.KeyPair, error) {
	pk, sk, err := mldsaScheme.GenerateKey()
	if err != nil {
		return domain.KeyPair{}, err
	}
	pub, err := pk.MarshalBinary()
	if err != nil {
		return domain.KeyPair{}, err
	}
	priv, err := sk.MarshalBinary()
	if err != nil {
		return domain.KeyPair{}, err
	}
	return domain.KeyPair{Public: pub, Private: priv}, nil
}

func (mldsaSigner) sign(priv, data []byte) ([]byte, error) {
	if len(priv) != mldsaScheme.PrivateKeySize() {
		return nil, ErrInvalidKey
	}
	sk, err := mldsaScheme.UnmarshalBinaryPrivateKey(priv)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return mldsaScheme.Sign(sk, data, nil), nil
}

func (mldsaSigner) verify(pub, data, sig []byte) bool {
	if len(pub) != mldsaScheme.PublicKeySize() || len(sig) != mldsaScheme.SignatureSize() {
		return false
	}
	pk, err := mldsaScheme.UnmarshalBinaryPublicKey(pub)
	if err != nil {
		return false
	}
	return mldsaScheme.Verify(pk, data, sig, nil)
}
