// Package signature provides helper functions for handling the blockchain
// hashing and signature needs. It also acts as the wallet support for the
// node by generating keys and converting public keys into addresses.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// =============================================================================

// Hash returns a unique string for the value. The value is marshaled to JSON
// so struct field order defines the canonical form that is hashed.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// GenerateKey produces a new secp256k1 key pair for a wallet.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// Address converts the public key into the address string used by the
// blockchain. The address is the hex-encoded uncompressed public key so
// any node can verify signatures using the address alone.
func Address(publicKey ecdsa.PublicKey) string {
	return hexutil.Encode(crypto.FromECDSAPub(&publicKey))
}

// PublicKey interprets an address as a public key.
func PublicKey(address string) (*ecdsa.PublicKey, error) {
	data, err := hexutil.Decode(address)
	if err != nil {
		return nil, err
	}

	return crypto.UnmarshalPubkey(data)
}

// Sign uses the specified private key to sign the data.
func Sign(privateKey *ecdsa.PrivateKey, data []byte) (string, error) {
	if privateKey == nil {
		return "", errors.New("private key is required")
	}

	// Prepare the data for signing.
	digest := stamp(data)

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(digest, privateKey)
	if err != nil {
		return "", err
	}

	// Extract the public key from the data and the signature.
	publicKey, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return "", err
	}

	// Check the public key extracted from the data and signature.
	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), digest, rs) {
		return "", errors.New("invalid signature")
	}

	return hexutil.Encode(sig), nil
}

// Verify checks the signature was produced over the data by the private key
// matching the specified address. Any decoding problem results in false.
func Verify(address string, sig string, data []byte) bool {
	publicKey, err := PublicKey(address)
	if err != nil {
		return false
	}

	sigBytes, err := hexutil.Decode(sig)
	if err != nil {
		return false
	}

	switch len(sigBytes) {
	case crypto.SignatureLength, crypto.SignatureLength - 1:
	default:
		return false
	}

	rs := sigBytes[:crypto.RecoveryIDOffset]
	return crypto.VerifySignature(crypto.FromECDSAPub(publicKey), stamp(data), rs)
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this data with
// the Corundum stamp embedded into the final hash.
func stamp(data []byte) []byte {

	// Hash the data into a 32 byte array. This will provide
	// a data length consistency with all data.
	dataHash := crypto.Keccak256(data)

	// This stamp is used so signatures we produce when signing data
	// are always unique to the Corundum blockchain.
	stamp := []byte("\x19Corundum Signed Message:\n32")

	// Hash the stamp and dataHash together in a final 32 byte array
	// that represents the data.
	return crypto.Keccak256(stamp, dataHash)
}
