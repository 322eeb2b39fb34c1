// Package keys holds local signing keys. A KeyPair implements the
// transaction pipeline's signer capability and derives account addresses.
package keys

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/crypto/ripemd160"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/core/vault"
)

// KeyType names a signature algorithm.
type KeyType string

const (
	KeyTypeEd25519   KeyType = "ed25519"
	KeyTypeSecp256k1 KeyType = "secp256k1"
)

// AddressPrefix starts every account address.
const AddressPrefix = "V"

const (
	accountIDSize = 20
	checksumSize  = 4
	seedSize      = 32
)

var (
	ErrUnknownKeyType = errors.New("unknown key type")
	ErrInvalidSeed    = errors.New("invalid seed")
	ErrInvalidAddress = errors.New("invalid address")
)

// ParseKeyType accepts the canonical names, case-insensitively.
func ParseKeyType(s string) (KeyType, error) {
	switch KeyType(strings.ToLower(s)) {
	case KeyTypeEd25519:
		return KeyTypeEd25519, nil
	case KeyTypeSecp256k1:
		return KeyTypeSecp256k1, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKeyType, s)
	}
}

// KeyPair is a private key with its derived public key and address.
type KeyPair struct {
	keyType KeyType
	seed    []byte
	public  []byte
	ed      ed25519.PrivateKey
	secp    *secp256k1.PrivateKey
	address string
}

// Generate creates a random key pair.
func Generate(kt KeyType) (*KeyPair, error) {
	seed := make([]byte, seedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return FromSeed(kt, seed)
}

// FromSeedHex restores a key pair from a hex-encoded 32-byte seed.
func FromSeedHex(kt KeyType, seedHex string) (*KeyPair, error) {
	seed, err := hex.DecodeString(strings.TrimSpace(seedHex))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	return FromSeed(kt, seed)
}

// FromSeed restores a key pair from a 32-byte seed. For secp256k1 the seed
// is the private scalar.
func FromSeed(kt KeyType, seed []byte) (*KeyPair, error) {
	if len(seed) != seedSize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidSeed, seedSize, len(seed))
	}
	kp := &KeyPair{keyType: kt, seed: append([]byte(nil), seed...)}
	switch kt {
	case KeyTypeEd25519:
		kp.ed = ed25519.NewKeyFromSeed(seed)
		kp.public = kp.ed.Public().(ed25519.PublicKey)
	case KeyTypeSecp256k1:
		kp.secp = secp256k1.PrivKeyFromBytes(seed)
		if kp.secp.Key.IsZero() {
			return nil, fmt.Errorf("%w: zero scalar", ErrInvalidSeed)
		}
		kp.public = kp.secp.PubKey().SerializeCompressed()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKeyType, kt)
	}
	kp.address = AddressFromPublicKey(kp.public)
	return kp, nil
}

func (k *KeyPair) KeyType() KeyType  { return k.keyType }
func (k *KeyPair) Address() string   { return k.address }
func (k *KeyPair) PublicKey() []byte { return append([]byte(nil), k.public...) }

// SeedHex returns the seed for storage. Treat it as secret.
func (k *KeyPair) SeedHex() string {
	return hex.EncodeToString(k.seed)
}

// SignHash signs a 32-byte transaction hash.
func (k *KeyPair) SignHash(hash []byte) ([]byte, error) {
	switch k.keyType {
	case KeyTypeEd25519:
		return ed25519.Sign(k.ed, hash), nil
	case KeyTypeSecp256k1:
		return ecdsa.Sign(k.secp, hash).Serialize(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKeyType, k.keyType)
	}
}

// Sign decorates an unsigned envelope with this key's signature. It refuses
// envelopes for another source account or another network.
func (k *KeyPair) Sign(ctx context.Context, payload string, network string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	env, err := tx.DecodeEnvelope(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", vault.ErrSigningRejected, err)
	}
	if env.Tx.Source != k.address {
		return "", fmt.Errorf("%w: source %s is not %s", vault.ErrSigningRejected, env.Tx.Source, k.address)
	}
	if env.Tx.Network != network {
		return "", fmt.Errorf("%w: envelope is for network %q", vault.ErrSigningRejected, env.Tx.Network)
	}
	hash, err := env.Tx.HashBytes()
	if err != nil {
		return "", err
	}
	sig, err := k.SignHash(hash[:])
	if err != nil {
		return "", err
	}
	env.Signatures = append(env.Signatures, tx.Signature{
		KeyType:   string(k.keyType),
		PublicKey: k.PublicKey(),
		Signature: sig,
	})
	return env.Encode()
}

// Verify checks sig over hash with a public key of the given type.
func Verify(kt KeyType, public, hash, sig []byte) bool {
	switch kt {
	case KeyTypeEd25519:
		if len(public) != ed25519.PublicKeySize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(public), hash, sig)
	case KeyTypeSecp256k1:
		pub, err := secp256k1.ParsePubKey(public)
		if err != nil {
			return false
		}
		parsed, err := ecdsa.ParseDERSignature(sig)
		if err != nil {
			return false
		}
		return parsed.Verify(hash, pub)
	default:
		return false
	}
}

// VerifyEnvelope checks every signature on env and returns the addresses of
// the signers. Any invalid signature fails the whole envelope.
func VerifyEnvelope(env *tx.Envelope) ([]string, error) {
	hash, err := env.Tx.HashBytes()
	if err != nil {
		return nil, err
	}
	signers := make([]string, 0, len(env.Signatures))
	for i, s := range env.Signatures {
		if !Verify(KeyType(s.KeyType), s.PublicKey, hash[:], s.Signature) {
			return nil, fmt.Errorf("signature %d: verification failed", i)
		}
		signers = append(signers, AddressFromPublicKey(s.PublicKey))
	}
	return signers, nil
}

// AddressFromPublicKey derives "V" + hex(ripemd160(sha256(pub)) || checksum).
func AddressFromPublicKey(public []byte) string {
	sum := sha256.Sum256(public)
	h := ripemd160.New()
	h.Write(sum[:])
	id := h.Sum(nil)
	return AddressPrefix + strings.ToUpper(hex.EncodeToString(append(id, checksum(id)...)))
}

// ValidateAddress checks the prefix, length and checksum of an address.
func ValidateAddress(addr string) error {
	if !strings.HasPrefix(addr, AddressPrefix) {
		return fmt.Errorf("%w: missing %q prefix", ErrInvalidAddress, AddressPrefix)
	}
	raw, err := hex.DecodeString(addr[len(AddressPrefix):])
	if err != nil || len(raw) != accountIDSize+checksumSize {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	if !bytes.Equal(checksum(raw[:accountIDSize]), raw[accountIDSize:]) {
		return fmt.Errorf("%w: bad checksum", ErrInvalidAddress)
	}
	return nil
}

func checksum(id []byte) []byte {
	first := sha256.Sum256(id)
	second := sha256.Sum256(first[:])
	return second[:checksumSize]
}
