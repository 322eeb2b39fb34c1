package tx

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	binarycodec "github.com/LeJamon/goVaultd/internal/codec/binary-codec"
	"github.com/LeJamon/goVaultd/internal/scval"
)

// ErrMalformedEnvelope is returned when a payload does not decode to an envelope.
var ErrMalformedEnvelope = errors.New("malformed transaction envelope")

// TimeBounds is the validity window of a transaction, in ledger close time
// (unix seconds). A zero MaxTime means no upper bound.
type TimeBounds struct {
	MinTime uint64 `json:"min_time" codec:"min"`
	MaxTime uint64 `json:"max_time" codec:"max"`
}

// Operation is a single contract invocation.
type Operation struct {
	Contract string        `json:"contract" codec:"contract"`
	Function string        `json:"function" codec:"function"`
	Args     []scval.Value `json:"args" codec:"args"`
}

// Footprint lists the ledger keys an operation reads and writes. It is
// filled in from simulation output during assembly.
type Footprint struct {
	ReadOnly  []string `json:"read_only" codec:"ro"`
	ReadWrite []string `json:"read_write" codec:"rw"`
}

// Empty reports whether no keys are declared.
func (f Footprint) Empty() bool {
	return len(f.ReadOnly) == 0 && len(f.ReadWrite) == 0
}

// Covers reports whether key is declared, writable requiring a read-write entry.
func (f Footprint) Covers(key string, writable bool) bool {
	for _, k := range f.ReadWrite {
		if k == key {
			return true
		}
	}
	if writable {
		return false
	}
	for _, k := range f.ReadOnly {
		if k == key {
			return true
		}
	}
	return false
}

// Transaction is an unsigned contract call addressed to one network.
type Transaction struct {
	Source     string     `json:"source" codec:"source"`
	Network    string     `json:"network" codec:"network"`
	Nonce      uint64     `json:"nonce" codec:"nonce"`
	Fee        uint64     `json:"fee" codec:"fee"`
	TimeBounds TimeBounds `json:"time_bounds" codec:"time_bounds"`
	Operation  Operation  `json:"operation" codec:"operation"`
	Footprint  Footprint  `json:"footprint" codec:"footprint"`
	Auth       []string   `json:"auth,omitempty" codec:"auth,omitempty"`
}

// Signature is one decorated signature over a transaction hash.
type Signature struct {
	KeyType   string `json:"key_type" codec:"kt"`
	PublicKey []byte `json:"public_key" codec:"pk"`
	Signature []byte `json:"signature" codec:"sig"`
}

// Envelope is a transaction plus the signatures collected for it.
type Envelope struct {
	Tx         Transaction `json:"tx" codec:"tx"`
	Signatures []Signature `json:"signatures,omitempty" codec:"sigs,omitempty"`
}

// NewNonce returns a random nonce so that every build yields a distinct hash.
func NewNonce() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("generate nonce: %w", err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// NetworkID returns sha256 of the network passphrase.
func NetworkID(passphrase string) [32]byte {
	return sha256.Sum256([]byte(passphrase))
}

// HashBytes returns sha256(networkID || cbor(tx)). Signatures are made over
// these bytes.
func (t *Transaction) HashBytes() ([32]byte, error) {
	body, err := binarycodec.Encode(t)
	if err != nil {
		return [32]byte{}, fmt.Errorf("encode transaction: %w", err)
	}
	id := NetworkID(t.Network)
	h := sha256.New()
	h.Write(id[:])
	h.Write(body)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Hash returns the upper-case hex transaction hash.
func (t *Transaction) Hash() (string, error) {
	b, err := t.HashBytes()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%X", b[:]), nil
}

// Encode returns the base64 CBOR payload of the envelope.
func (e *Envelope) Encode() (string, error) {
	return binarycodec.EncodeToString(e)
}

// DecodeEnvelope parses a base64 CBOR payload.
func DecodeEnvelope(payload string) (*Envelope, error) {
	var env Envelope
	if err := binarycodec.DecodeString(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Tx.Source == "" || env.Tx.Operation.Function == "" {
		return nil, fmt.Errorf("%w: missing source or function", ErrMalformedEnvelope)
	}
	return &env, nil
}

// ParseHash validates a hex transaction hash and normalises its case.
func ParseHash(s string) (string, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != sha256.Size {
		return "", fmt.Errorf("invalid transaction hash %q", s)
	}
	return fmt.Sprintf("%X", b), nil
}
