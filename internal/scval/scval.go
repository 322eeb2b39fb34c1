// Package scval implements the ledger's typed contract values. Every value
// carries an explicit type tag; 128-bit integers travel as decimal strings so
// amounts never pass through floating point.
package scval

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/LeJamon/goVaultd/internal/core/amount"
)

// Kind is the type tag of a Value.
type Kind string

const (
	KindVoid    Kind = "void"
	KindBool    Kind = "bool"
	KindU32     Kind = "u32"
	KindU64     Kind = "u64"
	KindI128    Kind = "i128"
	KindString  Kind = "string"
	KindSymbol  Kind = "symbol"
	KindAddress Kind = "address"
	KindVec     Kind = "vec"
	KindMap     Kind = "map"
	KindOption  Kind = "option"
)

// ErrTypeMismatch is returned by accessors when the tag is not the one asked for.
var ErrTypeMismatch = errors.New("scval: type mismatch")

var (
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
)

// Value is a tagged contract value.
type Value struct {
	Kind Kind       `json:"type" codec:"t"`
	Bool bool       `json:"bool,omitempty" codec:"b,omitempty"`
	Uint uint64     `json:"uint,omitempty" codec:"u,omitempty"`
	Int  string     `json:"int,omitempty" codec:"i,omitempty"`
	Str  string     `json:"str,omitempty" codec:"s,omitempty"`
	Vec  []Value    `json:"vec,omitempty" codec:"v,omitempty"`
	Map  []MapEntry `json:"map,omitempty" codec:"m,omitempty"`
	Some *Value     `json:"some,omitempty" codec:"o,omitempty"`
}

// MapEntry is one key/value pair of a map value.
type MapEntry struct {
	Key Value `json:"key" codec:"k"`
	Val Value `json:"val" codec:"v"`
}

func Void() Value           { return Value{Kind: KindVoid} }
func Bool(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func U32(v uint32) Value    { return Value{Kind: KindU32, Uint: uint64(v)} }
func U64(v uint64) Value    { return Value{Kind: KindU64, Uint: v} }
func String(s string) Value { return Value{Kind: KindString, Str: s} }
func Symbol(s string) Value { return Value{Kind: KindSymbol, Str: s} }

// Address wraps an account or contract identifier.
func Address(s string) Value { return Value{Kind: KindAddress, Str: s} }

// I128 wraps a base-unit amount.
func I128(a amount.Amount) Value {
	return Value{Kind: KindI128, Int: a.String()}
}

// Vec wraps an ordered sequence. A tuple is a vec.
func Vec(items ...Value) Value {
	return Value{Kind: KindVec, Vec: items}
}

// Some wraps a present optional value.
func Some(v Value) Value {
	return Value{Kind: KindOption, Some: &v}
}

// None is an absent optional value.
func None() Value {
	return Value{Kind: KindOption}
}

// Struct builds a map keyed by symbols, sorted by key so encodings are stable.
func Struct(fields map[string]Value) Value {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]MapEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, MapEntry{Key: Symbol(k), Val: fields[k]})
	}
	return Value{Kind: KindMap, Map: entries}
}

func (v Value) expect(k Kind) error {
	if v.Kind != k {
		return fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, k, v.Kind)
	}
	return nil
}

func (v Value) AsBool() (bool, error) {
	if err := v.expect(KindBool); err != nil {
		return false, err
	}
	return v.Bool, nil
}

func (v Value) AsU32() (uint32, error) {
	if err := v.expect(KindU32); err != nil {
		return 0, err
	}
	if v.Uint > uint64(^uint32(0)) {
		return 0, fmt.Errorf("%w: u32 out of range: %d", ErrTypeMismatch, v.Uint)
	}
	return uint32(v.Uint), nil
}

func (v Value) AsU64() (uint64, error) {
	if err := v.expect(KindU64); err != nil {
		return 0, err
	}
	return v.Uint, nil
}

// AsI128 returns the value as a base-unit amount. Values that fit i128 but
// not int64 are rejected.
func (v Value) AsI128() (amount.Amount, error) {
	if err := v.expect(KindI128); err != nil {
		return 0, err
	}
	n, ok := new(big.Int).SetString(v.Int, 10)
	if !ok || n.Cmp(minI128) < 0 || n.Cmp(maxI128) > 0 {
		return 0, fmt.Errorf("%w: invalid i128 %q", ErrTypeMismatch, v.Int)
	}
	if !n.IsInt64() {
		return 0, fmt.Errorf("i128 %s exceeds supported amount range", v.Int)
	}
	return amount.Amount(n.Int64()), nil
}

func (v Value) AsString() (string, error) {
	if err := v.expect(KindString); err != nil {
		return "", err
	}
	return v.Str, nil
}

func (v Value) AsSymbol() (string, error) {
	if err := v.expect(KindSymbol); err != nil {
		return "", err
	}
	return v.Str, nil
}

func (v Value) AsAddress() (string, error) {
	if err := v.expect(KindAddress); err != nil {
		return "", err
	}
	return v.Str, nil
}

func (v Value) AsVec() ([]Value, error) {
	if err := v.expect(KindVec); err != nil {
		return nil, err
	}
	return v.Vec, nil
}

// AsTuple returns the items of a vec that must have exactly n elements.
func (v Value) AsTuple(n int) ([]Value, error) {
	items, err := v.AsVec()
	if err != nil {
		return nil, err
	}
	if len(items) != n {
		return nil, fmt.Errorf("%w: want %d-tuple, got %d items", ErrTypeMismatch, n, len(items))
	}
	return items, nil
}

// AsStruct returns a symbol-keyed map as a Go map.
func (v Value) AsStruct() (map[string]Value, error) {
	if err := v.expect(KindMap); err != nil {
		return nil, err
	}
	out := make(map[string]Value, len(v.Map))
	for _, e := range v.Map {
		k, err := e.Key.AsSymbol()
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		out[k] = e.Val
	}
	return out, nil
}

// AsOption returns the wrapped value and whether it is present.
func (v Value) AsOption() (Value, bool, error) {
	if err := v.expect(KindOption); err != nil {
		return Value{}, false, err
	}
	if v.Some == nil {
		return Value{}, false, nil
	}
	return *v.Some, true, nil
}

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindU32, KindU64:
		return fmt.Sprintf("%d", v.Uint)
	case KindI128:
		return v.Int
	case KindString, KindSymbol, KindAddress:
		return v.Str
	case KindVec:
		return fmt.Sprintf("%v", v.Vec)
	case KindMap:
		return fmt.Sprintf("%v", v.Map)
	case KindOption:
		if v.Some == nil {
			return "none"
		}
		return "some(" + v.Some.String() + ")"
	default:
		return string(v.Kind)
	}
}
