// Package binarycodec is the canonical binary form of envelopes and ledger
// records: CBOR with canonical map ordering, carried as base64 inside JSON.
package binarycodec

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"
)

// ErrEmptyPayload is returned when decoding an empty input.
var ErrEmptyPayload = errors.New("empty payload")

var handle = newHandle()

func newHandle() *codec.CborHandle {
	h := &codec.CborHandle{}
	// Canonical output is required for stable transaction hashes.
	h.Canonical = true
	h.StructToArray = false
	h.ErrorIfNoField = false
	return h
}

// Encode serializes v to canonical CBOR.
func Encode(v interface{}) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, handle).Encode(v); err != nil {
		return nil, fmt.Errorf("cbor encode: %w", err)
	}
	return out, nil
}

// Decode deserializes CBOR into v.
func Decode(data []byte, v interface{}) error {
	if len(data) == 0 {
		return ErrEmptyPayload
	}
	if err := codec.NewDecoderBytes(data, handle).Decode(v); err != nil {
		return fmt.Errorf("cbor decode: %w", err)
	}
	return nil
}

// EncodeToString serializes v and base64-encodes the result.
func EncodeToString(v interface{}) (string, error) {
	data, err := Encode(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeString reverses EncodeToString.
func DecodeString(s string, v interface{}) error {
	if s == "" {
		return ErrEmptyPayload
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("base64 decode: %w", err)
	}
	return Decode(data, v)
}
