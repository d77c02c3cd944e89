// Package codec decodes the text forms a program log uses for program ids
// (base58) and binary payloads (base64).
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// PubkeyLen is the decoded size of a program id.
const PubkeyLen = 32

var (
	ErrInvalidPubkey  = errors.New("codec: invalid pubkey")
	ErrInvalidPayload = errors.New("codec: invalid base64 payload")
)

// Pubkey is a 32-byte program id.
type Pubkey [PubkeyLen]byte

// ParsePubkey decodes a base58 program id.
func ParsePubkey(s string) (Pubkey, error) {
	var pk Pubkey
	if s == "" {
		return pk, fmt.Errorf("%w: empty", ErrInvalidPubkey)
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("%w %q: %v", ErrInvalidPubkey, s, err)
	}
	if len(raw) != PubkeyLen {
		return pk, fmt.Errorf("%w %q: decoded %d bytes, want %d", ErrInvalidPubkey, s, len(raw), PubkeyLen)
	}
	copy(pk[:], raw)
	return pk, nil
}

// MustPubkey is ParsePubkey for constants and fixtures; it panics on bad input.
func MustPubkey(s string) Pubkey {
	pk, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

func (pk Pubkey) String() string {
	return base58.Encode(pk[:])
}

func (pk Pubkey) IsZero() bool {
	return pk == Pubkey{}
}

func (pk Pubkey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

func (pk *Pubkey) UnmarshalText(text []byte) error {
	parsed, err := ParsePubkey(string(text))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

// DecodePayload decodes standard, padded base64.
func DecodePayload(s string) ([]byte, error) {
	out, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return out, nil
}

// EncodePayload is the inverse of DecodePayload.
func EncodePayload(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Payload is decoded payload bytes that encode back to base64 as text, so
// JSON, YAML and TOML all render it the way the log prints it.
type Payload []byte

// ParsePayload is DecodePayload returning a Payload.
func ParsePayload(s string) (Payload, error) {
	b, err := DecodePayload(s)
	if err != nil {
		return nil, err
	}
	return Payload(b), nil
}

func (p Payload) String() string {
	return EncodePayload(p)
}

func (p Payload) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Payload) UnmarshalText(text []byte) error {
	parsed, err := ParsePayload(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
