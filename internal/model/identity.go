package model

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// IdentitySize is the width of an identity on the wire.
const IdentitySize = 32

// Identity is an authenticated caller or item key. The zero value is the
// null identity used for "no renter".
type Identity [IdentitySize]byte

var NullIdentity Identity

func ParseIdentity(s string) (Identity, error) {
	var id Identity
	raw, err := base58.Decode(s)
	if err != nil {
		return id, fmt.Errorf("invalid identity %q: %w", s, err)
	}
	if len(raw) != IdentitySize {
		return id, fmt.Errorf("invalid identity %q: want %d bytes, got %d", s, IdentitySize, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// IdentityFromBytes copies b into an Identity. b must be exactly IdentitySize long.
func IdentityFromBytes(b []byte) (Identity, error) {
	var id Identity
	if len(b) != IdentitySize {
		return id, fmt.Errorf("invalid identity: want %d bytes, got %d", IdentitySize, len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (id Identity) String() string {
	return base58.Encode(id[:])
}

func (id Identity) IsNull() bool {
	return id == NullIdentity
}

func (id Identity) Bytes() []byte {
	return id[:]
}

func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
