// Package cryptox implements the salted one-way transform used to store
// credential material.
//
// Digests are Argon2id keys over the material with the salt as Argon2 salt,
// encoded as lowercase hex. The transform is deterministic for fixed Params:
// equal (material, salt) pairs always produce equal digests.
package cryptox

import (
	"encoding/hex"

	"github.com/dmitrijs2005/gophdesk/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the number of random bytes in a salt before hex encoding.
const SaltSize = 16

// Params are the Argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
}

// DefaultParams is the production cost: one pass over 64 MiB with 4 lanes.
var DefaultParams = Params{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32}

// Hasher computes digests with fixed Params. The zero value is not usable;
// construct one with NewHasher.
type Hasher struct {
	params Params
}

// NewHasher returns a Hasher using p.
func NewHasher(p Params) *Hasher {
	return &Hasher{params: p}
}

// Hash returns the hex digest of material salted with salt.
func (h *Hasher) Hash(material, salt string) string {
	key := argon2.IDKey([]byte(material), []byte(salt), h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)
	return hex.EncodeToString(key)
}

var defaultHasher = NewHasher(DefaultParams)

// Hash is Hasher.Hash with DefaultParams.
func Hash(material, salt string) string {
	return defaultHasher.Hash(material, salt)
}

// NewSalt returns a fresh random salt, hex-encoded.
func NewSalt() string {
	return hex.EncodeToString(common.GenerateRandByteArray(SaltSize))
}
