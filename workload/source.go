package workload

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20"
)

// Source is a deterministic random source reading the ChaCha20 keystream of
// a 32 byte seed. The same seed always yields the same workload.
type Source struct {
	cipher *chacha20.Cipher
	buf    [8]byte
}

func NewSource(seed [32]byte) *Source {
	var nonce [chacha20.NonceSize]byte
	// key and nonce sizes are fixed, this cannot fail
	s, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		panic(err)
	}
	return &Source{cipher: s}
}

// Uint64 implements math/rand/v2.Source.
func (s *Source) Uint64() uint64 {
	clear(s.buf[:])
	s.cipher.XORKeyStream(s.buf[:], s.buf[:])
	return binary.LittleEndian.Uint64(s.buf[:])
}

// SeedFromString hashes an arbitrary string into a seed.
func SeedFromString(seedStr string) [32]byte {
	return sha256.Sum256([]byte(seedStr))
}

// ParseSeed decodes a hex seed, with or without 0x prefix. Shorter seeds are
// zero padded.
func ParseSeed(seedStrHex string) ([32]byte, error) {
	var seed [32]byte
	seedStrHex = strings.TrimPrefix(seedStrHex, "0x")
	b, err := hex.DecodeString(seedStrHex)
	if err != nil {
		return seed, fmt.Errorf("cannot decode seed %q: %w", seedStrHex, err)
	}
	if len(b) > len(seed) {
		return seed, fmt.Errorf("seed too long: %d bytes, max %d", len(b), len(seed))
	}
	copy(seed[:], b)
	return seed, nil
}
