// Package hashlock draws the shared secret at the heart of every HTLC:
// a 32-byte preimage and its SHA-256 digest. The preimage is the only
// secret the protocol handles that isn't a private key, and it is
// handled the same way — drawn from the OS CSPRNG, zeroed once spent,
// never logged.
package hashlock

import (
	"crypto/rand"
	"crypto/sha256"

	"github.com/novalis78/btc-mars-bridge/swaperr"
)

// Size is the fixed length, in bytes, of both a preimage and its hash.
const Size = 32

// HashLock is a freshly-drawn preimage paired with its public digest.
type HashLock struct {
	Preimage [Size]byte
	Hash     [Size]byte
}

// Generate draws Size bytes from the OS CSPRNG and returns them alongside
// their SHA-256 digest. Fails with swaperr.CryptoError if the system RNG
// cannot be read — this is the only failure mode, crypto/rand.Read never
// returns a short read on success.
func Generate() (HashLock, error) {
	var hl HashLock
	if _, err := rand.Read(hl.Preimage[:]); err != nil {
		return HashLock{}, swaperr.Wrap(swaperr.CryptoError, "read system RNG", err)
	}
	hl.Hash = sha256.Sum256(hl.Preimage[:])
	return hl, nil
}

// HashOf computes SHA-256(preimage) for a caller-supplied preimage, used
// to verify a preimage recovered from a claim transaction (§4.4) against
// the hash recorded in a swap.
func HashOf(preimage [Size]byte) [Size]byte {
	return sha256.Sum256(preimage[:])
}

// Zero overwrites a preimage in place. Package swap calls it when a swap
// is refunded without any claim having been recorded; a claimed swap
// keeps its preimage.
func Zero(preimage *[Size]byte) {
	for i := range preimage {
		preimage[i] = 0
	}
}
