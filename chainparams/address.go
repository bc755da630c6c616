package chainparams

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// AddressKind distinguishes the two Base58Check address families this
// module ever builds or consumes; both chains are legacy-only, so there's
// no segwit variant to represent.
type AddressKind int

const (
	P2PKH AddressKind = iota
	P2SH
)

// EncodeAddress Base58Check-encodes a 20-byte HASH160 as an address of the
// given kind for params.
func EncodeAddress(hash160 []byte, kind AddressKind, params *Params) string {
	version := params.PubKeyHashAddrID
	if kind == P2SH {
		version = params.ScriptHashAddrID
	}
	return base58.CheckEncode(hash160, version)
}

// DecodeAddress reverses EncodeAddress, additionally verifying the
// address's version byte belongs to params — an address minted for the
// wrong network fails here rather than silently paying the wrong chain.
func DecodeAddress(addr string, params *Params) (hash160 [20]byte, kind AddressKind, err error) {
	payload, version, err := base58.CheckDecode(addr)
	if err != nil {
		return hash160, 0, fmt.Errorf("decode address: %w", err)
	}
	if len(payload) != 20 {
		return hash160, 0, fmt.Errorf("address payload is %d bytes, want 20", len(payload))
	}
	switch version {
	case params.PubKeyHashAddrID:
		kind = P2PKH
	case params.ScriptHashAddrID:
		kind = P2SH
	default:
		return hash160, 0, fmt.Errorf("address version 0x%02x does not belong to network %q", version, params.Name)
	}
	copy(hash160[:], payload)
	return hash160, kind, nil
}
