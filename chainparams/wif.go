package chainparams

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/base58"
)

// EncodeWIF serializes a private key in Wallet Import Format for the
// given network: version byte, 32-byte key, an optional 0x01 suffix for
// a compressed public key, Base58Check-encoded.
//
// btcutil.WIF exists upstream but is built around the global
// chaincfg.Params registry; a custom two-chain Params doesn't fit that
// registry, so the encoding (itself only a handful of lines on top of
// base58.CheckEncode) is reproduced here directly against our Params.
func EncodeWIF(priv *btcec.PrivateKey, params *Params, compressed bool) string {
	raw := priv.Serialize()
	payload := make([]byte, 0, len(raw)+1)
	payload = append(payload, raw...)
	if compressed {
		payload = append(payload, 0x01)
	}
	return base58.CheckEncode(payload, params.PrivateKeyID)
}

// DecodeWIF parses a WIF string, verifying it was encoded for the given
// network. Returns the private key and whether it designates a
// compressed public key.
func DecodeWIF(wif string, params *Params) (*btcec.PrivateKey, bool, error) {
	payload, version, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, false, fmt.Errorf("decode WIF: %w", err)
	}
	if version != params.PrivateKeyID {
		return nil, false, fmt.Errorf("WIF version 0x%02x does not match network %q (want 0x%02x)",
			version, params.Name, params.PrivateKeyID)
	}

	var compressed bool
	switch len(payload) {
	case 33:
		if payload[32] != 0x01 {
			return nil, false, fmt.Errorf("malformed WIF: unexpected compression suffix 0x%02x", payload[32])
		}
		compressed = true
		payload = payload[:32]
	case 32:
		compressed = false
	default:
		return nil, false, fmt.Errorf("malformed WIF: private key payload is %d bytes, want 32 or 33", len(payload))
	}

	priv, _ := btcec.PrivKeyFromBytes(payload)
	return priv, compressed, nil
}
