// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The btc-mars-bridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainparams identifies the network-specific constants a swap
// touches: the version bytes that turn a script hash or a public key
// hash into a Base58Check address or a WIF private key, and the network
// magic used to tag a message. The redeem script built by package htlc
// is network-independent; only the derived P2SH address and any encoded
// key depend on these parameters.
package chainparams

import "fmt"

// Params holds the version bytes and magics for one network of one
// chain. Two chains are modeled: the Bitcoin-compatible "primary" chain
// and Marscoin, the "alt" chain referred to throughout this module.
type Params struct {
	// Name is the human-readable identifier, e.g. "bitcoin-mainnet" or
	// "marscoin-testnet".
	Name string

	// Net is the magic value placed in the message header to identify
	// the network a message is intended for.
	Net uint32

	// PubKeyHashAddrID is the first byte of a P2PKH address.
	PubKeyHashAddrID byte

	// ScriptHashAddrID is the first byte of a P2SH address.
	ScriptHashAddrID byte

	// PrivateKeyID is the first byte of a WIF private key.
	PrivateKeyID byte

	// HDPrivateKeyID and HDPublicKeyID are the BIP32 extended key
	// version bytes.
	HDPrivateKeyID [4]byte
	HDPublicKeyID  [4]byte

	// Bech32HRPSegwit is the bech32 human-readable part, when the
	// network defines one. Empty for networks with no segwit
	// deployment; the core never produces segwit output, but the field
	// is part of the data model (spec §3) so callers that do can reuse
	// these params.
	Bech32HRPSegwit string
}

// registered networks, keyed by name, so callers (and tests) can look
// one up instead of importing every var.
var registered = make(map[string]*Params)

func mustRegister(p *Params) *Params {
	if _, ok := registered[p.Name]; ok {
		panic(fmt.Sprintf("chainparams: %q registered twice", p.Name))
	}
	registered[p.Name] = p
	return p
}

// ByName returns a previously registered network by name, or false if
// none is registered under that name.
func ByName(name string) (*Params, bool) {
	p, ok := registered[name]
	return p, ok
}

// Bitcoin-compatible primary-chain networks.
var (
	BitcoinMainNet = mustRegister(&Params{
		Name:             "bitcoin-mainnet",
		Net:              0xd9b4bef9,
		PubKeyHashAddrID: 0x00,
		ScriptHashAddrID: 0x05,
		PrivateKeyID:     0x80,
		HDPrivateKeyID:   [4]byte{0x04, 0x88, 0xad, 0xe4},
		HDPublicKeyID:    [4]byte{0x04, 0x88, 0xb2, 0x1e},
		Bech32HRPSegwit:  "bc",
	})

	BitcoinTestNet3 = mustRegister(&Params{
		Name:             "bitcoin-testnet3",
		Net:              0x0709110b,
		PubKeyHashAddrID: 0x6f,
		ScriptHashAddrID: 0xc4,
		PrivateKeyID:     0xef,
		HDPrivateKeyID:   [4]byte{0x04, 0x35, 0x83, 0x94},
		HDPublicKeyID:    [4]byte{0x04, 0x35, 0x87, 0xcf},
		Bech32HRPSegwit:  "tb",
	})

	BitcoinRegtest = mustRegister(&Params{
		Name:             "bitcoin-regtest",
		Net:              0xdab5bffa,
		PubKeyHashAddrID: 0x6f,
		ScriptHashAddrID: 0xc4,
		PrivateKeyID:     0xef,
		HDPrivateKeyID:   [4]byte{0x04, 0x35, 0x83, 0x94},
		HDPublicKeyID:    [4]byte{0x04, 0x35, 0x87, 0xcf},
		Bech32HRPSegwit:  "bcrt",
	})
)

// Marscoin ("ALT") networks. Marscoin is a Scrypt-based Litecoin/Bitcoin
// fork; its legacy P2SH/P2PKH/WIF layout follows the same scheme as
// Bitcoin with different version bytes.
var (
	MarscoinMainNet = mustRegister(&Params{
		Name:             "marscoin-mainnet",
		Net:              0xcafef00d,
		PubKeyHashAddrID: 0x32,
		ScriptHashAddrID: 0x12,
		PrivateKeyID:     0xb2,
		HDPrivateKeyID:   [4]byte{0x04, 0x88, 0xad, 0xe4},
		HDPublicKeyID:    [4]byte{0x04, 0x88, 0xb2, 0x1e},
		Bech32HRPSegwit:  "",
	})

	MarscoinTestNet = mustRegister(&Params{
		Name:             "marscoin-testnet",
		Net:              0x0b11090a,
		PubKeyHashAddrID: 0x6f,
		ScriptHashAddrID: 0xc4,
		PrivateKeyID:     0xef,
		HDPrivateKeyID:   [4]byte{0x04, 0x35, 0x83, 0x94},
		HDPublicKeyID:    [4]byte{0x04, 0x35, 0x87, 0xcf},
		Bech32HRPSegwit:  "",
	})
)
