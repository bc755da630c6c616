// Copyright (c) 2026 The btc-mars-bridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package htlc builds the hashed-timelock redeem script shared by both
// sides of a swap and derives its pay-to-script-hash address. One
// parameterized implementation covers both chains; the only
// chain-dependent input is the network's chainparams.Params.
package htlc

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"

	"github.com/novalis78/btc-mars-bridge/chainparams"
	"github.com/novalis78/btc-mars-bridge/hashlock"
	"github.com/novalis78/btc-mars-bridge/swaperr"
)

// MaxTimelock is the largest value txscript's minimal CScriptNum
// encoding represents in its default 4-byte form (2^31 - 1). A timelock
// beyond this can't be pushed as a valid CLTV argument. Exported
// so callers computing a timelock, such as swap.ComputeTimeouts, can
// reject an out-of-range value before it ever reaches BuildHTLC.
const MaxTimelock = 1<<31 - 1

// Params collects the inputs to BuildHTLC, replacing the deeply nested
// property bags of the original surface with one explicit struct per
// spec §9.
type Params struct {
	Hash         [hashlock.Size]byte
	Timelock     uint32
	ClaimPubKey  []byte
	RefundPubKey []byte
	Network      *chainparams.Params
}

// Descriptor is the immutable output of BuildHTLC: everything needed to
// fund, identify, and later spend one HTLC output.
type Descriptor struct {
	RedeemScript  []byte
	Address       string
	ScriptPubKey  []byte
	Hash          [hashlock.Size]byte
	Timelock      uint32
	ClaimKeyHash  [20]byte
	RefundKeyHash [20]byte
	Network       *chainparams.Params
}

// BuildHTLC constructs the canonical HTLC redeem script:
//
//	OP_IF
//	    OP_SHA256 <hash> OP_EQUALVERIFY
//	    OP_DUP OP_HASH160 <HASH160(claimPubKey)> OP_EQUALVERIFY OP_CHECKSIG
//	OP_ELSE
//	    <timelock> OP_CHECKLOCKTIMEVERIFY OP_DROP
//	    OP_DUP OP_HASH160 <HASH160(refundPubKey)> OP_EQUALVERIFY OP_CHECKSIG
//	OP_ENDIF
//
// and derives its P2SH address and scriptPubKey for the given network.
func BuildHTLC(p Params) (*Descriptor, error) {
	if len(p.ClaimPubKey) != 33 && len(p.ClaimPubKey) != 65 {
		return nil, swaperr.New(swaperr.InputError, "claim public key must be 33 or 65 bytes")
	}
	if len(p.RefundPubKey) != 33 && len(p.RefundPubKey) != 65 {
		return nil, swaperr.New(swaperr.InputError, "refund public key must be 33 or 65 bytes")
	}
	if p.Timelock == 0 {
		return nil, swaperr.New(swaperr.InputError, "timelock must be nonzero: OP_0 is not a valid CLTV argument")
	}
	if p.Timelock > MaxTimelock {
		return nil, swaperr.New(swaperr.InputError, "timelock exceeds the 4-byte CScriptNum range")
	}
	if p.Network == nil {
		return nil, swaperr.New(swaperr.InputError, "network parameters are required")
	}

	claimKeyHash := [20]byte{}
	copy(claimKeyHash[:], btcutil.Hash160(p.ClaimPubKey))
	refundKeyHash := [20]byte{}
	copy(refundKeyHash[:], btcutil.Hash160(p.RefundPubKey))

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_IF)
	builder.AddOp(txscript.OP_SHA256)
	builder.AddData(p.Hash[:])
	builder.AddOp(txscript.OP_EQUALVERIFY)
	builder.AddOp(txscript.OP_DUP)
	builder.AddOp(txscript.OP_HASH160)
	builder.AddData(claimKeyHash[:])
	builder.AddOp(txscript.OP_EQUALVERIFY)
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_ELSE)
	builder.AddInt64(int64(p.Timelock))
	builder.AddOp(txscript.OP_CHECKLOCKTIMEVERIFY)
	builder.AddOp(txscript.OP_DROP)
	builder.AddOp(txscript.OP_DUP)
	builder.AddOp(txscript.OP_HASH160)
	builder.AddData(refundKeyHash[:])
	builder.AddOp(txscript.OP_EQUALVERIFY)
	builder.AddOp(txscript.OP_CHECKSIG)
	builder.AddOp(txscript.OP_ENDIF)

	redeemScript, err := builder.Script()
	if err != nil {
		return nil, swaperr.Wrap(swaperr.CryptoError, "build redeem script", err)
	}

	scriptHash := btcutil.Hash160(redeemScript)

	spBuilder := txscript.NewScriptBuilder()
	spBuilder.AddOp(txscript.OP_HASH160)
	spBuilder.AddData(scriptHash)
	spBuilder.AddOp(txscript.OP_EQUAL)
	scriptPubKey, err := spBuilder.Script()
	if err != nil {
		return nil, swaperr.Wrap(swaperr.CryptoError, "build script pubkey", err)
	}

	address := chainparams.EncodeAddress(scriptHash, chainparams.P2SH, p.Network)

	log.Debugf("built HTLC redeem script (%d bytes) for address %s on %s",
		len(redeemScript), address, p.Network.Name)

	return &Descriptor{
		RedeemScript:  redeemScript,
		Address:       address,
		ScriptPubKey:  scriptPubKey,
		Hash:          p.Hash,
		Timelock:      p.Timelock,
		ClaimKeyHash:  claimKeyHash,
		RefundKeyHash: refundKeyHash,
		Network:       p.Network,
	}, nil
}
