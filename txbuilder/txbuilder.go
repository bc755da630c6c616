// Copyright (c) 2026 The btc-mars-bridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txbuilder constructs, signs, and serializes the two
// transactions that ever spend an HTLC output: the claim transaction
// (reveal the preimage, take the IF branch) and the refund transaction
// (wait for the timelock, take the ELSE branch). Both are legacy,
// non-segwit transactions signed with SIGHASH_ALL.
package txbuilder

import (
	"bytes"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/novalis78/btc-mars-bridge/chainparams"
	"github.com/novalis78/btc-mars-bridge/swaperr"
)

// txVersion is pinned to 1, per spec: these are plain legacy
// transactions, not an occasion to opt into any newer version semantics.
const txVersion = 1

// claimSequence leaves CLTV irrelevant on the claim path: there's no
// timelock to respect when revealing the preimage.
const claimSequence = 0xFFFFFFFF

// refundSequence must be below 0xFFFFFFFF for nLockTime to take effect
// per BIP65/the legacy locktime rule.
const refundSequence = 0xFFFFFFFE

// Built is the result of either BuildClaim or BuildRefund: a fully
// signed, serialized transaction and its txid.
type Built struct {
	TxHex []byte
	TxID  chainhash.Hash
}

func p2pkhScript(hash160 [20]byte) ([]byte, error) {
	b := txscript.NewScriptBuilder()
	b.AddOp(txscript.OP_DUP)
	b.AddOp(txscript.OP_HASH160)
	b.AddData(hash160[:])
	b.AddOp(txscript.OP_EQUALVERIFY)
	b.AddOp(txscript.OP_CHECKSIG)
	return b.Script()
}

// resolveDestination decodes a destination address, requiring it to be a
// standard P2PKH address — the only output type §4.3 describes.
func resolveDestination(address string, network *chainparams.Params) ([]byte, error) {
	hash160, kind, err := chainparams.DecodeAddress(address, network)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.InputError, "decode destination address", err)
	}
	if kind != chainparams.P2PKH {
		return nil, swaperr.New(swaperr.InputError, "destination address must be a P2PKH address")
	}
	return p2pkhScript(hash160)
}

func serialize(tx *wire.MsgTx) ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, swaperr.Wrap(swaperr.CryptoError, "serialize transaction", err)
	}
	return buf.Bytes(), nil
}

// checkFunds applies the shared fee/dust validation both spending paths
// require: the fee must leave a positive, non-dust output.
func checkFunds(inputValue, fee, dustThreshold int64) (outputValue int64, err error) {
	if fee < 0 || inputValue < 0 {
		return 0, swaperr.New(swaperr.InputError, "amount and fee must be non-negative")
	}
	if fee >= inputValue {
		return 0, swaperr.New(swaperr.InputError, "fee is greater than or equal to the input value")
	}
	outputValue = inputValue - fee
	if outputValue < dustThreshold {
		return 0, swaperr.New(swaperr.InputError, "output value is below the dust threshold")
	}
	return outputValue, nil
}
