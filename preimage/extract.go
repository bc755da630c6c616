// Copyright (c) 2026 The btc-mars-bridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package preimage recovers an HTLC's preimage from a broadcast claim
// transaction. Once either side's claim transaction confirms, its
// scriptSig contains the preimage in the clear — the other side watches
// for it to unlock its own leg of the swap.
package preimage

import (
	"bytes"
	"crypto/sha256"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/novalis78/btc-mars-bridge/hashlock"
	"github.com/novalis78/btc-mars-bridge/swaperr"
)

// Extract decompiles every input's scriptSig in a raw transaction and
// returns the first 32-byte push whose SHA-256 digest matches
// expectedHash. The claim scriptSig built by package txbuilder is
// <sig> <pubkey> <preimage> OP_TRUE <redeemScript>; the preimage is the
// only 32-byte push among those whose hash can possibly match.
//
// A transaction that simply isn't the claim (no push hashes to
// expectedHash) is not an error: found is false and err is nil. Only a
// transaction that fails to deserialize is reported as an error.
func Extract(txBytes []byte, expectedHash [hashlock.Size]byte) (preimageOut [hashlock.Size]byte, found bool, err error) {
	tx := wire.NewMsgTx(1)
	if err := tx.Deserialize(bytes.NewReader(txBytes)); err != nil {
		return preimageOut, false, swaperr.Wrap(swaperr.InputError, "deserialize transaction", err)
	}
	return ExtractFromTx(tx, expectedHash)
}

// ExtractFromTx is Extract for a transaction already deserialized by the
// caller, e.g. one returned directly by a chain client.
func ExtractFromTx(tx *wire.MsgTx, expectedHash [hashlock.Size]byte) (preimageOut [hashlock.Size]byte, found bool, err error) {
	if tx == nil {
		return preimageOut, false, swaperr.New(swaperr.InputError, "transaction is nil")
	}

	for _, in := range tx.TxIn {
		pushes, err := txscript.PushedData(in.SignatureScript)
		if err != nil {
			// A scriptSig that doesn't even decompile cleanly can't be
			// our claim transaction; keep looking at the other inputs
			// rather than failing the whole lookup.
			continue
		}
		for _, push := range pushes {
			if len(push) != hashlock.Size {
				continue
			}
			if sha256.Sum256(push) == expectedHash {
				copy(preimageOut[:], push)
				return preimageOut, true, nil
			}
		}
	}

	return preimageOut, false, nil
}
