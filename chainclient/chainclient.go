// Copyright (c) 2026 The btc-mars-bridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainclient defines the abstract per-chain interface the swap
// coordinator drives: UTXO lookup, raw-transaction fetch, broadcast, and
// confirmation queries. No implementation lives here — RPC transport to
// a node daemon is a host concern. See chainclient/memclient for an
// in-memory double used by tests.
package chainclient

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// UTXO describes one unspent output observed at a watched address.
type UTXO struct {
	TxID          chainhash.Hash
	Vout          uint32
	AmountMinor   uint64
	Confirmations uint32
}

// TxStatus reports how deeply a transaction has confirmed.
type TxStatus struct {
	Confirmations uint32
	BlockHeight   *uint32
}

// Client is the abstract surface the coordinator (package swap) drives
// against one chain. Every method may block on network I/O and is the
// only place a coordinator operation may suspend; all other logic in
// this module is pure and non-blocking.
//
// Implementations typically wrap JSON-RPC getaddressutxos (or an
// equivalent address-indexed scan), getrawtransaction,
// sendrawtransaction, and gettransaction against a node daemon — that
// transport is deliberately outside this module's scope.
type Client interface {
	// GetAddressUTXOs returns every UTXO currently unspent, in the
	// node's view, at addr. Confirmations is 0 for a mempool output.
	GetAddressUTXOs(ctx context.Context, addr string) ([]UTXO, error)

	// GetRawTransaction fetches the legacy serialization of txid.
	GetRawTransaction(ctx context.Context, txid chainhash.Hash) ([]byte, error)

	// SendRawTransaction broadcasts a fully signed transaction.
	// Idempotent on txid: rebroadcasting an already-accepted transaction
	// returns the same txid rather than failing.
	SendRawTransaction(ctx context.Context, txHex []byte) (chainhash.Hash, error)

	// GetTransaction reports the confirmation depth of a previously
	// broadcast transaction.
	GetTransaction(ctx context.Context, txid chainhash.Hash) (TxStatus, error)

	// CurrentTime returns the client's notion of now, in unix seconds.
	// This may be chain time (e.g. median-time-past) or wall-clock time;
	// the coordinator never assumes which.
	CurrentTime(ctx context.Context) (uint64, error)
}
