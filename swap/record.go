// Copyright (c) 2026 The btc-mars-bridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package swap owns the cross-chain atomic swap state machine: it draws
// the shared secret, parameterizes both chains' HTLCs with asymmetric
// timelocks, tracks funding, and drives claim or refund in the correct
// order. Every blocking call in this package goes through a
// chainclient.Client; all other logic is pure.
package swap

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/novalis78/btc-mars-bridge/hashlock"
	"github.com/novalis78/btc-mars-bridge/htlc"
)

// Status is one node of the swap's state DAG:
// Initialized -> Funded -> {Completed, Refunded}, with Failed reachable
// from any state.
type Status string

const (
	Initialized Status = "initialized"
	Funded      Status = "funded"
	Completed   Status = "completed"
	Refunded    Status = "refunded"
	Failed      Status = "failed"
)

// Addresses collects the four payout addresses a swap ever pays: each
// party's own address on each chain, used as the destination when that
// party claims or refunds.
type Addresses struct {
	InitiatorPrimary   string
	InitiatorAlt       string
	ParticipantPrimary string
	ParticipantAlt     string
}

// Amounts are the funding amounts each HTLC must receive, in minor
// units (satoshis or the alt chain's equivalent).
type Amounts struct {
	Primary uint64
	Alt     uint64
}

// Timeouts are the two chains' absolute CLTV expiries, in unix seconds.
// Timeouts.Primary must exceed Timeouts.Alt — see ComputeTimeouts.
type Timeouts struct {
	Primary uint32
	Alt     uint32
}

// ChainTxRef holds an optional txid per chain, used for claim and
// refund transaction references on a Record.
type ChainTxRef struct {
	Primary *chainhash.Hash
	Alt     *chainhash.Hash
}

// Outpoint identifies one chain's satisfying funding UTXO: the txid
// found by VerifyFunding and the vout within it the HTLC output actually
// occupies. TxID is nil until that chain is funded.
type Outpoint struct {
	TxID *chainhash.Hash
	Vout uint32
}

// FundingRef holds the per-chain funding outpoint a Record was funded
// from, per spec §4.6's "record the satisfying (txid, vout) pairs".
type FundingRef struct {
	Primary Outpoint
	Alt     Outpoint
}

// Record is the coordinator's complete view of one swap. Every field is
// flat data; the only exported behavior lives in this package's
// functions, which take a *Record as their first argument and change its
// status and transaction references only after a successful network
// reply; a signed transaction is cached (SignedClaimHex,
// SignedRefundHex) before it is broadcast.
type Record struct {
	mu sync.Mutex

	ID [16]byte

	// Preimage is the shared secret. PreimageKnown is false once the
	// secret has been erased (hashlock.Zero) — a swap that resolves via
	// refund without ever claiming need not, and should not, keep it.
	Preimage      [hashlock.Size]byte
	PreimageKnown bool
	Hash          [hashlock.Size]byte

	Addresses Addresses

	HTLCPrimary *htlc.Descriptor
	HTLCAlt     *htlc.Descriptor

	Amounts  Amounts
	Timeouts Timeouts

	FundingTx FundingRef
	ClaimTx   ChainTxRef
	RefundTx  ChainTxRef

	// SignedClaimHex and SignedRefundHex cache the last transaction this
	// coordinator built for each leg, keyed by chain. A ChainUnavailable
	// broadcast failure leaves the signed bytes here so a retry doesn't
	// need to re-sign — broadcast is idempotent on txid, so resending the
	// same bytes is always safe.
	SignedClaimHex  ChainHexCache
	SignedRefundHex ChainHexCache

	Status Status

	CreatedAt   uint64
	CompletedAt *uint64
	RefundedAt  *uint64
}

// ChainHexCache holds a retryable signed transaction per chain.
type ChainHexCache struct {
	Primary []byte
	Alt     []byte
}

// CoordinatorConfig holds the operational thresholds a deployment
// chooses: how many confirmations funding requires per chain and the
// dust floor for an output on each chain. Config-file parsing that
// produces one of these is outside this module's scope.
type CoordinatorConfig struct {
	RequiredConfirmationsPrimary uint32
	RequiredConfirmationsAlt     uint32
	DustThresholdPrimary         int64
	DustThresholdAlt             int64
}

// DefaultConfig mirrors Bitcoin's long-standing relay policy: 546
// satoshis of dust, one confirmation required on either chain before a
// swap is treated as funded. A production deployment will usually want
// more confirmations on the higher-value leg; this is a starting point,
// not a recommendation.
func DefaultConfig() CoordinatorConfig {
	return CoordinatorConfig{
		RequiredConfirmationsPrimary: 1,
		RequiredConfirmationsAlt:     1,
		DustThresholdPrimary:         546,
		DustThresholdAlt:             546,
	}
}

// withLock runs fn with the record's exclusive lock held, matching the
// concurrency model: each operation on a Record acquires exclusive
// logical ownership of it for its duration, while distinct records may
// be driven concurrently.
func (r *Record) withLock(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn()
}
