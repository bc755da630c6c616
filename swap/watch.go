package swap

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/novalis78/btc-mars-bridge/chainclient"
	"github.com/novalis78/btc-mars-bridge/hashlock"
	"github.com/novalis78/btc-mars-bridge/preimage"
)

// WatchForPreimage applies C4 to a primary-chain transaction known to
// have spent the HTLC output, recovering the preimage that let the
// counterparty claim. Idempotent: calling it again after the preimage
// is already known is a no-op that returns the same value.
//
// The abstract chain-client interface (§4.5) has no "find the spender
// of this outpoint" call — that's an indexer capability, and wiring a
// concrete indexer is exactly the RPC-transport concern this module
// stays abstract from. So candidateTxID names the transaction to
// inspect: the coordinator's own failed claim attempt (Scenario D) or
// an externally observed spend, in either case already a txid the
// caller learned some other way. If nil, this falls back to the
// record's own ClaimTx.Primary, if any.
func WatchForPreimage(ctx context.Context, rec *Record, primaryClient chainclient.Client, candidateTxID *chainhash.Hash) (*[hashlock.Size]byte, error) {
	var result *[hashlock.Size]byte
	err := rec.withLock(func() error {
		if rec.PreimageKnown {
			p := rec.Preimage
			result = &p
			return nil
		}

		txid := candidateTxID
		if txid == nil {
			txid = rec.ClaimTx.Primary
		}
		if txid == nil {
			return nil
		}

		raw, err := primaryClient.GetRawTransaction(ctx, *txid)
		if err != nil {
			return err
		}

		recovered, ok, err := preimage.Extract(raw, rec.Hash)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		rec.Preimage = recovered
		rec.PreimageKnown = true
		result = &recovered
		log.Infof("swap %x recovered preimage from transaction %s", rec.ID, txid)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
