package swap

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"

	"github.com/novalis78/btc-mars-bridge/chainclient"
	"github.com/novalis78/btc-mars-bridge/swaperr"
)

// ChainFunding reports what was observed for one chain's HTLC address.
type ChainFunding struct {
	Funded        bool
	TxID          *chainhash.Hash
	Vout          uint32
	Confirmations uint32
}

// FundingReport is the result of VerifyFunding.
type FundingReport struct {
	Primary         ChainFunding
	Alt             ChainFunding
	TransitionedNow bool // true iff this call is what moved status to Funded
}

func findFunding(ctx context.Context, client chainclient.Client, address string, requiredAmount uint64, requiredConfirmations uint32) (ChainFunding, error) {
	utxos, err := client.GetAddressUTXOs(ctx, address)
	if err != nil {
		return ChainFunding{}, err
	}
	for _, u := range utxos {
		if u.AmountMinor >= requiredAmount && u.Confirmations >= requiredConfirmations {
			txid := u.TxID
			return ChainFunding{Funded: true, TxID: &txid, Vout: u.Vout, Confirmations: u.Confirmations}, nil
		}
	}
	return ChainFunding{}, nil
}

// VerifyFunding queries both chains for a UTXO at the HTLC address
// meeting the amount and confirmation requirements, and advances status
// to Funded the first time both sides satisfy the predicate
// simultaneously. Repeated calls are idempotent: once Funded, later
// calls report the same funding but never regress the status.
func VerifyFunding(ctx context.Context, rec *Record, primaryClient, altClient chainclient.Client, cfg CoordinatorConfig) (*FundingReport, error) {
	var report *FundingReport
	err := rec.withLock(func() error {
		primary, err := findFunding(ctx, primaryClient, rec.HTLCPrimary.Address, rec.Amounts.Primary, cfg.RequiredConfirmationsPrimary)
		if err != nil {
			return err
		}
		alt, err := findFunding(ctx, altClient, rec.HTLCAlt.Address, rec.Amounts.Alt, cfg.RequiredConfirmationsAlt)
		if err != nil {
			return err
		}

		report = &FundingReport{Primary: primary, Alt: alt}
		log.Tracef("swap %x funding report: %s", rec.ID, spew.Sdump(report))

		if primary.Funded && alt.Funded && rec.Status == Initialized {
			rec.FundingTx.Primary = Outpoint{TxID: primary.TxID, Vout: primary.Vout}
			rec.FundingTx.Alt = Outpoint{TxID: alt.TxID, Vout: alt.Vout}
			rec.Status = Funded
			report.TransitionedNow = true
			log.Infof("swap %x funded on both chains, transitioning to Funded", rec.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// requireStatus is a shared guard for operations that only make sense
// from one status.
func requireStatus(rec *Record, want Status) error {
	if rec.Status != want {
		return swaperr.New(swaperr.StateError, "swap is "+string(rec.Status)+", not "+string(want))
	}
	return nil
}
