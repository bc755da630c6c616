package swap

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/novalis78/btc-mars-bridge/chainclient"
	"github.com/novalis78/btc-mars-bridge/chainparams"
	"github.com/novalis78/btc-mars-bridge/swaperr"
	"github.com/novalis78/btc-mars-bridge/txbuilder"
)

// ClaimKeys supplies the private keys and fees needed to claim either
// leg of a funded swap. A caller typically controls only one side's
// claim key; leave the other WIF empty to skip that leg.
type ClaimKeys struct {
	InitiatorPrimaryWIF string
	InitiatorPrimaryFee int64

	ParticipantAltWIF string
	ParticipantAltFee int64
}

// ClaimReport is the result of CompleteSwap.
type ClaimReport struct {
	PrimaryClaimed bool
	AltClaimed     bool
}

// CompleteSwap requires status Funded. It builds and broadcasts a claim
// transaction for whichever leg(s) a key was supplied for. Completed is
// defined by the primary-side claim alone — an alt claim, if also
// supplied, is broadcast but doesn't gate the status transition.
func CompleteSwap(ctx context.Context, rec *Record, primaryClient, altClient chainclient.Client, cfg CoordinatorConfig, keys ClaimKeys) (*ClaimReport, error) {
	if keys.InitiatorPrimaryWIF == "" && keys.ParticipantAltWIF == "" {
		return nil, swaperr.New(swaperr.InputError, "no claim key supplied")
	}

	report := &ClaimReport{}
	err := rec.withLock(func() error {
		if err := requireStatus(rec, Funded); err != nil {
			return err
		}
		if !rec.PreimageKnown {
			return swaperr.New(swaperr.StateError, "preimage is not known to this record")
		}

		if keys.InitiatorPrimaryWIF != "" {
			if err := claimLeg(ctx, primaryClient, cfg.DustThresholdPrimary, leg{
				fundingTxID:   rec.FundingTx.Primary.TxID,
				fundingVout:   rec.FundingTx.Primary.Vout,
				inputValue:    int64(rec.Amounts.Primary),
				fee:           keys.InitiatorPrimaryFee,
				redeemScript:  rec.HTLCPrimary.RedeemScript,
				privKeyWIF:    keys.InitiatorPrimaryWIF,
				destination:   rec.Addresses.InitiatorPrimary,
				network:       rec.HTLCPrimary.Network,
				signedCache:   &rec.SignedClaimHex.Primary,
				claimTxIDDest: &rec.ClaimTx.Primary,
			}, rec.Preimage); err != nil {
				return err
			}
			report.PrimaryClaimed = true
			now, err := primaryClient.CurrentTime(ctx)
			if err != nil {
				now = rec.CreatedAt
			}
			rec.Status = Completed
			rec.CompletedAt = &now
			log.Infof("swap %x completed: primary claim broadcast", rec.ID)
		}

		if keys.ParticipantAltWIF != "" {
			if err := claimLeg(ctx, altClient, cfg.DustThresholdAlt, leg{
				fundingTxID:   rec.FundingTx.Alt.TxID,
				fundingVout:   rec.FundingTx.Alt.Vout,
				inputValue:    int64(rec.Amounts.Alt),
				fee:           keys.ParticipantAltFee,
				redeemScript:  rec.HTLCAlt.RedeemScript,
				privKeyWIF:    keys.ParticipantAltWIF,
				destination:   rec.Addresses.ParticipantAlt,
				network:       rec.HTLCAlt.Network,
				signedCache:   &rec.SignedClaimHex.Alt,
				claimTxIDDest: &rec.ClaimTx.Alt,
			}, rec.Preimage); err != nil {
				return err
			}
			report.AltClaimed = true
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// leg bundles one side's claim/refund inputs so claimLeg and refundLeg
// don't each take a dozen positional arguments.
type leg struct {
	fundingTxID   *chainhash.Hash
	fundingVout   uint32
	inputValue    int64
	fee           int64
	redeemScript  []byte
	privKeyWIF    string
	destination   string
	network       *chainparams.Params
	signedCache   *[]byte
	claimTxIDDest **chainhash.Hash
}

func claimLeg(ctx context.Context, client chainclient.Client, dustThreshold int64, l leg, preimage [32]byte) error {
	if l.fundingTxID == nil {
		return swaperr.New(swaperr.StateError, "leg has no recorded funding transaction")
	}

	built, err := txbuilder.BuildClaim(txbuilder.ClaimParams{
		FundingTxID:        *l.fundingTxID,
		FundingVout:        l.fundingVout,
		InputValue:         l.inputValue,
		Fee:                l.fee,
		DustThreshold:      dustThreshold,
		RedeemScript:       l.redeemScript,
		Preimage:           preimage,
		ClaimPrivKeyWIF:    l.privKeyWIF,
		DestinationAddress: l.destination,
		Network:            l.network,
	})
	if err != nil {
		return err
	}
	*l.signedCache = built.TxHex

	txid, err := client.SendRawTransaction(ctx, built.TxHex)
	if err != nil {
		// The transaction is already signed; the caller can retry the
		// broadcast later using SignedClaimHex without re-signing.
		return err
	}
	*l.claimTxIDDest = &txid
	return nil
}
