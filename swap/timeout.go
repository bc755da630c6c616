package swap

import (
	"context"

	"github.com/novalis78/btc-mars-bridge/chainclient"
	"github.com/novalis78/btc-mars-bridge/hashlock"
	"github.com/novalis78/btc-mars-bridge/swaperr"
	"github.com/novalis78/btc-mars-bridge/txbuilder"
)

// RefundKeys supplies the private keys and fees needed to refund either
// leg of a funded swap once its timelock has matured.
type RefundKeys struct {
	InitiatorAltWIF string
	InitiatorAltFee int64

	ParticipantPrimaryWIF string
	ParticipantPrimaryFee int64
}

// RefundReport is the result of HandleTimeout.
type RefundReport struct {
	AltRefunded     bool
	PrimaryRefunded bool
}

// HandleTimeout refunds whichever chain's timelock has expired and for
// which a refund key was supplied. Alt matures first under the
// asymmetric policy; a well-behaved Initiator calls this as soon as alt
// expires rather than waiting for primary. Transitions to Refunded on
// the first successful broadcast. A record already Refunded may be
// passed again to refund a leg that has not been refunded yet.
func HandleTimeout(ctx context.Context, rec *Record, primaryClient, altClient chainclient.Client, cfg CoordinatorConfig, keys RefundKeys) (*RefundReport, error) {
	if keys.InitiatorAltWIF == "" && keys.ParticipantPrimaryWIF == "" {
		return nil, swaperr.New(swaperr.InputError, "no refund key supplied")
	}

	report := &RefundReport{}
	err := rec.withLock(func() error {
		if rec.Status != Refunded {
			if err := requireStatus(rec, Funded); err != nil {
				return err
			}
		}

		if keys.InitiatorAltWIF != "" && rec.RefundTx.Alt == nil {
			now, err := altClient.CurrentTime(ctx)
			if err != nil {
				return err
			}
			if uint32(now) > rec.Timeouts.Alt {
				if err := refundLeg(ctx, altClient, cfg.DustThresholdAlt, leg{
					fundingTxID:   rec.FundingTx.Alt.TxID,
					fundingVout:   rec.FundingTx.Alt.Vout,
					inputValue:    int64(rec.Amounts.Alt),
					fee:           keys.InitiatorAltFee,
					redeemScript:  rec.HTLCAlt.RedeemScript,
					privKeyWIF:    keys.InitiatorAltWIF,
					destination:   rec.Addresses.InitiatorAlt,
					network:       rec.HTLCAlt.Network,
					signedCache:   &rec.SignedRefundHex.Alt,
					claimTxIDDest: &rec.RefundTx.Alt,
				}, rec.Timeouts.Alt); err != nil {
					return err
				}
				report.AltRefunded = true
				markRefunded(rec, now)
				log.Infof("swap %x refunded on alt after timeout", rec.ID)
			}
		}

		if keys.ParticipantPrimaryWIF != "" && rec.RefundTx.Primary == nil {
			now, err := primaryClient.CurrentTime(ctx)
			if err != nil {
				return err
			}
			if uint32(now) > rec.Timeouts.Primary {
				if err := refundLeg(ctx, primaryClient, cfg.DustThresholdPrimary, leg{
					fundingTxID:   rec.FundingTx.Primary.TxID,
					fundingVout:   rec.FundingTx.Primary.Vout,
					inputValue:    int64(rec.Amounts.Primary),
					fee:           keys.ParticipantPrimaryFee,
					redeemScript:  rec.HTLCPrimary.RedeemScript,
					privKeyWIF:    keys.ParticipantPrimaryWIF,
					destination:   rec.Addresses.ParticipantPrimary,
					network:       rec.HTLCPrimary.Network,
					signedCache:   &rec.SignedRefundHex.Primary,
					claimTxIDDest: &rec.RefundTx.Primary,
				}, rec.Timeouts.Primary); err != nil {
					return err
				}
				report.PrimaryRefunded = true
				markRefunded(rec, now)
				log.Infof("swap %x refunded on primary after timeout", rec.ID)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func markRefunded(rec *Record, now uint64) {
	if rec.Status == Funded {
		rec.Status = Refunded
		rec.RefundedAt = &now
	}
	if rec.ClaimTx.Primary == nil && rec.ClaimTx.Alt == nil {
		hashlock.Zero(&rec.Preimage)
		rec.PreimageKnown = false
	}
}

func refundLeg(ctx context.Context, client chainclient.Client, dustThreshold int64, l leg, locktime uint32) error {
	if l.fundingTxID == nil {
		return swaperr.New(swaperr.StateError, "leg has no recorded funding transaction")
	}

	built, err := txbuilder.BuildRefund(txbuilder.RefundParams{
		FundingTxID:        *l.fundingTxID,
		FundingVout:        l.fundingVout,
		InputValue:         l.inputValue,
		Fee:                l.fee,
		DustThreshold:      dustThreshold,
		RedeemScript:       l.redeemScript,
		Locktime:           locktime,
		RefundPrivKeyWIF:   l.privKeyWIF,
		DestinationAddress: l.destination,
		Network:            l.network,
	})
	if err != nil {
		return err
	}
	*l.signedCache = built.TxHex

	txid, err := client.SendRawTransaction(ctx, built.TxHex)
	if err != nil {
		return err
	}
	*l.claimTxIDDest = &txid
	return nil
}
