package swap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novalis78/btc-mars-bridge/chainclient/memclient"
)

func TestWatchForPreimage(t *testing.T) {
	ctx := context.Background()

	t.Run("RecoversFromObservedClaim", func(t *testing.T) {
		s := newTestSwapSetup(t, 1_700_000_000, 3600)
		primaryClient := memclient.New(1_700_000_000)
		altClient := memclient.New(1_700_000_000)
		fundAndVerify(t, s, primaryClient, altClient)

		_, err := CompleteSwap(ctx, s.rec, primaryClient, altClient, DefaultConfig(), ClaimKeys{
			InitiatorPrimaryWIF: s.initiatorPrimary.wif,
			InitiatorPrimaryFee: 1000,
		})
		require.NoError(t, err)

		// A fresh view of the record, as the participant would hold it:
		// it knows the claim txid but not the preimage.
		observerView := &Record{
			ClaimTx: ChainTxRef{Primary: s.rec.ClaimTx.Primary},
			Hash:    s.rec.Hash,
			Status:  Completed,
		}
		result, err := WatchForPreimage(ctx, observerView, primaryClient, nil)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, s.rec.Preimage, *result)
		assert.True(t, observerView.PreimageKnown)
	})

	t.Run("IdempotentWhenAlreadyKnown", func(t *testing.T) {
		s := newTestSwapSetup(t, 1_700_000_000, 3600)
		primaryClient := memclient.New(1_700_000_000)

		result, err := WatchForPreimage(ctx, s.rec, primaryClient, nil)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, s.rec.Preimage, *result)
	})

	t.Run("NilWithoutCandidateOrRecordedClaim", func(t *testing.T) {
		rec := &Record{Hash: [32]byte{1, 2, 3}}
		primaryClient := memclient.New(1_700_000_000)

		result, err := WatchForPreimage(ctx, rec, primaryClient, nil)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("RefundTransactionNeverYieldsPreimage", func(t *testing.T) {
		// Testable property 4 (partial): a refund transaction's scriptSig
		// never contains the preimage, so watching it must not recover one.
		s := newTestSwapSetup(t, 1_700_000_000, 3600)
		primaryClient := memclient.New(1_700_000_000)
		altClient := memclient.New(1_700_000_000)
		fundAndVerify(t, s, primaryClient, altClient)

		primaryClient.AdvanceTime(7201)
		_, err := HandleTimeout(ctx, s.rec, primaryClient, altClient, DefaultConfig(), RefundKeys{
			ParticipantPrimaryWIF: s.participantPrimary.wif,
			ParticipantPrimaryFee: 1000,
		})
		require.NoError(t, err)
		require.NotNil(t, s.rec.RefundTx.Primary)

		observerView := &Record{
			ClaimTx: ChainTxRef{Primary: s.rec.RefundTx.Primary},
			Hash:    s.rec.Hash,
			Status:  Refunded,
		}
		result, err := WatchForPreimage(ctx, observerView, primaryClient, nil)
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}
