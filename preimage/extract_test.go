package preimage

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/novalis78/btc-mars-bridge/chainparams"
	"github.com/novalis78/btc-mars-bridge/hashlock"
	"github.com/novalis78/btc-mars-bridge/htlc"
	"github.com/novalis78/btc-mars-bridge/txbuilder"
)

type builtSwapFixture struct {
	redeemScript []byte
	fundingTxID  chainhash.Hash
	preimage     [hashlock.Size]byte
	hash         [hashlock.Size]byte
	claimWIF     string
	refundWIF    string
	destAddr     string
	network      *chainparams.Params
}

func newFixture(t *testing.T) builtSwapFixture {
	t.Helper()
	network := chainparams.BitcoinTestNet3

	claimPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	refundPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	destPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	hl, err := hashlock.Generate()
	require.NoError(t, err)

	d, err := htlc.BuildHTLC(htlc.Params{
		Hash:         hl.Hash,
		Timelock:     500000,
		ClaimPubKey:  claimPriv.PubKey().SerializeCompressed(),
		RefundPubKey: refundPriv.PubKey().SerializeCompressed(),
		Network:      network,
	})
	require.NoError(t, err)

	var fundingRaw [32]byte
	fundingRaw[0] = 0xAB
	fundingTxID, err := chainhash.NewHash(fundingRaw[:])
	require.NoError(t, err)

	destHash160 := btcutil.Hash160(destPriv.PubKey().SerializeCompressed())
	destAddr := chainparams.EncodeAddress(destHash160, chainparams.P2PKH, network)

	return builtSwapFixture{
		redeemScript: d.RedeemScript,
		fundingTxID:  *fundingTxID,
		preimage:     hl.Preimage,
		hash:         hl.Hash,
		claimWIF:     chainparams.EncodeWIF(claimPriv, network, true),
		refundWIF:    chainparams.EncodeWIF(refundPriv, network, true),
		destAddr:     destAddr,
		network:      network,
	}
}

func TestExtract(t *testing.T) {
	t.Run("RecoversPreimageFromClaimTransaction", func(t *testing.T) {
		f := newFixture(t)
		built, err := txbuilder.BuildClaim(txbuilder.ClaimParams{
			FundingTxID:        f.fundingTxID,
			FundingVout:        0,
			InputValue:         100000,
			Fee:                1000,
			DustThreshold:      546,
			RedeemScript:       f.redeemScript,
			Preimage:           f.preimage,
			ClaimPrivKeyWIF:    f.claimWIF,
			DestinationAddress: f.destAddr,
			Network:            f.network,
		})
		require.NoError(t, err)

		recovered, found, err := Extract(built.TxHex, f.hash)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, f.preimage, recovered)
	})

	t.Run("RefundTransactionNeverYieldsAPreimage", func(t *testing.T) {
		f := newFixture(t)
		built, err := txbuilder.BuildRefund(txbuilder.RefundParams{
			FundingTxID:        f.fundingTxID,
			FundingVout:        0,
			InputValue:         100000,
			Fee:                1000,
			DustThreshold:      546,
			RedeemScript:       f.redeemScript,
			Locktime:           500000,
			RefundPrivKeyWIF:   f.refundWIF,
			DestinationAddress: f.destAddr,
			Network:            f.network,
		})
		require.NoError(t, err)

		_, found, err := Extract(built.TxHex, f.hash)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("RejectsMalformedTransaction", func(t *testing.T) {
		_, _, err := Extract([]byte{0x00, 0x01}, [hashlock.Size]byte{})
		require.Error(t, err)
	})

	t.Run("NotFoundAgainstUnrelatedHash", func(t *testing.T) {
		f := newFixture(t)
		built, err := txbuilder.BuildClaim(txbuilder.ClaimParams{
			FundingTxID:        f.fundingTxID,
			FundingVout:        0,
			InputValue:         100000,
			Fee:                1000,
			DustThreshold:      546,
			RedeemScript:       f.redeemScript,
			Preimage:           f.preimage,
			ClaimPrivKeyWIF:    f.claimWIF,
			DestinationAddress: f.destAddr,
			Network:            f.network,
		})
		require.NoError(t, err)

		var wrongHash [hashlock.Size]byte
		wrongHash[0] = 0x99
		_, found, err := Extract(built.TxHex, wrongHash)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

// TestProperty_ClaimAlwaysYieldsPreimageRefundNever is testable property
// 4: across many randomly drawn preimages, a claim transaction's
// scriptSig always yields the preimage back out, and a refund
// transaction for the same HTLC never does.
func TestProperty_ClaimAlwaysYieldsPreimageRefundNever(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		preimageBytes := rapid.SliceOfN(rapid.Byte(), hashlock.Size, hashlock.Size).Draw(rt, "preimage")
		var preimageArr [hashlock.Size]byte
		copy(preimageArr[:], preimageBytes)
		hash := hashlock.HashOf(preimageArr)

		claimPriv, err := btcec.NewPrivateKey()
		if err != nil {
			rt.Fatalf("generate claim key: %v", err)
		}
		refundPriv, err := btcec.NewPrivateKey()
		if err != nil {
			rt.Fatalf("generate refund key: %v", err)
		}
		destPriv, err := btcec.NewPrivateKey()
		if err != nil {
			rt.Fatalf("generate dest key: %v", err)
		}

		network := chainparams.BitcoinTestNet3
		d, err := htlc.BuildHTLC(htlc.Params{
			Hash:         hash,
			Timelock:     500000,
			ClaimPubKey:  claimPriv.PubKey().SerializeCompressed(),
			RefundPubKey: refundPriv.PubKey().SerializeCompressed(),
			Network:      network,
		})
		if err != nil {
			rt.Fatalf("BuildHTLC: %v", err)
		}

		var fundingRaw [32]byte
		fundingRaw[0] = 0xCD
		fundingTxID, _ := chainhash.NewHash(fundingRaw[:])
		destHash160 := btcutil.Hash160(destPriv.PubKey().SerializeCompressed())
		destAddr := chainparams.EncodeAddress(destHash160, chainparams.P2PKH, network)

		claimBuilt, err := txbuilder.BuildClaim(txbuilder.ClaimParams{
			FundingTxID:        *fundingTxID,
			FundingVout:        0,
			InputValue:         100000,
			Fee:                1000,
			DustThreshold:      546,
			RedeemScript:       d.RedeemScript,
			Preimage:           preimageArr,
			ClaimPrivKeyWIF:    chainparams.EncodeWIF(claimPriv, network, true),
			DestinationAddress: destAddr,
			Network:            network,
		})
		if err != nil {
			rt.Fatalf("BuildClaim: %v", err)
		}
		recovered, found, err := Extract(claimBuilt.TxHex, hash)
		if err != nil || !found || recovered != preimageArr {
			rt.Fatalf("claim transaction did not yield its own preimage: found=%v err=%v", found, err)
		}

		refundBuilt, err := txbuilder.BuildRefund(txbuilder.RefundParams{
			FundingTxID:        *fundingTxID,
			FundingVout:        0,
			InputValue:         100000,
			Fee:                1000,
			DustThreshold:      546,
			RedeemScript:       d.RedeemScript,
			Locktime:           500000,
			RefundPrivKeyWIF:   chainparams.EncodeWIF(refundPriv, network, true),
			DestinationAddress: destAddr,
			Network:            network,
		})
		if err != nil {
			rt.Fatalf("BuildRefund: %v", err)
		}
		_, found, err = Extract(refundBuilt.TxHex, hash)
		if err != nil || found {
			rt.Fatalf("refund transaction unexpectedly yielded a preimage")
		}
	})
}
