package txbuilder

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novalis78/btc-mars-bridge/chainparams"
	"github.com/novalis78/btc-mars-bridge/hashlock"
	"github.com/novalis78/btc-mars-bridge/htlc"
	"github.com/novalis78/btc-mars-bridge/swaperr"
)

type testKey struct {
	priv *btcec.PrivateKey
	wif  string
	addr string
}

func newTestKey(t *testing.T, network *chainparams.Params) testKey {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	hash160 := btcutil.Hash160(priv.PubKey().SerializeCompressed())
	return testKey{
		priv: priv,
		wif:  chainparams.EncodeWIF(priv, network, true),
		addr: chainparams.EncodeAddress(hash160, chainparams.P2PKH, network),
	}
}

func decodeTx(raw []byte) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(txVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return tx, nil
}

func TestBuildClaim(t *testing.T) {
	network := chainparams.BitcoinTestNet3
	claimKey := newTestKey(t, network)
	refundKey := newTestKey(t, network)
	dest := newTestKey(t, network)

	hl, err := hashlock.Generate()
	require.NoError(t, err)

	d, err := htlc.BuildHTLC(htlc.Params{
		Hash:         hl.Hash,
		Timelock:     500000,
		ClaimPubKey:  claimKey.priv.PubKey().SerializeCompressed(),
		RefundPubKey: refundKey.priv.PubKey().SerializeCompressed(),
		Network:      network,
	})
	require.NoError(t, err)

	fundingTxID, err := chainhash.NewHashFromStr(
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	require.NoError(t, err)

	t.Run("BuildsAndSigns", func(t *testing.T) {
		built, err := BuildClaim(ClaimParams{
			FundingTxID:        *fundingTxID,
			FundingVout:        0,
			InputValue:         100000,
			Fee:                1000,
			DustThreshold:      546,
			RedeemScript:       d.RedeemScript,
			Preimage:           hl.Preimage,
			ClaimPrivKeyWIF:    claimKey.wif,
			DestinationAddress: dest.addr,
			Network:            network,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, built.TxHex)
		assert.NotEqual(t, chainhash.Hash{}, built.TxID)

		tx, err := decodeTx(built.TxHex)
		require.NoError(t, err)
		require.Len(t, tx.TxIn, 1)
		require.Len(t, tx.TxOut, 1)
		assert.Equal(t, int64(99000), tx.TxOut[0].Value)
		assert.Equal(t, uint32(claimSequence), tx.TxIn[0].Sequence)

		pushes, err := txscript.PushedData(tx.TxIn[0].SignatureScript)
		require.NoError(t, err)
		require.Len(t, pushes, 4)
		assert.Equal(t, hl.Preimage[:], pushes[2])
		assert.Equal(t, d.RedeemScript, pushes[3])
	})

	t.Run("RejectsFeeAtOrAboveInput", func(t *testing.T) {
		_, err := BuildClaim(ClaimParams{
			FundingTxID:        *fundingTxID,
			FundingVout:        0,
			InputValue:         1000,
			Fee:                1000,
			DustThreshold:      546,
			RedeemScript:       d.RedeemScript,
			Preimage:           hl.Preimage,
			ClaimPrivKeyWIF:    claimKey.wif,
			DestinationAddress: dest.addr,
			Network:            network,
		})
		require.Error(t, err)
		assert.True(t, swaperr.HasCode(err, swaperr.InputError))
	})

	t.Run("RejectsDustOutput", func(t *testing.T) {
		_, err := BuildClaim(ClaimParams{
			FundingTxID:        *fundingTxID,
			FundingVout:        0,
			InputValue:         1500,
			Fee:                1000,
			DustThreshold:      546,
			RedeemScript:       d.RedeemScript,
			Preimage:           hl.Preimage,
			ClaimPrivKeyWIF:    claimKey.wif,
			DestinationAddress: dest.addr,
			Network:            network,
		})
		require.Error(t, err)
		assert.True(t, swaperr.HasCode(err, swaperr.InputError))
	})

	t.Run("RejectsScriptHashDestination", func(t *testing.T) {
		_, err := BuildClaim(ClaimParams{
			FundingTxID:        *fundingTxID,
			FundingVout:        0,
			InputValue:         100000,
			Fee:                1000,
			DustThreshold:      546,
			RedeemScript:       d.RedeemScript,
			Preimage:           hl.Preimage,
			ClaimPrivKeyWIF:    claimKey.wif,
			DestinationAddress: d.Address, // a P2SH address, not P2PKH
			Network:            network,
		})
		require.Error(t, err)
		assert.True(t, swaperr.HasCode(err, swaperr.InputError))
	})
}
