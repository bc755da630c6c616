package swap

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"

	"github.com/novalis78/btc-mars-bridge/chainparams"
)

// testParty is one generated keypair, with both the raw private key (for
// WIF encoding when building claim/refund transactions) and the address
// it corresponds to (for use as a payout destination).
type testParty struct {
	priv *btcec.PrivateKey
	wif  string
	addr string
}

func newTestParty(t *testing.T, network *chainparams.Params) testParty {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	hash160 := btcutil.Hash160(priv.PubKey().SerializeCompressed())
	return testParty{
		priv: priv,
		wif:  chainparams.EncodeWIF(priv, network, true),
		addr: chainparams.EncodeAddress(hash160, chainparams.P2PKH, network),
	}
}

// testSwapSetup bundles a freshly initiated swap with the private key
// material for every role, so tests can build claim and refund
// transactions without re-deriving keys from scratch.
type testSwapSetup struct {
	rec *Record

	initiatorPrimary   testParty
	participantPrimary testParty
	initiatorAlt       testParty
	participantAlt     testParty

	primaryNetwork *chainparams.Params
	altNetwork     *chainparams.Params
}

func newTestSwapSetup(t *testing.T, createdAt, duration uint64) *testSwapSetup {
	t.Helper()
	primaryNetwork := chainparams.BitcoinTestNet3
	altNetwork := chainparams.MarscoinTestNet

	s := &testSwapSetup{
		initiatorPrimary:   newTestParty(t, primaryNetwork),
		participantPrimary: newTestParty(t, primaryNetwork),
		initiatorAlt:       newTestParty(t, altNetwork),
		participantAlt:     newTestParty(t, altNetwork),
		primaryNetwork:     primaryNetwork,
		altNetwork:         altNetwork,
	}

	rec, err := InitiateSwap(InitiateParams{
		NominalDuration:          duration,
		CreatedAt:                createdAt,
		InitiatorPrimaryPubKey:   s.initiatorPrimary.priv.PubKey().SerializeCompressed(),
		ParticipantPrimaryPubKey: s.participantPrimary.priv.PubKey().SerializeCompressed(),
		InitiatorAltPubKey:       s.initiatorAlt.priv.PubKey().SerializeCompressed(),
		ParticipantAltPubKey:     s.participantAlt.priv.PubKey().SerializeCompressed(),
		Addresses: Addresses{
			InitiatorPrimary:   s.initiatorPrimary.addr,
			InitiatorAlt:       s.initiatorAlt.addr,
			ParticipantPrimary: s.participantPrimary.addr,
			ParticipantAlt:     s.participantAlt.addr,
		},
		Amounts:        Amounts{Primary: 100000, Alt: 10000000},
		PrimaryNetwork: primaryNetwork,
		AltNetwork:     altNetwork,
	})
	require.NoError(t, err)
	s.rec = rec
	return s
}
