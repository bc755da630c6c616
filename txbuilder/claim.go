package txbuilder

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/novalis78/btc-mars-bridge/chainparams"
	"github.com/novalis78/btc-mars-bridge/hashlock"
	"github.com/novalis78/btc-mars-bridge/swaperr"
)

// ClaimParams is everything BuildClaim needs to spend an HTLC output down
// the IF branch: reveal the preimage, pay a claim key's own address.
type ClaimParams struct {
	FundingTxID   chainhash.Hash
	FundingVout   uint32
	InputValue    int64
	Fee           int64
	DustThreshold int64

	RedeemScript []byte
	Preimage     [hashlock.Size]byte

	ClaimPrivKeyWIF    string
	DestinationAddress string

	Network *chainparams.Params
}

// BuildClaim constructs, signs, and serializes the claim transaction:
// one input spending the HTLC output, one P2PKH output paying the claim
// side's destination address, scriptSig
// <sig> <pubkey> <preimage> OP_TRUE <redeemScript>.
func BuildClaim(p ClaimParams) (*Built, error) {
	if p.Network == nil {
		return nil, swaperr.New(swaperr.InputError, "network parameters are required")
	}
	if len(p.RedeemScript) == 0 {
		return nil, swaperr.New(swaperr.InputError, "redeem script is required")
	}

	outputValue, err := checkFunds(p.InputValue, p.Fee, p.DustThreshold)
	if err != nil {
		return nil, err
	}

	priv, compressed, err := chainparams.DecodeWIF(p.ClaimPrivKeyWIF, p.Network)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.InputError, "decode claim private key", err)
	}

	pkScript, err := resolveDestination(p.DestinationAddress, p.Network)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(txVersion)
	outpoint := wire.NewOutPoint(&p.FundingTxID, p.FundingVout)
	txIn := wire.NewTxIn(outpoint, nil, nil)
	txIn.Sequence = claimSequence
	tx.AddTxIn(txIn)
	tx.AddTxOut(wire.NewTxOut(outputValue, pkScript))

	sig, err := txscript.RawTxInSignature(tx, 0, p.RedeemScript, txscript.SigHashAll, priv)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.CryptoError, "sign claim input", err)
	}

	pubKey := priv.PubKey()
	var pubKeyBytes []byte
	if compressed {
		pubKeyBytes = pubKey.SerializeCompressed()
	} else {
		pubKeyBytes = pubKey.SerializeUncompressed()
	}

	sb := txscript.NewScriptBuilder()
	sb.AddData(sig)
	sb.AddData(pubKeyBytes)
	sb.AddData(p.Preimage[:])
	sb.AddOp(txscript.OP_1)
	sb.AddData(p.RedeemScript)
	scriptSig, err := sb.Script()
	if err != nil {
		return nil, swaperr.Wrap(swaperr.CryptoError, "build claim scriptSig", err)
	}
	tx.TxIn[0].SignatureScript = scriptSig

	txHex, err := serialize(tx)
	if err != nil {
		return nil, err
	}

	txid := tx.TxHash()
	log.Debugf("built claim transaction %s spending %s:%d", txid, p.FundingTxID, p.FundingVout)

	return &Built{TxHex: txHex, TxID: txid}, nil
}
