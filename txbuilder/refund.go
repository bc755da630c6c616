package txbuilder

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/novalis78/btc-mars-bridge/chainparams"
	"github.com/novalis78/btc-mars-bridge/swaperr"
)

// RefundParams is everything BuildRefund needs to spend an HTLC output
// down the ELSE branch once its timelock has matured.
type RefundParams struct {
	FundingTxID   chainhash.Hash
	FundingVout   uint32
	InputValue    int64
	Fee           int64
	DustThreshold int64

	RedeemScript []byte
	Locktime     uint32

	RefundPrivKeyWIF   string
	DestinationAddress string

	Network *chainparams.Params
}

// BuildRefund constructs, signs, and serializes the refund transaction:
// nLockTime set to the HTLC's timelock, sequence below 0xFFFFFFFF so
// nLockTime is actually enforced, scriptSig
// <sig> <pubkey> OP_FALSE <redeemScript>.
func BuildRefund(p RefundParams) (*Built, error) {
	if p.Network == nil {
		return nil, swaperr.New(swaperr.InputError, "network parameters are required")
	}
	if len(p.RedeemScript) == 0 {
		return nil, swaperr.New(swaperr.InputError, "redeem script is required")
	}
	if p.Locktime == 0 {
		return nil, swaperr.New(swaperr.InputError, "locktime must be nonzero")
	}

	outputValue, err := checkFunds(p.InputValue, p.Fee, p.DustThreshold)
	if err != nil {
		return nil, err
	}

	priv, compressed, err := chainparams.DecodeWIF(p.RefundPrivKeyWIF, p.Network)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.InputError, "decode refund private key", err)
	}

	pkScript, err := resolveDestination(p.DestinationAddress, p.Network)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(txVersion)
	tx.LockTime = p.Locktime
	outpoint := wire.NewOutPoint(&p.FundingTxID, p.FundingVout)
	txIn := wire.NewTxIn(outpoint, nil, nil)
	txIn.Sequence = refundSequence
	tx.AddTxIn(txIn)
	tx.AddTxOut(wire.NewTxOut(outputValue, pkScript))

	sig, err := txscript.RawTxInSignature(tx, 0, p.RedeemScript, txscript.SigHashAll, priv)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.CryptoError, "sign refund input", err)
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
	sb.AddOp(txscript.OP_0)
	sb.AddData(p.RedeemScript)
	scriptSig, err := sb.Script()
	if err != nil {
		return nil, swaperr.Wrap(swaperr.CryptoError, "build refund scriptSig", err)
	}
	tx.TxIn[0].SignatureScript = scriptSig

	txHex, err := serialize(tx)
	if err != nil {
		return nil, err
	}

	txid := tx.TxHash()
	log.Debugf("built refund transaction %s spending %s:%d at locktime %d",
		txid, p.FundingTxID, p.FundingVout, p.Locktime)

	return &Built{TxHex: txHex, TxID: txid}, nil
}
