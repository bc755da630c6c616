package swap

import (
	"encoding/hex"
	"encoding/json"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/novalis78/btc-mars-bridge/chainparams"
	"github.com/novalis78/btc-mars-bridge/hashlock"
	"github.com/novalis78/btc-mars-bridge/htlc"
	"github.com/novalis78/btc-mars-bridge/swaperr"
)

type htlcJSON struct {
	Address      string `json:"address"`
	RedeemScript string `json:"redeem_script"`
	ScriptPubKey string `json:"script_pubkey"`
	Timelock     uint32 `json:"timelock"`
}

type chainTxRefJSON struct {
	Primary *string `json:"primary,omitempty"`
	Alt     *string `json:"alt,omitempty"`
}

type serializedRecord struct {
	ID       string `json:"id"`
	Preimage string `json:"preimage,omitempty"`
	Hash     string `json:"hash"`

	Addresses struct {
		InitiatorPrimary   string `json:"initiator_primary"`
		InitiatorAlt       string `json:"initiator_alt"`
		ParticipantPrimary string `json:"participant_primary"`
		ParticipantAlt     string `json:"participant_alt"`
	} `json:"addresses"`

	HTLCPrimary htlcJSON `json:"htlc_primary"`
	HTLCAlt     htlcJSON `json:"htlc_alt"`

	Amounts struct {
		Primary uint64 `json:"primary"`
		Alt     uint64 `json:"alt"`
	} `json:"amounts"`

	Timeouts struct {
		Primary uint32 `json:"primary"`
		Alt     uint32 `json:"alt"`
	} `json:"timeouts"`

	FundingTx chainTxRefJSON `json:"funding_tx"`
	ClaimTx   chainTxRefJSON `json:"claim_tx"`
	RefundTx  chainTxRefJSON `json:"refund_tx"`

	Status      string  `json:"status"`
	CreatedAt   uint64  `json:"created_at"`
	CompletedAt *uint64 `json:"completed_at,omitempty"`
	RefundedAt  *uint64 `json:"refunded_at,omitempty"`
}

func hashToJSON(h *chainhash.Hash) *string {
	if h == nil {
		return nil
	}
	s := h.String()
	return &s
}

func hashFromJSON(s *string) (*chainhash.Hash, error) {
	if s == nil {
		return nil, nil
	}
	h, err := chainhash.NewHashFromStr(*s)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func htlcToJSON(d *htlc.Descriptor) htlcJSON {
	return htlcJSON{
		Address:      d.Address,
		RedeemScript: hex.EncodeToString(d.RedeemScript),
		ScriptPubKey: hex.EncodeToString(d.ScriptPubKey),
		Timelock:     d.Timelock,
	}
}

// Serialize renders a Record as the flat hex-JSON object described in
// §6, suitable for an external journal. Preimage is omitted once the
// swap has resolved by refund without a claim ever occurring — the
// secret no longer has any use and shouldn't be written down.
func Serialize(rec *Record) ([]byte, error) {
	var out serializedRecord
	err := rec.withLock(func() error {
		out.ID = hex.EncodeToString(rec.ID[:])
		if rec.PreimageKnown {
			out.Preimage = hex.EncodeToString(rec.Preimage[:])
		}
		out.Hash = hex.EncodeToString(rec.Hash[:])

		out.Addresses.InitiatorPrimary = rec.Addresses.InitiatorPrimary
		out.Addresses.InitiatorAlt = rec.Addresses.InitiatorAlt
		out.Addresses.ParticipantPrimary = rec.Addresses.ParticipantPrimary
		out.Addresses.ParticipantAlt = rec.Addresses.ParticipantAlt

		out.HTLCPrimary = htlcToJSON(rec.HTLCPrimary)
		out.HTLCAlt = htlcToJSON(rec.HTLCAlt)

		out.Amounts.Primary = rec.Amounts.Primary
		out.Amounts.Alt = rec.Amounts.Alt
		out.Timeouts.Primary = rec.Timeouts.Primary
		out.Timeouts.Alt = rec.Timeouts.Alt

		out.FundingTx = chainTxRefJSON{Primary: hashToJSON(rec.FundingTx.Primary.TxID), Alt: hashToJSON(rec.FundingTx.Alt.TxID)}
		out.ClaimTx = chainTxRefJSON{Primary: hashToJSON(rec.ClaimTx.Primary), Alt: hashToJSON(rec.ClaimTx.Alt)}
		out.RefundTx = chainTxRefJSON{Primary: hashToJSON(rec.RefundTx.Primary), Alt: hashToJSON(rec.RefundTx.Alt)}

		out.Status = string(rec.Status)
		out.CreatedAt = rec.CreatedAt
		out.CompletedAt = rec.CompletedAt
		out.RefundedAt = rec.RefundedAt
		return nil
	})
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.InputError, "marshal swap record", err)
	}
	return data, nil
}

// Deserialize parses a journal record back into a Record. The serialized
// schema (§6) doesn't carry each HTLC's claim/refund key hashes or which
// network it was built for, since those live outside the journal's
// concern; primaryNetwork and altNetwork supply the latter, and
// ClaimKeyHash/RefundKeyHash are left zero on the reconstructed
// descriptors — they're informational on a Descriptor built fresh, not
// load-bearing once a redeem script already exists on chain.
func Deserialize(data []byte, primaryNetwork, altNetwork *chainparams.Params) (*Record, error) {
	var in serializedRecord
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, swaperr.Wrap(swaperr.InputError, "unmarshal swap record", err)
	}

	rec := &Record{Status: Status(in.Status), CreatedAt: in.CreatedAt, CompletedAt: in.CompletedAt, RefundedAt: in.RefundedAt}

	idBytes, err := hex.DecodeString(in.ID)
	if err != nil || len(idBytes) != len(rec.ID) {
		return nil, swaperr.New(swaperr.InputError, "malformed swap id")
	}
	copy(rec.ID[:], idBytes)

	hashBytes, err := hex.DecodeString(in.Hash)
	if err != nil || len(hashBytes) != hashlock.Size {
		return nil, swaperr.New(swaperr.InputError, "malformed hash")
	}
	copy(rec.Hash[:], hashBytes)

	if in.Preimage != "" {
		preimageBytes, err := hex.DecodeString(in.Preimage)
		if err != nil || len(preimageBytes) != hashlock.Size {
			return nil, swaperr.New(swaperr.InputError, "malformed preimage")
		}
		copy(rec.Preimage[:], preimageBytes)
		rec.PreimageKnown = true
	}

	rec.Addresses = Addresses{
		InitiatorPrimary:   in.Addresses.InitiatorPrimary,
		InitiatorAlt:       in.Addresses.InitiatorAlt,
		ParticipantPrimary: in.Addresses.ParticipantPrimary,
		ParticipantAlt:     in.Addresses.ParticipantAlt,
	}

	rec.HTLCPrimary, err = htlcFromJSON(in.HTLCPrimary, rec.Hash, primaryNetwork)
	if err != nil {
		return nil, err
	}
	rec.HTLCAlt, err = htlcFromJSON(in.HTLCAlt, rec.Hash, altNetwork)
	if err != nil {
		return nil, err
	}

	rec.Amounts = Amounts{Primary: in.Amounts.Primary, Alt: in.Amounts.Alt}
	rec.Timeouts = Timeouts{Primary: in.Timeouts.Primary, Alt: in.Timeouts.Alt}

	// The journal schema (§6) carries funding_tx as a bare txid per chain;
	// it doesn't record the satisfying vout, so a Record reloaded from a
	// journal has FundingTx.*.Vout zeroed. That's only safe once the swap
	// has fully resolved, since claimLeg/refundLeg both require the
	// correct vout to build a spend — a deserialized in-flight Record
	// must re-run VerifyFunding before claiming or refunding.
	primaryFundingTxID, err := hashFromJSON(in.FundingTx.Primary)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.InputError, "malformed funding_tx.primary", err)
	}
	rec.FundingTx.Primary = Outpoint{TxID: primaryFundingTxID}
	altFundingTxID, err := hashFromJSON(in.FundingTx.Alt)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.InputError, "malformed funding_tx.alt", err)
	}
	rec.FundingTx.Alt = Outpoint{TxID: altFundingTxID}
	if rec.ClaimTx.Primary, err = hashFromJSON(in.ClaimTx.Primary); err != nil {
		return nil, swaperr.Wrap(swaperr.InputError, "malformed claim_tx.primary", err)
	}
	if rec.ClaimTx.Alt, err = hashFromJSON(in.ClaimTx.Alt); err != nil {
		return nil, swaperr.Wrap(swaperr.InputError, "malformed claim_tx.alt", err)
	}
	if rec.RefundTx.Primary, err = hashFromJSON(in.RefundTx.Primary); err != nil {
		return nil, swaperr.Wrap(swaperr.InputError, "malformed refund_tx.primary", err)
	}
	if rec.RefundTx.Alt, err = hashFromJSON(in.RefundTx.Alt); err != nil {
		return nil, swaperr.Wrap(swaperr.InputError, "malformed refund_tx.alt", err)
	}

	return rec, nil
}

func htlcFromJSON(in htlcJSON, hash [hashlock.Size]byte, network *chainparams.Params) (*htlc.Descriptor, error) {
	redeemScript, err := hex.DecodeString(in.RedeemScript)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.InputError, "malformed redeem_script", err)
	}
	scriptPubKey, err := hex.DecodeString(in.ScriptPubKey)
	if err != nil {
		return nil, swaperr.Wrap(swaperr.InputError, "malformed script_pubkey", err)
	}
	return &htlc.Descriptor{
		RedeemScript: redeemScript,
		Address:      in.Address,
		ScriptPubKey: scriptPubKey,
		Hash:         hash,
		Timelock:     in.Timelock,
		Network:      network,
	}, nil
}
