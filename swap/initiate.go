package swap

import (
	"crypto/rand"

	"github.com/novalis78/btc-mars-bridge/chainparams"
	"github.com/novalis78/btc-mars-bridge/hashlock"
	"github.com/novalis78/btc-mars-bridge/htlc"
	"github.com/novalis78/btc-mars-bridge/swaperr"
)

// InitiateParams is everything InitiateSwap needs to draw a secret and
// parameterize both chains' HTLCs. CreatedAt is supplied by the caller
// rather than read from the wall clock, so the pure timelock arithmetic
// stays deterministic and testable; a caller wanting "now" passes the
// current unix time itself.
type InitiateParams struct {
	NominalDuration uint64 // D, seconds
	CreatedAt       uint64 // T, unix seconds

	InitiatorPrimaryPubKey   []byte
	ParticipantPrimaryPubKey []byte
	InitiatorAltPubKey       []byte
	ParticipantAltPubKey     []byte

	Addresses Addresses
	Amounts   Amounts

	PrimaryNetwork *chainparams.Params
	AltNetwork     *chainparams.Params
}

// ComputeTimeouts applies the asymmetric-timelock policy (§4.6): the
// chain the Initiator funds (alt) expires at T+D; the chain the
// Initiator claims from (primary) expires at T+2D. The gap is what
// makes the swap atomic — the two values must never be made equal.
func ComputeTimeouts(createdAt, nominalDuration uint64) (Timeouts, error) {
	alt := createdAt + nominalDuration
	primary := createdAt + 2*nominalDuration
	// htlc.BuildHTLC rejects any timelock beyond htlc.MaxTimelock (the
	// 4-byte CScriptNum ceiling); reject here too so a bad duration fails
	// at swap initiation with an accurate message instead of inside
	// BuildHTLC with a script-encoding one.
	if primary > htlc.MaxTimelock {
		return Timeouts{}, swaperr.New(swaperr.InputError, "computed primary timeout exceeds the 4-byte CScriptNum range")
	}
	return Timeouts{Primary: uint32(primary), Alt: uint32(alt)}, nil
}

// InitiateSwap draws a fresh preimage, computes both chains' timelocks,
// builds both HTLC descriptors, and returns a new Record at status
// Initialized. It makes no chain-client calls.
func InitiateSwap(p InitiateParams) (*Record, error) {
	if p.NominalDuration == 0 {
		return nil, swaperr.New(swaperr.InputError, "nominal duration must be nonzero")
	}
	if p.PrimaryNetwork == nil || p.AltNetwork == nil {
		return nil, swaperr.New(swaperr.InputError, "both network parameters are required")
	}

	hl, err := hashlock.Generate()
	if err != nil {
		return nil, err
	}

	timeouts, err := ComputeTimeouts(p.CreatedAt, p.NominalDuration)
	if err != nil {
		return nil, err
	}

	// Primary: Participant funds, Initiator claims, Participant refunds.
	htlcPrimary, err := htlc.BuildHTLC(htlc.Params{
		Hash:         hl.Hash,
		Timelock:     timeouts.Primary,
		ClaimPubKey:  p.InitiatorPrimaryPubKey,
		RefundPubKey: p.ParticipantPrimaryPubKey,
		Network:      p.PrimaryNetwork,
	})
	if err != nil {
		return nil, err
	}

	// Alt: Initiator funds, Participant claims, Initiator refunds —
	// roles inverted relative to primary.
	htlcAlt, err := htlc.BuildHTLC(htlc.Params{
		Hash:         hl.Hash,
		Timelock:     timeouts.Alt,
		ClaimPubKey:  p.ParticipantAltPubKey,
		RefundPubKey: p.InitiatorAltPubKey,
		Network:      p.AltNetwork,
	})
	if err != nil {
		return nil, err
	}

	var id [16]byte
	if _, err := rand.Read(id[:]); err != nil {
		return nil, swaperr.Wrap(swaperr.CryptoError, "generate swap id", err)
	}

	rec := &Record{
		ID:            id,
		Preimage:      hl.Preimage,
		PreimageKnown: true,
		Hash:          hl.Hash,
		Addresses:     p.Addresses,
		HTLCPrimary:   htlcPrimary,
		HTLCAlt:       htlcAlt,
		Amounts:       p.Amounts,
		Timeouts:      timeouts,
		Status:        Initialized,
		CreatedAt:     p.CreatedAt,
	}

	log.Debugf("initiated swap %x: alt timeout %d, primary timeout %d", rec.ID, timeouts.Alt, timeouts.Primary)

	return rec, nil
}
