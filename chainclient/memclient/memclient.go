// Copyright (c) 2026 The btc-mars-bridge developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package memclient is an in-memory chainclient.Client used by tests and
// local demos. It holds no production logic: broadcasting a transaction
// here only appends it to an in-process ledger, and confirmations are
// advanced explicitly by the test rather than by block production.
package memclient

import (
	"bytes"
	"context"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/novalis78/btc-mars-bridge/chainclient"
	"github.com/novalis78/btc-mars-bridge/swaperr"
)

type utxo struct {
	vout          uint32
	amountMinor   uint64
	confirmations uint32
	spent         bool
}

type broadcastTx struct {
	raw           []byte
	confirmations uint32
}

// Client is an in-memory chainclient.Client. The zero value is not
// usable; construct with New.
type Client struct {
	mu sync.Mutex

	now uint64

	utxosByAddr map[string]map[chainhash.Hash]*utxo
	txs         map[chainhash.Hash]*broadcastTx

	// unavailable, when true, makes every method return
	// swaperr.ChainUnavailable — used to simulate node downtime.
	unavailable bool
}

// New returns an empty Client with its clock set to startTime.
func New(startTime uint64) *Client {
	return &Client{
		now:         startTime,
		utxosByAddr: make(map[string]map[chainhash.Hash]*utxo),
		txs:         make(map[chainhash.Hash]*broadcastTx),
	}
}

// Fund injects an unspent UTXO at addr, as if a prior out-of-band
// transaction had paid it.
func (c *Client) Fund(addr string, txid chainhash.Hash, vout uint32, amountMinor uint64, confirmations uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.utxosByAddr[addr] == nil {
		c.utxosByAddr[addr] = make(map[chainhash.Hash]*utxo)
	}
	c.utxosByAddr[addr][txid] = &utxo{vout: vout, amountMinor: amountMinor, confirmations: confirmations}
}

// Confirm advances every known UTXO and transaction's confirmation count
// by delta, simulating block production.
func (c *Client) Confirm(delta uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, byTxID := range c.utxosByAddr {
		for _, u := range byTxID {
			u.confirmations += delta
		}
	}
	for _, tx := range c.txs {
		tx.confirmations += delta
	}
}

// AdvanceTime moves the client's clock forward by seconds.
func (c *Client) AdvanceTime(seconds uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += seconds
}

// SetUnavailable toggles whether every call returns ChainUnavailable,
// simulating an unreachable node.
func (c *Client) SetUnavailable(unavailable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unavailable = unavailable
}

// MarkSpent flags a previously funded UTXO as spent, simulating a
// third-party transaction consuming it ahead of the coordinator.
func (c *Client) MarkSpent(addr string, txid chainhash.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if byTxID, ok := c.utxosByAddr[addr]; ok {
		if u, ok := byTxID[txid]; ok {
			u.spent = true
		}
	}
}

func (c *Client) checkAvailable() error {
	if c.unavailable {
		return swaperr.New(swaperr.ChainUnavailable, "mock node is unavailable")
	}
	return nil
}

var _ chainclient.Client = (*Client)(nil)

// GetAddressUTXOs implements chainclient.Client.
func (c *Client) GetAddressUTXOs(_ context.Context, addr string) ([]chainclient.UTXO, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkAvailable(); err != nil {
		return nil, err
	}

	var out []chainclient.UTXO
	for txid, u := range c.utxosByAddr[addr] {
		if u.spent {
			continue
		}
		out = append(out, chainclient.UTXO{
			TxID:          txid,
			Vout:          u.vout,
			AmountMinor:   u.amountMinor,
			Confirmations: u.confirmations,
		})
	}
	return out, nil
}

// GetRawTransaction implements chainclient.Client.
func (c *Client) GetRawTransaction(_ context.Context, txid chainhash.Hash) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkAvailable(); err != nil {
		return nil, err
	}
	tx, ok := c.txs[txid]
	if !ok {
		return nil, swaperr.New(swaperr.ChainUnavailable, "unknown transaction")
	}
	return tx.raw, nil
}

// SendRawTransaction implements chainclient.Client. It is idempotent on
// txid: rebroadcasting bytes already accepted returns the same txid.
func (c *Client) SendRawTransaction(_ context.Context, txHex []byte) (chainhash.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkAvailable(); err != nil {
		return chainhash.Hash{}, err
	}

	tx := wire.NewMsgTx(1)
	if err := tx.Deserialize(bytes.NewReader(txHex)); err != nil {
		return chainhash.Hash{}, swaperr.Wrap(swaperr.InputError, "deserialize broadcast transaction", err)
	}
	txid := tx.TxHash()

	if _, ok := c.txs[txid]; ok {
		return txid, nil
	}

	spent := c.spendInputs(tx)
	if !spent {
		return chainhash.Hash{}, swaperr.New(swaperr.ProtocolViolation, "referenced UTXO is already spent or unknown")
	}

	c.txs[txid] = &broadcastTx{raw: txHex}
	return txid, nil
}

// spendInputs marks every UTXO this transaction consumes as spent,
// failing the whole call if any input doesn't resolve to a known,
// unspent UTXO anywhere in the ledger.
func (c *Client) spendInputs(tx *wire.MsgTx) bool {
	type located struct {
		addr string
		txid chainhash.Hash
	}
	var toSpend []located

	for _, in := range tx.TxIn {
		found := false
		for addr, byTxID := range c.utxosByAddr {
			u, ok := byTxID[in.PreviousOutPoint.Hash]
			if ok && !u.spent && u.vout == in.PreviousOutPoint.Index {
				toSpend = append(toSpend, located{addr: addr, txid: in.PreviousOutPoint.Hash})
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, loc := range toSpend {
		c.utxosByAddr[loc.addr][loc.txid].spent = true
	}
	return true
}

// GetTransaction implements chainclient.Client.
func (c *Client) GetTransaction(_ context.Context, txid chainhash.Hash) (chainclient.TxStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkAvailable(); err != nil {
		return chainclient.TxStatus{}, err
	}
	tx, ok := c.txs[txid]
	if !ok {
		return chainclient.TxStatus{}, swaperr.New(swaperr.ChainUnavailable, "unknown transaction")
	}
	return chainclient.TxStatus{Confirmations: tx.confirmations}, nil
}

// CurrentTime implements chainclient.Client.
func (c *Client) CurrentTime(_ context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkAvailable(); err != nil {
		return 0, err
	}
	return c.now, nil
}
